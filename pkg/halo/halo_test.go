package halo_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/gridlife/pkg/halo"
	"github.com/sarchlab/gridlife/pkg/life"
)

// runExchange runs Exchange for every (engine, links) pair concurrently
// and waits for all of them to finish one round — the test-harness
// equivalent of every MPI rank calling exchange() in the same round.
func runExchange(engines []*life.Engine, links []halo.Links) {
	var wg sync.WaitGroup
	wg.Add(len(engines))
	for i := range engines {
		i := i
		go func() {
			defer wg.Done()
			halo.Exchange(engines[i], links[i])
		}()
	}
	wg.Wait()
}

var _ = Describe("Exchange", func() {
	It("propagates a live interior cell across a 1x2 mesh's East/West edge", func() {
		a := life.New(5, 4) // shape (local_rows+2, local_cols+2) = (3+2, 2+2)
		b := life.New(5, 4)

		a.Init([][2]int{{2, 2}}) // interior cell on a's last interior column

		northA, northFarA := halo.NewRowEdge()
		southA, southFarA := halo.NewRowEdge()
		eastA, westFarB := halo.NewColEdge()
		westA, eastFarB := halo.NewColEdge()

		linksA := halo.Links{North: northA, South: southA, East: eastA, West: westA}
		linksB := halo.Links{North: northFarA, South: southFarA, East: eastFarB, West: westFarB}

		runExchange([]*life.Engine{a, b}, []halo.Links{linksA, linksB})

		// b's West halo column (col 0) should now carry a's east
		// interior column (col 2), which includes the live cell at
		// row 2.
		Expect(b.Get(2, 0)).To(BeTrue())
		// a's own East halo (col 3) came from b's West interior
		// column (col 1), which started out empty.
		Expect(a.Get(2, 3)).To(BeFalse())
	})

	It("propagates a live interior cell across a 2x1 mesh's North/South edge", func() {
		top := life.New(4, 5) // shape (2+2, 3+2)
		bottom := life.New(4, 5)

		top.Init([][2]int{{2, 2}}) // last interior row of top

		southTop, northBottom := halo.NewRowEdge()
		northTop, southBottom := halo.NewRowEdge()
		eastTop, westBottom := halo.NewColEdge()
		westTop, eastBottom := halo.NewColEdge()

		linksTop := halo.Links{North: northTop, South: southTop, East: eastTop, West: westTop}
		linksBottom := halo.Links{North: northBottom, South: southBottom, East: eastBottom, West: westBottom}

		runExchange([]*life.Engine{top, bottom}, []halo.Links{linksTop, linksBottom})

		// bottom's North halo row (row 0) should carry top's last
		// interior row (row 2), which includes the live cell at col 2.
		Expect(bottom.Get(0, 2)).To(BeTrue())
	})
})
