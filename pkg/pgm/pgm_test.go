package pgm_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/gridlife/pkg/pgm"
)

var _ = Describe("Header", func() {
	var f *os.File

	BeforeEach(func() {
		var err error
		f, err = os.CreateTemp("", "gridlife-*.pgm")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			f.Close()
			os.Remove(f.Name())
		})
	})

	It("round-trips width, height, and max value", func() {
		size, err := pgm.WriteHeader(f, 17, 11, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(size).To(Equal(int64(len("P5\n17 11\n1\n"))))

		h, err := pgm.ReadHeader(f)
		Expect(err).NotTo(HaveOccurred())
		Expect(h.Width).To(Equal(17))
		Expect(h.Height).To(Equal(11))
		Expect(h.MaxVal).To(Equal(1))
		Expect(h.DataOffset).To(Equal(size))
	})

	It("rejects an unsupported magic", func() {
		_, err := f.WriteAt([]byte("P2\n4 4\n1\n"), 0)
		Expect(err).NotTo(HaveOccurred())

		_, err = pgm.ReadHeader(f)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a non-integer dimension", func() {
		_, err := f.WriteAt([]byte("P5\nfour 4\n1\n"), 0)
		Expect(err).NotTo(HaveOccurred())

		_, err = pgm.ReadHeader(f)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ReadRect and WriteRect", func() {
	var f *os.File
	const globalCols = 6

	BeforeEach(func() {
		var err error
		f, err = os.CreateTemp("", "gridlife-*.pgm")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			f.Close()
			os.Remove(f.Name())
		})

		_, err = pgm.WriteHeader(f, globalCols, 6, 1)
		Expect(err).NotTo(HaveOccurred())
	})

	It("writes disjoint rectangles that read back exactly", func() {
		offset, err := pgm.ReadHeader(f)
		Expect(err).NotTo(HaveOccurred())

		topLeft := []byte{1, 0, 0, 1}
		bottomRight := []byte{0, 1, 1, 0}

		Expect(pgm.WriteRect(f, offset.DataOffset, globalCols, 0, 0, 2, 2, topLeft, 1)).To(Succeed())
		Expect(pgm.WriteRect(f, offset.DataOffset, globalCols, 4, 4, 2, 2, bottomRight, 1)).To(Succeed())

		gotTopLeft, err := pgm.ReadRect(f, offset.DataOffset, globalCols, 0, 0, 2, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(gotTopLeft).To(Equal(topLeft))

		gotBottomRight, err := pgm.ReadRect(f, offset.DataOffset, globalCols, 4, 4, 2, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(gotBottomRight).To(Equal(bottomRight))
	})
})
