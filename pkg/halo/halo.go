// Package halo implements the boundary exchange that keeps a worker's
// one-cell halo in sync with its four cardinal neighbors each round.
//
// The transport itself — in spec.md terms, the MPI send/recv pair per
// direction — is modeled here as a pair of buffered Go channels per
// edge of the process mesh: one goroutine per worker rank stands in
// for one MPI process (spec.md §5's SPMD model specifies the protocol,
// not the transport).
package halo

import "github.com/sarchlab/gridlife/pkg/life"

// RowLink is a worker's one-directional-pair connection to its North
// or South neighbor: it carries packed row strips.
type RowLink interface {
	SendRow(packed []byte)
	RecvRow() []byte
}

// ColLink is a worker's connection to its East or West neighbor: it
// carries packed column strips.
type ColLink interface {
	SendCol(packed []byte)
	RecvCol() []byte
}

// Links bundles a worker's four neighbor connections.
type Links struct {
	North, South RowLink
	East, West   ColLink
}

// Exchange implements spec.md §4.D's protocol: rows before columns, so
// that the East/West strips already carry the North/South-updated
// corner cells, giving correct diagonal halo values without a
// dedicated diagonal exchange (see DESIGN.md's diagonal-halo decision;
// this is sufficient because each worker's own row phase — including its Recv,
// which blocks until its row-direction neighbor has sent — strictly
// precedes its column phase in program order, and Go's memory model
// guarantees a channel send happens-after everything the sender did
// before it, so a neighbor's column send always carries its
// already-updated halo rows).
func Exchange(e *life.Engine, links Links) {
	rows, cols := e.Rows(), e.Cols()

	// Row phase: interior row 1 goes north, interior row rows-2 goes
	// south (rows-2 is "the last interior row", the wraparound index
	// -2 from spec.md §4.D realized directly since Rows() already
	// accounts for the halo).
	links.North.SendRow(e.Row(1))
	links.South.SendRow(e.Row(rows - 2))

	fromNorth := links.North.RecvRow()
	fromSouth := links.South.RecvRow()
	e.SetRow(0, fromNorth)
	e.SetRow(rows-1, fromSouth)

	// Column phase: interior col 1 goes west, interior col cols-2 goes
	// east.
	links.West.SendCol(e.Col(1))
	links.East.SendCol(e.Col(cols - 2))

	fromWest := links.West.RecvCol()
	fromEast := links.East.RecvCol()
	e.SetCol(0, fromWest)
	e.SetCol(cols-1, fromEast)
}

type channelRowLink struct {
	send chan<- []byte
	recv <-chan []byte
}

func (l *channelRowLink) SendRow(packed []byte) { l.send <- packed }
func (l *channelRowLink) RecvRow() []byte       { return <-l.recv }

type channelColLink struct {
	send chan<- []byte
	recv <-chan []byte
}

func (l *channelColLink) SendCol(packed []byte) { l.send <- packed }
func (l *channelColLink) RecvCol() []byte       { return <-l.recv }

// NewRowEdge returns the two ends of one North/South edge of the
// process mesh. Each end's Send is non-blocking with respect to the
// caller (buffered, capacity 1 — exactly one in-flight strip per
// round), matching spec.md §4.D's "post non-blocking sends" step; each
// end's Recv blocks until its partner calls Send, matching "post
// blocking receives".
func NewRowEdge() (near, far RowLink) {
	nearToFar := make(chan []byte, 1)
	farToNear := make(chan []byte, 1)
	return &channelRowLink{send: nearToFar, recv: farToNear},
		&channelRowLink{send: farToNear, recv: nearToFar}
}

// NewColEdge is NewRowEdge's column-phase counterpart.
func NewColEdge() (near, far ColLink) {
	nearToFar := make(chan []byte, 1)
	farToNear := make(chan []byte, 1)
	return &channelColLink{send: nearToFar, recv: farToNear},
		&channelColLink{send: farToNear, recv: nearToFar}
}
