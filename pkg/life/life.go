// Package life implements Conway's Game of Life (rule B3/S23) over a
// toroidal grid, double-buffered so a tick never reads a cell its own
// pass has already written.
package life

import "github.com/sarchlab/gridlife/pkg/grid"

// Engine owns the current state and a scratch grid of identical shape.
type Engine struct {
	state   *grid.Grid
	scratch *grid.Grid
}

// New allocates an Engine of the given shape, all cells dead.
func New(rows, cols int) *Engine {
	return &Engine{
		state:   grid.New(rows, cols),
		scratch: grid.New(rows, cols),
	}
}

// Rows returns the engine's row count.
func (e *Engine) Rows() int { return e.state.Rows() }

// Cols returns the engine's column count.
func (e *Engine) Cols() int { return e.state.Cols() }

// Get reports whether the cell at (row, col) is alive.
func (e *Engine) Get(row, col int) bool { return e.state.Get(row, col) }

// Init sets every (row, col) in seeds alive; all other cells stay
// whatever they already were (typically dead, on a freshly built
// Engine).
func (e *Engine) Init(seeds [][2]int) {
	for _, s := range seeds {
		e.state.Set(s[0], s[1], true)
	}
}

func (e *Engine) becomesAlive(row, col int) bool {
	n := e.state.NeighborCount(row, col)
	return n == 3 || (n == 2 && e.state.Get(row, col))
}

// Tick advances every cell of state by one Life step, writing results
// into scratch, then swaps the two grids. Because grid.Grid's
// addressing already wraps, Tick is correct for any shape, including a
// halo-free single-process grid and a haloed local sub-grid (whose
// halo rows/columns are overwritten with garbage that the next halo
// exchange discards).
func (e *Engine) Tick() {
	rows, cols := e.state.Rows(), e.state.Cols()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			e.scratch.Set(r, c, e.becomesAlive(r, c))
		}
	}
	e.state, e.scratch = e.scratch, e.state
}

// Subgame returns a new Engine whose state is the subgrid spanning
// [r0,r1) x [c0,c1) of e's current state, per grid.Grid.Subgrid's
// wraparound semantics (negative endpoints legal).
func (e *Engine) Subgame(r0, c0, r1, c1 int) *Engine {
	sub := e.state.Subgrid(r0, c0, r1, c1)
	return &Engine{
		state:   sub,
		scratch: grid.New(sub.Rows(), sub.Cols()),
	}
}

// SetSubgame writes g's cells into e's state starting at (r0, c0).
func (e *Engine) SetSubgame(r0, c0 int, g *grid.Grid) {
	e.state.SetSubgrid(r0, c0, g)
}

// Row returns the current state's packed row r.
func (e *Engine) Row(r int) []byte { return e.state.Row(r) }

// Col returns the current state's packed column c.
func (e *Engine) Col(c int) []byte { return e.state.Col(c) }

// SetRow writes packed bytes into the current state's row r.
func (e *Engine) SetRow(r int, packed []byte) { e.state.SetRow(r, packed) }

// SetCol writes packed bytes into the current state's column c.
func (e *Engine) SetCol(c int, packed []byte) { e.state.SetCol(c, packed) }

// State returns the engine's current grid, for callers (image I/O,
// gather) that need direct read access.
func (e *Engine) State() *grid.Grid { return e.state }
