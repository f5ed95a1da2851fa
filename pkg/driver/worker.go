package driver

import (
	"github.com/sarchlab/gridlife/pkg/halo"
	"github.com/sarchlab/gridlife/pkg/life"
)

// Worker is one rank's share of the distributed simulation: a local
// Life Engine of shape (localRows+2, localCols+2) whose outer ring is
// the halo, plus the bookkeeping spec.md §3 requires to place that
// rectangle back in the global grid and find its neighbors.
type Worker struct {
	rank int
	row  int // coordinate in the process mesh
	col  int

	startRow, endRow int // owned rectangle in the global grid, [start,end)
	startCol, endCol int

	neighbors [4]int // North, South, East, West ranks

	engine *life.Engine
	links  halo.Links
}

// Rank returns the worker's linear rank.
func (w *Worker) Rank() int { return w.rank }

// Coord returns the worker's (row, col) in the process mesh.
func (w *Worker) Coord() (int, int) { return w.row, w.col }

// Rect returns the worker's owned rectangle in the global grid as
// [startRow,endRow) x [startCol,endCol).
func (w *Worker) Rect() (startRow, endRow, startCol, endCol int) {
	return w.startRow, w.endRow, w.startCol, w.endCol
}

// Neighbors returns the worker's [North, South, East, West] neighbor
// ranks.
func (w *Worker) Neighbors() [4]int { return w.neighbors }

// Engine returns the worker's local Life Engine (interior plus halo).
func (w *Worker) Engine() *life.Engine { return w.engine }

func partition(global, numProcs, idx int) (start, end int) {
	base := global / numProcs
	start = idx * base
	if idx == numProcs-1 {
		end = global
	} else {
		end = start + base
	}
	return start, end
}
