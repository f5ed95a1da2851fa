// Package driver implements the Distributed Driver of spec.md §4.E: it
// partitions a global Life Engine (or a shared image file) across a
// process mesh, sequences {exchange, tick} per round across every
// worker, and gathers the result back at the root.
//
// spec.md describes a single-program/multiple-data arrangement of OS
// processes; this package's SPMD stand-in is one goroutine per rank,
// coordinated by golang.org/x/sync/errgroup: each operation waits for
// every rank's goroutine and returns the first error any rank reported
// (spec.md §7: all error categories are fatal and terminate the job).
// A failing rank does not interrupt the other ranks' goroutines.
package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/gridlife/pkg/grid"
	"github.com/sarchlab/gridlife/pkg/halo"
	"github.com/sarchlab/gridlife/pkg/life"
	"github.com/sarchlab/gridlife/pkg/pgm"
	"github.com/sarchlab/gridlife/pkg/topology"
)

// World holds every rank's Worker and the global metadata needed to
// sequence rounds and gather results.
type World struct {
	name string
	runID xid.ID

	mesh    *topology.Mesh
	workers []*Worker
	root    int

	globalRows, globalCols int

	logger *slog.Logger
}

// Builder constructs a World. It follows the fluent
// With*(...)-returns-itself-by-value convention used throughout this
// codebase's ancestry: WithMesh, WithRoot, WithSeed/WithInputFile, then
// Build(name).
type Builder struct {
	procRows, procCols int
	root               int
	seed               *life.Engine
	inputFile          *os.File
	logger             *slog.Logger
}

// NewBuilder returns a Builder defaulting to the (2, 2) mesh and root 0
// that spec.md §6 permits as conventional defaults.
func NewBuilder() Builder {
	return Builder{procRows: 2, procCols: 2, root: 0}
}

// WithMesh sets the process mesh shape.
func (b Builder) WithMesh(procRows, procCols int) Builder {
	b.procRows, b.procCols = procRows, procCols
	return b
}

// WithRoot sets the root rank.
func (b Builder) WithRoot(root int) Builder {
	b.root = root
	return b
}

// WithSeed sets an in-memory global Life Engine as the initial state.
// Mutually exclusive with WithInputFile; whichever is set last wins.
func (b Builder) WithSeed(seed *life.Engine) Builder {
	b.seed = seed
	b.inputFile = nil
	return b
}

// WithInputFile sets an open P5 image file as the initial state.
// Mutually exclusive with WithSeed; whichever is set last wins.
func (b Builder) WithInputFile(f *os.File) Builder {
	b.inputFile = f
	b.seed = nil
	return b
}

// WithLogger overrides the default logger (slog.Default()).
func (b Builder) WithLogger(logger *slog.Logger) Builder {
	b.logger = logger
	return b
}

// Build constructs the World.
func (b Builder) Build(name string) (*World, error) {
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	switch {
	case b.seed != nil:
		return fromSeed(name, b.seed, b.procRows, b.procCols, b.root, logger)
	case b.inputFile != nil:
		return fromFile(name, b.inputFile, b.procRows, b.procCols, b.root, logger)
	default:
		return nil, fmt.Errorf("driver: Builder requires WithSeed or WithInputFile")
	}
}

func newWorld(name string, mesh *topology.Mesh, globalRows, globalCols, root int, logger *slog.Logger) *World {
	n := mesh.ProcRows() * mesh.ProcCols()
	return &World{
		name:       name,
		runID:      xid.New(),
		mesh:       mesh,
		workers:    make([]*Worker, n),
		root:       root,
		globalRows: globalRows,
		globalCols: globalCols,
		logger:     logger,
	}
}

// fromSeed implements spec.md §4.E's "construction from in-memory
// seed": every worker extracts its own haloed rectangle from a seed
// that's assumed globally available, so no transfer is required.
func fromSeed(name string, seed *life.Engine, procRows, procCols, root int, logger *slog.Logger) (*World, error) {
	mesh, err := topology.New(procRows, procCols, procRows*procCols)
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}

	w := newWorld(name, mesh, seed.Rows(), seed.Cols(), root, logger)

	for k := range w.workers {
		pr, pc := mesh.RankToCoords(k)
		startRow, endRow := partition(seed.Rows(), procRows, pr)
		startCol, endCol := partition(seed.Cols(), procCols, pc)

		w.workers[k] = &Worker{
			rank:      k,
			row:       pr,
			col:       pc,
			startRow:  startRow,
			endRow:    endRow,
			startCol:  startCol,
			endCol:    endCol,
			neighbors: mesh.Neighbors(k),
			engine:    seed.Subgame(startRow-1, startCol-1, endRow+1, endCol+1),
		}
	}

	w.wireLinks()
	return w, nil
}

// fromFile implements spec.md §4.F's read protocol: parse the header
// once, then have every worker independently read its own rectangle at
// the offsets that header implies. Reads are concurrent and safe
// because every worker's rectangle is disjoint.
func fromFile(name string, f *os.File, procRows, procCols, root int, logger *slog.Logger) (*World, error) {
	header, err := pgm.ReadHeader(f)
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}

	mesh, err := topology.New(procRows, procCols, procRows*procCols)
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}

	w := newWorld(name, mesh, header.Height, header.Width, root, logger)

	g := new(errgroup.Group)
	for k := range w.workers {
		k := k
		g.Go(func() error {
			pr, pc := mesh.RankToCoords(k)
			startRow, endRow := partition(header.Height, procRows, pr)
			startCol, endCol := partition(header.Width, procCols, pc)
			localRows, localCols := endRow-startRow, endCol-startCol

			cells, err := pgm.ReadRect(f, header.DataOffset, header.Width, startRow, startCol, localRows, localCols)
			if err != nil {
				return fmt.Errorf("driver: rank %d: %w", k, err)
			}

			engine := life.New(localRows+2, localCols+2)
			engine.SetSubgame(1, 1, grid.FromCellBytes(localRows, localCols, cells))

			w.workers[k] = &Worker{
				rank:      k,
				row:       pr,
				col:       pc,
				startRow:  startRow,
				endRow:    endRow,
				startCol:  startCol,
				endCol:    endCol,
				neighbors: mesh.Neighbors(k),
				engine:    engine,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	w.wireLinks()
	return w, nil
}

// wireLinks connects every worker's North/South and East/West links to
// its mesh neighbors. Every rank creates exactly its South and East
// edges; since South and East are bijections over the rank set, every
// worker ends up with all four links set exactly once.
func (w *World) wireLinks() {
	for k, wk := range w.workers {
		south := wk.neighbors[1]
		east := wk.neighbors[2]

		ns, sn := halo.NewRowEdge()
		wk.links.South = ns
		w.workers[south].links.North = sn

		we, ew := halo.NewColEdge()
		wk.links.East = we
		w.workers[east].links.West = ew
		_ = k
	}
}

// Step runs one round — exchange() then tick() — on every worker
// concurrently, per spec.md §4.E.
func (w *World) Step(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for _, wk := range w.workers {
		wk := wk
		g.Go(func() error {
			halo.Exchange(wk.engine, wk.links)
			wk.engine.Tick()
			return nil
		})
	}
	return g.Wait()
}

// Run executes ticks rounds. If gatherEvery > 0, onGather is invoked
// every gatherEvery rounds with the round number and the gathered
// global state (meaningful only as seen by the root; see Gather).
func (w *World) Run(ctx context.Context, ticks, gatherEvery int, onGather func(round int, snapshot *life.Engine)) error {
	w.logger.Info("run starting",
		"run_id", w.runID.String(), "name", w.name, "ticks", ticks, "workers", len(w.workers))

	for round := 1; round <= ticks; round++ {
		if err := w.Step(ctx); err != nil {
			return fmt.Errorf("driver: round %d: %w", round, err)
		}
		if gatherEvery > 0 && round%gatherEvery == 0 && onGather != nil {
			onGather(round, w.Gather(w.root))
		}
	}

	w.logger.Info("run complete", "run_id", w.runID.String(), "name", w.name)
	return nil
}

// envelopeSize is spec.md §4.E / §9's worst-case per-worker gather
// buffer size: the byte count of the largest possible owned rectangle
// (rows/procRows + rows%procRows by cols/procCols + cols%procCols),
// packed at one bit per cell plus the safety byte.
func envelopeSize(globalRows, globalCols, procRows, procCols int) int {
	rows := globalRows/procRows + globalRows%procRows
	cols := globalCols/procCols + globalCols%procCols
	return (rows*cols+7)/8 + 1
}

// Gather assembles the global grid at the root. Per spec.md §9, only
// the caller matching the root rank gets a meaningful result; any other
// caller gets the (0, 0) sentinel. Every worker still serializes its
// interior into the worst-case envelope buffer, matching the
// collective's wire shape even though no real inter-process transfer
// happens in this single-address-space implementation.
func (w *World) Gather(callerRank int) *life.Engine {
	envelope := envelopeSize(w.globalRows, w.globalCols, w.mesh.ProcRows(), w.mesh.ProcCols())

	buffers := make([][]byte, len(w.workers))
	for k, wk := range w.workers {
		interior := wk.engine.Subgame(1, 1, -1, -1)
		buf := make([]byte, envelope)
		copy(buf, interior.State().Bits())
		buffers[k] = buf
	}

	if callerRank != w.root {
		return life.New(0, 0)
	}

	result := life.New(w.globalRows, w.globalCols)
	for k, wk := range w.workers {
		rows := wk.endRow - wk.startRow
		cols := wk.endCol - wk.startCol
		result.SetSubgame(wk.startRow, wk.startCol, grid.FromBits(rows, cols, buffers[k]))
	}
	return result
}

// WriteImage writes the global grid back to a P5 image file: a single
// header write by the root followed by every worker writing its own
// interior rectangle at its disjoint byte range, per spec.md §4.F.
func (w *World) WriteImage(ctx context.Context, f *os.File) error {
	headerSize, err := pgm.WriteHeader(f, w.globalCols, w.globalRows, 1)
	if err != nil {
		return fmt.Errorf("driver: %w", err)
	}

	g, _ := errgroup.WithContext(ctx)
	for _, wk := range w.workers {
		wk := wk
		g.Go(func() error {
			interior := wk.engine.Subgame(1, 1, -1, -1)
			rows, cols := interior.Rows(), interior.Cols()
			return pgm.WriteRect(f, headerSize, w.globalCols, wk.startRow, wk.startCol, rows, cols, interior.State().ToCellBytes(), 1)
		})
	}
	return g.Wait()
}

// Report prints a table of every worker's rank, mesh coordinate, owned
// rectangle, and neighbor ranks, for operators inspecting a run.
func (w *World) Report(out io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Rank", "Coord", "Rows", "Cols", "N", "S", "E", "W"})
	for _, wk := range w.workers {
		t.AppendRow(table.Row{
			wk.rank,
			fmt.Sprintf("(%d,%d)", wk.row, wk.col),
			fmt.Sprintf("[%d,%d)", wk.startRow, wk.endRow),
			fmt.Sprintf("[%d,%d)", wk.startCol, wk.endCol),
			wk.neighbors[0], wk.neighbors[1], wk.neighbors[2], wk.neighbors[3],
		})
	}
	t.Render()
}

// Workers returns the World's workers, indexed by rank.
func (w *World) Workers() []*Worker { return w.workers }

// RunID returns the run's correlation ID.
func (w *World) RunID() xid.ID { return w.runID }
