// Command gridlife runs a distributed Game of Life simulation: it reads
// an input P5 image, partitions it across a goroutine-per-rank process
// mesh, runs a fixed number of rounds, and writes the final state back
// out. No intermediate frames are written.
//
// This entrypoint is the thin "external collaborator" that wires
// config and pkg/driver together; it carries no simulation logic of
// its own.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/gridlife/config"
	"github.com/sarchlab/gridlife/pkg/driver"
)

func main() {
	procRows := flag.Int("proc-rows", 2, "process mesh rows")
	procCols := flag.Int("proc-cols", 2, "process mesh cols")
	root := flag.Int("root", 0, "root rank for gather/write")
	ticks := flag.Int("ticks", 1, "number of rounds to run")
	gatherEvery := flag.Int("gather-every", 0, "gather interval in rounds passed to the run (0 disables); gridlife registers no snapshot callback, so it has no effect on the output")
	inputPath := flag.String("input", "input.pgm", "input P5 image path")
	outputPath := flag.String("output", "output.pgm", "output P5 image path")
	yamlPath := flag.String("config", "", "optional YAML config file overlaying the flags above")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := buildConfig(*procRows, *procCols, *root, *ticks, *gatherEvery, *inputPath, *outputPath, *yamlPath)
	if err != nil {
		logger.Error("configuration error", "err", err)
		atexit.Exit(1)
		return
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("run failed", "err", err)
		atexit.Exit(1)
		return
	}

	atexit.Exit(0)
}

func buildConfig(procRows, procCols, root, ticks, gatherEvery int, inputPath, outputPath, yamlPath string) (config.RunConfig, error) {
	b := config.NewBuilder().
		WithMesh(procRows, procCols).
		WithRoot(root).
		WithTicks(ticks).
		WithGatherEvery(gatherEvery).
		WithInputPath(inputPath).
		WithOutputPath(outputPath)

	if yamlPath != "" {
		var err error
		b, err = b.WithYAMLFile(yamlPath)
		if err != nil {
			return config.RunConfig{}, err
		}
	}

	return b.Build()
}

func run(cfg config.RunConfig, logger *slog.Logger) error {
	f, err := os.Open(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("gridlife: opening %s: %w", cfg.InputPath, err)
	}
	defer f.Close()

	world, err := driver.NewBuilder().
		WithMesh(cfg.ProcRows, cfg.ProcCols).
		WithRoot(cfg.Root).
		WithInputFile(f).
		WithLogger(logger).
		Build("gridlife")
	if err != nil {
		return fmt.Errorf("gridlife: building world: %w", err)
	}

	world.Report(os.Stdout)

	ctx := context.Background()
	if err := world.Run(ctx, cfg.Ticks, cfg.GatherEvery, nil); err != nil {
		return fmt.Errorf("gridlife: run: %w", err)
	}

	out, err := os.Create(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("gridlife: creating %s: %w", cfg.OutputPath, err)
	}
	defer out.Close()

	if err := world.WriteImage(ctx, out); err != nil {
		return fmt.Errorf("gridlife: writing %s: %w", cfg.OutputPath, err)
	}

	return nil
}
