// Package config loads and builds a RunConfig: the parameters that
// select a process mesh shape, a root rank, a tick count, a gather
// interval, and the input and output image paths.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunConfig is a fully-resolved set of run parameters, the union of
// whatever a caller set via Builder and whatever a YAML file supplied.
type RunConfig struct {
	ProcRows int `yaml:"proc_rows"`
	ProcCols int `yaml:"proc_cols"`
	Root     int `yaml:"root"`

	Ticks       int `yaml:"ticks"`
	GatherEvery int `yaml:"gather_every"`

	InputPath  string `yaml:"input_path"`
	OutputPath string `yaml:"output_path"`
}

// Builder builds a RunConfig with the fluent With*(...)-returns-itself
// convention this codebase uses throughout.
type Builder struct {
	cfg RunConfig
}

// NewBuilder returns a Builder seeded with the conventional defaults:
// a 2x2 mesh, root 0, and "input.pgm" as the default image path.
func NewBuilder() Builder {
	return Builder{cfg: RunConfig{
		ProcRows:    2,
		ProcCols:    2,
		Root:        0,
		Ticks:       1,
		GatherEvery: 0,
		InputPath:   "input.pgm",
		OutputPath:  "output.pgm",
	}}
}

// WithMesh sets the process mesh shape.
func (b Builder) WithMesh(procRows, procCols int) Builder {
	b.cfg.ProcRows, b.cfg.ProcCols = procRows, procCols
	return b
}

// WithRoot sets the root rank.
func (b Builder) WithRoot(root int) Builder {
	b.cfg.Root = root
	return b
}

// WithTicks sets the number of rounds to run.
func (b Builder) WithTicks(ticks int) Builder {
	b.cfg.Ticks = ticks
	return b
}

// WithGatherEvery sets how often (in rounds) to gather the global
// state; 0 disables periodic gathering.
func (b Builder) WithGatherEvery(gatherEvery int) Builder {
	b.cfg.GatherEvery = gatherEvery
	return b
}

// WithInputPath sets the source image path.
func (b Builder) WithInputPath(path string) Builder {
	b.cfg.InputPath = path
	return b
}

// WithOutputPath sets the destination image path.
func (b Builder) WithOutputPath(path string) Builder {
	b.cfg.OutputPath = path
	return b
}

// WithYAMLFile overlays the fields present in the YAML file at path
// onto the builder's current configuration; fields absent from the
// file are left untouched.
func (b Builder) WithYAMLFile(path string) (Builder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return b, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &b.cfg); err != nil {
		return b, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return b, nil
}

// Build validates and returns the RunConfig.
func (b Builder) Build() (RunConfig, error) {
	if b.cfg.ProcRows <= 0 || b.cfg.ProcCols <= 0 {
		return RunConfig{}, fmt.Errorf("config: invalid mesh shape (%d, %d)", b.cfg.ProcRows, b.cfg.ProcCols)
	}
	if b.cfg.Ticks < 0 {
		return RunConfig{}, fmt.Errorf("config: negative tick count %d", b.cfg.Ticks)
	}
	if b.cfg.InputPath == "" {
		return RunConfig{}, fmt.Errorf("config: input_path is required")
	}
	return b.cfg, nil
}
