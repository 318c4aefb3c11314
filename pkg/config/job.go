package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// JobDescriptor describes a batch grisubal run: the grid to build and the
// polyline geometry to overlay onto it, read from a YAML file so a caller
// can drive cmd/cmap2's `grisubal` subcommand from a config file instead of
// assembling flags by hand (SPEC_FULL.md §9/§12).
type JobDescriptor struct {
	Grid     GridSpec     `yaml:"grid"`
	Geometry GeometrySpec `yaml:"geometry"`
	// ClipSide optionally removes one side of the overlay after insertion:
	// "normal", "anti_normal", or "" (keep both sides).
	ClipSide string `yaml:"clip_side,omitempty"`
	// Output is the path to write the resulting mesh as legacy VTK.
	Output string `yaml:"output,omitempty"`
}

// GridSpec describes the regular grid a job builds before overlaying
// geometry onto it, mirroring pkg/builder.GridDescriptor's fields.
type GridSpec struct {
	CellSize [2]float64 `yaml:"cell_size"`
	NCells   [2]int     `yaml:"n_cells"`
	Origin   [2]float64 `yaml:"origin"`
}

// GeometrySpec names a polyline geometry source file. The grisubal
// subcommand reads it as a legacy VTK file with vtkio.ReadLegacyPolyline
// whatever its extension; there is no CSV reader.
type GeometrySpec struct {
	Path string `yaml:"path"`
}

// LoadJobDescriptor reads and validates a YAML job descriptor from path.
func LoadJobDescriptor(path string) (*JobDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job descriptor: %w", err)
	}
	var job JobDescriptor
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("parsing job descriptor %s: %w", path, err)
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job descriptor %s: %w", path, err)
	}
	return &job, nil
}

// Validate checks a JobDescriptor for missing or inconsistent fields.
func (j *JobDescriptor) Validate() error {
	if j.Grid.NCells[0] <= 0 || j.Grid.NCells[1] <= 0 {
		return fmt.Errorf("grid.n_cells must be positive, got %v", j.Grid.NCells)
	}
	if j.Grid.CellSize[0] <= 0 || j.Grid.CellSize[1] <= 0 {
		return fmt.Errorf("grid.cell_size must be positive, got %v", j.Grid.CellSize)
	}
	if j.Geometry.Path == "" {
		return fmt.Errorf("geometry.path is required")
	}
	switch j.ClipSide {
	case "", "normal", "anti_normal":
	default:
		return fmt.Errorf("clip_side must be \"normal\", \"anti_normal\", or empty, got %q", j.ClipSide)
	}
	return nil
}
