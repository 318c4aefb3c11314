package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeJobFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing job file: %v", err)
	}
	return path
}

func TestLoadJobDescriptorValid(t *testing.T) {
	path := writeJobFile(t, `
grid:
  cell_size: [1.0, 1.0]
  n_cells: [4, 3]
  origin: [0.0, 0.0]
geometry:
  path: polyline.csv
clip_side: normal
output: out.vtk
`)

	job, err := LoadJobDescriptor(path)
	if err != nil {
		t.Fatalf("LoadJobDescriptor: %v", err)
	}
	if job.Grid.NCells != [2]int{4, 3} {
		t.Errorf("NCells = %v, want [4 3]", job.Grid.NCells)
	}
	if job.Geometry.Path != "polyline.csv" {
		t.Errorf("Geometry.Path = %q, want polyline.csv", job.Geometry.Path)
	}
	if job.ClipSide != "normal" {
		t.Errorf("ClipSide = %q, want normal", job.ClipSide)
	}
}

func TestLoadJobDescriptorMissingGeometryPath(t *testing.T) {
	path := writeJobFile(t, `
grid:
  cell_size: [1.0, 1.0]
  n_cells: [4, 3]
  origin: [0.0, 0.0]
geometry:
  path: ""
`)

	if _, err := LoadJobDescriptor(path); err == nil {
		t.Error("expected an error for missing geometry.path")
	}
}

func TestLoadJobDescriptorInvalidClipSide(t *testing.T) {
	path := writeJobFile(t, `
grid:
  cell_size: [1.0, 1.0]
  n_cells: [1, 1]
  origin: [0.0, 0.0]
geometry:
  path: polyline.csv
clip_side: sideways
`)

	if _, err := LoadJobDescriptor(path); err == nil {
		t.Error("expected an error for invalid clip_side")
	}
}

func TestLoadJobDescriptorNonPositiveGrid(t *testing.T) {
	path := writeJobFile(t, `
grid:
  cell_size: [1.0, 1.0]
  n_cells: [0, 3]
  origin: [0.0, 0.0]
geometry:
  path: polyline.csv
`)

	if _, err := LoadJobDescriptor(path); err == nil {
		t.Error("expected an error for non-positive n_cells")
	}
}

func TestLoadJobDescriptorMissingFile(t *testing.T) {
	if _, err := LoadJobDescriptor(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
