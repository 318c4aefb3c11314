package main

import (
	"fmt"
	"os"

	"github.com/orneryd/cmap2/pkg/builder"
	"github.com/orneryd/cmap2/pkg/cmap"
	"github.com/orneryd/cmap2/pkg/vtkio"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a 2-map from a regular grid or a VTK mesh and write it back out as VTK",
		RunE:  runBuild,
	}
	cmd.Flags().String("vtk-in", "", "Path to a VTK legacy mesh to build from (mutually exclusive with --nx/--ny)")
	cmd.Flags().Int("nx", 0, "Grid cell count along x (grid mode)")
	cmd.Flags().Int("ny", 0, "Grid cell count along y (grid mode)")
	cmd.Flags().Float64("cell-size-x", 1.0, "Grid cell edge length along x (grid mode)")
	cmd.Flags().Float64("cell-size-y", 1.0, "Grid cell edge length along y (grid mode)")
	cmd.Flags().Float64("origin-x", 0.0, "Grid origin x (grid mode)")
	cmd.Flags().Float64("origin-y", 0.0, "Grid origin y (grid mode)")
	cmd.Flags().String("out", "", "Output VTK path (required)")
	cmd.MarkFlagRequired("out")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	vtkIn, _ := cmd.Flags().GetString("vtk-in")
	out, _ := cmd.Flags().GetString("out")

	var m *cmap.CMap

	if vtkIn != "" {
		built, err := buildFromVTK(vtkIn)
		if err != nil {
			return err
		}
		m = built
	} else {
		nx, _ := cmd.Flags().GetInt("nx")
		ny, _ := cmd.Flags().GetInt("ny")
		if nx <= 0 || ny <= 0 {
			return fmt.Errorf("build: either --vtk-in or both --nx/--ny (positive) must be given")
		}
		csx, _ := cmd.Flags().GetFloat64("cell-size-x")
		csy, _ := cmd.Flags().GetFloat64("cell-size-y")
		ox, _ := cmd.Flags().GetFloat64("origin-x")
		oy, _ := cmd.Flags().GetFloat64("origin-y")

		m = cmap.New()
		if _, err := builder.BuildGrid(m, builder.GridDescriptor{}.
			WithOrigin(cmap.Point{X: ox, Y: oy}).
			WithNCells(nx, ny).
			WithLenPerCell(csx, csy)); err != nil {
			return fmt.Errorf("build: %w", err)
		}
	}

	points, edges, faces := exportMesh(m)

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("build: creating %s: %w", out, err)
	}
	defer f.Close()

	if err := vtkio.WriteLegacy(f, points, edges, faces); err != nil {
		return fmt.Errorf("build: writing %s: %w", out, err)
	}

	fmt.Printf("built %d points, %d edges, %d faces -> %s\n", len(points), len(edges), len(faces), out)
	return nil
}

func buildFromVTK(path string) (*cmap.CMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("build: opening %s: %w", path, err)
	}
	defer f.Close()

	mesh, err := vtkio.ReadLegacy(f)
	if err != nil {
		return nil, fmt.Errorf("build: reading %s: %w", path, err)
	}

	m := cmap.New()
	if _, err := builder.BuildFromCells(m, mesh.Points, mesh.Cells); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	return m, nil
}
