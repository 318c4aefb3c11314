package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/orneryd/cmap2/pkg/builder"
	"github.com/orneryd/cmap2/pkg/cmap"
	"github.com/orneryd/cmap2/pkg/mapstore"
	"github.com/orneryd/cmap2/pkg/vtkio"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print summary statistics for a VTK mesh, and for a mapstore checkpoint directory",
		RunE:  runStats,
	}
	cmd.Flags().String("vtk-in", "", "Path to a VTK legacy mesh to summarize")
	cmd.Flags().String("checkpoint-dir", "", "Path to a mapstore checkpoint directory to summarize")
	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	vtkIn, _ := cmd.Flags().GetString("vtk-in")
	checkpointDir, _ := cmd.Flags().GetString("checkpoint-dir")

	if vtkIn == "" && checkpointDir == "" {
		return fmt.Errorf("stats: at least one of --vtk-in or --checkpoint-dir must be given")
	}

	if vtkIn != "" {
		if err := printMeshStats(cmd, vtkIn); err != nil {
			return err
		}
	}
	if checkpointDir != "" {
		if err := printCheckpointStats(cmd, checkpointDir); err != nil {
			return err
		}
	}
	return nil
}

func printMeshStats(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("stats: opening %s: %w", path, err)
	}
	defer f.Close()

	sum, err := vtkio.Checksum(f)
	if err != nil {
		return fmt.Errorf("stats: checksum %s: %w", path, err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return fmt.Errorf("stats: rewinding %s: %w", path, err)
	}

	mesh, err := vtkio.ReadLegacy(f)
	if err != nil {
		return fmt.Errorf("stats: reading %s: %w", path, err)
	}

	m := cmap.New()
	darts, err := builder.BuildFromCells(m, mesh.Points, mesh.Cells)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stats: stat %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "mesh: %s (%s, blake2b-256 %s)\n", path, humanize.Bytes(uint64(info.Size())), sum)
	fmt.Fprintf(out, "  vertices: %s\n", humanize.Comma(int64(len(mesh.Points))))
	fmt.Fprintf(out, "  cells:    %s\n", humanize.Comma(int64(len(mesh.Cells))))
	fmt.Fprintf(out, "  darts:    %s (capacity %s)\n", humanize.Comma(int64(len(darts))), humanize.Comma(int64(m.Darts().Capacity())))
	return nil
}

func printCheckpointStats(cmd *cobra.Command, dir string) error {
	store, err := mapstore.NewStore(dir)
	if err != nil {
		return fmt.Errorf("stats: opening checkpoint store at %s: %w", dir, err)
	}
	defer store.Close()

	tags, err := store.ListTags()
	if err != nil {
		return fmt.Errorf("stats: listing tags in %s: %w", dir, err)
	}
	lsm, vlog := store.Size()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "checkpoint store: %s\n", dir)
	fmt.Fprintf(out, "  tags:     %d\n", len(tags))
	for _, tag := range tags {
		snap, err := store.LoadSnapshot(tag)
		if err != nil {
			return fmt.Errorf("stats: loading snapshot %q: %w", tag, err)
		}
		fmt.Fprintf(out, "    - %s (%s darts, %s vertices)\n", tag, humanize.Comma(int64(len(snap.Used))), humanize.Comma(int64(len(snap.Vertices))))
	}
	fmt.Fprintf(out, "  lsm size: %s\n", humanize.Bytes(uint64(lsm)))
	fmt.Fprintf(out, "  vlog size: %s\n", humanize.Bytes(uint64(vlog)))
	return nil
}
