/*
Copyright © 2019 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/decomp/chunk"
	"github.com/spatialmodel/decomp/mesh"
	"github.com/spatialmodel/decomp/plot"
	"github.com/spf13/cobra"
)

type chunkOptions struct {
	casePath string
	minSize  int
	ghosts   string
	dedupe   bool
	tol      float64
	plotPath string
}

func newChunkCommand(stdout io.Writer, log logrus.FieldLogger) *cobra.Command {
	o := new(chunkOptions)
	c := &cobra.Command{
		Use:   "chunk",
		Short: "Split a classified structured grid into sub-grids and a remainder.",
		Long: `chunk reads the [grid] table of a case file, classifies its cells with
the retain and process expressions, and splits the kept cells into
rectangular sub-grids and an unstructured remainder.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChunk(o, stdout, log)
		},
	}
	flags := c.Flags()
	flags.StringVar(&o.casePath, "case", "", "Case file (TOML).")
	flags.IntVar(&o.minSize, "min-size", chunk.DefaultMinimumSize, "Preferred smallest sub-grid, in cells.")
	flags.StringVar(&o.ghosts, "ghosts", "none", "Remainder ghost cells: none, processed or all.")
	flags.BoolVar(&o.dedupe, "dedupe", false, "Merge coincident remainder points.")
	flags.Float64Var(&o.tol, "tolerance", chunk.DefaultTolerance, "Distance under which remainder points are merged.")
	flags.StringVar(&o.plotPath, "plot", "", "If set, draw the partition to this image file.")
	return c
}

func runChunk(o *chunkOptions, w io.Writer, log logrus.FieldLogger) error {
	if o.casePath == "" {
		return fmt.Errorf("chunk: --case is required")
	}
	c, err := LoadCase(o.casePath)
	if err != nil {
		return err
	}
	grid, err := c.Grid.Build()
	if err != nil {
		return err
	}
	designation, err := c.Grid.Classify(grid)
	if err != nil {
		return err
	}
	policy, err := chunk.ParseGhostPolicy(o.ghosts)
	if err != nil {
		return err
	}
	ch := &chunk.Chunker{
		MinimumSize:          o.minSize,
		GhostPolicy:          policy,
		RemoveDuplicateNodes: o.dedupe,
		Tolerance:            o.tol,
		Log:                  log,
	}
	r, err := ch.Chunk(grid, designation)
	if err != nil {
		return err
	}
	cd := grid.CellDims()
	if err := chunk.CheckPartition(cd[:], designation, r.Partition); err != nil {
		return err
	}
	printChunks(w, r)
	if o.plotPath != "" {
		return plotChunks(o.plotPath, r)
	}
	return nil
}

func printChunks(w io.Writer, r *chunk.Result) {
	for i, d := range r.Descriptions {
		g := r.Grids[i]
		b := g.Bounds()
		fmt.Fprintf(w, "subgrid %d: box %v, origin %v, %d cells (%d ghost), ghost faces %v, x [%g, %g], y [%g, %g]\n",
			i, d.Box, d.Start, d.NumberOfCells(), g.CellData().Count(mesh.GhostCells), d.Ghost,
			b.Min.X, b.Max.X, b.Min.Y, b.Max.Y)
	}
	if r.Remainder == nil {
		fmt.Fprintln(w, "remainder: none")
		return
	}
	u := r.Remainder
	fmt.Fprintf(w, "remainder: %d cells (%d ghost), %d points (%d ghost)\n",
		u.NumberOfCells(), u.CellData().Count(mesh.GhostCells),
		u.NumberOfPoints(), u.PointData().Count(mesh.GhostPoints))
}

func plotChunks(path string, r *chunk.Result) error {
	outlines := make([]plot.XYs, len(r.Grids))
	for i, g := range r.Grids {
		outlines[i] = plot.Outline(g)
	}
	points := make(map[string]plot.XYs)
	if r.Remainder != nil {
		points["remainder"] = plot.CellCenters(r.Remainder, "")
		if g := plot.CellCenters(r.Remainder, mesh.GhostCells); len(g) > 0 {
			points["remainder ghosts"] = g
		}
	}
	return plot.Save(path, "partition", outlines, points)
}
