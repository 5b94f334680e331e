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
	"github.com/spatialmodel/decomp/ghost"
	"github.com/spatialmodel/decomp/mesh"
	"github.com/spf13/cobra"
)

func newNestCommand(stdout io.Writer, log logrus.FieldLogger) *cobra.Command {
	var casePath string
	c := &cobra.Command{
		Use:   "nest",
		Short: "Mark the cells of coarse patches that are covered by finer patches.",
		Long: `nest reads the [nesting] table of a case file, builds a unit-spaced mesh
for each active patch and marks the cells overlapped by known children
as ghost. If known is empty every patch is known.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if casePath == "" {
				return fmt.Errorf("nest: --case is required")
			}
			c, err := LoadCase(casePath)
			if err != nil {
				return err
			}
			return runNest(&c.Nesting, stdout, log)
		},
	}
	c.Flags().StringVar(&casePath, "case", "", "Case file (TOML).")
	return c
}

func runNest(n *NestingCase, w io.Writer, log logrus.FieldLogger) error {
	nest, meshes, err := n.Build()
	if err != nil {
		return err
	}
	known := n.Known
	if len(known) == 0 {
		for id := range nest.Records {
			known = append(known, id)
		}
	}
	var skipped int
	na := &ghost.NestingApplier{
		Nesting: nest,
		Log:     log,
		OnSkip:  func(ghost.IndexOutOfRange) { skipped++ },
	}
	did, err := na.ApplyGhost(n.Active, known, meshes)
	if err != nil {
		return err
	}
	for i, id := range n.Active {
		m := meshes[i]
		fmt.Fprintf(w, "domain %d (level %d): %d of %d cells ghost\n",
			id, nest.Records[id].Level, m.CellData().Count(mesh.GhostCells), m.NumberOfCells())
	}
	if !did {
		fmt.Fprintln(w, "no ghost cells")
	}
	if skipped > 0 {
		fmt.Fprintf(w, "%d out-of-range writes skipped\n", skipped)
	}
	return nil
}
