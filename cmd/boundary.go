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

func newBoundaryCommand(stdout io.Writer, log logrus.FieldLogger) *cobra.Command {
	var (
		casePath string
		exchange bool
	)
	c := &cobra.Command{
		Use:   "boundary",
		Short: "Compute the cells each domain sends to its neighbors.",
		Long: `boundary reads the [[domain]] and [[shared]] tables of a case file and
computes, for every ordered pair of domains, the cells of the sender
that touch the points it shares with the receiver. The pass is run
twice to show that finished pairs are not recomputed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if casePath == "" {
				return fmt.Errorf("boundary: --case is required")
			}
			c, err := LoadCase(casePath)
			if err != nil {
				return err
			}
			return runBoundary(c, exchange, stdout, log)
		},
	}
	c.Flags().StringVar(&casePath, "case", "", "Case file (TOML).")
	c.Flags().BoolVar(&exchange, "exchange", false, "Also build each domain's ghost-extended mesh.")
	return c
}

func runBoundary(c *Case, exchange bool, w io.Writer, log logrus.FieldLogger) error {
	ids, meshes, shared, err := c.BuildDomains()
	if err != nil {
		return err
	}
	n := 0
	for _, id := range ids {
		if id+1 > n {
			n = id + 1
		}
	}
	s := ghost.NewSession(n)
	g := &ghost.BoundaryGenerator{Shared: shared, Log: log}
	if err := g.Generate(s, ids, meshes); err != nil {
		return err
	}
	first := make(map[ghost.Pair]*ghost.GivenSet)
	for r := 0; r < n; r++ {
		for _, p := range s.GivenTo(r) {
			gs, _ := s.Given(p.Sender, p.Receiver)
			first[p] = gs
			fmt.Fprintf(w, "%d -> %d: cells %v, points %v\n", p.Sender, p.Receiver, gs.Cells, gs.Points)
		}
	}

	if err := g.Generate(s, ids, meshes); err != nil {
		return err
	}
	var reused int
	for p, gs := range first {
		if again, _ := s.Given(p.Sender, p.Receiver); again == gs {
			reused++
		}
	}
	fmt.Fprintf(w, "second pass: %d of %d given sets reused\n", reused, len(first))

	if !exchange {
		return nil
	}
	for _, id := range ids {
		u, err := ghost.Exchange(s, shared, id, ids, meshes)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "domain %d: %d cells (%d ghost), %d points (%d ghost)\n", id,
			u.NumberOfCells(), u.CellData().Count(mesh.GhostCells),
			u.NumberOfPoints(), u.PointData().Count(mesh.GhostPoints))
	}
	return nil
}
