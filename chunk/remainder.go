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

package chunk

import (
	"fmt"
	"sort"

	"github.com/spatialmodel/decomp/mesh"
)

// remainder builds the unstructured mesh of the leftover cells, plus the
// ghost ring selected by the ghost policy. Points keep the exact source
// coordinates and are ordered by source point id, which is recorded in
// the OriginalPointIDs array.
func (c *Chunker) remainder(src *mesh.Structured, designation []ZoneDesignation, leftover []int, owner []int) (*mesh.Unstructured, error) {
	ghosts := c.ghostRing(src.CellDims(), designation, leftover, owner)

	cells := make([]int, 0, len(leftover)+len(ghosts))
	cells = append(cells, leftover...)
	cells = append(cells, ghosts...)
	sort.Ints(cells)
	isGhost := make(map[int]bool, len(ghosts))
	for _, g := range ghosts {
		isGhost[g] = true
	}

	// usedByReal marks points used by at least one non-ghost cell.
	usedByReal := make(map[int]bool)
	pointSet := make(map[int]struct{})
	for _, cell := range cells {
		for _, p := range src.CellPoints(cell) {
			pointSet[p] = struct{}{}
			if !isGhost[cell] {
				usedByReal[p] = true
			}
		}
	}
	pointIDs := make([]int, 0, len(pointSet))
	for p := range pointSet {
		pointIDs = append(pointIDs, p)
	}
	sort.Ints(pointIDs)
	local := make(map[int]int, len(pointIDs))
	pts := make([]mesh.Point3, len(pointIDs))
	for i, p := range pointIDs {
		local[p] = i
		pts[i] = src.Point(p)
	}

	u := mesh.NewUnstructured(pts)
	for _, cell := range cells {
		sp := src.CellPoints(cell)
		lp := make([]int, len(sp))
		for i, p := range sp {
			lp[i] = local[p]
		}
		if _, err := u.AddCell(src.CellType(cell), lp); err != nil {
			return nil, fmt.Errorf("building remainder: %w", err)
		}
	}

	cd := src.CellData().Gather(cells)
	if err := cd.SetScalarValues(mesh.OriginalCellIDs, toFloats(cells)); err != nil {
		return nil, err
	}
	pd := src.PointData().Gather(pointIDs)
	if err := pd.SetScalarValues(mesh.OriginalPointIDs, toFloats(pointIDs)); err != nil {
		return nil, err
	}
	if c.GhostPolicy != NoGhosts {
		cg := make([]byte, len(cells))
		for i, cell := range cells {
			if isGhost[cell] {
				cg[i] = mesh.Ghost
			}
		}
		pg := make([]byte, len(pointIDs))
		for i, p := range pointIDs {
			if !usedByReal[p] {
				pg[i] = mesh.Ghost
			}
		}
		if err := cd.SetFlags(mesh.GhostCells, mergeFlags(cd, mesh.GhostCells, cg)); err != nil {
			return nil, err
		}
		if err := pd.SetFlags(mesh.GhostPoints, mergeFlags(pd, mesh.GhostPoints, pg)); err != nil {
			return nil, err
		}
	}
	if err := u.SetCellData(cd); err != nil {
		return nil, err
	}
	if err := u.SetPointData(pd); err != nil {
		return nil, err
	}
	return u, nil
}

// ghostRing returns, in ascending order, the box cells that neighbor
// (including across edges and corners) a leftover cell selected by the
// ghost policy.
func (c *Chunker) ghostRing(cd mesh.Dims3, designation []ZoneDesignation, leftover []int, owner []int) []int {
	if c.GhostPolicy == NoGhosts {
		return nil
	}
	ring := make(map[int]struct{})
	for _, f := range leftover {
		if c.GhostPolicy == GhostsForProcessedOnly && designation[f] != ToBeProcessed {
			continue
		}
		center := mesh.Unflatten(f, cd)
		for dk := -1; dk <= 1; dk++ {
			for dj := -1; dj <= 1; dj++ {
				for di := -1; di <= 1; di++ {
					n, ok := center.Add(mesh.Index3{di, dj, dk}).Flat(cd)
					if ok && owner[n] >= 0 {
						ring[n] = struct{}{}
					}
				}
			}
		}
	}
	o := make([]int, 0, len(ring))
	for n := range ring {
		o = append(o, n)
	}
	sort.Ints(o)
	return o
}

func toFloats(v []int) []float64 {
	o := make([]float64, len(v))
	for i, x := range v {
		o[i] = float64(x)
	}
	return o
}
