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

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/decomp/mesh"
)

// DefaultTolerance is the distance under which two remainder points are
// considered coincident.
const DefaultTolerance = 1e-12

// Owner values of cells that are not in a box.
const (
	ownerDiscard  = -1
	ownerLeftover = -2
)

// Chunker splits a structured grid into rectangular sub-grids and an
// unstructured remainder.
type Chunker struct {
	// Strategy computes the boxes. If nil, a SweepStrategy with
	// MinimumSize is used.
	Strategy PartitionStrategy

	// MinimumSize is the preferred smallest sub-grid, in cells, for the
	// default strategy.
	MinimumSize int

	// GhostPolicy selects the ghost cells added to the remainder.
	GhostPolicy GhostPolicy

	// RemoveDuplicateNodes merges coincident points of the remainder.
	RemoveDuplicateNodes bool

	// Tolerance is the coincidence distance used when removing
	// duplicate nodes. Zero means DefaultTolerance.
	Tolerance float64

	// Log receives progress messages. If nil, the standard logrus
	// logger is used.
	Log logrus.FieldLogger
}

// Result holds the outputs of Chunk.
type Result struct {
	// Partition is the output of the partition strategy.
	Partition *Partition

	// Descriptions holds the grown description of each sub-grid.
	Descriptions []MeshDescription

	// Grids holds one structured sub-grid per box, in box order, with
	// GhostCells and GhostPoints flag arrays.
	Grids []*mesh.Structured

	// Remainder holds the leftover cells. It is nil when there are none.
	Remainder *mesh.Unstructured
}

func (c *Chunker) log() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

func (c *Chunker) strategy() PartitionStrategy {
	if c.Strategy == nil {
		return &SweepStrategy{MinimumSize: c.MinimumSize}
	}
	return c.Strategy
}

func (c *Chunker) tolerance() float64 {
	if c.Tolerance <= 0 {
		return DefaultTolerance
	}
	return c.Tolerance
}

// Chunk partitions src according to designation, which holds one entry
// per cell of src with i varying fastest.
func (c *Chunker) Chunk(src *mesh.Structured, designation []ZoneDesignation) (*Result, error) {
	cd := src.CellDims()
	p, err := c.strategy().ComputePartition(cd[:], designation)
	if err != nil {
		return nil, fmt.Errorf("chunk.Chunker.Chunk: %w", err)
	}
	r := &Result{Partition: p}
	if len(p.Boxes) == 0 && len(p.Leftover) == 0 {
		c.log().Debug("chunk: grid has no cells to keep")
		return r, nil
	}

	owner := make([]int, len(designation))
	for i := range owner {
		owner[i] = ownerDiscard
	}
	for _, f := range p.Leftover {
		owner[f] = ownerLeftover
	}
	for bi, b := range p.Boxes {
		b.Each(cd, func(f int) { owner[f] = bi })
	}

	pd := src.PointDims()
	r.Descriptions = make([]MeshDescription, len(p.Boxes))
	for bi, b := range p.Boxes {
		r.Descriptions[bi] = newDescription(b, pd)
	}
	// Growth decisions look only at the original boxes, so they do not
	// depend on the order the descriptions are visited in. A seam between
	// two boxes is always owned by the high face of the lower box; a low
	// face grows only towards the remainder and never if any box lies
	// across it, so adjacent sub-grids overlap by exactly one layer.
	for bi := range r.Descriptions {
		m := &r.Descriptions[bi]
		for a := 0; a < 3; a++ {
			if pd[a] <= 1 {
				continue
			}
			if lo := m.Box.Min[a] - 1; lo >= 0 &&
				faceTouches(m.Box, a, lo, cd, owner, isLeftover) &&
				!faceTouches(m.Box, a, lo, cd, owner, isBox) {
				m.grow(Face(2 * a))
			}
			if m.Box.Max[a]+1 < cd[a] && faceTouches(m.Box, a, m.Box.Max[a]+1, cd, owner, isKept) {
				m.grow(Face(2*a + 1))
			}
		}
	}

	r.Grids = make([]*mesh.Structured, len(r.Descriptions))
	for i := range r.Descriptions {
		g, err := materialize(src, &r.Descriptions[i])
		if err != nil {
			return nil, fmt.Errorf("chunk.Chunker.Chunk: sub-grid %d: %w", i, err)
		}
		r.Grids[i] = g
	}

	if len(p.Leftover) > 0 {
		r.Remainder, err = c.remainder(src, designation, p.Leftover, owner)
		if err != nil {
			return nil, fmt.Errorf("chunk.Chunker.Chunk: %w", err)
		}
		if c.RemoveDuplicateNodes {
			merged, err := RemoveDuplicateNodes(r.Remainder, c.tolerance())
			if err != nil {
				return nil, fmt.Errorf("chunk.Chunker.Chunk: %w", err)
			}
			c.log().WithField("merged", merged).Debug("chunk: removed duplicate nodes")
		}
	}

	var remainderCells int
	if r.Remainder != nil {
		remainderCells = r.Remainder.NumberOfCells()
	}
	c.log().WithFields(logrus.Fields{
		"cells":     len(designation),
		"subgrids":  len(r.Grids),
		"leftover":  len(p.Leftover),
		"remainder": remainderCells,
		"ghosts":    c.GhostPolicy,
	}).Debug("chunk: chunked structured grid")
	return r, nil
}

func isLeftover(owner int) bool { return owner == ownerLeftover }

func isKept(owner int) bool { return owner != ownerDiscard }

func isBox(owner int) bool { return owner >= 0 }

// faceTouches reports whether any cell in plane `at` along axis a,
// within the extent of b on the other axes, has an owner matching ok.
func faceTouches(b Box, a, at int, cd mesh.Dims3, owner []int, ok func(int) bool) bool {
	plane := b
	plane.Min[a], plane.Max[a] = at, at
	var found bool
	plane.Each(cd, func(f int) {
		if ok(owner[f]) {
			found = true
		}
	})
	return found
}

// materialize cuts the sub-grid described by m out of src and stamps
// its ghost arrays.
func materialize(src *mesh.Structured, m *MeshDescription) (*mesh.Structured, error) {
	g, err := src.Slice(m.Start, m.Size)
	if err != nil {
		return nil, err
	}
	if err := g.CellData().SetFlags(mesh.GhostCells, mergeFlags(g.CellData(), mesh.GhostCells, m.cellGhosts())); err != nil {
		return nil, err
	}
	if err := g.PointData().SetFlags(mesh.GhostPoints, mergeFlags(g.PointData(), mesh.GhostPoints, m.pointGhosts())); err != nil {
		return nil, err
	}
	return g, nil
}

// mergeFlags ORs any flags already stored under name into v.
func mergeFlags(a *mesh.Attributes, name string, v []byte) []byte {
	old, ok := a.Flags(name)
	if !ok || len(old) != len(v) {
		return v
	}
	for i := range v {
		v[i] |= old[i]
	}
	return v
}
