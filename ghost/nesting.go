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

package ghost

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/decomp/mesh"
)

// NestingRecord describes one patch of a nested (AMR) hierarchy.
type NestingRecord struct {
	// Level is the refinement level; 0 is the coarsest.
	Level int
	// Extents are the inclusive cell index ranges of the patch in the
	// index space of its level: lo i, j, k then hi i, j, k.
	Extents [6]int
	// Parent is the id of the enclosing coarser patch, or -1.
	Parent int
	// Children are the ids of finer patches overlapping this one.
	Children []int
}

func (r *NestingRecord) lo(a int) int { return r.Extents[a] }
func (r *NestingRecord) hi(a int) int { return r.Extents[a+3] }

// Nesting is the patch hierarchy of a nested structured dataset,
// indexed by domain id.
type Nesting struct {
	// Dims is the number of logical axes of the patches (1-3).
	Dims int
	// Ratios holds, for each level l, the refinement ratio along each
	// axis between level l and level l+1.
	Ratios [][3]int
	// Records holds one record per domain id.
	Records []NestingRecord
}

// Validate checks that every id and level referenced by the hierarchy
// exists.
func (n *Nesting) Validate() error {
	if n.Dims < 1 || n.Dims > 3 {
		return fmt.Errorf("ghost.Nesting: %w: %d axes", mesh.ErrDimensions, n.Dims)
	}
	for d, r := range n.Records {
		if r.Parent < -1 || r.Parent >= len(n.Records) {
			return fmt.Errorf("ghost.Nesting: domain %d parent: %w: %d", d, ErrDomainID, r.Parent)
		}
		for a := 0; a < 3; a++ {
			if r.hi(a) < r.lo(a) {
				return fmt.Errorf("ghost.Nesting: domain %d has empty extents %v", d, r.Extents)
			}
		}
		for _, c := range r.Children {
			if c < 0 || c >= len(n.Records) {
				return fmt.Errorf("ghost.Nesting: domain %d child: %w: %d", d, ErrDomainID, c)
			}
			if n.Records[c].Level <= r.Level {
				return fmt.Errorf("ghost.Nesting: child %d of domain %d is not finer (level %d <= %d)",
					c, d, n.Records[c].Level, r.Level)
			}
			if _, err := n.ratio(r.Level, n.Records[c].Level); err != nil {
				return err
			}
		}
	}
	return nil
}

// ratio returns the refinement ratio along each axis between two levels.
// Axes beyond Dims have ratio 1.
func (n *Nesting) ratio(from, to int) ([3]int, error) {
	r := [3]int{1, 1, 1}
	for l := from; l < to; l++ {
		if l < 0 || l >= len(n.Ratios) {
			return r, fmt.Errorf("ghost.Nesting: no refinement ratio for level %d", l)
		}
		for a := 0; a < n.Dims; a++ {
			if n.Ratios[l][a] < 1 {
				return r, fmt.Errorf("ghost.Nesting: level %d has ratio %d on axis %d", l, n.Ratios[l][a], a)
			}
			r[a] *= n.Ratios[l][a]
		}
	}
	return r, nil
}

// IndexOutOfRange describes a ghost write that was skipped because the
// computed cell index fell outside the patch's mesh. This happens when
// a mesh has fewer cells than its nesting extents describe.
type IndexOutOfRange struct {
	Domain, Child int
	Cell          mesh.Index3
	Index         int
	NumberOfCells int
}

func (e IndexOutOfRange) Error() string {
	return fmt.Sprintf("ghost: domain %d: cell %v covered by child %d has index %d outside [0, %d)",
		e.Domain, e.Cell, e.Child, e.Index, e.NumberOfCells)
}

// NestingApplier marks the cells of coarse patches that are covered by
// finer patches as ghost.
type NestingApplier struct {
	Nesting *Nesting

	// Log receives diagnostics. If nil, the standard logrus logger
	// is used.
	Log logrus.FieldLogger

	// OnSkip is called for every skipped out-of-range write, after it
	// is logged. It may be nil.
	OnSkip func(IndexOutOfRange)
}

func (na *NestingApplier) log() logrus.FieldLogger {
	if na.Log == nil {
		return logrus.StandardLogger()
	}
	return na.Log
}

// ApplyGhost stamps a GhostCells array on the mesh of every active
// domain, marking the cells overlapped by a child patch that is among
// the known domains. meshes[i] is the mesh of active[i]; nil meshes are
// skipped. Ghost flags already on a mesh are kept.
//
// Writes whose computed index falls outside a mesh are skipped and
// reported to the log and to OnSkip; they never abort the pass.
// ApplyGhost reports whether any cell was marked.
func (na *NestingApplier) ApplyGhost(active, known []int, meshes []*mesh.Structured) (bool, error) {
	if len(meshes) != len(active) {
		return false, fmt.Errorf("ghost.NestingApplier.ApplyGhost: %w: %d meshes for %d domains",
			ErrMeshCount, len(meshes), len(active))
	}
	n := na.Nesting
	if n == nil {
		return false, fmt.Errorf("ghost.NestingApplier.ApplyGhost: %w", ErrNoNesting)
	}
	isKnown := make(map[int]bool, len(known))
	for _, k := range known {
		isKnown[k] = true
	}
	var didGhost bool
	for i, d := range active {
		if d < 0 || d >= len(n.Records) {
			return didGhost, fmt.Errorf("ghost.NestingApplier.ApplyGhost: %w: %d", ErrDomainID, d)
		}
		m := meshes[i]
		if m == nil {
			continue
		}
		ghosts := make([]byte, m.NumberOfCells())
		marked, err := na.markDomain(d, isKnown, ghosts)
		if err != nil {
			return didGhost, fmt.Errorf("ghost.NestingApplier.ApplyGhost: %w", err)
		}
		if old, ok := m.CellData().Flags(mesh.GhostCells); ok && len(old) == len(ghosts) {
			for c := range ghosts {
				ghosts[c] |= old[c]
			}
		}
		if err := m.CellData().SetFlags(mesh.GhostCells, ghosts); err != nil {
			return didGhost, fmt.Errorf("ghost.NestingApplier.ApplyGhost: %w", err)
		}
		if marked > 0 {
			didGhost = true
		}
	}
	return didGhost, nil
}

// markDomain marks the cells of domain d covered by its known children
// and returns the number of writes made.
func (na *NestingApplier) markDomain(d int, isKnown map[int]bool, ghosts []byte) (int, error) {
	n := na.Nesting
	p := &n.Records[d]
	var size [3]int
	for a := 0; a < 3; a++ {
		size[a] = p.hi(a) - p.lo(a) + 1
	}
	var marked int
	for _, c := range p.Children {
		if c < 0 || c >= len(n.Records) {
			return marked, fmt.Errorf("domain %d child: %w: %d", d, ErrDomainID, c)
		}
		if !isKnown[c] {
			continue
		}
		child := &n.Records[c]
		ratio, err := n.ratio(p.Level, child.Level)
		if err != nil {
			return marked, err
		}
		// Child range in the parent's index space, clipped to the
		// parent, since a child may span several parents.
		var lo, hi [3]int
		empty := false
		for a := 0; a < 3; a++ {
			lo[a] = maxInt(floorDiv(child.lo(a), ratio[a]), p.lo(a))
			hi[a] = minInt(floorDiv(child.hi(a), ratio[a]), p.hi(a))
			if lo[a] > hi[a] {
				empty = true
			}
		}
		if empty {
			continue
		}
		for k := lo[2]; k <= hi[2]; k++ {
			for j := lo[1]; j <= hi[1]; j++ {
				for i := lo[0]; i <= hi[0]; i++ {
					cell := mesh.Index3{i - p.lo(0), j - p.lo(1), k - p.lo(2)}
					idx := cell[0] + size[0]*(cell[1]+size[1]*cell[2])
					if idx < 0 || idx >= len(ghosts) {
						na.skip(IndexOutOfRange{Domain: d, Child: c, Cell: cell, Index: idx, NumberOfCells: len(ghosts)})
						continue
					}
					ghosts[idx] = mesh.Ghost
					marked++
				}
			}
		}
	}
	return marked, nil
}

func (na *NestingApplier) skip(e IndexOutOfRange) {
	na.log().WithFields(logrus.Fields{
		"domain": e.Domain,
		"child":  e.Child,
		"index":  e.Index,
		"cells":  e.NumberOfCells,
	}).Warn("ghost: skipping out of range nesting ghost write")
	if na.OnSkip != nil {
		na.OnSkip(e)
	}
}

// floorDiv returns a/b rounded towards negative infinity, for b > 0.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
