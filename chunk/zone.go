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

/*Package chunk splits a structured grid into a set of smaller
rectangular sub-grids plus an unstructured remainder, according to a
per-cell designation produced by an upstream filter.*/
package chunk

import (
	"fmt"

	"github.com/spatialmodel/decomp/mesh"
)

// ZoneDesignation specifies what should happen to a cell.
type ZoneDesignation uint8

const (
	// Retain cells are kept and may be packed into a sub-grid.
	Retain ZoneDesignation = iota
	// Discard cells are removed.
	Discard
	// ToBeProcessed cells are kept but always routed to the
	// unstructured remainder.
	ToBeProcessed

	// putInGrid marks Retain cells already claimed by a box.
	// It never appears in caller input.
	putInGrid
)

func (z ZoneDesignation) String() string {
	switch z {
	case Retain:
		return "retain"
	case Discard:
		return "discard"
	case ToBeProcessed:
		return "process"
	case putInGrid:
		return "in-grid"
	default:
		return fmt.Sprintf("ZoneDesignation(%d)", z)
	}
}

// Box is an inclusive range of cell indices on each axis.
type Box struct {
	Min, Max mesh.Index3
}

// Size returns the number of cells along each axis.
func (b Box) Size() mesh.Dims3 {
	return mesh.Dims3{b.Max[0] - b.Min[0] + 1, b.Max[1] - b.Min[1] + 1, b.Max[2] - b.Min[2] + 1}
}

// Cells returns the number of cells in the box.
func (b Box) Cells() int { return b.Size().Volume() }

// Contains reports whether cell idx is inside the box.
func (b Box) Contains(idx mesh.Index3) bool {
	for a := 0; a < 3; a++ {
		if idx[a] < b.Min[a] || idx[a] > b.Max[a] {
			return false
		}
	}
	return true
}

// Overlaps reports whether the two boxes share any cell.
func (b Box) Overlaps(o Box) bool {
	for a := 0; a < 3; a++ {
		if b.Max[a] < o.Min[a] || o.Max[a] < b.Min[a] {
			return false
		}
	}
	return true
}

// Each calls f with the flat index of every cell in the box, in flat
// order.
func (b Box) Each(d mesh.Dims3, f func(flat int)) {
	for k := b.Min[2]; k <= b.Max[2]; k++ {
		for j := b.Min[1]; j <= b.Max[1]; j++ {
			for i := b.Min[0]; i <= b.Max[0]; i++ {
				n, _ := (mesh.Index3{i, j, k}).Flat(d)
				f(n)
			}
		}
	}
}

func (b Box) String() string {
	return fmt.Sprintf("[%d:%d, %d:%d, %d:%d]", b.Min[0], b.Max[0], b.Min[1], b.Max[1], b.Min[2], b.Max[2])
}

// GhostPolicy specifies which ghost cells the unstructured remainder
// is given.
type GhostPolicy int

const (
	// NoGhosts adds no ghost cells to the remainder.
	NoGhosts GhostPolicy = iota
	// GhostsForProcessedOnly surrounds ToBeProcessed cells with one
	// ring of ghost cells taken from the sub-grids.
	GhostsForProcessedOnly
	// GhostsForAll surrounds every remainder cell with one ring of
	// ghost cells taken from the sub-grids.
	GhostsForAll
)

// ParseGhostPolicy converts a name as used in configuration files to a
// GhostPolicy.
func ParseGhostPolicy(s string) (GhostPolicy, error) {
	switch s {
	case "none", "":
		return NoGhosts, nil
	case "processed":
		return GhostsForProcessedOnly, nil
	case "all":
		return GhostsForAll, nil
	}
	return NoGhosts, fmt.Errorf("chunk.ParseGhostPolicy: unknown ghost policy %q", s)
}

func (p GhostPolicy) String() string {
	switch p {
	case NoGhosts:
		return "none"
	case GhostsForProcessedOnly:
		return "processed"
	case GhostsForAll:
		return "all"
	}
	return fmt.Sprintf("GhostPolicy(%d)", int(p))
}
