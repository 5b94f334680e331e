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
	"errors"
	"fmt"

	"github.com/spatialmodel/decomp/mesh"
)

// DefaultMinimumSize is the preferred smallest number of cells in a box.
const DefaultMinimumSize = 1024

// ErrDesignationLength is returned when the number of designations does
// not match the number of cells.
var ErrDesignationLength = errors.New("chunk: designation length does not match cell count")

// Partition is the result of a PartitionStrategy.
type Partition struct {
	// Boxes are the accepted, non-overlapping boxes of Retain cells.
	Boxes []Box

	// Leftover holds the flat indices, in ascending order, of the
	// cells that must go to the unstructured remainder: every
	// ToBeProcessed cell and every Retain cell not in a box.
	Leftover []int
}

// A PartitionStrategy packs the Retain cells of a structured index space
// into axis-aligned boxes.
type PartitionStrategy interface {
	// ComputePartition returns the boxes and leftover cells for the cell
	// dimensions dims (1-3 positive extents) and one designation per
	// cell, with i varying fastest.
	ComputePartition(dims []int, designation []ZoneDesignation) (*Partition, error)
}

// checkInput validates the arguments of ComputePartition.
func checkInput(dims []int, designation []ZoneDesignation) (mesh.Dims3, error) {
	d, err := mesh.NewDims3(dims)
	if err != nil {
		return d, err
	}
	if len(designation) != d.Volume() {
		return d, fmt.Errorf("%w: %d designations for %d cells",
			ErrDesignationLength, len(designation), d.Volume())
	}
	for i, z := range designation {
		if z > ToBeProcessed {
			return d, fmt.Errorf("chunk: cell %d has invalid designation %v", i, z)
		}
	}
	return d, nil
}

// CheckPartition verifies that p accounts for every cell of the
// designation exactly once: each Retain cell is in one box or in the
// leftover set, each ToBeProcessed cell is in the leftover set, no
// Discard cell appears anywhere, boxes lie inside the grid and do not
// overlap.
func CheckPartition(dims []int, designation []ZoneDesignation, p *Partition) error {
	d, err := checkInput(dims, designation)
	if err != nil {
		return fmt.Errorf("chunk.CheckPartition: %w", err)
	}
	seen := make([]int, len(designation))
	for bi, b := range p.Boxes {
		last := mesh.Index3{b.Max[0], b.Max[1], b.Max[2]}
		if !b.Min.Within(d) || !last.Within(d) || b.Cells() < 1 {
			return fmt.Errorf("chunk.CheckPartition: box %d %v outside grid %v", bi, b, d)
		}
		var bad error
		b.Each(d, func(f int) {
			seen[f]++
			if designation[f] != Retain && bad == nil {
				bad = fmt.Errorf("chunk.CheckPartition: box %d %v holds %v cell %d",
					bi, b, designation[f], f)
			}
		})
		if bad != nil {
			return bad
		}
	}
	for _, f := range p.Leftover {
		if f < 0 || f >= len(designation) {
			return fmt.Errorf("chunk.CheckPartition: leftover cell %d out of range", f)
		}
		if designation[f] == Discard {
			return fmt.Errorf("chunk.CheckPartition: leftover holds discarded cell %d", f)
		}
		seen[f]++
	}
	for f, n := range seen {
		switch {
		case designation[f] == Discard && n != 0:
			return fmt.Errorf("chunk.CheckPartition: discarded cell %d appears %d times", f, n)
		case designation[f] != Discard && n != 1:
			return fmt.Errorf("chunk.CheckPartition: %v cell %d appears %d times", designation[f], f, n)
		}
	}
	return nil
}
