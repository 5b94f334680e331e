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

// Make sure the sweep strategy fulfills the interface.
var _ PartitionStrategy = &SweepStrategy{}

// SweepStrategy sweeps the cells in flat order and grows a maximal box
// from every Retain cell that is not yet claimed, first along i, then
// j, then k. Boxes that together form a larger box are merged.
//
// Boxes with fewer than MinimumSize cells are sent to the leftover set,
// unless the whole grid yields a single box and no ToBeProcessed cells,
// in which case that box is kept whatever its size.
type SweepStrategy struct {
	// MinimumSize is the preferred smallest box, in cells.
	// Zero means DefaultMinimumSize.
	MinimumSize int
}

func (s *SweepStrategy) minimumSize() int {
	if s.MinimumSize <= 0 {
		return DefaultMinimumSize
	}
	return s.MinimumSize
}

// ComputePartition implements PartitionStrategy.
func (s *SweepStrategy) ComputePartition(dims []int, designation []ZoneDesignation) (*Partition, error) {
	d, err := checkInput(dims, designation)
	if err != nil {
		return nil, fmt.Errorf("chunk.SweepStrategy.ComputePartition: %w", err)
	}
	sw := &sweep{d: d, z: append([]ZoneDesignation(nil), designation...)}

	var candidates []Box
	var processed bool
	for f, z := range sw.z {
		switch z {
		case ToBeProcessed:
			processed = true
		case Retain:
			candidates = append(candidates, sw.grow(mesh.Unflatten(f, d)))
		}
	}
	candidates = mergeBoxes(candidates)

	p := new(Partition)
	if len(candidates) == 1 && !processed {
		// No other partition exists, so the size preference is waived.
		p.Boxes = candidates
	} else {
		for _, b := range candidates {
			if b.Cells() >= s.minimumSize() {
				p.Boxes = append(p.Boxes, b)
				continue
			}
			b.Each(d, func(f int) { p.Leftover = append(p.Leftover, f) })
		}
	}
	for f, z := range designation {
		if z == ToBeProcessed {
			p.Leftover = append(p.Leftover, f)
		}
	}
	sort.Ints(p.Leftover)
	return p, nil
}

// sweep holds the working copy of the designations. Claimed cells are
// set to putInGrid.
type sweep struct {
	d mesh.Dims3
	z []ZoneDesignation
}

// free reports whether every cell of b is an unclaimed Retain cell.
func (sw *sweep) free(b Box) bool {
	for k := b.Min[2]; k <= b.Max[2]; k++ {
		for j := b.Min[1]; j <= b.Max[1]; j++ {
			for i := b.Min[0]; i <= b.Max[0]; i++ {
				f, ok := (mesh.Index3{i, j, k}).Flat(sw.d)
				if !ok || sw.z[f] != Retain {
					return false
				}
			}
		}
	}
	return true
}

// grow returns the box grown from seed and claims its cells.
func (sw *sweep) grow(seed mesh.Index3) Box {
	b := Box{Min: seed, Max: seed}
	for a := 0; a < 3; a++ {
		for b.Max[a]+1 < sw.d[a] {
			layer := b
			layer.Min[a] = b.Max[a] + 1
			layer.Max[a] = b.Max[a] + 1
			if !sw.free(layer) {
				break
			}
			b.Max[a]++
		}
	}
	b.Each(sw.d, func(f int) { sw.z[f] = putInGrid })
	return b
}

// mergeBoxes repeatedly joins pairs of boxes that share a full face.
func mergeBoxes(boxes []Box) []Box {
	for {
		merged := false
		for i := 0; i < len(boxes) && !merged; i++ {
			for j := i + 1; j < len(boxes); j++ {
				if u, ok := join(boxes[i], boxes[j]); ok {
					boxes[i] = u
					boxes = append(boxes[:j], boxes[j+1:]...)
					merged = true
					break
				}
			}
		}
		if !merged {
			return boxes
		}
	}
}

// join returns the union of a and b if it is itself a box.
func join(a, b Box) (Box, bool) {
	for ax := 0; ax < 3; ax++ {
		same := true
		for o := 0; o < 3; o++ {
			if o != ax && (a.Min[o] != b.Min[o] || a.Max[o] != b.Max[o]) {
				same = false
				break
			}
		}
		if !same {
			continue
		}
		switch {
		case a.Max[ax]+1 == b.Min[ax]:
			a.Max[ax] = b.Max[ax]
			return a, true
		case b.Max[ax]+1 == a.Min[ax]:
			a.Min[ax] = b.Min[ax]
			return a, true
		}
	}
	return Box{}, false
}
