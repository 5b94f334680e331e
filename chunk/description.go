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
	"github.com/spatialmodel/decomp/mesh"
)

// Face identifies one side of a sub-grid: 2*axis for the low side and
// 2*axis+1 for the high side.
type Face int

// Faces of a sub-grid.
const (
	LowI Face = iota
	HighI
	LowJ
	HighJ
	LowK
	HighK
)

// MeshDescription describes the point range of a sub-grid within its
// source grid, and which of its faces carry an extra ghost layer.
type MeshDescription struct {
	// Start is the point index of the first point.
	Start mesh.Index3
	// Size is the number of points along each axis.
	Size mesh.Dims3
	// Ghost is true for faces grown by a ghost layer.
	Ghost [6]bool

	// Box is the box the description was made from.
	Box Box
}

// newDescription returns the description of the points of box b in a
// grid with point dimensions pd.
func newDescription(b Box, pd mesh.Dims3) MeshDescription {
	m := MeshDescription{Box: b, Size: mesh.Dims3{1, 1, 1}}
	for a := 0; a < 3; a++ {
		if pd[a] > 1 {
			m.Start[a] = b.Min[a]
			m.Size[a] = b.Max[a] - b.Min[a] + 2
		}
	}
	return m
}

// NumberOfPoints returns the number of points in the sub-grid.
func (m *MeshDescription) NumberOfPoints() int { return m.Size.Volume() }

// CellDims returns the number of cells along each axis.
func (m *MeshDescription) CellDims() mesh.Dims3 {
	var c mesh.Dims3
	for a, s := range m.Size {
		c[a] = s - 1
		if c[a] < 1 {
			c[a] = 1
		}
	}
	return c
}

// NumberOfCells returns the number of cells in the sub-grid.
func (m *MeshDescription) NumberOfCells() int { return m.CellDims().Volume() }

// grow adds one layer of points on face f and marks it as ghost.
func (m *MeshDescription) grow(f Face) {
	a := int(f) / 2
	if f%2 == 0 {
		m.Start[a]--
	}
	m.Size[a]++
	m.Ghost[f] = true
}

// cellGhosts returns the ghost flag of every cell of the sub-grid:
// a cell is ghost if it lies in a grown layer.
func (m *MeshDescription) cellGhosts() []byte {
	cd := m.CellDims()
	o := make([]byte, cd.Volume())
	for n := range o {
		if m.onGhostLayer(mesh.Unflatten(n, cd), cd) {
			o[n] = mesh.Ghost
		}
	}
	return o
}

// pointGhosts returns the ghost flag of every point of the sub-grid:
// a point is ghost if it lies on the outer plane of a grown face.
func (m *MeshDescription) pointGhosts() []byte {
	o := make([]byte, m.Size.Volume())
	for n := range o {
		if m.onGhostLayer(mesh.Unflatten(n, m.Size), m.Size) {
			o[n] = mesh.Ghost
		}
	}
	return o
}

// onGhostLayer reports whether local index idx in an index space of
// dimensions d is on the outermost layer of any ghost face.
func (m *MeshDescription) onGhostLayer(idx mesh.Index3, d mesh.Dims3) bool {
	for a := 0; a < 3; a++ {
		if m.Ghost[2*a] && idx[a] == 0 {
			return true
		}
		if m.Ghost[2*a+1] && idx[a] == d[a]-1 {
			return true
		}
	}
	return false
}
