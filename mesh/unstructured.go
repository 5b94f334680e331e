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

package mesh

import (
	"fmt"
)

var _ Topology = &Unstructured{}

// Unstructured is a grid with explicit point coordinates and cell
// connectivity.
type Unstructured struct {
	points []Point3
	cells  [][]int
	types  []CellType

	// links maps each point to the cells that use it.
	// It is built on first use and dropped whenever cells change.
	links [][]int

	cellData, pointData *Attributes
}

// NewUnstructured returns a grid with the given points and no cells.
func NewUnstructured(points []Point3) *Unstructured {
	return &Unstructured{
		points:    append([]Point3(nil), points...),
		cellData:  NewAttributes(0),
		pointData: NewAttributes(len(points)),
	}
}

// AddCell appends a cell and returns its id. Attribute arrays must be
// attached after all cells have been added.
func (u *Unstructured) AddCell(t CellType, pts []int) (int, error) {
	if len(pts) != t.NumberOfPoints() {
		return -1, fmt.Errorf("mesh.Unstructured.AddCell: %s needs %d points, got %d",
			t, t.NumberOfPoints(), len(pts))
	}
	for _, p := range pts {
		if p < 0 || p >= len(u.points) {
			return -1, fmt.Errorf("mesh.Unstructured.AddCell: point %d out of range [0, %d)",
				p, len(u.points))
		}
	}
	u.cells = append(u.cells, append([]int(nil), pts...))
	u.types = append(u.types, t)
	u.links = nil
	u.cellData = NewAttributes(len(u.cells))
	return len(u.cells) - 1, nil
}

// SetCellData replaces the cell arrays.
func (u *Unstructured) SetCellData(a *Attributes) error {
	if a.Len() != len(u.cells) {
		return fmt.Errorf("mesh.Unstructured.SetCellData: %d values for %d cells", a.Len(), len(u.cells))
	}
	u.cellData = a
	return nil
}

// SetPointData replaces the point arrays.
func (u *Unstructured) SetPointData(a *Attributes) error {
	if a.Len() != len(u.points) {
		return fmt.Errorf("mesh.Unstructured.SetPointData: %d values for %d points", a.Len(), len(u.points))
	}
	u.pointData = a
	return nil
}

// Dims returns the largest topological dimension of the cells.
func (u *Unstructured) Dims() int {
	var d int
	for _, t := range u.types {
		if int(t) > d {
			d = int(t)
		}
	}
	return d
}

// NumberOfCells returns the number of cells.
func (u *Unstructured) NumberOfCells() int { return len(u.cells) }

// NumberOfPoints returns the number of points.
func (u *Unstructured) NumberOfPoints() int { return len(u.points) }

// CellData returns the cell arrays.
func (u *Unstructured) CellData() *Attributes { return u.cellData }

// PointData returns the point arrays.
func (u *Unstructured) PointData() *Attributes { return u.pointData }

// Point returns the coordinates of point i.
func (u *Unstructured) Point(i int) Point3 { return u.points[i] }

// CellType returns the shape of cell c.
func (u *Unstructured) CellType(c int) CellType { return u.types[c] }

// CellPoints returns the point ids of cell c. The returned slice
// must not be modified.
func (u *Unstructured) CellPoints(c int) []int { return u.cells[c] }

// PointCells returns the ids of the cells that use point p, in
// ascending order.
func (u *Unstructured) PointCells(p int) []int {
	if u.links == nil {
		u.buildLinks()
	}
	return u.links[p]
}

func (u *Unstructured) buildLinks() {
	u.links = make([][]int, len(u.points))
	for c, pts := range u.cells {
		for i, p := range pts {
			if dupPoint(pts[:i], p) {
				continue
			}
			u.links[p] = append(u.links[p], c)
		}
	}
}

// dupPoint reports whether p is already in pts. Degenerate cells
// can repeat a point after coincident nodes are merged.
func dupPoint(pts []int, p int) bool {
	for _, v := range pts {
		if v == p {
			return true
		}
	}
	return false
}

// RemapPoints replaces the point set with points and rewrites every cell
// through the old-to-new id map. Point arrays are gathered from the
// first old point mapped to each new point.
func (u *Unstructured) RemapPoints(points []Point3, oldToNew []int) error {
	if len(oldToNew) != len(u.points) {
		return fmt.Errorf("mesh.Unstructured.RemapPoints: map has %d entries for %d points",
			len(oldToNew), len(u.points))
	}
	first := make([]int, len(points))
	for i := range first {
		first[i] = -1
	}
	for old, n := range oldToNew {
		if n < 0 || n >= len(points) {
			return fmt.Errorf("mesh.Unstructured.RemapPoints: point %d maps to %d, out of range", old, n)
		}
		if first[n] < 0 {
			first[n] = old
		}
	}
	for n, old := range first {
		if old < 0 {
			return fmt.Errorf("mesh.Unstructured.RemapPoints: new point %d has no source", n)
		}
	}
	for _, pts := range u.cells {
		for i, p := range pts {
			pts[i] = oldToNew[p]
		}
	}
	u.pointData = u.pointData.Gather(first)
	u.points = append([]Point3(nil), points...)
	u.links = nil
	return nil
}
