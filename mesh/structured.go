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
	"math"

	"github.com/ctessum/geom"
)

// Make sure our meshes fulfill the interface.
var _ Topology = &Structured{}

// Structured is a logically rectangular grid. Its points are either
// the tensor product of per-axis coordinates (rectilinear) or given
// explicitly (curvilinear).
type Structured struct {
	dims   Dims3
	origin Index3

	// axes holds the rectilinear coordinates. It is nil for
	// curvilinear grids.
	axes   *[3][]float64
	points []Point3

	cellData, pointData *Attributes
}

// NewRectilinear returns a rectilinear grid from 1-3 axis coordinate
// arrays. Each array must have at least one value.
func NewRectilinear(axes ...[]float64) (*Structured, error) {
	if len(axes) < 1 || len(axes) > 3 {
		return nil, fmt.Errorf("mesh.NewRectilinear: %w: %d axes", ErrDimensions, len(axes))
	}
	var a [3][]float64
	dims := make([]int, len(axes))
	for i, v := range axes {
		dims[i] = len(v)
		a[i] = append([]float64(nil), v...)
	}
	d, err := NewDims3(dims)
	if err != nil {
		return nil, fmt.Errorf("mesh.NewRectilinear: %w", err)
	}
	for i := len(axes); i < 3; i++ {
		a[i] = []float64{0}
	}
	s := &Structured{dims: d, axes: &a}
	s.init()
	return s, nil
}

// NewCurvilinear returns a curvilinear grid with the given point
// dimensions. The points are ordered with i varying fastest.
func NewCurvilinear(dims []int, points []Point3) (*Structured, error) {
	d, err := NewDims3(dims)
	if err != nil {
		return nil, fmt.Errorf("mesh.NewCurvilinear: %w", err)
	}
	if len(points) != d.Volume() {
		return nil, fmt.Errorf("mesh.NewCurvilinear: %w: %d points for dims %v",
			ErrDimensions, len(points), dims)
	}
	s := &Structured{dims: d, points: append([]Point3(nil), points...)}
	s.init()
	return s, nil
}

func (s *Structured) init() {
	s.cellData = NewAttributes(s.NumberOfCells())
	s.pointData = NewAttributes(s.NumberOfPoints())
}

// Rectilinear reports whether the grid stores per-axis coordinates.
func (s *Structured) Rectilinear() bool { return s.axes != nil }

// Axis returns the coordinates along axis a of a rectilinear grid.
func (s *Structured) Axis(a int) []float64 {
	if s.axes == nil {
		return nil
	}
	return s.axes[a]
}

// PointDims returns the number of points along each axis.
func (s *Structured) PointDims() Dims3 { return s.dims }

// CellDims returns the number of cells along each axis. Axes without
// extent count one cell.
func (s *Structured) CellDims() Dims3 {
	var c Dims3
	for a, d := range s.dims {
		c[a] = d - 1
		if c[a] < 1 {
			c[a] = 1
		}
	}
	return c
}

// Origin returns the logical index of this grid's first point in the
// index space it was cut from.
func (s *Structured) Origin() Index3 { return s.origin }

// SetOrigin sets the logical index of this grid's first point.
func (s *Structured) SetOrigin(o Index3) { s.origin = o }

// Dims returns the number of axes with more than one point.
func (s *Structured) Dims() int {
	var n int
	for _, d := range s.dims {
		if d > 1 {
			n++
		}
	}
	return n
}

// NumberOfCells returns the number of cells in the grid.
func (s *Structured) NumberOfCells() int { return s.CellDims().Volume() }

// NumberOfPoints returns the number of points in the grid.
func (s *Structured) NumberOfPoints() int { return s.dims.Volume() }

// CellData returns the cell arrays.
func (s *Structured) CellData() *Attributes { return s.cellData }

// PointData returns the point arrays.
func (s *Structured) PointData() *Attributes { return s.pointData }

// Point returns the coordinates of point i.
func (s *Structured) Point(i int) Point3 {
	if s.axes == nil {
		return s.points[i]
	}
	idx := Unflatten(i, s.dims)
	return Point3{X: s.axes[0][idx[0]], Y: s.axes[1][idx[1]], Z: s.axes[2][idx[2]]}
}

// usedAxes returns the axes along which the grid has cells.
func (s *Structured) usedAxes() []int {
	var u []int
	for a, d := range s.dims {
		if d > 1 {
			u = append(u, a)
		}
	}
	return u
}

// CellType returns the shape shared by every cell of the grid.
func (s *Structured) CellType(int) CellType {
	return CellType(s.Dims())
}

// corners holds the unit offsets of cell corners in the order
// expected for each cell type, indexed by topological dimension.
var corners = [4][][3]int{
	{{0, 0, 0}},
	{{0, 0, 0}, {1, 0, 0}},
	{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
	{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
}

// CellPoints returns the point ids of cell c.
func (s *Structured) CellPoints(c int) []int {
	cell := Unflatten(c, s.CellDims())
	u := s.usedAxes()
	o := make([]int, 0, 1<<uint(len(u)))
	for _, off := range corners[len(u)] {
		p := cell
		for n, a := range u {
			p[a] += off[n]
		}
		f, _ := p.Flat(s.dims)
		o = append(o, f)
	}
	return o
}

// PointCells returns the ids of the cells that use point p, in
// ascending order.
func (s *Structured) PointCells(p int) []int {
	pt := Unflatten(p, s.dims)
	cd := s.CellDims()
	var lo, hi Index3
	for a := 0; a < 3; a++ {
		if s.dims[a] > 1 {
			lo[a], hi[a] = pt[a]-1, pt[a]
		}
	}
	var o []int
	for k := lo[2]; k <= hi[2]; k++ {
		for j := lo[1]; j <= hi[1]; j++ {
			for i := lo[0]; i <= hi[0]; i++ {
				if f, ok := (Index3{i, j, k}).Flat(cd); ok {
					o = append(o, f)
				}
			}
		}
	}
	return o
}

// CellCenter returns the average of the points of cell c.
func (s *Structured) CellCenter(c int) Point3 {
	var o Point3
	pts := s.CellPoints(c)
	for _, p := range pts {
		pp := s.Point(p)
		o.X += pp.X
		o.Y += pp.Y
		o.Z += pp.Z
	}
	n := float64(len(pts))
	return Point3{X: o.X / n, Y: o.Y / n, Z: o.Z / n}
}

// Bounds returns the extent of the grid in the X-Y plane.
func (s *Structured) Bounds() *geom.Bounds {
	b := &geom.Bounds{
		Min: geom.Point{X: math.Inf(1), Y: math.Inf(1)},
		Max: geom.Point{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	for i := 0; i < s.NumberOfPoints(); i++ {
		p := s.Point(i)
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
	}
	return b
}

// Slice returns the sub-grid made of the points in the range
// [start, start+size) on each axis, with the point and cell arrays
// copied over. The sub-grid origin is expressed in the same index space
// as the receiver's.
func (s *Structured) Slice(start Index3, size Dims3) (*Structured, error) {
	end := start.Add(Index3{size[0] - 1, size[1] - 1, size[2] - 1})
	if !start.Within(s.dims) || !end.Within(s.dims) {
		return nil, fmt.Errorf("mesh.Structured.Slice: %w: range %v+%v outside %v",
			ErrDimensions, start, size, s.dims)
	}
	o := &Structured{dims: size, origin: s.origin.Add(start)}
	pointIDs := make([]int, 0, size.Volume())
	for k := 0; k < size[2]; k++ {
		for j := 0; j < size[1]; j++ {
			for i := 0; i < size[0]; i++ {
				f, _ := start.Add(Index3{i, j, k}).Flat(s.dims)
				pointIDs = append(pointIDs, f)
			}
		}
	}
	if s.axes != nil {
		var a [3][]float64
		for ax := 0; ax < 3; ax++ {
			a[ax] = append([]float64(nil), s.axes[ax][start[ax]:start[ax]+size[ax]]...)
		}
		o.axes = &a
	} else {
		o.points = make([]Point3, len(pointIDs))
		for n, id := range pointIDs {
			o.points[n] = s.points[id]
		}
	}
	o.pointData = s.pointData.Gather(pointIDs)

	sd, od := s.CellDims(), o.CellDims()
	cellIDs := make([]int, 0, od.Volume())
	for k := 0; k < od[2]; k++ {
		for j := 0; j < od[1]; j++ {
			for i := 0; i < od[0]; i++ {
				f, ok := start.Add(Index3{i, j, k}).Flat(sd)
				if !ok {
					return nil, fmt.Errorf("mesh.Structured.Slice: %w: cell %v outside %v",
						ErrDimensions, start.Add(Index3{i, j, k}), sd)
				}
				cellIDs = append(cellIDs, f)
			}
		}
	}
	o.cellData = s.cellData.Gather(cellIDs)
	return o, nil
}
