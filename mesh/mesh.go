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

/*Package mesh defines the in-memory mesh representations that domains
are exchanged in: logically rectangular (structured) grids and explicit
(unstructured) grids, along with the named cell and point arrays that
ghost flags are attached to.*/
package mesh

import (
	"errors"
)

// Names of the well-known attribute arrays.
const (
	// GhostCells is the name of the per-cell ghost flag array.
	GhostCells = "GhostCells"
	// GhostPoints is the name of the per-point ghost flag array.
	GhostPoints = "GhostPoints"
	// OriginalCellIDs holds the flat cell index in the source grid.
	OriginalCellIDs = "OriginalCellIDs"
	// OriginalPointIDs holds the flat point index in the source grid.
	OriginalPointIDs = "OriginalPointIDs"
)

// Ghost flag values.
const (
	Real  byte = 0
	Ghost byte = 1
)

// ErrDimensions is returned when grid dimensions are malformed.
var ErrDimensions = errors.New("mesh: invalid dimensions")

// Mesh describes a spatial mesh.
type Mesh interface {
	// Dims returns the number of spatial dimensions
	// spanned by the cells of this mesh.
	Dims() int

	// NumberOfCells is the total number of cells in this Mesh.
	NumberOfCells() int

	// NumberOfPoints is the total number of points in this Mesh.
	NumberOfPoints() int

	// CellData returns the arrays defined on cells.
	CellData() *Attributes

	// PointData returns the arrays defined on points.
	PointData() *Attributes
}

// Topology is a Mesh whose cell connectivity can be queried
// explicitly. Both Structured and Unstructured grids satisfy it.
type Topology interface {
	Mesh

	// Point returns the coordinates of point i.
	Point(i int) Point3

	// CellType returns the shape of cell c.
	CellType(c int) CellType

	// CellPoints returns the ids of the points of cell c.
	CellPoints(c int) []int

	// PointCells returns the ids of the cells that use point p.
	PointCells(p int) []int
}

// CellType specifies the shape of a cell. Only the shapes implied by
// structured index space are supported.
type CellType int

const (
	// Vertex is a 0-D cell.
	Vertex CellType = iota
	// Line is a 1-D cell with two points.
	Line
	// Quad is a 2-D cell with four points.
	Quad
	// Hexahedron is a 3-D cell with eight points.
	Hexahedron
)

// NumberOfPoints returns the number of points in a cell of type t.
func (t CellType) NumberOfPoints() int {
	switch t {
	case Vertex:
		return 1
	case Line:
		return 2
	case Quad:
		return 4
	case Hexahedron:
		return 8
	default:
		return 0
	}
}

func (t CellType) String() string {
	switch t {
	case Vertex:
		return "vertex"
	case Line:
		return "line"
	case Quad:
		return "quad"
	case Hexahedron:
		return "hexahedron"
	default:
		return "unknown"
	}
}

// Point represents a point in vector space.
type Point interface {
	// Len returns the number of dimensions of this point.
	Len() int

	// D returns the point value in the specified dimension.
	D(int) float64
}

// Point3 is a point in 3-D space.
type Point3 struct {
	X, Y, Z float64
}

// Len returns 3.
func (p Point3) Len() int { return 3 }

// D returns the coordinate on axis d.
func (p Point3) D(d int) float64 {
	switch d {
	case 0:
		return p.X
	case 1:
		return p.Y
	case 2:
		return p.Z
	}
	panic("mesh: Point3 axis out of range")
}

var _ Point = Point3{}
