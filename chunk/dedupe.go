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

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/spatialmodel/decomp/mesh"
	"gonum.org/v1/gonum/floats"
)

// node is a remainder point stored in the coincidence index.
type node struct {
	geom.Point
	z  float64
	id int // id in the merged point set
}

// RemoveDuplicateNodes merges the points of u that lie within tol of
// each other on every axis, keeping the first of each group, and
// rewrites the cell connectivity. It returns the number of points
// removed.
func RemoveDuplicateNodes(u *mesh.Unstructured, tol float64) (int, error) {
	index := rtree.NewTree(25, 50)
	oldToNew := make([]int, u.NumberOfPoints())
	var kept []mesh.Point3
	for i := range oldToNew {
		p := u.Point(i)
		b := &geom.Bounds{
			Min: geom.Point{X: p.X - tol, Y: p.Y - tol},
			Max: geom.Point{X: p.X + tol, Y: p.Y + tol},
		}
		match := -1
		for _, g := range index.SearchIntersect(b) {
			n := g.(*node)
			if floats.EqualWithinAbs(n.X, p.X, tol) &&
				floats.EqualWithinAbs(n.Y, p.Y, tol) &&
				floats.EqualWithinAbs(n.z, p.Z, tol) {
				if match < 0 || n.id < match {
					match = n.id
				}
			}
		}
		if match >= 0 {
			oldToNew[i] = match
			continue
		}
		oldToNew[i] = len(kept)
		index.Insert(&node{Point: geom.Point{X: p.X, Y: p.Y}, z: p.Z, id: len(kept)})
		kept = append(kept, p)
	}
	removed := u.NumberOfPoints() - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := u.RemapPoints(kept, oldToNew); err != nil {
		return 0, fmt.Errorf("chunk.RemoveDuplicateNodes: %w", err)
	}
	return removed, nil
}
