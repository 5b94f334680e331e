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

import "fmt"

// Index3 is a logical (i, j, k) index into structured index space.
type Index3 [3]int

// Dims3 holds the extent of structured index space along each axis.
// Unused axes have extent 1.
type Dims3 [3]int

// NewDims3 expands 1-3 positive extents into a Dims3.
func NewDims3(dims []int) (Dims3, error) {
	d := Dims3{1, 1, 1}
	if len(dims) < 1 || len(dims) > 3 {
		return d, fmt.Errorf("%w: %d axes", ErrDimensions, len(dims))
	}
	for i, v := range dims {
		if v < 1 {
			return d, fmt.Errorf("%w: axis %d has extent %d", ErrDimensions, i, v)
		}
		d[i] = v
	}
	return d, nil
}

// Volume returns the number of entries in index space.
func (d Dims3) Volume() int { return d[0] * d[1] * d[2] }

// Within reports whether idx lies inside d.
func (idx Index3) Within(d Dims3) bool {
	for a := 0; a < 3; a++ {
		if idx[a] < 0 || idx[a] >= d[a] {
			return false
		}
	}
	return true
}

// Flat returns the flat offset of idx in d, with i varying fastest.
// It returns false if idx is out of bounds.
func (idx Index3) Flat(d Dims3) (int, bool) {
	if !idx.Within(d) {
		return -1, false
	}
	return idx[0] + d[0]*(idx[1]+d[1]*idx[2]), true
}

// Unflatten is the inverse of Index3.Flat.
func Unflatten(flat int, d Dims3) Index3 {
	i := flat % d[0]
	flat /= d[0]
	j := flat % d[1]
	return Index3{i, j, flat / d[1]}
}

// Add returns idx+o.
func (idx Index3) Add(o Index3) Index3 {
	return Index3{idx[0] + o[0], idx[1] + o[1], idx[2] + o[2]}
}
