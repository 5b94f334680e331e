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
	"sort"

	"github.com/ctessum/sparse"
)

// Attributes holds the named arrays attached to the cells or the points
// of a mesh. Scalars hold one float per entity; flags hold one byte per
// entity and carry ghost markers.
type Attributes struct {
	n       int
	scalars map[string]*sparse.DenseArray
	flags   map[string][]byte
}

// NewAttributes returns an empty attribute set for n entities.
func NewAttributes(n int) *Attributes {
	return &Attributes{
		n:       n,
		scalars: make(map[string]*sparse.DenseArray),
		flags:   make(map[string][]byte),
	}
}

// Len returns the number of entities each array must cover.
func (a *Attributes) Len() int { return a.n }

// SetScalar attaches a scalar array under name, replacing any
// existing array with that name.
func (a *Attributes) SetScalar(name string, v *sparse.DenseArray) error {
	if len(v.Elements) != a.n {
		return fmt.Errorf("mesh.Attributes.SetScalar: %s has %d values but %d are required",
			name, len(v.Elements), a.n)
	}
	a.scalars[name] = v
	return nil
}

// SetScalarValues is a convenience wrapper around SetScalar.
func (a *Attributes) SetScalarValues(name string, v []float64) error {
	d := sparse.ZerosDense(len(v))
	copy(d.Elements, v)
	return a.SetScalar(name, d)
}

// Scalar returns the scalar array with the given name.
func (a *Attributes) Scalar(name string) (*sparse.DenseArray, bool) {
	v, ok := a.scalars[name]
	return v, ok
}

// SetFlags attaches a flag array under name.
func (a *Attributes) SetFlags(name string, v []byte) error {
	if len(v) != a.n {
		return fmt.Errorf("mesh.Attributes.SetFlags: %s has %d values but %d are required",
			name, len(v), a.n)
	}
	a.flags[name] = v
	return nil
}

// Flags returns the flag array with the given name.
func (a *Attributes) Flags(name string) ([]byte, bool) {
	v, ok := a.flags[name]
	return v, ok
}

// ScalarNames returns the names of the scalar arrays in sorted order.
func (a *Attributes) ScalarNames() []string {
	o := make([]string, 0, len(a.scalars))
	for n := range a.scalars {
		o = append(o, n)
	}
	sort.Strings(o)
	return o
}

// FlagNames returns the names of the flag arrays in sorted order.
func (a *Attributes) FlagNames() []string {
	o := make([]string, 0, len(a.flags))
	for n := range a.flags {
		o = append(o, n)
	}
	sort.Strings(o)
	return o
}

// Gather returns a new attribute set holding, for every array in a,
// the values at the given entity ids, in order.
func (a *Attributes) Gather(ids []int) *Attributes {
	o := NewAttributes(len(ids))
	for name, v := range a.scalars {
		d := sparse.ZerosDense(len(ids))
		for i, id := range ids {
			d.Elements[i] = v.Elements[id]
		}
		o.scalars[name] = d
	}
	for name, v := range a.flags {
		d := make([]byte, len(ids))
		for i, id := range ids {
			d[i] = v[id]
		}
		o.flags[name] = d
	}
	return o
}

// Count returns the number of entities whose flag in the named array
// is non-zero, or zero if the array does not exist.
func (a *Attributes) Count(name string) int {
	var n int
	for _, v := range a.flags[name] {
		if v != 0 {
			n++
		}
	}
	return n
}
