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

package ghost

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/decomp/mesh"
)

// patch returns a 2-D rectilinear mesh with nx*ny cells.
func patch(t *testing.T, nx, ny int) *mesh.Structured {
	x := make([]float64, nx+1)
	for i := range x {
		x[i] = float64(i)
	}
	y := make([]float64, ny+1)
	for i := range y {
		y[i] = float64(i)
	}
	s, err := mesh.NewRectilinear(x, y)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func ghostCells(t *testing.T, m *mesh.Structured) []int {
	g, ok := m.CellData().Flags(mesh.GhostCells)
	if !ok {
		t.Fatal("no ghost array")
	}
	var o []int
	for i, v := range g {
		if v != 0 {
			o = append(o, i)
		}
	}
	return o
}

func newApplier(n *Nesting) (*NestingApplier, *test.Hook) {
	log, hook := test.NewNullLogger()
	return &NestingApplier{Nesting: n, Log: log}, hook
}

func TestNestingSingleChild(t *testing.T) {
	n := &Nesting{
		Dims:   2,
		Ratios: [][3]int{{2, 2, 1}},
		Records: []NestingRecord{
			{Level: 0, Extents: [6]int{0, 0, 0, 3, 3, 0}, Parent: -1, Children: []int{1}},
			{Level: 1, Extents: [6]int{2, 2, 0, 5, 5, 0}, Parent: 0},
		},
	}
	if err := n.Validate(); err != nil {
		t.Fatal(err)
	}
	na, hook := newApplier(n)
	parent, child := patch(t, 4, 4), patch(t, 4, 4)
	did, err := na.ApplyGhost([]int{0, 1}, []int{0, 1}, []*mesh.Structured{parent, child})
	if err != nil {
		t.Fatal(err)
	}
	if !did {
		t.Error("no ghosts reported")
	}
	if got, want := ghostCells(t, parent), []int{5, 6, 9, 10}; !reflect.DeepEqual(got, want) {
		t.Errorf("parent ghosts %v != %v", got, want)
	}
	if got := ghostCells(t, child); got != nil {
		t.Errorf("child ghosts %v", got)
	}
	if len(hook.Entries) != 0 {
		t.Errorf("unexpected log entries: %v", hook.Entries)
	}
}

func TestNestingUnknownChild(t *testing.T) {
	n := &Nesting{
		Dims:   2,
		Ratios: [][3]int{{2, 2, 1}},
		Records: []NestingRecord{
			{Level: 0, Extents: [6]int{0, 0, 0, 3, 3, 0}, Parent: -1, Children: []int{1}},
			{Level: 1, Extents: [6]int{2, 2, 0, 5, 5, 0}, Parent: 0},
		},
	}
	na, _ := newApplier(n)
	parent := patch(t, 4, 4)
	did, err := na.ApplyGhost([]int{0, 1}, []int{0}, []*mesh.Structured{parent, nil})
	if err != nil {
		t.Fatal(err)
	}
	if did {
		t.Error("ghosts reported for an unknown child")
	}
	if got := ghostCells(t, parent); got != nil {
		t.Errorf("parent ghosts %v", got)
	}
}

// TestNestingClipping checks a child that straddles two parents.
func TestNestingClipping(t *testing.T) {
	n := &Nesting{
		Dims:   2,
		Ratios: [][3]int{{2, 2, 1}},
		Records: []NestingRecord{
			{Level: 0, Extents: [6]int{0, 0, 0, 3, 3, 0}, Parent: -1, Children: []int{2}},
			{Level: 0, Extents: [6]int{4, 0, 0, 7, 3, 0}, Parent: -1, Children: []int{2}},
			{Level: 1, Extents: [6]int{6, 0, 0, 9, 1, 0}, Parent: 0},
		},
	}
	if err := n.Validate(); err != nil {
		t.Fatal(err)
	}
	na, _ := newApplier(n)
	a, b := patch(t, 4, 4), patch(t, 4, 4)
	did, err := na.ApplyGhost([]int{0, 1}, []int{0, 1, 2}, []*mesh.Structured{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if !did {
		t.Error("no ghosts reported")
	}
	if got, want := ghostCells(t, a), []int{3}; !reflect.DeepEqual(got, want) {
		t.Errorf("left parent ghosts %v != %v", got, want)
	}
	if got, want := ghostCells(t, b), []int{0}; !reflect.DeepEqual(got, want) {
		t.Errorf("right parent ghosts %v != %v", got, want)
	}
}

func TestNestingAnisotropicRatio(t *testing.T) {
	n := &Nesting{
		Dims:   2,
		Ratios: [][3]int{{2, 4, 7}}, // the third axis is unused
		Records: []NestingRecord{
			{Level: 0, Extents: [6]int{0, 0, 0, 3, 3, 0}, Parent: -1, Children: []int{1}},
			{Level: 1, Extents: [6]int{0, 0, 0, 1, 7, 0}, Parent: 0},
		},
	}
	na, _ := newApplier(n)
	parent := patch(t, 4, 4)
	if _, err := na.ApplyGhost([]int{0}, []int{0, 1}, []*mesh.Structured{parent}); err != nil {
		t.Fatal(err)
	}
	if got, want := ghostCells(t, parent), []int{0, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("ghosts %v != %v", got, want)
	}
}

// TestNestingOutOfRange checks that writes beyond a mesh that is
// smaller than its extents are skipped and reported.
func TestNestingOutOfRange(t *testing.T) {
	n := &Nesting{
		Dims:   2,
		Ratios: [][3]int{{2, 2, 1}},
		Records: []NestingRecord{
			{Level: 0, Extents: [6]int{0, 0, 0, 3, 3, 0}, Parent: -1, Children: []int{1}},
			{Level: 1, Extents: [6]int{0, 0, 0, 7, 7, 0}, Parent: 0},
		},
	}
	na, hook := newApplier(n)
	var skipped []IndexOutOfRange
	na.OnSkip = func(e IndexOutOfRange) { skipped = append(skipped, e) }
	small := patch(t, 2, 2)
	did, err := na.ApplyGhost([]int{0}, []int{0, 1}, []*mesh.Structured{small})
	if err != nil {
		t.Fatal(err)
	}
	if !did {
		t.Error("no ghosts reported")
	}
	if got, want := ghostCells(t, small), []int{0, 1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("ghosts %v != %v", got, want)
	}
	if len(skipped) != 12 {
		t.Errorf("%d skipped writes, want 12", len(skipped))
	}
	if len(hook.Entries) != 12 || hook.LastEntry().Level != logrus.WarnLevel {
		t.Errorf("%d log entries", len(hook.Entries))
	}
	if skipped[0].Index != 4 || skipped[0].NumberOfCells != 4 {
		t.Errorf("first skip %+v", skipped[0])
	}
}

func TestNestingKeepsExistingGhosts(t *testing.T) {
	n := &Nesting{
		Dims: 2,
		Records: []NestingRecord{
			{Level: 0, Extents: [6]int{0, 0, 0, 1, 1, 0}, Parent: -1},
		},
	}
	na, _ := newApplier(n)
	m := patch(t, 2, 2)
	if err := m.CellData().SetFlags(mesh.GhostCells, []byte{0, 0, 0, 1}); err != nil {
		t.Fatal(err)
	}
	did, err := na.ApplyGhost([]int{0}, []int{0}, []*mesh.Structured{m})
	if err != nil {
		t.Fatal(err)
	}
	if did {
		t.Error("ghosts reported without children")
	}
	if got, want := ghostCells(t, m), []int{3}; !reflect.DeepEqual(got, want) {
		t.Errorf("ghosts %v != %v", got, want)
	}
}

func TestNestingErrors(t *testing.T) {
	n := &Nesting{
		Dims:   2,
		Ratios: [][3]int{{2, 2, 1}},
		Records: []NestingRecord{
			{Level: 0, Extents: [6]int{0, 0, 0, 3, 3, 0}, Parent: -1},
		},
	}
	na, _ := newApplier(n)
	if _, err := na.ApplyGhost([]int{0}, nil, nil); !errors.Is(err, ErrMeshCount) {
		t.Errorf("mesh count: %v", err)
	}
	if _, err := na.ApplyGhost([]int{3}, nil, []*mesh.Structured{nil}); !errors.Is(err, ErrDomainID) {
		t.Errorf("domain id: %v", err)
	}
	empty := &NestingApplier{}
	if _, err := empty.ApplyGhost([]int{0}, []int{0}, []*mesh.Structured{patch(t, 2, 2)}); !errors.Is(err, ErrNoNesting) {
		t.Errorf("nil nesting: %v", err)
	}

	bad := []*Nesting{
		{Dims: 4},
		{Dims: 2, Records: []NestingRecord{{Parent: 5}}},
		{Dims: 2, Records: []NestingRecord{{Parent: -1, Children: []int{9}}}},
		{Dims: 2, Records: []NestingRecord{{Parent: -1, Extents: [6]int{2, 0, 0, 1, 0, 0}}}},
		{Dims: 2, Records: []NestingRecord{{Parent: -1, Children: []int{1}}, {Level: 1}}},
		{Dims: 2, Records: []NestingRecord{{Parent: -1, Children: []int{1}}, {Level: 0}}},
	}
	for i, b := range bad {
		if err := b.Validate(); err == nil {
			t.Errorf("nesting %d accepted", i)
		}
	}
}
