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

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/decomp/mesh"
)

// stacked returns two structured domains of 2x2 cells, the second on
// top of the first so that they share a J edge, each with a cell
// array "zvar" holding 10*domain + cell.
func stacked(t *testing.T) []mesh.Topology {
	var o []mesh.Topology
	for d := 0; d < 2; d++ {
		y0 := float64(2 * d)
		s, err := mesh.NewRectilinear([]float64{0, 1, 2}, []float64{y0, y0 + 1, y0 + 2})
		if err != nil {
			t.Fatal(err)
		}
		z := make([]float64, s.NumberOfCells())
		for c := range z {
			z[c] = float64(10*d + c)
		}
		if err := s.CellData().SetScalarValues("zvar", z); err != nil {
			t.Fatal(err)
		}
		o = append(o, s)
	}
	return o
}

func TestExchangeSharedEdge(t *testing.T) {
	meshes := stacked(t)
	shared := NewSharedPointMaps()
	// Top row of points of domain 0 is the bottom row of domain 1.
	if err := shared.Add(0, 1, []int{6, 7, 8}, []int{0, 1, 2}); err != nil {
		t.Fatal(err)
	}
	log, _ := test.NewNullLogger()
	g := &BoundaryGenerator{Shared: shared, Log: log}
	s := NewSession(2)
	if err := g.Generate(s, []int{0, 1}, meshes); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		receiver  int
		ghostZvar []float64
		realZvar  []float64
	}{
		// Domain 0 receives the bottom row of domain 1 and vice versa.
		{receiver: 0, ghostZvar: []float64{10, 11}, realZvar: []float64{0, 1, 2, 3}},
		{receiver: 1, ghostZvar: []float64{2, 3}, realZvar: []float64{10, 11, 12, 13}},
	}
	for _, tt := range tests {
		u, err := Exchange(s, shared, tt.receiver, []int{0, 1}, meshes)
		if err != nil {
			t.Fatal(err)
		}
		if u.NumberOfCells() != 6 || u.NumberOfPoints() != 12 {
			t.Fatalf("receiver %d: %d cells, %d points", tt.receiver, u.NumberOfCells(), u.NumberOfPoints())
		}
		flags, _ := u.CellData().Flags(mesh.GhostCells)
		if want := []byte{0, 0, 0, 0, 1, 1}; !reflect.DeepEqual(flags, want) {
			t.Errorf("receiver %d: ghost cells %v != %v", tt.receiver, flags, want)
		}
		if n := u.PointData().Count(mesh.GhostPoints); n != 3 {
			t.Errorf("receiver %d: %d ghost points, want 3", tt.receiver, n)
		}
		zvar, ok := u.CellData().Scalar("zvar")
		if !ok {
			t.Fatalf("receiver %d: zvar not carried over", tt.receiver)
		}
		if got := zvar.Elements[4:]; !reflect.DeepEqual(got, tt.ghostZvar) {
			t.Errorf("receiver %d: ghost zvar %v != %v", tt.receiver, got, tt.ghostZvar)
		}
		if got := zvar.Elements[:4]; !reflect.DeepEqual(got, tt.realZvar) {
			t.Errorf("receiver %d: real zvar %v != %v", tt.receiver, got, tt.realZvar)
		}
		// Ghost cells reuse the receiver's own points along the shared edge.
		for _, c := range []int{4, 5} {
			var onEdge int
			for _, p := range u.CellPoints(c) {
				if p < 9 {
					onEdge++
				}
			}
			if onEdge != 2 {
				t.Errorf("receiver %d: ghost cell %d shares %d points with the receiver", tt.receiver, c, onEdge)
			}
		}
	}
}

func TestExchangeNotResident(t *testing.T) {
	meshes := stacked(t)
	shared := NewSharedPointMaps()
	if err := shared.Add(0, 1, []int{6, 7, 8}, []int{0, 1, 2}); err != nil {
		t.Fatal(err)
	}
	log, _ := test.NewNullLogger()
	g := &BoundaryGenerator{Shared: shared, Log: log}
	s := NewSession(2)
	if err := g.Generate(s, []int{0, 1}, meshes); err != nil {
		t.Fatal(err)
	}
	if _, err := Exchange(s, shared, 1, []int{1}, meshes[1:]); !errors.Is(err, ErrNotResident) {
		t.Errorf("missing sender: %v", err)
	}
	if _, err := Exchange(s, shared, 1, []int{0}, meshes[:1]); !errors.Is(err, ErrNotResident) {
		t.Errorf("missing receiver: %v", err)
	}
}
