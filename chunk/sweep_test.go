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
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/decomp/mesh"
)

func fill(n int, z ZoneDesignation) []ZoneDesignation {
	o := make([]ZoneDesignation, n)
	for i := range o {
		o[i] = z
	}
	return o
}

func TestSweepAllDiscard(t *testing.T) {
	s := &SweepStrategy{MinimumSize: 1}
	p, err := s.ComputePartition([]int{4, 3, 2}, fill(24, Discard))
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Boxes) != 0 || len(p.Leftover) != 0 {
		t.Errorf("want empty partition, got %# v", pretty.Formatter(p))
	}
}

func TestSweepUndersizedWholeVolume(t *testing.T) {
	s := &SweepStrategy{} // default minimum of 1024 cells
	p, err := s.ComputePartition([]int{5, 4, 3}, fill(60, Retain))
	if err != nil {
		t.Fatal(err)
	}
	want := &Partition{Boxes: []Box{{Min: mesh.Index3{0, 0, 0}, Max: mesh.Index3{4, 3, 2}}}}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("partition: %v", pretty.Diff(p, want))
	}
}

func TestSweepScenarioCorner(t *testing.T) {
	z := fill(9, Retain)
	z[0] = Discard
	s := &SweepStrategy{MinimumSize: 1}
	p, err := s.ComputePartition([]int{3, 3}, z)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckPartition([]int{3, 3}, z, p); err != nil {
		t.Fatal(err)
	}
	want := []Box{
		{Min: mesh.Index3{1, 0, 0}, Max: mesh.Index3{2, 2, 0}},
		{Min: mesh.Index3{0, 1, 0}, Max: mesh.Index3{0, 2, 0}},
	}
	if !reflect.DeepEqual(p.Boxes, want) {
		t.Errorf("boxes: %v", pretty.Diff(p.Boxes, want))
	}
	if len(p.Leftover) != 0 {
		t.Errorf("leftover: %v", p.Leftover)
	}
}

func TestSweepMinimumSizePreference(t *testing.T) {
	// Four 2x2 islands of Retain cells separated by Discard cells.
	const n = 5
	z := fill(n*n, Discard)
	for _, corner := range [][2]int{{0, 0}, {3, 0}, {0, 3}, {3, 3}} {
		for j := 0; j < 2; j++ {
			for i := 0; i < 2; i++ {
				z[(corner[0]+i)+n*(corner[1]+j)] = Retain
			}
		}
	}
	s := &SweepStrategy{MinimumSize: 16}
	p, err := s.ComputePartition([]int{n, n}, z)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckPartition([]int{n, n}, z, p); err != nil {
		t.Fatal(err)
	}
	if len(p.Boxes) != 0 {
		t.Errorf("undersized islands accepted: %v", p.Boxes)
	}
	if len(p.Leftover) != 16 {
		t.Errorf("leftover has %d cells, want 16", len(p.Leftover))
	}

	s.MinimumSize = 4
	p, err = s.ComputePartition([]int{n, n}, z)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckPartition([]int{n, n}, z, p); err != nil {
		t.Fatal(err)
	}
	if len(p.Boxes) != 4 || len(p.Leftover) != 0 {
		t.Errorf("boxes %v leftover %v", p.Boxes, p.Leftover)
	}
}

func TestSweepProcessedCells(t *testing.T) {
	z := fill(16, Retain)
	z[5] = ToBeProcessed
	s := &SweepStrategy{MinimumSize: 1}
	p, err := s.ComputePartition([]int{4, 4}, z)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckPartition([]int{4, 4}, z, p); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p.Leftover, []int{5}) {
		t.Errorf("leftover: %v", p.Leftover)
	}
}

func TestMergeBoxes(t *testing.T) {
	boxes := []Box{
		{Min: mesh.Index3{0, 0, 0}, Max: mesh.Index3{1, 0, 0}},
		{Min: mesh.Index3{3, 0, 0}, Max: mesh.Index3{3, 0, 0}},
		{Min: mesh.Index3{0, 1, 0}, Max: mesh.Index3{1, 2, 0}},
		{Min: mesh.Index3{2, 0, 0}, Max: mesh.Index3{2, 0, 0}},
	}
	got := mergeBoxes(boxes)
	want := []Box{
		{Min: mesh.Index3{0, 0, 0}, Max: mesh.Index3{1, 2, 0}},
		{Min: mesh.Index3{2, 0, 0}, Max: mesh.Index3{3, 0, 0}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("merge: %v", pretty.Diff(got, want))
	}
}

func TestSweepInvalidInput(t *testing.T) {
	s := &SweepStrategy{}
	if _, err := s.ComputePartition([]int{3, 3}, fill(8, Retain)); !errors.Is(err, ErrDesignationLength) {
		t.Errorf("short designation: %v", err)
	}
	if _, err := s.ComputePartition([]int{0, 3}, nil); !errors.Is(err, mesh.ErrDimensions) {
		t.Errorf("zero extent: %v", err)
	}
	if _, err := s.ComputePartition([]int{1, 1, 1, 1}, fill(1, Retain)); !errors.Is(err, mesh.ErrDimensions) {
		t.Errorf("four axes: %v", err)
	}
	if _, err := s.ComputePartition([]int{1}, []ZoneDesignation{putInGrid}); err == nil {
		t.Error("internal designation accepted")
	}
}

// TestSweepCoverage checks over random grids that every kept cell is
// accounted for exactly once and that no discarded cell is emitted.
func TestSweepCoverage(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for iter := 0; iter < 300; iter++ {
		dims := make([]int, 1+r.Intn(3))
		n := 1
		for i := range dims {
			dims[i] = 1 + r.Intn(7)
			n *= dims[i]
		}
		z := make([]ZoneDesignation, n)
		// Bias towards Retain so that boxes of several cells form.
		for i := range z {
			switch v := r.Float64(); {
			case v < 0.6:
				z[i] = Retain
			case v < 0.85:
				z[i] = Discard
			default:
				z[i] = ToBeProcessed
			}
		}
		s := &SweepStrategy{MinimumSize: 1 + r.Intn(12)}
		p, err := s.ComputePartition(dims, z)
		if err != nil {
			t.Fatalf("dims %v: %v", dims, err)
		}
		if err := CheckPartition(dims, z, p); err != nil {
			t.Fatalf("dims %v, minimum %d: %v", dims, s.MinimumSize, err)
		}
		for i, a := range p.Boxes {
			for _, b := range p.Boxes[i+1:] {
				if a.Overlaps(b) {
					t.Fatalf("boxes %v and %v overlap", a, b)
				}
			}
		}
	}
}
