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
	"fmt"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/decomp/mesh"
)

// ErrNotResident is returned by Exchange when a domain it needs has no
// local mesh.
var ErrNotResident = errors.New("ghost: domain mesh is not resident")

// Exchange builds the ghost-extended mesh of receiver from the given
// sets stored in s. The result holds every cell and point of the
// receiver's mesh, followed by the cells given by each sender in
// ascending sender order, flagged in GhostCells. Given points that are
// shared with the receiver are mapped onto the receiver's own points;
// the others are appended and flagged in GhostPoints. Scalar arrays
// present on the receiver and on every sender are carried over.
//
// All senders with a given set for receiver must be among the local
// domains.
func Exchange(s *Session, shared *SharedPointMaps, receiver int, domainIDs []int, meshes []mesh.Topology) (*mesh.Unstructured, error) {
	if len(meshes) != len(domainIDs) {
		return nil, fmt.Errorf("ghost.Exchange: %w: %d meshes for %d domains",
			ErrMeshCount, len(meshes), len(domainIDs))
	}
	local := make(map[int]mesh.Topology, len(domainIDs))
	for i, d := range domainIDs {
		if meshes[i] != nil {
			local[d] = meshes[i]
		}
	}
	rm, ok := local[receiver]
	if !ok {
		return nil, fmt.Errorf("ghost.Exchange: receiver %d: %w", receiver, ErrNotResident)
	}

	nrp := rm.NumberOfPoints()
	points := make([]mesh.Point3, nrp, nrp*2)
	for p := range points {
		points[p] = rm.Point(p)
	}
	type cellRef struct {
		t   mesh.CellType
		pts []int
	}
	var cells []cellRef
	for c := 0; c < rm.NumberOfCells(); c++ {
		cells = append(cells, cellRef{t: rm.CellType(c), pts: rm.CellPoints(c)})
	}
	cellParts := []*mesh.Attributes{rm.CellData()}
	pointParts := []*mesh.Attributes{rm.PointData()}

	for _, pair := range s.GivenTo(receiver) {
		given, _ := s.Given(pair.Sender, receiver)
		sm, ok := local[pair.Sender]
		if !ok {
			return nil, fmt.Errorf("ghost.Exchange: sender %d: %w", pair.Sender, ErrNotResident)
		}
		toLocal := make(map[int]int, len(given.Points))
		if shared != nil {
			sp, rp, _ := shared.Lookup(pair.Sender, receiver)
			for i, p := range sp {
				toLocal[p] = rp[i]
			}
		}
		var appended []int
		for _, p := range given.Points {
			if _, ok := toLocal[p]; ok {
				continue
			}
			toLocal[p] = len(points)
			points = append(points, sm.Point(p))
			appended = append(appended, p)
		}
		for _, c := range given.Cells {
			src := sm.CellPoints(c)
			pts := make([]int, len(src))
			for i, p := range src {
				lp, ok := toLocal[p]
				if !ok {
					if given.FilterPoints {
						return nil, fmt.Errorf("ghost.Exchange: cell %d of domain %d uses point %d, which was not given",
							c, pair.Sender, p)
					}
					lp = len(points)
					toLocal[p] = lp
					points = append(points, sm.Point(p))
					appended = append(appended, p)
				}
				pts[i] = lp
			}
			cells = append(cells, cellRef{t: sm.CellType(c), pts: pts})
		}
		cellParts = append(cellParts, sm.CellData().Gather(given.Cells))
		pointParts = append(pointParts, sm.PointData().Gather(appended))
	}

	u := mesh.NewUnstructured(points)
	for _, c := range cells {
		if _, err := u.AddCell(c.t, c.pts); err != nil {
			return nil, fmt.Errorf("ghost.Exchange: %w", err)
		}
	}
	cd := concat(cellParts)
	pd := concat(pointParts)
	if err := cd.SetFlags(mesh.GhostCells, ghostFlags(rm.CellData(), mesh.GhostCells, cd.Len())); err != nil {
		return nil, fmt.Errorf("ghost.Exchange: %w", err)
	}
	if err := pd.SetFlags(mesh.GhostPoints, ghostFlags(rm.PointData(), mesh.GhostPoints, pd.Len())); err != nil {
		return nil, fmt.Errorf("ghost.Exchange: %w", err)
	}
	if err := u.SetCellData(cd); err != nil {
		return nil, fmt.Errorf("ghost.Exchange: %w", err)
	}
	if err := u.SetPointData(pd); err != nil {
		return nil, fmt.Errorf("ghost.Exchange: %w", err)
	}
	return u, nil
}

// ghostFlags returns n flags: the receiver's own flags (or zeros) for
// its entities, then Ghost for every appended entity.
func ghostFlags(own *mesh.Attributes, name string, n int) []byte {
	o := make([]byte, n)
	if old, ok := own.Flags(name); ok {
		copy(o, old)
	}
	for i := own.Len(); i < n; i++ {
		o[i] = mesh.Ghost
	}
	return o
}

// concat joins attribute sets end to end, keeping the scalar arrays that
// every part has.
func concat(parts []*mesh.Attributes) *mesh.Attributes {
	var n int
	for _, p := range parts {
		n += p.Len()
	}
	o := mesh.NewAttributes(n)
	for _, name := range parts[0].ScalarNames() {
		d := sparse.ZerosDense(n)
		off := 0
		complete := true
		for _, p := range parts {
			v, ok := p.Scalar(name)
			if !ok {
				complete = false
				break
			}
			copy(d.Elements[off:], v.Elements)
			off += p.Len()
		}
		if complete {
			// Lengths always match by construction.
			_ = o.SetScalar(name, d)
		}
	}
	return o
}
