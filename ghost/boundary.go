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
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/decomp/mesh"
)

// SharedPoints lists the coincident points of two domains. PointsA[i]
// in domain A is the same location as PointsB[i] in domain B.
type SharedPoints struct {
	A, B             int
	PointsA, PointsB []int
}

// SharedPointMaps holds one SharedPoints per unordered domain pair.
type SharedPointMaps struct {
	m map[[2]int]*SharedPoints
}

// NewSharedPointMaps returns an empty collection.
func NewSharedPointMaps() *SharedPointMaps {
	return &SharedPointMaps{m: make(map[[2]int]*SharedPoints)}
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// Add records the shared points of domains a and b, replacing any
// previous entry for the pair.
func (s *SharedPointMaps) Add(a, b int, pointsA, pointsB []int) error {
	if a == b {
		return fmt.Errorf("ghost.SharedPointMaps.Add: domain %d paired with itself", a)
	}
	if len(pointsA) != len(pointsB) {
		return fmt.Errorf("ghost.SharedPointMaps.Add: %d points in domain %d but %d in domain %d",
			len(pointsA), a, len(pointsB), b)
	}
	s.m[pairKey(a, b)] = &SharedPoints{
		A: a, B: b,
		PointsA: append([]int(nil), pointsA...),
		PointsB: append([]int(nil), pointsB...),
	}
	return nil
}

// Lookup returns the shared points of the pair as seen from sender:
// the sender-local ids and the matching receiver-local ids.
func (s *SharedPointMaps) Lookup(sender, receiver int) (senderPoints, receiverPoints []int, ok bool) {
	sp, ok := s.m[pairKey(sender, receiver)]
	if !ok {
		return nil, nil, false
	}
	if sp.A == sender {
		return sp.PointsA, sp.PointsB, true
	}
	return sp.PointsB, sp.PointsA, true
}

// Len returns the number of domain pairs with shared points.
func (s *SharedPointMaps) Len() int { return len(s.m) }

// BoundaryGenerator computes, for each ordered pair of adjacent domains,
// the one ring of cells and points around their shared boundary that the
// sender must give the receiver.
type BoundaryGenerator struct {
	Shared *SharedPointMaps

	// Log receives progress messages. If nil, the standard logrus
	// logger is used.
	Log logrus.FieldLogger
}

func (g *BoundaryGenerator) log() logrus.FieldLogger {
	if g.Log == nil {
		return logrus.StandardLogger()
	}
	return g.Log
}

// Generate computes the given sets of every local domain towards every
// other domain of the session and stores them in the session. meshes[i]
// is the mesh of domainIDs[i]; nil meshes are skipped.
//
// A pair already generated in the session is not recomputed. A pair is
// marked as generated before its shared points are looked up, so pairs
// without shared points are visited once. A pair whose receiver has no
// mesh among the local domains is left unmarked, to be generated by a
// later call once the receiver is resident.
func (g *BoundaryGenerator) Generate(s *Session, domainIDs []int, meshes []mesh.Topology) error {
	if len(meshes) != len(domainIDs) {
		return fmt.Errorf("ghost.BoundaryGenerator.Generate: %w: %d meshes for %d domains",
			ErrMeshCount, len(meshes), len(domainIDs))
	}
	resident := make(map[int]bool, len(domainIDs))
	for i, d := range domainIDs {
		if err := s.checkID(d); err != nil {
			return fmt.Errorf("ghost.BoundaryGenerator.Generate: %w", err)
		}
		if meshes[i] != nil {
			resident[d] = true
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sender := range domainIDs {
		m := meshes[i]
		if m == nil {
			continue
		}
		for receiver := 0; receiver < s.numDomains; receiver++ {
			if receiver == sender || s.memo.Done(sender, receiver) || !resident[receiver] {
				continue
			}
			s.memo.Mark(sender, receiver)

			if g.Shared == nil {
				continue
			}
			pts, _, ok := g.Shared.Lookup(sender, receiver)
			if !ok || len(pts) == 0 {
				continue
			}
			given, err := oneRing(m, pts)
			if err != nil {
				return fmt.Errorf("ghost.BoundaryGenerator.Generate: domain %d to %d: %w", sender, receiver, err)
			}
			s.given[Pair{Sender: sender, Receiver: receiver}] = given
			g.log().WithFields(logrus.Fields{
				"sender":   sender,
				"receiver": receiver,
				"cells":    len(given.Cells),
				"points":   len(given.Points),
			}).Debug("ghost: generated boundary given set")
		}
	}
	return nil
}

// oneRing returns the cells that use any of the shared points, and all
// of the points of those cells.
func oneRing(m mesh.Topology, shared []int) (*GivenSet, error) {
	cells := make(map[int]struct{})
	for _, p := range shared {
		if p < 0 || p >= m.NumberOfPoints() {
			return nil, fmt.Errorf("shared point %d out of range [0, %d)", p, m.NumberOfPoints())
		}
		for _, c := range m.PointCells(p) {
			cells[c] = struct{}{}
		}
	}
	points := make(map[int]struct{})
	for c := range cells {
		for _, p := range m.CellPoints(c) {
			points[p] = struct{}{}
		}
	}
	return &GivenSet{
		Cells:        sortedKeys(cells),
		Points:       sortedKeys(points),
		FilterPoints: true,
	}, nil
}

func sortedKeys(m map[int]struct{}) []int {
	o := make([]int, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Ints(o)
	return o
}
