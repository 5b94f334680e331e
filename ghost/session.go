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

/*Package ghost reconciles independently owned domains by marking and
generating ghost cells: coarse cells covered by finer nested patches,
and the cells and points one domain must give a neighboring domain so
that the neighbor can build a ghost layer across their shared boundary.*/
package ghost

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrDomainID is returned for domain ids outside the session.
	ErrDomainID = errors.New("ghost: domain id out of range")

	// ErrMeshCount is returned when the number of meshes does not
	// match the number of domain ids.
	ErrMeshCount = errors.New("ghost: mesh count does not match domain count")

	// ErrNoNesting is returned by NestingApplier.ApplyGhost when it has
	// no hierarchy.
	ErrNoNesting = errors.New("ghost: no nesting hierarchy")
)

// Memo is a growable matrix of flags indexed by (sender, receiver)
// domain id. It grows as needed on access.
type Memo struct {
	rows [][]bool
}

// Done reports whether the pair has been marked.
func (m *Memo) Done(s, r int) bool {
	if s < 0 || r < 0 || s >= len(m.rows) || r >= len(m.rows[s]) {
		return false
	}
	return m.rows[s][r]
}

// Mark sets the flag of the pair, growing the matrix if needed.
func (m *Memo) Mark(s, r int) {
	for len(m.rows) <= s {
		m.rows = append(m.rows, nil)
	}
	if len(m.rows[s]) <= r {
		row := make([]bool, r+1)
		copy(row, m.rows[s])
		m.rows[s] = row
	}
	m.rows[s][r] = true
}

// Pair is an ordered (sender, receiver) domain pair.
type Pair struct {
	Sender, Receiver int
}

// GivenSet holds the cells and points a sender must ship to a receiver
// so that the receiver can build its ghost layer.
type GivenSet struct {
	// Cells are the sender-local cell ids, ascending.
	Cells []int
	// Points are the sender-local point ids, ascending.
	Points []int
	// FilterPoints means the receiver must keep only the listed points
	// rather than every point of the listed cells.
	FilterPoints bool
}

// Session holds the state of one decomposition pass. It is owned by the
// caller and passed to every component that needs it; it replaces any
// process-wide table. A Session is safe for use by one goroutine at a
// time; its methods serialize on an internal mutex.
type Session struct {
	mu sync.Mutex

	numDomains int
	memo       Memo
	given      map[Pair]*GivenSet
}

// NewSession returns a session for numDomains domains, with ids
// in [0, numDomains).
func NewSession(numDomains int) *Session {
	return &Session{
		numDomains: numDomains,
		given:      make(map[Pair]*GivenSet),
	}
}

// NumDomains returns the number of domains in the decomposition.
func (s *Session) NumDomains() int { return s.numDomains }

// Generated reports whether ghost generation has completed for the pair.
func (s *Session) Generated(sender, receiver int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memo.Done(sender, receiver)
}

// Given returns the given set from sender to receiver, if one was
// produced.
func (s *Session) Given(sender, receiver int) (*GivenSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.given[Pair{Sender: sender, Receiver: receiver}]
	return g, ok
}

// GivenTo returns the pairs with a given set for receiver, ordered by
// sender.
func (s *Session) GivenTo(receiver int) []Pair {
	s.mu.Lock()
	defer s.mu.Unlock()
	var o []Pair
	for p := range s.given {
		if p.Receiver == receiver {
			o = append(o, p)
		}
	}
	sort.Slice(o, func(i, j int) bool { return o[i].Sender < o[j].Sender })
	return o
}

// Reset clears the memo and the given sets to start a new pass.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memo = Memo{}
	s.given = make(map[Pair]*GivenSet)
}

func (s *Session) checkID(id int) error {
	if id < 0 || id >= s.numDomains {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrDomainID, id, s.numDomains)
	}
	return nil
}
