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

package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/Knetic/govaluate"
	"github.com/spatialmodel/decomp/chunk"
	"github.com/spatialmodel/decomp/ghost"
	"github.com/spatialmodel/decomp/mesh"
	"github.com/spf13/cast"
)

// Case is the contents of a case file.
type Case struct {
	Grid    GridCase     `toml:"grid"`
	Nesting NestingCase  `toml:"nesting"`
	Domains []DomainCase `toml:"domain"`
	Shared  []SharedCase `toml:"shared"`
}

// GridCase describes a rectilinear grid and how its cells are classified.
type GridCase struct {
	X []float64 `toml:"x"`
	Y []float64 `toml:"y"`
	Z []float64 `toml:"z"`

	// Fields holds cell arrays, one value per cell.
	Fields map[string][]float64 `toml:"fields"`

	// Retain is a boolean expression over x, y, z (the cell center),
	// i, j, k and the fields. Cells for which it is false are
	// discarded. Empty means every cell is kept.
	Retain string `toml:"retain"`

	// Process is a boolean expression over the same variables. Kept
	// cells for which it is true must go to the remainder.
	Process string `toml:"process"`
}

// NestingCase describes a patch hierarchy. The mesh of each active
// domain is built from the record's extents with unit spacing.
type NestingCase struct {
	Dims    int          `toml:"dims"`
	Ratios  [][]int      `toml:"ratios"`
	Records []RecordCase `toml:"record"`
	Active  []int        `toml:"active"`
	Known   []int        `toml:"known"`
}

// RecordCase is one patch of a NestingCase.
type RecordCase struct {
	Level    int   `toml:"level"`
	Extents  []int `toml:"extents"`
	Parent   int   `toml:"parent"`
	Children []int `toml:"children"`
}

// DomainCase is one rectilinear domain of a boundary case.
type DomainCase struct {
	ID int       `toml:"id"`
	X  []float64 `toml:"x"`
	Y  []float64 `toml:"y"`
	Z  []float64 `toml:"z"`
}

// SharedCase lists the points shared by domains A and B; PointsA[n] and
// PointsB[n] are the same point.
type SharedCase struct {
	A       int   `toml:"a"`
	B       int   `toml:"b"`
	PointsA []int `toml:"points_a"`
	PointsB []int `toml:"points_b"`
}

// LoadCase reads a case file.
func LoadCase(path string) (*Case, error) {
	c := new(Case)
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, fmt.Errorf("cmd.LoadCase: %v", err)
	}
	return c, nil
}

func axes(x, y, z []float64) [][]float64 {
	var o [][]float64
	for _, a := range [][]float64{x, y, z} {
		if len(a) == 0 {
			break
		}
		o = append(o, a)
	}
	return o
}

// Build returns the grid with its fields attached as cell scalars.
func (g *GridCase) Build() (*mesh.Structured, error) {
	s, err := mesh.NewRectilinear(axes(g.X, g.Y, g.Z)...)
	if err != nil {
		return nil, fmt.Errorf("cmd.GridCase.Build: %w", err)
	}
	for name, v := range g.Fields {
		if err := s.CellData().SetScalarValues(name, v); err != nil {
			return nil, fmt.Errorf("cmd.GridCase.Build: field %s: %w", name, err)
		}
	}
	return s, nil
}

// Classify evaluates the Retain and Process expressions on every cell
// of s.
func (g *GridCase) Classify(s *mesh.Structured) ([]chunk.ZoneDesignation, error) {
	retain, err := compile(g.Retain)
	if err != nil {
		return nil, fmt.Errorf("cmd.GridCase.Classify: retain: %v", err)
	}
	process, err := compile(g.Process)
	if err != nil {
		return nil, fmt.Errorf("cmd.GridCase.Classify: process: %v", err)
	}
	cd := s.CellDims()
	o := make([]chunk.ZoneDesignation, s.NumberOfCells())
	params := make(map[string]interface{}, 6+len(g.Fields))
	for c := range o {
		p := s.CellCenter(c)
		idx := mesh.Unflatten(c, cd)
		params["x"], params["y"], params["z"] = p.X, p.Y, p.Z
		params["i"], params["j"], params["k"] = float64(idx[0]), float64(idx[1]), float64(idx[2])
		for name := range g.Fields {
			v, _ := s.CellData().Scalar(name)
			params[name] = v.Elements[c]
		}
		keep, err := eval(retain, params, true)
		if err != nil {
			return nil, fmt.Errorf("cmd.GridCase.Classify: cell %d: retain: %v", c, err)
		}
		if !keep {
			o[c] = chunk.Discard
			continue
		}
		proc, err := eval(process, params, false)
		if err != nil {
			return nil, fmt.Errorf("cmd.GridCase.Classify: cell %d: process: %v", c, err)
		}
		if proc {
			o[c] = chunk.ToBeProcessed
		} else {
			o[c] = chunk.Retain
		}
	}
	return o, nil
}

func compile(expr string) (*govaluate.EvaluableExpression, error) {
	if expr == "" {
		return nil, nil
	}
	return govaluate.NewEvaluableExpression(expr)
}

func eval(e *govaluate.EvaluableExpression, params map[string]interface{}, empty bool) (bool, error) {
	if e == nil {
		return empty, nil
	}
	r, err := e.Evaluate(params)
	if err != nil {
		return false, err
	}
	return cast.ToBoolE(r)
}

// Build returns the hierarchy and one mesh per active domain.
func (n *NestingCase) Build() (*ghost.Nesting, []*mesh.Structured, error) {
	nest := &ghost.Nesting{Dims: n.Dims}
	for l, r := range n.Ratios {
		if len(r) == 0 || len(r) > 3 {
			return nil, nil, fmt.Errorf("cmd.NestingCase.Build: level %d: %d ratios", l, len(r))
		}
		v := [3]int{1, 1, 1}
		copy(v[:], r)
		nest.Ratios = append(nest.Ratios, v)
	}
	for id, r := range n.Records {
		if len(r.Extents) != 6 {
			return nil, nil, fmt.Errorf("cmd.NestingCase.Build: domain %d: %d extents, want 6", id, len(r.Extents))
		}
		rec := ghost.NestingRecord{Level: r.Level, Parent: r.Parent, Children: r.Children}
		copy(rec.Extents[:], r.Extents)
		nest.Records = append(nest.Records, rec)
	}
	if err := nest.Validate(); err != nil {
		return nil, nil, fmt.Errorf("cmd.NestingCase.Build: %w", err)
	}
	meshes := make([]*mesh.Structured, len(n.Active))
	for i, id := range n.Active {
		if id < 0 || id >= len(nest.Records) {
			return nil, nil, fmt.Errorf("cmd.NestingCase.Build: active domain %d: %w", id, ghost.ErrDomainID)
		}
		r := nest.Records[id]
		var ax [][]float64
		for a := 0; a < n.Dims; a++ {
			lo, hi := r.Extents[a], r.Extents[a+3]
			v := make([]float64, hi-lo+2)
			for p := range v {
				v[p] = float64(lo + p)
			}
			ax = append(ax, v)
		}
		s, err := mesh.NewRectilinear(ax...)
		if err != nil {
			return nil, nil, fmt.Errorf("cmd.NestingCase.Build: domain %d: %w", id, err)
		}
		meshes[i] = s
	}
	return nest, meshes, nil
}

// BuildDomains returns the domain ids, their meshes and the shared
// point maps of a boundary case.
func (c *Case) BuildDomains() ([]int, []mesh.Topology, *ghost.SharedPointMaps, error) {
	ids := make([]int, len(c.Domains))
	meshes := make([]mesh.Topology, len(c.Domains))
	for i, d := range c.Domains {
		s, err := mesh.NewRectilinear(axes(d.X, d.Y, d.Z)...)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("cmd.Case.BuildDomains: domain %d: %w", d.ID, err)
		}
		ids[i], meshes[i] = d.ID, s
	}
	shared := ghost.NewSharedPointMaps()
	for _, s := range c.Shared {
		if err := shared.Add(s.A, s.B, s.PointsA, s.PointsB); err != nil {
			return nil, nil, nil, fmt.Errorf("cmd.Case.BuildDomains: %w", err)
		}
	}
	return ids, meshes, shared, nil
}
