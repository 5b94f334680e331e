/*
Copyright © 2020 the InMAP authors.
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

/*Package plot draws decompositions: the outlines of structured
sub-grids and the cells of unstructured remainders.*/
package plot

import (
	"fmt"
	"sort"

	"github.com/spatialmodel/decomp/mesh"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// XYs implements the gonum.org/v1/plot/plotter.XYer interface.
type XYs []XY

// XY is an x and y value.
type XY struct{ X, Y float64 }

// Len returns the number of X,Y pairs.
func (xys XYs) Len() int {
	return len(xys)
}

// XY return the x and y values at index i, where i < Len()
func (xys XYs) XY(i int) (float64, float64) {
	return xys[i].X, xys[i].Y
}

var _ plotter.XYer = XYs{}

// Outline returns the boundary of the first k plane of g in the X-Y
// plane, walking its edge points counter-clockwise from the first
// point. Grids that are one point wide along i or j give a polyline.
func Outline(g *mesh.Structured) XYs {
	d := g.PointDims()
	ni, nj := d[0], d[1]
	at := func(i, j int) XY {
		f, _ := (mesh.Index3{i, j, 0}).Flat(d)
		p := g.Point(f)
		return XY{X: p.X, Y: p.Y}
	}
	var o XYs
	if ni == 1 || nj == 1 {
		for j := 0; j < nj; j++ {
			for i := 0; i < ni; i++ {
				o = append(o, at(i, j))
			}
		}
		return o
	}
	for i := 0; i < ni; i++ {
		o = append(o, at(i, 0))
	}
	for j := 1; j < nj; j++ {
		o = append(o, at(ni-1, j))
	}
	for i := ni - 2; i >= 0; i-- {
		o = append(o, at(i, nj-1))
	}
	for j := nj - 2; j > 0; j-- {
		o = append(o, at(0, j))
	}
	return o
}

// CellCenters returns the X-Y centers of the cells of m whose flag in
// the named cell array is non-zero, or of every cell if name is empty.
func CellCenters(m mesh.Topology, name string) XYs {
	flags, _ := m.CellData().Flags(name)
	var o XYs
	for c := 0; c < m.NumberOfCells(); c++ {
		if name != "" && (flags == nil || flags[c] == 0) {
			continue
		}
		var x, y float64
		pts := m.CellPoints(c)
		for _, p := range pts {
			pp := m.Point(p)
			x += pp.X
			y += pp.Y
		}
		n := float64(len(pts))
		o = append(o, XY{X: x / n, Y: y / n})
	}
	return o
}

// Save draws one outline per sub-grid and the given point sets as
// scatter layers, and writes the image to filename. The image format is
// chosen from the file extension.
func Save(filename, title string, outlines []XYs, points map[string]XYs) error {
	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("plot.Save: %v", err)
	}
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	for i, o := range outlines {
		poly, err := plotter.NewPolygon(o)
		if err != nil {
			return fmt.Errorf("plot.Save: outline %d: %v", i, err)
		}
		poly.Color = nil
		poly.LineStyle.Color = plotutil.Color(i)
		poly.LineStyle.Width = vg.Points(1.5)
		p.Add(poly)
	}
	i := len(outlines)
	for _, name := range sortedNames(points) {
		s, err := plotter.NewScatter(points[name])
		if err != nil {
			return fmt.Errorf("plot.Save: %s: %v", name, err)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(s)
		p.Legend.Add(name, s)
		i++
	}
	if err := p.Save(6*vg.Inch, 6*vg.Inch, filename); err != nil {
		return fmt.Errorf("plot.Save: %v", err)
	}
	return nil
}

func sortedNames(m map[string]XYs) []string {
	o := make([]string, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}
