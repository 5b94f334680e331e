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
	"bytes"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/decomp/chunk"
)

func run(t *testing.T, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	rc := NewRootCommand(&stdout, &stderr)
	rc.SetArgs(args)
	err := rc.Execute()
	return stdout.String(), err
}

func wantLines(t *testing.T, out string, lines ...string) {
	for _, l := range lines {
		if !strings.Contains(out, l+"\n") {
			t.Errorf("output does not contain %q:\n%s", l, out)
		}
	}
}

func TestClassify(t *testing.T) {
	c, err := LoadCase("testdata/grid.toml")
	if err != nil {
		t.Fatal(err)
	}
	g, err := c.Grid.Build()
	if err != nil {
		t.Fatal(err)
	}
	z, err := c.Grid.Classify(g)
	if err != nil {
		t.Fatal(err)
	}
	R, D, P := chunk.Retain, chunk.Discard, chunk.ToBeProcessed
	want := []chunk.ZoneDesignation{
		R, R, R, D,
		R, R, R, R,
		R, R, R, P,
	}
	if !reflect.DeepEqual(z, want) {
		t.Errorf("designation: %v", pretty.Diff(z, want))
	}

	c.Grid.Retain = "x +"
	if _, err := c.Grid.Classify(g); err == nil {
		t.Error("bad expression accepted")
	}
	c.Grid.Retain = "missing > 1"
	if _, err := c.Grid.Classify(g); err == nil {
		t.Error("unknown variable accepted")
	}
	c.Grid.Retain = ""
	c.Grid.Process = ""
	z, err = c.Grid.Classify(g)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range z {
		if v != R {
			t.Errorf("cell %d: %v with empty expressions", i, v)
		}
	}
}

func TestChunkCommand(t *testing.T) {
	out, err := run(t, "chunk", "--case", "testdata/grid.toml", "--min-size", "1")
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, out, "remainder: 1 cells (0 ghost), 4 points (0 ghost)")
	if !strings.Contains(out, "subgrid 0:") || !strings.Contains(out, "subgrid 1:") {
		t.Errorf("missing sub-grids:\n%s", out)
	}
	if strings.Contains(out, "subgrid 2:") {
		t.Errorf("too many sub-grids:\n%s", out)
	}
	// The first sub-grid grows one layer towards the second; the second
	// grows towards the processed cell above it.
	for _, extent := range []string{"x [0, 4], y [0, 3]", "x [3, 4], y [1, 3]"} {
		if !strings.Contains(out, extent) {
			t.Errorf("missing sub-grid extent %q:\n%s", extent, out)
		}
	}

	if _, err := run(t, "chunk"); err == nil {
		t.Error("missing case accepted")
	}
	if _, err := run(t, "chunk", "--case", "testdata/grid.toml", "--ghosts", "some"); err == nil {
		t.Error("bad ghost policy accepted")
	}
}

func TestChunkConfigFile(t *testing.T) {
	out, err := run(t, "chunk", "--case", "testdata/grid.toml", "--config", "testdata/config.toml")
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, out, "remainder: 4 cells (3 ghost), 9 points (5 ghost)")

	// Flags take priority over the configuration file.
	out, err = run(t, "chunk", "--case", "testdata/grid.toml", "--config", "testdata/config.toml", "--ghosts", "none")
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, out, "remainder: 1 cells (0 ghost), 4 points (0 ghost)")

	if _, err := run(t, "chunk", "--case", "testdata/grid.toml", "--config", "testdata/badconfig.toml"); err == nil {
		t.Error("unknown configuration key accepted")
	}
}

func TestChunkEnvironment(t *testing.T) {
	os.Setenv("DECOMP_MIN_SIZE", "1")
	os.Setenv("DECOMP_GHOSTS", "processed")
	defer os.Unsetenv("DECOMP_MIN_SIZE")
	defer os.Unsetenv("DECOMP_GHOSTS")
	out, err := run(t, "chunk", "--case", "testdata/grid.toml")
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, out, "remainder: 4 cells (3 ghost), 9 points (5 ghost)")
}

func TestNestCommand(t *testing.T) {
	out, err := run(t, "nest", "--case", "testdata/nest.toml")
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, out,
		"domain 0 (level 0): 4 of 16 cells ghost",
		"domain 1 (level 1): 0 of 16 cells ghost",
	)
	if strings.Contains(out, "skipped") || strings.Contains(out, "no ghost cells") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestBoundaryCommand(t *testing.T) {
	out, err := run(t, "boundary", "--case", "testdata/boundary.toml", "--exchange")
	if err != nil {
		t.Fatal(err)
	}
	wantLines(t, out,
		"1 -> 0: cells [0 1], points [0 1 2 3 4 5]",
		"0 -> 1: cells [2 3], points [3 4 5 6 7 8]",
		"second pass: 2 of 2 given sets reused",
		"domain 0: 6 cells (2 ghost), 12 points (3 ghost)",
		"domain 1: 6 cells (2 ghost), 12 points (3 ghost)",
	)
}

func TestLoadCaseMissing(t *testing.T) {
	if _, err := LoadCase("testdata/missing.toml"); err == nil {
		t.Error("missing file accepted")
	}
}
