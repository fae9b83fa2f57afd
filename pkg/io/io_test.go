package io

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/mro/pkg/c3"
	errs "github.com/matzehuels/mro/pkg/errors"
	"github.com/matzehuels/mro/pkg/hierarchy"
	"github.com/matzehuels/mro/pkg/resolve"
)

const diamondJSON = `{
  "classes": [
    {"id": "A", "members": {"m": "A.m"}},
    {"id": "B", "bases": ["A"]},
    {"id": "C", "bases": ["A"], "members": {"m": "C.m"}},
    {"id": "D", "bases": ["B", "C"]}
  ]
}`

const diamondTOML = `
[[class]]
id = "A"
members = { m = "A.m" }

[[class]]
id = "B"
bases = ["A"]

[[class]]
id = "C"
bases = ["A"]
members = { m = "C.m" }

[[class]]
id = "D"
bases = ["B", "C"]
`

func checkDiamond(t *testing.T, d *Declarations) {
	t.Helper()
	if len(d.Decls) != 4 {
		t.Fatalf("got %d decls, want 4", len(d.Decls))
	}
	if d.Decls[3].ID != "D" || !slices.Equal(d.Decls[3].Bases, []hierarchy.ClassID{"B", "C"}) {
		t.Errorf("D = %+v", d.Decls[3])
	}
	if def, ok := d.Tables.Lookup("C", "m"); !ok || def != "C.m" {
		t.Errorf("C.m = %q, %v", def, ok)
	}
	if _, ok := d.Tables.Lookup("B", "m"); ok {
		t.Error("B should define nothing")
	}
}

func TestReadDecls(t *testing.T) {
	for _, tt := range []struct {
		format Format
		input  string
	}{
		{FormatJSON, diamondJSON},
		{FormatTOML, diamondTOML},
	} {
		t.Run(string(tt.format), func(t *testing.T) {
			d, err := ReadDecls(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadDecls: %v", err)
			}
			checkDiamond(t, d)
		})
	}
}

func TestReadDeclsResolvesEndToEnd(t *testing.T) {
	d, err := ReadDecls(strings.NewReader(diamondJSON), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	g, err := hierarchy.Build(d.Decls)
	if err != nil {
		t.Fatal(err)
	}
	src := c3.SourceFunc(func(id hierarchy.ClassID) (c3.Linearization, error) { return c3.Compute(g, id) })
	res, err := resolve.Resolve(t.Context(), src, "D", "m", d.Tables)
	if err != nil || res.Owner != "C" {
		t.Errorf("Resolve(D, m) = %+v, %v", res, err)
	}
}

func TestReadDeclsErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		code   errs.Code
	}{
		{"malformed json", FormatJSON, `{"classes": [`, errs.ErrCodeInvalidFormat},
		{"unknown json field", FormatJSON, `{"classes": [{"id": "A", "parents": []}]}`, errs.ErrCodeInvalidFormat},
		{"malformed toml", FormatTOML, `[[class]`, errs.ErrCodeInvalidFormat},
		{"unknown toml key", FormatTOML, "[[class]]\nid = \"A\"\nparents = []\n", errs.ErrCodeInvalidFormat},
		{"empty id", FormatJSON, `{"classes": [{"id": ""}]}`, errs.ErrCodeInvalidInput},
		{"bad base", FormatJSON, `{"classes": [{"id": "A", "bases": [" B"]}]}`, errs.ErrCodeInvalidInput},
		{"bad member", FormatJSON, `{"classes": [{"id": "A", "members": {"": "x"}}]}`, errs.ErrCodeInvalidInput},
		{"bad format", Format("yaml"), `classes: []`, errs.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDecls(strings.NewReader(tt.input), tt.format)
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{"h.json": diamondJSON, "h.TOML": diamondTOML} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		d, err := ImportFile(path)
		if err != nil {
			t.Fatalf("ImportFile(%s): %v", name, err)
		}
		checkDiamond(t, d)
	}

	if _, err := ImportFile(filepath.Join(dir, "h.yaml")); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("unsupported extension error = %v", err)
	}
	if _, err := ImportFile(filepath.Join(dir, "missing.json")); !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestWriteDeclsRoundTrip(t *testing.T) {
	orig, err := ReadDecls(strings.NewReader(diamondJSON), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	for _, format := range []Format{FormatJSON, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteDecls(&buf, orig, format); err != nil {
				t.Fatal(err)
			}
			back, err := ReadDecls(&buf, format)
			if err != nil {
				t.Fatalf("re-read: %v\n%s", err, buf.String())
			}
			checkDiamond(t, back)
		})
	}
}

func TestResultSet(t *testing.T) {
	g := hierarchy.MustBuild([]hierarchy.ClassDecl{
		{ID: "A"},
		{ID: "B", Bases: []hierarchy.ClassID{"A"}},
		{ID: "X", Bases: []hierarchy.ClassID{"A", "B"}},
	})
	lins := map[hierarchy.ClassID]c3.Linearization{}
	failures := map[hierarchy.ClassID]error{}
	for _, id := range g.TopoOrder() {
		lin, err := c3.Compute(g, id)
		if err != nil {
			failures[id] = err
		} else {
			lins[id] = lin
		}
	}

	rs := NewResultSet(g.Hash(), g.TopoOrder(), lins, failures)
	var buf bytes.Buffer
	if err := WriteResults(&buf, rs); err != nil {
		t.Fatal(err)
	}
	back, err := ReadResults(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if back.Hash != g.Hash() || len(back.Classes) != 3 {
		t.Fatalf("result set = %+v", back)
	}
	b, ok := back.Lookup("B")
	if !ok || !slices.Equal(b.MRO, []string{"B", "A"}) {
		t.Errorf("B = %+v", b)
	}
	x, _ := back.Lookup("X")
	if x.Error == nil || x.Error.Code != errs.ErrCodeInconsistentHierarchy || len(x.MRO) != 0 {
		t.Errorf("X = %+v", x)
	}
	if got := back.Failed(); !slices.Equal(got, []string{"X"}) {
		t.Errorf("Failed() = %v", got)
	}
	if _, ok := back.Lookup("nope"); ok {
		t.Error("Lookup of unknown class should fail")
	}
}

func TestExportResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	rs := &ResultSet{Hash: "h", Classes: []ClassResult{{Class: "A", MRO: []string{"A"}}}}
	if err := ExportResults(rs, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil || !bytes.Contains(data, []byte(`"mro": [`)) {
		t.Errorf("exported %s, %v", data, err)
	}
}
