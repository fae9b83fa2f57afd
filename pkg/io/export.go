package io

import (
	"encoding/json"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mro/pkg/c3"
	"github.com/matzehuels/mro/pkg/diag"
	errs "github.com/matzehuels/mro/pkg/errors"
	"github.com/matzehuels/mro/pkg/hierarchy"
)

// WriteDecls encodes declarations in the given format. The output reads
// back with [ReadDecls] to the same declarations.
func WriteDecls(w io.Writer, d *Declarations, format Format) error {
	doc := document{Classes: make([]class, len(d.Decls))}
	for i, decl := range d.Decls {
		c := class{ID: string(decl.ID)}
		for _, b := range decl.Bases {
			c.Bases = append(c.Bases, string(b))
		}
		if t := d.Tables[decl.ID]; len(t) > 0 {
			c.Members = make(map[string]string, len(t))
			for name, def := range t {
				c.Members[name] = string(def)
			}
		}
		doc.Classes[i] = c
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return errs.Wrap(errs.ErrCodeInternal, err, "encode json")
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return errs.Wrap(errs.ErrCodeInternal, err, "encode toml")
		}
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	return nil
}

// ResultSet is the serialized outcome of linearizing a hierarchy.
type ResultSet struct {
	// Hash identifies the hierarchy the results belong to.
	Hash    string        `json:"hash"`
	Classes []ClassResult `json:"classes"`
}

// ClassResult is one class's order or failure.
type ClassResult struct {
	Class      string       `json:"class"`
	MRO        []string     `json:"mro,omitempty"`
	DepthFirst []string     `json:"depth_first,omitempty"`
	Error      *diag.Report `json:"error,omitempty"`
}

// NewResultSet collects results for the classes in order. Classes with
// neither a linearization nor a failure are skipped.
func NewResultSet(hash string, order []hierarchy.ClassID, lins map[hierarchy.ClassID]c3.Linearization, failures map[hierarchy.ClassID]error) *ResultSet {
	rs := &ResultSet{Hash: hash, Classes: make([]ClassResult, 0, len(order))}
	for _, id := range order {
		if lin, ok := lins[id]; ok {
			rs.Classes = append(rs.Classes, ClassResult{Class: string(id), MRO: lin.Strings()})
		} else if err, ok := failures[id]; ok {
			rs.Classes = append(rs.Classes, ClassResult{Class: string(id), Error: diag.Explain(err)})
		}
	}
	return rs
}

// Lookup returns the result for class.
func (rs *ResultSet) Lookup(class string) (ClassResult, bool) {
	i := slices.IndexFunc(rs.Classes, func(c ClassResult) bool { return c.Class == class })
	if i < 0 {
		return ClassResult{}, false
	}
	return rs.Classes[i], true
}

// Failed returns the classes that could not be linearized, sorted.
func (rs *ResultSet) Failed() []string {
	set := make(map[string]bool)
	for _, c := range rs.Classes {
		if c.Error != nil {
			set[c.Class] = true
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// WriteResults encodes rs as indented JSON.
func WriteResults(w io.Writer, rs *ResultSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rs); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode results")
	}
	return nil
}

// ReadResults decodes a result set written by [WriteResults].
func ReadResults(r io.Reader) (*ResultSet, error) {
	var rs ResultSet
	if err := json.NewDecoder(r).Decode(&rs); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode results")
	}
	return &rs, nil
}

// ExportResults writes rs to a JSON file at path.
func ExportResults(rs *ResultSet, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return WriteResults(f, rs)
}
