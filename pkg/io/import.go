package io

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/mro/pkg/errors"
	"github.com/matzehuels/mro/pkg/hierarchy"
	"github.com/matzehuels/mro/pkg/resolve"
)

// Format is a declaration file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "%s: unsupported extension (want .json or .toml)", path)
}

// Declarations is a decoded declaration file.
type Declarations struct {
	Decls  []hierarchy.ClassDecl
	Tables resolve.Tables
}

type document struct {
	Classes []class `json:"classes" toml:"class"`
}

type class struct {
	ID      string            `json:"id" toml:"id"`
	Bases   []string          `json:"bases,omitempty" toml:"bases,omitempty"`
	Members map[string]string `json:"members,omitempty" toml:"members,omitempty"`
}

// ReadDecls decodes declarations from r. Class ids and member names are
// validated; graph rules such as unknown bases and cycles are left to
// [hierarchy.Build]. ReadDecls does not close r.
func ReadDecls(r io.Reader, format Format) (*Declarations, error) {
	var doc document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode json")
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&doc)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "decode toml: unknown key %s", undecoded[0])
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	return doc.declarations()
}

// ImportFile reads the declaration file at path.
func ImportFile(path string) (*Declarations, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadDecls(f, format)
}

func (d document) declarations() (*Declarations, error) {
	out := &Declarations{
		Decls:  make([]hierarchy.ClassDecl, 0, len(d.Classes)),
		Tables: resolve.Tables{},
	}
	for i, c := range d.Classes {
		if err := errs.ValidateClassID(c.ID); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "class #%d", i+1)
		}
		decl := hierarchy.ClassDecl{ID: hierarchy.ClassID(c.ID)}
		for _, b := range c.Bases {
			if err := errs.ValidateClassID(b); err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "class %s: base", c.ID)
			}
			decl.Bases = append(decl.Bases, hierarchy.ClassID(b))
		}
		for name, def := range c.Members {
			if err := errs.ValidateMemberName(name); err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "class %s", c.ID)
			}
			out.Tables.Define(decl.ID, name, resolve.Definition(def))
		}
		out.Decls = append(out.Decls, decl)
	}
	return out, nil
}
