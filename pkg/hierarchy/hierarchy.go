package hierarchy

import (
	"slices"

	errs "github.com/matzehuels/mro/pkg/errors"
)

// ClassID identifies a class. Two ids are the same class exactly when they
// are equal strings; the engine never inspects their contents.
type ClassID string

// String returns the id as a plain string.
func (id ClassID) String() string { return string(id) }

// ClassDecl is one class declaration: an id and its direct bases in declared
// left-to-right order. A class with no bases is a root.
type ClassDecl struct {
	ID    ClassID   `json:"id" toml:"id"`
	Bases []ClassID `json:"bases,omitempty" toml:"bases"`
}

// Graph is a validated, immutable class hierarchy.
//
// The zero value is not usable - use [Build] to create a Graph.
// A Graph is safe for concurrent use: nothing mutates it after Build returns.
type Graph struct {
	order      []ClassID             // declaration order
	index      map[ClassID]int       // class -> position in order
	bases      map[ClassID][]ClassID // class -> direct bases (declared order)
	subclasses map[ClassID][]ClassID // class -> direct subclasses (declaration order)
	depth      map[ClassID]int       // class -> longest path to a root
	hash       string
}

// Build validates decls and returns the class graph.
//
// Build fails with the first problem found, in this order:
//   - an invalid class id (INVALID_INPUT)
//   - [DuplicateDeclarationError] when the same id is declared twice
//   - [SelfInheritanceError] when a class lists itself as a base
//   - [DuplicateBaseError] when a class lists the same base twice
//   - [UnknownBaseError] when a base has no declaration
//   - [CycleError] when the base edges form a cycle
//
// No partial graph is returned on failure.
func Build(decls []ClassDecl) (*Graph, error) {
	g := &Graph{
		order:      make([]ClassID, 0, len(decls)),
		index:      make(map[ClassID]int, len(decls)),
		bases:      make(map[ClassID][]ClassID, len(decls)),
		subclasses: make(map[ClassID][]ClassID),
	}

	for _, d := range decls {
		if err := errs.ValidateClassID(string(d.ID)); err != nil {
			return nil, err
		}
		if _, exists := g.index[d.ID]; exists {
			return nil, &DuplicateDeclarationError{Class: d.ID}
		}
		g.index[d.ID] = len(g.order)
		g.order = append(g.order, d.ID)
	}

	for _, d := range decls {
		seen := make(map[ClassID]bool, len(d.Bases))
		for _, b := range d.Bases {
			if b == d.ID {
				return nil, &SelfInheritanceError{Class: d.ID}
			}
			if seen[b] {
				return nil, &DuplicateBaseError{Class: d.ID, Base: b}
			}
			seen[b] = true
		}
		g.bases[d.ID] = slices.Clone(d.Bases)
	}

	for _, id := range g.order {
		for _, b := range g.bases[id] {
			if _, ok := g.index[b]; !ok {
				return nil, &UnknownBaseError{Class: id, Base: b}
			}
			g.subclasses[b] = append(g.subclasses[b], id)
		}
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, &CycleError{Cycle: cycle}
	}

	g.depth = g.computeDepths()
	g.hash = g.computeHash()
	return g, nil
}

// MustBuild is like [Build] but panics on error. It is intended for tests and
// package-level fixtures.
func MustBuild(decls []ClassDecl) *Graph {
	g, err := Build(decls)
	if err != nil {
		panic(err)
	}
	return g
}

// Has reports whether id is declared in the graph.
func (g *Graph) Has(id ClassID) bool {
	_, ok := g.index[id]
	return ok
}

// BasesOf returns the direct bases of id in declared order.
// Unknown ids fail with UNKNOWN_CLASS rather than being treated as roots.
// The returned slice must not be modified.
func (g *Graph) BasesOf(id ClassID) ([]ClassID, error) {
	bases, ok := g.bases[id]
	if !ok {
		return nil, unknownClass(id)
	}
	return bases, nil
}

// SubclassesOf returns the classes that list id as a direct base, in
// declaration order. The returned slice must not be modified.
func (g *Graph) SubclassesOf(id ClassID) ([]ClassID, error) {
	if !g.Has(id) {
		return nil, unknownClass(id)
	}
	return g.subclasses[id], nil
}

// AllClasses returns every declared class in declaration order.
// The returned slice is a copy.
func (g *Graph) AllClasses() []ClassID { return slices.Clone(g.order) }

// Len returns the number of declared classes.
func (g *Graph) Len() int { return len(g.order) }

// Roots returns classes without bases, in declaration order.
func (g *Graph) Roots() []ClassID {
	var roots []ClassID
	for _, id := range g.order {
		if len(g.bases[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// Decls returns the declarations the graph was built from, in declaration
// order. Feeding them back to [Build] yields an equivalent graph.
func (g *Graph) Decls() []ClassDecl {
	decls := make([]ClassDecl, len(g.order))
	for i, id := range g.order {
		decls[i] = ClassDecl{ID: id, Bases: slices.Clone(g.bases[id])}
	}
	return decls
}

// Hash returns a content hash of the declarations. Graphs built from the same
// declarations in the same order have the same hash.
func (g *Graph) Hash() string { return g.hash }

func unknownClass(id ClassID) error {
	return errs.New(errs.ErrCodeUnknownClass, "class %q is not declared", id)
}
