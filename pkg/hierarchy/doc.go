// Package hierarchy provides the validated class graph that the linearization
// engine runs on.
//
// # Overview
//
// A hierarchy is a set of [ClassDecl] values, each naming a class and its
// direct bases in declared left-to-right order. [Build] checks the
// declarations once and returns an immutable [Graph]:
//
//	g, err := hierarchy.Build([]hierarchy.ClassDecl{
//	    {ID: "A"},
//	    {ID: "B", Bases: []hierarchy.ClassID{"A"}},
//	    {ID: "C", Bases: []hierarchy.ClassID{"A"}},
//	    {ID: "D", Bases: []hierarchy.ClassID{"B", "C"}},
//	})
//
// The graph is closed-world: every base must be declared. Unknown ids are
// errors, never implicit roots.
//
// # Validation
//
// Build rejects duplicate declarations, self-inheritance, duplicate bases,
// unknown bases and cycles. Each failure is a typed error carrying the
// offending classes ([CycleError.Cycle] holds the cycle in traversal order),
// and each type reports its code through [errors.Coder].
//
// Cycle detection is an iterative depth-first search with white/gray/black
// coloring; the explicit path stack marks the classes currently being visited.
//
// # Batches
//
// [Graph.Batches] groups classes by depth (longest chain to a root). A class's
// bases always sit in earlier batches, which is what lets the session
// linearize each batch in parallel.
//
// # Concurrency
//
// A Graph is never modified after Build and is safe for concurrent readers.
// A different hierarchy needs a new Graph.
//
// [errors.Coder]: github.com/matzehuels/mro/pkg/errors.Coder
package hierarchy
