package c3

import (
	"slices"
	"strings"

	"github.com/matzehuels/mro/pkg/hierarchy"
)

// Linearization is the method resolution order of one class: the class itself
// followed by every ancestor exactly once, most-derived first.
type Linearization []hierarchy.ClassID

// Index returns the position of id, or -1 if it is not an ancestor.
func (l Linearization) Index(id hierarchy.ClassID) int { return slices.Index(l, id) }

// Contains reports whether id appears in the linearization.
func (l Linearization) Contains(id hierarchy.ClassID) bool { return l.Index(id) >= 0 }

// Precedes reports whether x comes before y. Both must be present.
func (l Linearization) Precedes(x, y hierarchy.ClassID) bool {
	i, j := l.Index(x), l.Index(y)
	return i >= 0 && j >= 0 && i < j
}

// Strings returns the ids as plain strings.
func (l Linearization) Strings() []string {
	out := make([]string, len(l))
	for i, id := range l {
		out[i] = string(id)
	}
	return out
}

func (l Linearization) String() string {
	return "[" + strings.Join(l.Strings(), " ") + "]"
}

// Source supplies the linearizations of bases. The linearization cache is the
// production Source; [Compute] uses a private map.
type Source interface {
	Linearization(id hierarchy.ClassID) (Linearization, error)
}

// SourceFunc adapts a function to [Source].
type SourceFunc func(id hierarchy.ClassID) (Linearization, error)

// Linearization calls f(id).
func (f SourceFunc) Linearization(id hierarchy.ClassID) (Linearization, error) { return f(id) }

// Linearize computes the C3 linearization of id:
//
//	L(C) = [C] + merge(L(B1), ..., L(Bn), [B1, ..., Bn])
//
// Base linearizations come from src. A root linearizes to [C]. When a base
// cannot be linearized the error is a [*BaseError] wrapping the base's error;
// when the merge gets stuck it is an [*InconsistentError]. No partial
// linearization is ever returned.
func Linearize(g *hierarchy.Graph, id hierarchy.ClassID, src Source) (Linearization, error) {
	bases, err := g.BasesOf(id)
	if err != nil {
		return nil, err
	}
	if len(bases) == 0 {
		return Linearization{id}, nil
	}

	inputs := make([]Input, 0, len(bases)+1)
	for _, b := range bases {
		lb, err := src.Linearization(b)
		if err != nil {
			return nil, &BaseError{Class: id, Base: b, Err: err}
		}
		inputs = append(inputs, Input{Source: b, Seq: lb})
	}
	inputs = append(inputs, Input{Source: id, Local: true, Seq: bases})

	merged, c := merge(inputs)
	if c != nil {
		return nil, &InconsistentError{
			Class:     id,
			Conflicts: c.heads,
			Partial:   append(Linearization{id}, c.partial...),
			Remaining: c.remaining,
		}
	}

	out := make(Linearization, 0, len(merged)+1)
	out = append(out, id)
	return append(out, merged...), nil
}

// Compute linearizes id and, recursively, its ancestors without any shared
// cache. It is meant for one-off queries and tests; sessions use the
// concurrent memo in package cache.
func Compute(g *hierarchy.Graph, id hierarchy.ClassID) (Linearization, error) {
	type result struct {
		lin Linearization
		err error
	}
	memo := make(map[hierarchy.ClassID]result)

	var src SourceFunc
	src = func(c hierarchy.ClassID) (Linearization, error) {
		if r, ok := memo[c]; ok {
			return r.lin, r.err
		}
		lin, err := Linearize(g, c, src)
		memo[c] = result{lin, err}
		return lin, err
	}
	return src(id)
}

// DepthFirst returns the classic pre-C3 order: a depth-first, left-to-right
// walk of the bases keeping the first occurrence of each class. It exists
// for comparison only; it can violate monotonicity and place a shared
// ancestor ahead of classes that override it.
func DepthFirst(g *hierarchy.Graph, id hierarchy.ClassID) (Linearization, error) {
	if !g.Has(id) {
		_, err := g.BasesOf(id)
		return nil, err
	}
	seen := make(map[hierarchy.ClassID]bool)
	var out Linearization
	var walk func(c hierarchy.ClassID)
	walk = func(c hierarchy.ClassID) {
		if seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
		bases, _ := g.BasesOf(c)
		for _, b := range bases {
			walk(b)
		}
	}
	walk(id)
	return out, nil
}
