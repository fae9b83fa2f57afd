package resolve

import (
	"context"
	"fmt"
	"slices"

	"github.com/matzehuels/mro/pkg/c3"
	errs "github.com/matzehuels/mro/pkg/errors"
	"github.com/matzehuels/mro/pkg/hierarchy"
	"github.com/matzehuels/mro/pkg/observability"
)

// Definition is an opaque handle for a member definition.
type Definition string

// MemberTable maps member names to the definitions a class provides itself,
// not counting inherited ones.
type MemberTable map[string]Definition

// Tables holds the member table of every class that defines something.
// Classes without an entry define nothing.
type Tables map[hierarchy.ClassID]MemberTable

// Lookup returns the definition of member in class itself.
func (t Tables) Lookup(class hierarchy.ClassID, member string) (Definition, bool) {
	def, ok := t[class][member]
	return def, ok
}

// Define adds a definition, creating the class table if needed.
func (t Tables) Define(class hierarchy.ClassID, member string, def Definition) {
	if t[class] == nil {
		t[class] = make(MemberTable)
	}
	t[class][member] = def
}

// Resolution is the outcome of a successful lookup.
type Resolution struct {
	Class      hierarchy.ClassID `json:"class"`
	Member     string            `json:"member"`
	Owner      hierarchy.ClassID `json:"owner"`
	Definition Definition        `json:"definition"`
	// Index is the owner's position in the linearization of Class.
	Index int `json:"index"`
}

func (r Resolution) String() string {
	return fmt.Sprintf("%s.%s -> %s (%s)", r.Class, r.Member, r.Owner, r.Definition)
}

// Resolve returns the first class in L(id) that defines member.
func Resolve(ctx context.Context, src c3.Source, id hierarchy.ClassID, member string, tables Tables) (Resolution, error) {
	res, err := search(src, id, "", member, tables)
	observe(ctx, id, member, res, err)
	return res, err
}

// Next continues the search after class after in L(id), the way a
// cooperative super call does. after must appear in L(id).
func Next(ctx context.Context, src c3.Source, id, after hierarchy.ClassID, member string, tables Tables) (Resolution, error) {
	if after == "" {
		return Resolution{}, errs.New(errs.ErrCodeInvalidInput, "super lookup needs a class to start after")
	}
	res, err := search(src, id, after, member, tables)
	observe(ctx, id, member, res, err)
	return res, err
}

// Definers returns every class in L(id) that defines member, most-derived
// first. The first entry is what [Resolve] returns; the others are the
// definitions it overrides.
func Definers(src c3.Source, id hierarchy.ClassID, member string, tables Tables) ([]Resolution, error) {
	if err := errs.ValidateMemberName(member); err != nil {
		return nil, err
	}
	lin, err := src.Linearization(id)
	if err != nil {
		return nil, err
	}

	var out []Resolution
	for i, c := range lin {
		if def, ok := tables.Lookup(c, member); ok {
			out = append(out, Resolution{Class: id, Member: member, Owner: c, Definition: def, Index: i})
		}
	}
	if len(out) == 0 {
		return nil, &NotFoundError{Class: id, Member: member, Searched: slices.Clone(lin)}
	}
	return out, nil
}

func search(src c3.Source, id, after hierarchy.ClassID, member string, tables Tables) (Resolution, error) {
	if err := errs.ValidateMemberName(member); err != nil {
		return Resolution{}, err
	}
	lin, err := src.Linearization(id)
	if err != nil {
		return Resolution{}, err
	}

	start := 0
	if after != "" {
		i := lin.Index(after)
		if i < 0 {
			return Resolution{}, errs.New(errs.ErrCodeInvalidInput, "%s is not in the method resolution order of %s %s", after, id, lin)
		}
		start = i + 1
	}

	for i := start; i < len(lin); i++ {
		if def, ok := tables.Lookup(lin[i], member); ok {
			return Resolution{Class: id, Member: member, Owner: lin[i], Definition: def, Index: i}, nil
		}
	}
	return Resolution{}, &NotFoundError{Class: id, Member: member, After: after, Searched: slices.Clone(lin[start:])}
}

func observe(ctx context.Context, id hierarchy.ClassID, member string, res Resolution, err error) {
	observability.Resolve().OnResolve(ctx, string(id), member, string(res.Owner), err)
}
