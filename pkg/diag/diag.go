// Package diag turns engine errors into structured explanations.
//
// Every failure the engine reports already carries its evidence as data:
// a [hierarchy.CycleError] holds the cycle, a [c3.InconsistentError] holds
// the conflicting heads, the partial order and the inputs that were left.
// [Explain] collects that evidence into a [Report] that callers can render
// as text, JSON or a graph highlight without re-running anything.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/mro/pkg/c3"
	errs "github.com/matzehuels/mro/pkg/errors"
	"github.com/matzehuels/mro/pkg/hierarchy"
	"github.com/matzehuels/mro/pkg/resolve"
)

// Report explains one failure.
type Report struct {
	Code errs.Code `json:"code"`
	// Class is the class the failing request was about.
	Class hierarchy.ClassID `json:"class,omitempty"`
	// Origin is the class where the failure actually happened. It differs
	// from Class when Class only inherits the failure from an ancestor.
	Origin hierarchy.ClassID `json:"origin,omitempty"`
	// Via is the base chain from Class down to Origin.
	Via     []hierarchy.ClassID `json:"via,omitempty"`
	Summary string              `json:"summary"`

	// Base is the offending base for UNKNOWN_BASE and DUPLICATE_BASE.
	Base hierarchy.ClassID `json:"base,omitempty"`
	// Cycle is set for CYCLE_DETECTED.
	Cycle []hierarchy.ClassID `json:"cycle,omitempty"`

	// Conflicts, Partial and Constraints are set for INCONSISTENT_HIERARCHY.
	Conflicts   []hierarchy.ClassID `json:"conflicts,omitempty"`
	Partial     []hierarchy.ClassID `json:"partial,omitempty"`
	Constraints []Constraint        `json:"constraints,omitempty"`

	// Member and Searched are set for NOT_FOUND.
	Member   string              `json:"member,omitempty"`
	Searched []hierarchy.ClassID `json:"searched,omitempty"`
}

// Constraint is one ordering requirement that blocked the merge: Class
// cannot be placed yet because MustFollow precedes it in the input list
// contributed by Source.
type Constraint struct {
	Class      hierarchy.ClassID `json:"class"`
	MustFollow hierarchy.ClassID `json:"must_follow"`
	Source     hierarchy.ClassID `json:"source"`
	// Local means the list is the declared base order of Source rather
	// than the linearization of Source.
	Local bool `json:"local"`
}

func (c Constraint) String() string {
	if c.Local {
		return fmt.Sprintf("%s must come after %s (bases declared by %s)", c.Class, c.MustFollow, c.Source)
	}
	return fmt.Sprintf("%s must come after %s (linearization of %s)", c.Class, c.MustFollow, c.Source)
}

// Explain builds a report for err. It returns nil for a nil error. Errors
// without a code are reported as INTERNAL_ERROR.
func Explain(err error) *Report {
	if err == nil {
		return nil
	}

	r := &Report{Code: errs.GetCode(err), Summary: errs.UserMessage(err)}
	if r.Code == "" {
		r.Code = errs.ErrCodeInternal
	}

	var be *c3.BaseError
	if errors.As(err, &be) {
		r.Class = be.Class
		for cur := error(be); ; {
			b, ok := cur.(*c3.BaseError)
			if !ok {
				break
			}
			r.Via = append(r.Via, b.Base)
			cur = b.Err
		}
		r.Origin = r.Via[len(r.Via)-1]
	}

	var (
		ie *c3.InconsistentError
		ce *hierarchy.CycleError
		ub *hierarchy.UnknownBaseError
		db *hierarchy.DuplicateBaseError
		dd *hierarchy.DuplicateDeclarationError
		si *hierarchy.SelfInheritanceError
		nf *resolve.NotFoundError
	)
	switch {
	case errors.As(err, &ie):
		explainInconsistent(r, ie)
	case errors.As(err, &ce):
		r.Cycle = append([]hierarchy.ClassID(nil), ce.Cycle...)
		if len(ce.Cycle) > 0 {
			r.Class = ce.Cycle[0]
		}
	case errors.As(err, &ub):
		r.Class, r.Base = ub.Class, ub.Base
	case errors.As(err, &db):
		r.Class, r.Base = db.Class, db.Base
	case errors.As(err, &dd):
		r.Class = dd.Class
	case errors.As(err, &si):
		r.Class, r.Base = si.Class, si.Class
	case errors.As(err, &nf):
		r.Class, r.Member = nf.Class, nf.Member
		r.Searched = append([]hierarchy.ClassID(nil), nf.Searched...)
	}
	return r
}

func explainInconsistent(r *Report, ie *c3.InconsistentError) {
	if r.Class == "" {
		r.Class = ie.Class
	}
	if r.Origin == "" && r.Class != ie.Class {
		r.Origin = ie.Class
	}
	r.Conflicts = append([]hierarchy.ClassID(nil), ie.Conflicts...)
	r.Partial = append([]hierarchy.ClassID(nil), ie.Partial...)
	r.Constraints = Constraints(ie)
}

// Constraints lists, for every conflicting head, each remaining input that
// holds it in its tail, in conflict order and then input order.
func Constraints(ie *c3.InconsistentError) []Constraint {
	var out []Constraint
	for _, head := range ie.Conflicts {
		for _, in := range ie.Remaining {
			if len(in.Seq) < 2 {
				continue
			}
			for _, id := range in.Seq[1:] {
				if id == head {
					out = append(out, Constraint{
						Class:      head,
						MustFollow: in.Seq[0],
						Source:     in.Source,
						Local:      in.Local,
					})
					break
				}
			}
		}
	}
	return out
}

// Text renders the report for a terminal.
func (r *Report) Text() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", r.Code, r.headline())

	if r.Origin != "" && r.Origin != r.Class {
		fmt.Fprintf(&b, "  inherited from %s via %s\n", r.Origin, join(r.Via, " -> "))
	}
	if len(r.Cycle) > 0 {
		fmt.Fprintf(&b, "  cycle: %s -> %s\n", join(r.Cycle, " -> "), r.Cycle[0])
	}
	if len(r.Conflicts) > 0 {
		fmt.Fprintf(&b, "  conflicting classes: %s\n", join(r.Conflicts, ", "))
		fmt.Fprintf(&b, "  order so far: [%s]\n", join(r.Partial, " "))
		for _, c := range r.Constraints {
			fmt.Fprintf(&b, "  - %s\n", c)
		}
	}
	if r.Member != "" {
		fmt.Fprintf(&b, "  searched: [%s]\n", join(r.Searched, " "))
	}
	return b.String()
}

func (r *Report) headline() string {
	switch r.Code {
	case errs.ErrCodeInconsistentHierarchy:
		class := r.Origin
		if class == "" {
			class = r.Class
		}
		if class == "" {
			return "no consistent method resolution order"
		}
		if r.Origin != "" && r.Origin != r.Class {
			return fmt.Sprintf("%s has no consistent method resolution order because %s has none", r.Class, r.Origin)
		}
		return fmt.Sprintf("%s has no consistent method resolution order", class)
	case errs.ErrCodeCycleDetected:
		return "inheritance cycle"
	}
	return r.Summary
}

func join(ids []hierarchy.ClassID, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, sep)
}
