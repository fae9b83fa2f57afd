package c3

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/mro/pkg/errors"
	"github.com/matzehuels/mro/pkg/hierarchy"
)

// InconsistentError reports a hierarchy with no consistent linearization: at
// some point every remaining head also sat in the tail of another input.
type InconsistentError struct {
	// Class is the class whose linearization failed (empty for a bare Merge).
	Class hierarchy.ClassID
	// Conflicts are the remaining heads, in input order. Each of them had to
	// come after something that had to come after it.
	Conflicts []hierarchy.ClassID
	// Partial is the output built before the merge got stuck, starting with
	// Class itself when Class is set.
	Partial Linearization
	// Remaining are the non-empty inputs at the time of failure.
	Remaining []Input
}

func (e *InconsistentError) Error() string {
	names := make([]string, len(e.Conflicts))
	for i, id := range e.Conflicts {
		names[i] = string(id)
	}
	if e.Class == "" {
		return "cannot merge: conflicting order for " + strings.Join(names, ", ")
	}
	return fmt.Sprintf("cannot create a consistent method resolution order for %s: conflicting order for %s",
		e.Class, strings.Join(names, ", "))
}

// Code implements [errs.Coder].
func (e *InconsistentError) Code() errs.Code { return errs.ErrCodeInconsistentHierarchy }

// BaseError reports that a class could not be linearized because one of its
// bases could not. The underlying error is the base's own failure.
type BaseError struct {
	Class hierarchy.ClassID
	Base  hierarchy.ClassID
	Err   error
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("class %s: base %s: %v", e.Class, e.Base, e.Err)
}

func (e *BaseError) Unwrap() error { return e.Err }

// Code implements [errs.Coder] by reporting the base's code.
func (e *BaseError) Code() errs.Code { return errs.GetCode(e.Err) }

// Root follows a chain of [*BaseError] to the class where linearization
// actually failed and returns that error.
func Root(err error) error {
	for {
		be, ok := err.(*BaseError)
		if !ok {
			return err
		}
		err = be.Err
	}
}
