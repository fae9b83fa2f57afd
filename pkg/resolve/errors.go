package resolve

import (
	"fmt"

	"github.com/matzehuels/mro/pkg/c3"
	errs "github.com/matzehuels/mro/pkg/errors"
	"github.com/matzehuels/mro/pkg/hierarchy"
)

// NotFoundError reports that no class in the searched part of the
// linearization defines the member.
type NotFoundError struct {
	Class  hierarchy.ClassID
	Member string
	// After is set for super lookups.
	After hierarchy.ClassID
	// Searched is the part of L(Class) that was walked.
	Searched c3.Linearization
}

func (e *NotFoundError) Error() string {
	if e.After != "" {
		return fmt.Sprintf("no %q after %s in the method resolution order of %s", e.Member, e.After, e.Class)
	}
	return fmt.Sprintf("%s has no member %q (searched %s)", e.Class, e.Member, e.Searched)
}

// Code returns NOT_FOUND.
func (e *NotFoundError) Code() errs.Code { return errs.ErrCodeNotFound }
