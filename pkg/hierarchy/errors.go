package hierarchy

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/mro/pkg/errors"
)

// UnknownBaseError reports a base id with no declaration in the graph.
type UnknownBaseError struct {
	Class ClassID // the declaring class
	Base  ClassID // the undeclared base
}

func (e *UnknownBaseError) Error() string {
	return fmt.Sprintf("class %s: unknown base %s", e.Class, e.Base)
}

// Code implements [errs.Coder].
func (e *UnknownBaseError) Code() errs.Code { return errs.ErrCodeUnknownBase }

// DuplicateDeclarationError reports a class id declared more than once.
type DuplicateDeclarationError struct {
	Class ClassID
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("class %s declared more than once", e.Class)
}

// Code implements [errs.Coder].
func (e *DuplicateDeclarationError) Code() errs.Code { return errs.ErrCodeDuplicateDeclaration }

// SelfInheritanceError reports a class that lists itself as a base.
type SelfInheritanceError struct {
	Class ClassID
}

func (e *SelfInheritanceError) Error() string {
	return fmt.Sprintf("class %s lists itself as a base", e.Class)
}

// Code implements [errs.Coder].
func (e *SelfInheritanceError) Code() errs.Code { return errs.ErrCodeSelfInheritance }

// DuplicateBaseError reports a class that lists the same base twice.
type DuplicateBaseError struct {
	Class ClassID
	Base  ClassID
}

func (e *DuplicateBaseError) Error() string {
	return fmt.Sprintf("class %s: duplicate base %s", e.Class, e.Base)
}

// Code implements [errs.Coder].
func (e *DuplicateBaseError) Code() errs.Code { return errs.ErrCodeDuplicateBase }

// CycleError reports a cycle in the base edges. Cycle lists the classes in
// traversal order: each class lists the next one as a base, and the last lists
// the first.
type CycleError struct {
	Cycle []ClassID
}

func (e *CycleError) Error() string {
	parts := make([]string, 0, len(e.Cycle)+1)
	for _, id := range e.Cycle {
		parts = append(parts, string(id))
	}
	if len(e.Cycle) > 0 {
		parts = append(parts, string(e.Cycle[0]))
	}
	return "inheritance cycle: " + strings.Join(parts, " -> ")
}

// Code implements [errs.Coder].
func (e *CycleError) Code() errs.Code { return errs.ErrCodeCycleDetected }
