// Package pipeline runs a declaration file through the engine with result
// caching.
//
// A run loads declarations, opens a [session.Session], linearizes either the
// whole hierarchy or the requested classes, and stores the resulting
// [io.ResultSet] in a [cache.Cache] under a key derived from the hierarchy's
// content hash. The CLI and the HTTP server share the same [Runner], so both
// benefit from results computed by the other when they point at the same
// shared backend.
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/mro/pkg/errors"
	"github.com/matzehuels/mro/pkg/io"
	"github.com/matzehuels/mro/pkg/session"
)

// Options describes one run.
type Options struct {
	// Path is the declaration file. Ignored when Decls is set.
	Path string
	// Decls are already decoded declarations.
	Decls *io.Declarations
	// Classes restricts the run; empty means every class.
	Classes []string
	// DepthFirst adds the naive depth-first order of each class.
	DepthFirst bool
	// Refresh bypasses cached results and overwrites them.
	Refresh bool
	// Logger overrides the runner's logger for this run.
	Logger *log.Logger
}

// Validate checks that there is something to load.
func (o Options) Validate() error {
	if o.Decls == nil && o.Path == "" {
		return errs.New(errs.ErrCodeInvalidInput, "no declarations: set a path or pass declarations")
	}
	if o.Decls == nil {
		if err := errs.ValidatePath(o.Path); err != nil {
			return err
		}
	}
	for _, c := range o.Classes {
		if err := errs.ValidateClassID(c); err != nil {
			return err
		}
	}
	return nil
}

// Result is the outcome of a run.
type Result struct {
	// Session stays open for follow-up queries; the caller closes it.
	Session *session.Session
	Results *io.ResultSet
	Key     string
	// CacheHit is set when Results came from the cache.
	CacheHit bool
	Stats    Stats
}

// Stats summarizes a run.
type Stats struct {
	Classes  int
	Failed   int
	Batches  int
	Duration time.Duration
}
