// Package pkg provides the core libraries of mro, a C3 method resolution
// order engine.
//
// # Overview
//
// mro takes a set of class declarations, each naming its direct bases in
// order, and computes the C3 linearization of every class: the order in
// which member lookups search the hierarchy. The pkg directory is organized
// into four areas:
//
//  1. Engine - graph construction, the C3 merge and member resolution
//  2. Caching - the per-session memo and the persistent result cache
//  3. Surfaces - declaration files, diagnostics, rendering and HTTP
//  4. Orchestration - the pipeline shared by the CLI and the server
//
// # Architecture
//
// The typical data flow:
//
//	JSON/TOML declarations
//	         ↓
//	    [io] package (decode, validate names)
//	         ↓
//	    [hierarchy] package (immutable class graph, cycle check)
//	         ↓
//	    [c3] package (merge, memoized by [cache.Memo])
//	         ↓
//	    [resolve] package (member lookup along the MRO)
//	         ↓
//	    text, JSON, DOT/SVG or HTTP responses
//
// Failures at every stage turn into a [diag.Report] that names the classes
// involved.
//
// # Quick Start
//
//	sess, err := session.New([]hierarchy.ClassDecl{
//	    {ID: "A"},
//	    {ID: "B", Bases: []hierarchy.ClassID{"A"}},
//	    {ID: "C", Bases: []hierarchy.ClassID{"A"}},
//	    {ID: "D", Bases: []hierarchy.ClassID{"B", "C"}},
//	}, session.Options{})
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//
//	lin, _ := sess.Linearize(ctx, "D") // [D B C A]
//
// # Main Packages
//
// ## Engine
//
// [hierarchy] - Validated, immutable inheritance graph. Rejects unknown
// bases, duplicate declarations, self-inheritance and cycles.
//
// [c3] - The C3 merge and linearization, plus the naive depth-first order
// for comparison. Inconsistent hierarchies produce an [c3.InconsistentError]
// carrying the merge state at the point of failure.
//
// [resolve] - Member lookup along a linearization, including cooperative
// "next in MRO" lookups.
//
// ## Caching
//
// [cache] - The session memo (at most one computation per class, safe for
// concurrent callers) and result caches backed by files, Redis or MongoDB.
//
// [session] - One hierarchy with its memo and member tables. Whole-hierarchy
// runs linearize depth batches concurrently.
//
// ## Surfaces
//
// [io] - Declaration files and result sets in JSON and TOML.
//
// [diag] - Structured, human-readable explanations of every failure.
//
// [render] - Graphviz DOT output, rendered to SVG or PNG.
//
// [server] - HTTP API over sessions.
//
// ## Orchestration
//
// [pipeline] - Load, linearize and cache in one call. Used by the CLI and
// the server so both behave the same.
//
// [config] - TOML configuration file.
//
// [errors] - Error codes shared by every package.
//
// [observability] - Hooks for metrics and tracing.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/c3        # Examples only
//
// Redis and MongoDB cache tests run when MRO_TEST_REDIS_ADDR or
// MRO_TEST_MONGO_URI is set.
//
// [hierarchy]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/hierarchy
// [c3]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/c3
// [c3.InconsistentError]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/c3#InconsistentError
// [resolve]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/resolve
// [cache]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/cache
// [cache.Memo]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/cache#Memo
// [session]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/session
// [io]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/io
// [diag]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/diag
// [diag.Report]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/diag#Report
// [render]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/render
// [server]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/server
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/mro/pkg/observability
package pkg
