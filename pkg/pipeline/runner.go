package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mro/pkg/c3"
	"github.com/matzehuels/mro/pkg/cache"
	"github.com/matzehuels/mro/pkg/hierarchy"
	"github.com/matzehuels/mro/pkg/io"
	"github.com/matzehuels/mro/pkg/observability"
	"github.com/matzehuels/mro/pkg/session"
)

// Runner executes runs against a result cache. It holds no per-run state
// and is safe for concurrent use.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Workers int
	// TTL is the lifetime of cached result sets.
	TTL time.Duration
	// SessionTTL is passed to the sessions the runner opens.
	SessionTTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means the default keyer and a nil logger means log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger, TTL: cache.TTLResult}
}

// Execute loads, linearizes and caches. Graph construction errors and
// unknown classes in opts.Classes are returned as errors; per-class
// linearization failures are part of the result.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := r.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}

	start := time.Now()
	decls := opts.Decls
	if decls == nil {
		d, err := io.ImportFile(opts.Path)
		if err != nil {
			return nil, err
		}
		decls = d
	}

	sess, err := session.New(decls.Decls, session.Options{
		Tables:  decls.Tables,
		Workers: r.Workers,
		TTL:     r.SessionTTL,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	g := sess.Graph()
	logger.Debug("loaded hierarchy", "classes", g.Len(), "hash", g.Hash()[:12])

	key := r.Keyer.ResultKey(g.Hash(), cache.ResultKeyOpts{Classes: opts.Classes, DepthFirst: opts.DepthFirst})
	result := &Result{Session: sess, Key: key}

	if !opts.Refresh {
		if rs, ok := r.lookup(ctx, key); ok {
			result.Results = rs
			result.CacheHit = true
			result.Stats = stats(rs, 0, time.Since(start))
			logger.Info("using cached results", "classes", result.Stats.Classes, "failed", result.Stats.Failed)
			return result, nil
		}
	}

	rs, batches, err := r.compute(ctx, sess, opts)
	if err != nil {
		sess.Close()
		return nil, err
	}
	result.Results = rs
	result.Stats = stats(rs, batches, time.Since(start))

	r.store(ctx, key, rs, logger)
	logger.Info("linearized hierarchy",
		"classes", result.Stats.Classes,
		"failed", result.Stats.Failed,
		"duration", result.Stats.Duration)
	return result, nil
}

func (r *Runner) compute(ctx context.Context, sess *session.Session, opts Options) (*io.ResultSet, int, error) {
	g := sess.Graph()

	var (
		order    []hierarchy.ClassID
		lins     map[hierarchy.ClassID]c3.Linearization
		failures map[hierarchy.ClassID]error
		batches  int
	)
	if len(opts.Classes) == 0 {
		all, err := sess.LinearizeAll(ctx)
		if err != nil {
			return nil, 0, err
		}
		order, lins, failures, batches = all.Order, all.Linearizations, all.Failures, all.Batches
	} else {
		lins = make(map[hierarchy.ClassID]c3.Linearization)
		failures = make(map[hierarchy.ClassID]error)
		for _, c := range opts.Classes {
			id := hierarchy.ClassID(c)
			if !g.Has(id) {
				_, err := g.BasesOf(id)
				return nil, 0, err
			}
			lin, err := sess.Linearize(ctx, id)
			if err != nil && ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			if err != nil {
				failures[id] = err
			} else {
				lins[id] = lin
			}
			order = append(order, id)
		}
	}

	rs := io.NewResultSet(g.Hash(), order, lins, failures)
	if opts.DepthFirst {
		for i, c := range rs.Classes {
			if c.Error != nil {
				continue
			}
			naive, err := sess.DepthFirst(hierarchy.ClassID(c.Class))
			if err == nil {
				rs.Classes[i].DepthFirst = naive.Strings()
			}
		}
	}
	return rs, batches, nil
}

func (r *Runner) lookup(ctx context.Context, key string) (*io.ResultSet, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("result cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "result")
		return nil, false
	}
	rs, err := io.ReadResults(bytes.NewReader(data))
	if err != nil {
		_ = r.Cache.Delete(ctx, key)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "result")
	return rs, true
}

func (r *Runner) store(ctx context.Context, key string, rs *io.ResultSet, logger *log.Logger) {
	var buf bytes.Buffer
	if err := io.WriteResults(&buf, rs); err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, buf.Bytes(), r.TTL); err != nil {
		logger.Warn("result cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "result", buf.Len())
}

func stats(rs *io.ResultSet, batches int, d time.Duration) Stats {
	return Stats{
		Classes:  len(rs.Classes),
		Failed:   len(rs.Failed()),
		Batches:  batches,
		Duration: d,
	}
}
