package session

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mro/pkg/c3"
	"github.com/matzehuels/mro/pkg/hierarchy"
	"github.com/matzehuels/mro/pkg/observability"
)

// Results holds the outcome of linearizing a whole hierarchy. Every class
// appears in exactly one of the two maps.
type Results struct {
	Linearizations map[hierarchy.ClassID]c3.Linearization
	Failures       map[hierarchy.ClassID]error
	// Order lists the classes bottom-up: roots first, each class after all
	// of its bases.
	Order   []hierarchy.ClassID
	Batches int
	Elapsed time.Duration
}

// OK reports whether every class linearized.
func (r *Results) OK() bool { return len(r.Failures) == 0 }

// LinearizeAll linearizes every class, one depth batch at a time. Classes
// within a batch share no ancestry and run concurrently; every base of a
// batch was finished by an earlier batch.
//
// A class that fails is recorded in Failures and does not stop the others.
// The returned error is non-nil only when the session is closed or ctx is
// cancelled.
func (s *Session) LinearizeAll(ctx context.Context) (*Results, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	start := time.Now()
	batches := s.graph.Batches()
	res := &Results{
		Linearizations: make(map[hierarchy.ClassID]c3.Linearization, s.graph.Len()),
		Failures:       make(map[hierarchy.ClassID]error),
		Order:          make([]hierarchy.ClassID, 0, s.graph.Len()),
		Batches:        len(batches),
	}

	var mu sync.Mutex
	for depth, batch := range batches {
		batchStart := time.Now()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)
		for _, id := range batch {
			g.Go(func() error {
				lin, err := s.memo.GetOrCompute(gctx, id)
				if isCancelled(gctx, err) {
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					res.Failures[id] = err
				} else {
					res.Linearizations[id] = lin
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := s.checkOpen(); err != nil {
			return nil, err
		}

		res.Order = append(res.Order, batch...)
		elapsed := time.Since(batchStart)
		observability.Engine().OnBatch(ctx, depth, len(batch), elapsed)
		s.logger.Debug("linearized batch", "depth", depth, "classes", len(batch), "duration", elapsed)
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

func isCancelled(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil
}
