package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/matzehuels/mro/pkg/c3"
	errs "github.com/matzehuels/mro/pkg/errors"
	"github.com/matzehuels/mro/pkg/hierarchy"
	"github.com/matzehuels/mro/pkg/observability"
)

func diamond() *hierarchy.Graph {
	return hierarchy.MustBuild([]hierarchy.ClassDecl{
		{ID: "A"},
		{ID: "B", Bases: []hierarchy.ClassID{"A"}},
		{ID: "C", Bases: []hierarchy.ClassID{"A"}},
		{ID: "D", Bases: []hierarchy.ClassID{"B", "C"}},
	})
}

// layered builds width classes per level, each inheriting from two classes
// of the level below.
func layered(levels, width int) *hierarchy.Graph {
	var decls []hierarchy.ClassDecl
	name := func(l, i int) hierarchy.ClassID { return hierarchy.ClassID(fmt.Sprintf("L%d_%d", l, i)) }
	for l := 0; l < levels; l++ {
		for i := 0; i < width; i++ {
			d := hierarchy.ClassDecl{ID: name(l, i)}
			if l > 0 {
				d.Bases = []hierarchy.ClassID{name(l-1, i), name(l-1, (i+1)%width)}
			}
			decls = append(decls, d)
		}
	}
	return hierarchy.MustBuild(decls)
}

func TestMemoGetOrCompute(t *testing.T) {
	ctx := context.Background()
	m := NewMemo(diamond(), "s1")

	lin, err := m.GetOrCompute(ctx, "D")
	if err != nil {
		t.Fatal(err)
	}
	if want := (c3.Linearization{"D", "B", "C", "A"}); !slices.Equal(lin, want) {
		t.Errorf("GetOrCompute(D) = %v, want %v", lin, want)
	}
	if m.Computed() != 4 || m.Len() != 4 {
		t.Errorf("computed=%d len=%d, want 4 and 4", m.Computed(), m.Len())
	}

	// Second request is served from the memo.
	if _, err := m.GetOrCompute(ctx, "D"); err != nil {
		t.Fatal(err)
	}
	if m.Computed() != 4 {
		t.Errorf("computed = %d after repeat, want 4", m.Computed())
	}
	if m.Session() != "s1" {
		t.Errorf("Session() = %q", m.Session())
	}
}

func TestMemoReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemo(diamond(), "s")

	lin, _ := m.GetOrCompute(ctx, "D")
	lin[1] = "Z"

	again, _ := m.GetOrCompute(ctx, "D")
	if again[1] != "B" {
		t.Errorf("mutating a returned linearization changed the memo: %v", again)
	}
}

func TestMemoMemoizesFailures(t *testing.T) {
	ctx := context.Background()
	g := hierarchy.MustBuild([]hierarchy.ClassDecl{
		{ID: "A"},
		{ID: "B", Bases: []hierarchy.ClassID{"A"}},
		{ID: "X", Bases: []hierarchy.ClassID{"A", "B"}},
		{ID: "Y", Bases: []hierarchy.ClassID{"X"}},
	})
	m := NewMemo(g, "s")

	_, err := m.GetOrCompute(ctx, "Y")
	if !errs.Is(err, errs.ErrCodeInconsistentHierarchy) {
		t.Fatalf("Y error = %v, want INCONSISTENT_HIERARCHY", err)
	}
	var be *c3.BaseError
	if !errors.As(err, &be) || be.Base != "X" {
		t.Errorf("Y error should name failed base X: %v", err)
	}

	computed := m.Computed()
	_, err2 := m.GetOrCompute(ctx, "X")
	if !errs.Is(err2, errs.ErrCodeInconsistentHierarchy) {
		t.Errorf("X error = %v", err2)
	}
	if m.Computed() != computed {
		t.Error("a memoized failure should not be recomputed")
	}

	_, ok, perr := m.Peek("X")
	if !ok || perr == nil {
		t.Errorf("Peek(X) = ok %v err %v, want memoized failure", ok, perr)
	}
}

func TestMemoUnknownClass(t *testing.T) {
	m := NewMemo(diamond(), "s")
	_, err := m.GetOrCompute(context.Background(), "Q")
	if !errs.Is(err, errs.ErrCodeUnknownClass) {
		t.Errorf("error = %v, want UNKNOWN_CLASS", err)
	}
	if m.Len() != 0 || m.Computed() != 0 {
		t.Error("unknown classes should not be memoized")
	}
}

func TestMemoPeek(t *testing.T) {
	m := NewMemo(diamond(), "s")
	if _, ok, _ := m.Peek("B"); ok {
		t.Error("Peek should not compute")
	}
	_, _ = m.GetOrCompute(context.Background(), "B")
	lin, ok, err := m.Peek("B")
	if !ok || err != nil || !slices.Equal(lin, c3.Linearization{"B", "A"}) {
		t.Errorf("Peek(B) = %v, %v, %v", lin, ok, err)
	}
}

func TestMemoClose(t *testing.T) {
	ctx := context.Background()
	m := NewMemo(diamond(), "s9")
	_, _ = m.GetOrCompute(ctx, "D")

	m.Close()
	if _, err := m.GetOrCompute(ctx, "D"); !errs.Is(err, errs.ErrCodeSessionClosed) {
		t.Errorf("error after Close = %v, want SESSION_CLOSED", err)
	}
	if m.Len() != 0 {
		t.Error("Close should drop entries")
	}
}

func TestMemoCancelledContext(t *testing.T) {
	m := NewMemo(diamond(), "s")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.GetOrCompute(ctx, "D"); err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if m.Len() != 0 {
		t.Error("a cancelled request should not memoize anything")
	}
	if _, err := m.GetOrCompute(context.Background(), "D"); err != nil {
		t.Errorf("memo should recover after cancellation: %v", err)
	}
}

func TestMemoAsSource(t *testing.T) {
	g := diamond()
	m := NewMemo(g, "s")

	lin, err := c3.Linearize(g, "D", m)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(lin, c3.Linearization{"D", "B", "C", "A"}) {
		t.Errorf("Linearize via memo = %v", lin)
	}
	if m.Len() != 3 {
		t.Errorf("memo should hold the bases, len = %d", m.Len())
	}
}

type countingHooks struct {
	observability.NoopEngineHooks
	mu     sync.Mutex
	starts map[string]int
}

func (h *countingHooks) OnLinearizeStart(_ context.Context, class string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts[class]++
}

func TestMemoConcurrentAtMostOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	hooks := &countingHooks{starts: make(map[string]int)}
	observability.SetEngineHooks(hooks)
	defer observability.Reset()

	g := layered(6, 8)
	m := NewMemo(g, "concurrent")
	classes := g.AllClasses()

	type result struct {
		lin c3.Linearization
		ok  bool
	}
	expected := make(map[hierarchy.ClassID]result, len(classes))
	for _, id := range classes {
		lin, err := c3.Compute(g, id)
		expected[id] = result{lin, err == nil}
	}

	var (
		wg       sync.WaitGroup
		failures atomic.Int32
		start    = make(chan struct{})
	)
	for w := 0; w < 32; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			<-start
			// Walk the classes in a different rotation per worker so
			// requests overlap on every level.
			for i := range classes {
				id := classes[(i*7+w)%len(classes)]
				want := expected[id]
				got, err := m.GetOrCompute(context.Background(), id)
				if (err == nil) != want.ok || !slices.Equal(got, want.lin) {
					failures.Add(1)
				}
			}
		}(w)
	}
	close(start)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("concurrent lookups did not finish")
	}

	if n := failures.Load(); n > 0 {
		t.Errorf("%d lookups returned a wrong result", n)
	}
	if got, want := m.Computed(), int64(len(classes)); got != want {
		t.Errorf("Computed() = %d, want %d (one merge per class)", got, want)
	}
	for class, n := range hooks.starts {
		if n != 1 {
			t.Errorf("class %s linearized %d times", class, n)
		}
	}
}
