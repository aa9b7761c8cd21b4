package workflow

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// trace records task completion order in a concurrency-safe way.
type trace struct {
	mu    sync.Mutex
	order []string
}

func (tr *trace) done(name string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.order = append(tr.order, name)
}

func (tr *trace) indexOf(name string) int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for i, n := range tr.order {
		if n == name {
			return i
		}
	}
	return -1
}

func noop(tr *trace, name string) func(context.Context, *trace) error {
	return func(ctx context.Context, _ *trace) error {
		tr.done(name)
		return nil
	}
}

func TestRunRespectsDependencies(t *testing.T) {
	tr := &trace{}
	g := NewGraph[*trace]()

	mustAdd(t, g, Task[*trace]{Name: "fetch", Run: noop(tr, "fetch")})
	mustAdd(t, g, Task[*trace]{Name: "a", Needs: []string{"fetch"}, Run: noop(tr, "a")})
	mustAdd(t, g, Task[*trace]{Name: "b", Needs: []string{"fetch"}, Run: noop(tr, "b")})
	mustAdd(t, g, Task[*trace]{Name: "join", Needs: []string{"a", "b"}, Run: noop(tr, "join")})

	if err := g.Run(context.Background(), tr); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := len(tr.order); got != 4 {
		t.Fatalf("expected 4 completions, got %d (%v)", got, tr.order)
	}
	fetchIdx := tr.indexOf("fetch")
	joinIdx := tr.indexOf("join")
	if fetchIdx != 0 {
		t.Fatalf("fetch should complete first, order %v", tr.order)
	}
	if joinIdx != 3 {
		t.Fatalf("join should complete last, order %v", tr.order)
	}
}

func TestRunJoinBarrierUnderStaggeredLatency(t *testing.T) {
	// The fan-in task must never observe a missing branch, regardless of
	// how sibling latencies interleave.
	for round := 0; round < 20; round++ {
		var completed int32
		g := NewGraph[*trace]()
		tr := &trace{}

		mustAdd(t, g, Task[*trace]{Name: "fetch", Run: func(ctx context.Context, _ *trace) error {
			return nil
		}})

		branches := []string{"a", "b", "c"}
		for _, name := range branches {
			delay := time.Duration(rand.Intn(20)) * time.Millisecond
			mustAdd(t, g, Task[*trace]{Name: name, Needs: []string{"fetch"}, Run: func(ctx context.Context, _ *trace) error {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return ctx.Err()
				}
				atomic.AddInt32(&completed, 1)
				return nil
			}})
		}

		mustAdd(t, g, Task[*trace]{Name: "join", Needs: branches, Run: func(ctx context.Context, _ *trace) error {
			if n := atomic.LoadInt32(&completed); n != 3 {
				return fmt.Errorf("join started with %d of 3 branches complete", n)
			}
			return nil
		}})

		if err := g.Run(context.Background(), tr); err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
	}
}

func TestRunFailureCancelsAndSkipsDependents(t *testing.T) {
	g := NewGraph[*trace]()
	tr := &trace{}
	boom := errors.New("boom")
	var joinRan int32

	mustAdd(t, g, Task[*trace]{Name: "fetch", Run: func(ctx context.Context, _ *trace) error {
		return nil
	}})
	mustAdd(t, g, Task[*trace]{Name: "bad", Needs: []string{"fetch"}, Run: func(ctx context.Context, _ *trace) error {
		return boom
	}})
	mustAdd(t, g, Task[*trace]{Name: "slow", Needs: []string{"fetch"}, Run: func(ctx context.Context, _ *trace) error {
		select {
		case <-time.After(5 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}})
	mustAdd(t, g, Task[*trace]{Name: "join", Needs: []string{"bad", "slow"}, Run: func(ctx context.Context, _ *trace) error {
		atomic.StoreInt32(&joinRan, 1)
		return nil
	}})

	startedAt := time.Now()
	err := g.Run(context.Background(), tr)
	if err == nil {
		t.Fatal("expected error from failing task")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got %v", err)
	}
	if !strings.Contains(err.Error(), "task bad") {
		t.Fatalf("error should name the failing task, got %v", err)
	}
	if atomic.LoadInt32(&joinRan) != 0 {
		t.Fatal("join must not run after a branch failed")
	}
	if time.Since(startedAt) > 2*time.Second {
		t.Fatal("failure did not cancel the slow sibling")
	}
}

func TestValidateRejectsUnknownDependency(t *testing.T) {
	g := NewGraph[*trace]()
	mustAdd(t, g, Task[*trace]{Name: "a", Needs: []string{"missing"}, Run: func(ctx context.Context, _ *trace) error {
		return nil
	}})
	if err := g.Validate(); err == nil {
		t.Fatal("expected unknown dependency error")
	}
}

func TestValidateRejectsCycle(t *testing.T) {
	g := NewGraph[*trace]()
	run := func(ctx context.Context, _ *trace) error { return nil }
	mustAdd(t, g, Task[*trace]{Name: "a", Needs: []string{"b"}, Run: run})
	mustAdd(t, g, Task[*trace]{Name: "b", Needs: []string{"a"}, Run: run})
	if err := g.Validate(); err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestAddRejectsDuplicateName(t *testing.T) {
	g := NewGraph[*trace]()
	run := func(ctx context.Context, _ *trace) error { return nil }
	mustAdd(t, g, Task[*trace]{Name: "a", Run: run})
	if err := g.Add(Task[*trace]{Name: "a", Run: run}); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	g := NewGraph[*trace]()
	mustAdd(t, g, Task[*trace]{Name: "slow", Run: func(ctx context.Context, _ *trace) error {
		select {
		case <-time.After(5 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := g.Run(ctx, &trace{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func mustAdd(t *testing.T, g *Graph[*trace], task Task[*trace]) {
	t.Helper()
	if err := g.Add(task); err != nil {
		t.Fatalf("Add %s: %v", task.Name, err)
	}
}
