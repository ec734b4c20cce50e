// ABOUTME: Per-thread rooting context: phase oracle, root registry, config
// ABOUTME: Replaces thread-local singletons with an explicit context object

package rooting

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Phase is the operating mode of a thread.
type Phase int32

const (
	// PhaseMutation allows creating roots and mutating the object graph.
	PhaseMutation Phase = iota + 1
	// PhaseLayout allows read-only traversal through Layout references.
	// No collection may run while any thread is in this phase.
	PhaseLayout
)

func (p Phase) String() string {
	switch p {
	case PhaseMutation:
		return "mutation"
	case PhaseLayout:
		return "layout"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Config configures a Thread.
type Config struct {
	// Name labels log lines from this thread.
	Name string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// InitialPhase defaults to PhaseMutation.
	InitialPhase Phase
	// LayoutWorkers bounds concurrent workers in Thread.Layout.
	// Defaults to GOMAXPROCS.
	LayoutWorkers int
	// OnViolation receives contract violations. The default logs the
	// violation and exits the process with status 2.
	OnViolation func(*Violation)
}

// Thread is the rooting context of one mutator. Mutation-phase work on a
// Thread must stay on a single goroutine; only the phase may be read
// concurrently.
type Thread struct {
	name          string
	phase         atomic.Int32
	roots         RootRegistry
	logger        *slog.Logger
	layoutWorkers int
	onViolation   func(*Violation)
	closed        bool
}

// NewThread creates a thread context with an empty root registry.
func NewThread(cfg Config) *Thread {
	t := &Thread{
		name:          cfg.Name,
		logger:        cfg.Logger,
		layoutWorkers: cfg.LayoutWorkers,
		onViolation:   cfg.OnViolation,
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.name != "" {
		t.logger = t.logger.With(slog.String("thread", t.name))
	}
	if t.layoutWorkers <= 0 {
		t.layoutWorkers = runtime.GOMAXPROCS(0)
	}
	if t.onViolation == nil {
		t.onViolation = AbortHandler(t.logger)
	}
	phase := cfg.InitialPhase
	if phase == 0 {
		phase = PhaseMutation
	}
	t.phase.Store(int32(phase))
	t.roots.thread = t
	return t
}

// Name returns the configured thread name.
func (t *Thread) Name() string {
	return t.name
}

// Phase reports the current phase.
func (t *Thread) Phase() Phase {
	return Phase(t.phase.Load())
}

// IsMutation reports whether the thread is in the mutation phase.
func (t *Thread) IsMutation() bool {
	return t.Phase() == PhaseMutation
}

// IsLayout reports whether the thread is in the layout phase.
func (t *Thread) IsLayout() bool {
	return t.Phase() == PhaseLayout
}

// Enter switches to phase p and returns a function restoring the previous phase.
func (t *Thread) Enter(p Phase) (leave func()) {
	prev := Phase(t.phase.Swap(int32(p)))
	return func() {
		t.phase.Store(int32(prev))
	}
}

// Roots returns the thread's root registry.
func (t *Thread) Roots() *RootRegistry {
	return &t.roots
}

// TraceRoots reports every stack root of this thread. It is the hook the
// collector calls while mutation is paused.
func (t *Thread) TraceRoots(trc Tracer) {
	t.roots.Trace(trc)
}

// Close tears the thread down. Roots must not outlive their registry, so any
// remaining entry is a violation.
func (t *Thread) Close() {
	if t.closed {
		return
	}
	t.closed = true
	if n := t.roots.Len(); n > 0 {
		t.violate(ViolationLeakedRoot, "%d root(s) still registered at thread close", n)
	}
}

// Layout runs fn for each job in [0, jobs) inside the layout phase, with at
// most LayoutWorkers jobs in flight, and restores the previous phase before
// returning. Workers must only use Layout references. The first worker error
// cancels the remaining jobs and is returned.
func (t *Thread) Layout(ctx context.Context, jobs int, fn func(ctx context.Context, job int) error) error {
	t.assertMutation("Layout")
	leave := t.Enter(PhaseLayout)
	defer leave()

	t.logger.Debug("layout phase", slog.Int("jobs", jobs), slog.Int("workers", t.layoutWorkers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.layoutWorkers)
	for job := range jobs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			return fn(gctx, job)
		})
	}
	return g.Wait()
}

func (t *Thread) assertMutation(op string) {
	if p := t.Phase(); p != PhaseMutation {
		t.violate(ViolationWrongPhase, "%s requires the mutation phase, thread is in %s", op, p)
	}
}

func (t *Thread) assertLayout(op string) {
	if p := t.Phase(); p != PhaseLayout {
		t.violate(ViolationWrongPhase, "%s requires the layout phase, thread is in %s", op, p)
	}
}
