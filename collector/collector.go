// ABOUTME: Reference tracing collector that owns heap objects for the host
// ABOUTME: Allocates handles, marks from registered root tracers, sweeps the rest

// Package collector is an in-process mark/sweep collector standing in for the
// external collector the rooting layer is designed for. It hands out handles,
// asks every registered RootTracer for its roots, follows Traceable objects,
// and finalizes whatever it did not reach. The heap it tracks is kept as a
// graph.MemGraph so that a collection can be inspected and dumped.
package collector

import (
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"fortio.org/safecast"

	"github.com/prateek/heaproot/graph"
	"github.com/prateek/heaproot/rooting"
)

// RootTracer reports a set of roots. *rooting.Thread implements it.
type RootTracer interface {
	TraceRoots(trc rooting.Tracer)
}

// layoutReporter is implemented by root tracers that can be in the layout phase.
type layoutReporter interface {
	IsLayout() bool
}

// Options configures a Collector.
type Options struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// OnViolation receives contract violations. The default logs and exits
	// with status 2.
	OnViolation func(*rooting.Violation)
}

// Stats describes one collection.
type Stats struct {
	RootReports int           // Reports received from root tracers
	Roots       int           // Distinct rooted objects
	Marked      int           // Objects found live
	Swept       int           // Objects finalized
	Duration    time.Duration // Wall time of the collection
}

// Collector owns every object allocated through Alloc. It is not safe for
// concurrent use; collections run while every mutator is paused.
type Collector struct {
	logger      *slog.Logger
	onViolation func(*rooting.Violation)

	heap    *graph.MemGraph
	objects map[rooting.Handle]rooting.HeapObject
	next    rooting.Handle
	tracers []RootTracer

	cycles int
}

// New creates an empty collector.
func New(opts Options) *Collector {
	c := &Collector{
		logger:      opts.Logger,
		onViolation: opts.OnViolation,
		heap:        graph.NewMemGraph(),
		objects:     make(map[rooting.Handle]rooting.HeapObject),
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.onViolation == nil {
		c.onViolation = rooting.AbortHandler(c.logger)
	}
	return c
}

// Alloc hands obj to the collector: it receives a fresh handle and from now
// on lives only as long as it is reachable from a root.
func Alloc[T rooting.HeapObject](c *Collector, obj T) T {
	c.next++
	h := c.next
	obj.Reflect().Init(h)
	c.objects[h] = obj
	c.heap.AddObject(&graph.Object{
		ID:   graph.ObjID(h),
		Type: fmt.Sprintf("%T", obj),
		Size: sizeOf(obj),
		Ptrs: []graph.ObjID{},
	})
	allocations.Inc()
	return obj
}

func sizeOf(obj rooting.HeapObject) uint64 {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	size, err := safecast.Conv[uint64](t.Size())
	if err != nil {
		return 0
	}
	return size
}

// AddRootTracer registers rt to be asked for roots on every collection.
func (c *Collector) AddRootTracer(rt RootTracer) {
	c.tracers = append(c.tracers, rt)
}

// RemoveRootTracer unregisters rt.
func (c *Collector) RemoveRootTracer(rt RootTracer) {
	for i, t := range c.tracers {
		if t == rt {
			c.tracers = append(c.tracers[:i], c.tracers[i+1:]...)
			return
		}
	}
}

// IsLive reports whether obj is currently owned by the collector.
func (c *Collector) IsLive(obj rooting.HeapObject) bool {
	h := obj.Reflect().Handle()
	return h != 0 && c.objects[h] != nil
}

// NumLive returns the number of objects owned by the collector.
func (c *Collector) NumLive() int {
	return len(c.objects)
}

// Heap returns the heap graph. Edges and roots reflect the last collection.
func (c *Collector) Heap() *graph.MemGraph {
	return c.heap
}

// Explain returns up to maxPaths retention paths for obj as of the last collection.
func (c *Collector) Explain(obj rooting.HeapObject, maxPaths int) []graph.Path {
	return graph.PathsToRoots(c.heap, graph.ObjID(obj.Reflect().Handle()), maxPaths)
}

// Collect runs a full mark and sweep. Every mutator must be paused and no
// thread may be in the layout phase.
func (c *Collector) Collect() Stats {
	start := time.Now()
	for _, rt := range c.tracers {
		if lr, ok := rt.(layoutReporter); ok && lr.IsLayout() {
			c.violate(rooting.ViolationCollectDuringLayout, "collection requested while a thread is in the layout phase")
		}
	}

	m := newMarker(c)
	for _, rt := range c.tracers {
		rt.TraceRoots(m)
	}
	stats := Stats{RootReports: m.rootReports, Roots: len(m.roots)}
	m.drain()

	for h, obj := range c.objects {
		if m.marked[h] {
			continue
		}
		obj.Reflect().Finalize()
		delete(c.objects, h)
		c.heap.RemoveObject(graph.ObjID(h))
		stats.Swept++
	}
	c.cycles++
	c.heap.SetRoots(graph.Roots{IDs: m.roots, Cycle: c.cycles})

	stats.Marked = len(m.marked)
	stats.Duration = time.Since(start)
	c.record(stats)

	c.logger.Debug("collection finished",
		slog.Int("cycle", c.cycles),
		slog.Int("roots", stats.Roots),
		slog.Int("marked", stats.Marked),
		slog.Int("swept", stats.Swept),
		slog.Duration("duration", stats.Duration))
	return stats
}

func (c *Collector) violate(code rooting.Code, msg string) {
	v := &rooting.Violation{Code: code, Message: msg}
	c.onViolation(v)
	panic(v)
}
