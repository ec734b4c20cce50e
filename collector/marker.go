// ABOUTME: Mark phase of the reference collector
// ABOUTME: Implements rooting.Tracer and records traced edges into the heap graph

package collector

import (
	"log/slog"

	"github.com/prateek/heaproot/graph"
	"github.com/prateek/heaproot/rooting"
)

// marker is the tracer handed to root tracers and Traceable objects during
// one collection. While draining, reports are edges of the object being
// traced; before that they are roots.
type marker struct {
	c      *Collector
	marked map[rooting.Handle]bool
	work   []rooting.Handle

	rootReports int
	roots       []graph.ObjID
	rooted      map[rooting.Handle]bool

	tracing bool
	edges   []graph.ObjID
}

func newMarker(c *Collector) *marker {
	return &marker{
		c:      c,
		marked: make(map[rooting.Handle]bool),
		rooted: make(map[rooting.Handle]bool),
	}
}

// Report implements rooting.Tracer.
func (m *marker) Report(label string, h rooting.Handle) {
	if h == 0 {
		m.c.logger.Warn("null handle reported", slog.String("label", label))
		return
	}
	if m.c.objects[h] == nil {
		m.c.logger.Warn("unknown handle reported",
			slog.String("label", label),
			slog.Uint64("handle", uint64(h)))
		return
	}

	if m.tracing {
		m.edges = append(m.edges, graph.ObjID(h))
	} else {
		m.rootReports++
		if !m.rooted[h] {
			m.rooted[h] = true
			m.roots = append(m.roots, graph.ObjID(h))
		}
	}

	if !m.marked[h] {
		m.marked[h] = true
		m.work = append(m.work, h)
	}
}

// drain traces every marked object once, recording its edges.
func (m *marker) drain() {
	m.tracing = true
	for len(m.work) > 0 {
		h := m.work[len(m.work)-1]
		m.work = m.work[:len(m.work)-1]

		m.edges = []graph.ObjID{}
		if obj, ok := m.c.objects[h].(rooting.Traceable); ok {
			obj.Trace(m)
		}
		m.c.heap.SetPtrs(graph.ObjID(h), m.edges)
	}
	m.tracing = false
}
