// ABOUTME: Registry of stack-rooted objects for one thread
// ABOUTME: Roots are removed by identity, in any order relative to insertion

package rooting

import "log/slog"

// RootRegistry holds the identities of every live Root created on its
// thread. Each live Root owns exactly one entry. Removal is not LIFO: a root
// may be released while roots created after it are still alive.
type RootRegistry struct {
	thread *Thread
	roots  []*Reflector
}

// root starts tracking r.
func (rr *RootRegistry) root(r *Reflector) {
	rr.thread.assertMutation("root")
	if r == nil || r.Handle() == 0 {
		rr.thread.violate(ViolationNullHandle, "rooting an object without a collector handle")
	}
	rr.roots = append(rr.roots, r)
}

// unroot stops tracking one entry for r. The search starts at the most recent
// entry, since short-lived roots are usually released first.
func (rr *RootRegistry) unroot(r *Reflector) {
	if r == nil || r.Handle() == 0 {
		rr.thread.violate(ViolationNullHandle, "unrooting an object without a collector handle")
	}
	rr.thread.assertMutation("unroot")
	for i := len(rr.roots) - 1; i >= 0; i-- {
		if rr.roots[i] == r {
			copy(rr.roots[i:], rr.roots[i+1:])
			rr.roots[len(rr.roots)-1] = nil
			rr.roots = rr.roots[:len(rr.roots)-1]
			return
		}
	}
	rr.thread.violate(ViolationNotRooted, "can't remove a root that was never rooted (handle %d)", r.Handle())
}

// Len returns the number of registered entries.
func (rr *RootRegistry) Len() int {
	return len(rr.roots)
}

// Count returns how many entries refer to obj.
func (rr *RootRegistry) Count(obj HeapObject) int {
	id := identity(obj)
	n := 0
	for _, r := range rr.roots {
		if r == id {
			n++
		}
	}
	return n
}

// Entries returns the handles of all entries in registration order.
func (rr *RootRegistry) Entries() []Handle {
	out := make([]Handle, len(rr.roots))
	for i, r := range rr.roots {
		out[i] = r.Handle()
	}
	return out
}

// Trace reports every entry to trc exactly once. Only valid while no root or
// unroot runs on this thread, which the collector guarantees by pausing
// mutation.
func (rr *RootRegistry) Trace(trc Tracer) {
	rr.thread.logger.Debug("tracing stack roots", slog.Int("roots", len(rr.roots)))
	for _, r := range rr.roots {
		TraceReflector(trc, "on stack", r)
	}
}
