// ABOUTME: Traced, unregistered reference for use as a heap object field
// ABOUTME: Also holds the cast helpers shared by every reference kind

package rooting

import "fmt"

// Unrooted is a reference to a heap object that the collector only sees when
// the structure embedding it is traced. It is safe as a field of another heap
// object whose Trace reports it, and nowhere else: an Unrooted held on the Go
// stack across a collection may point at a reclaimed object. Read it back
// with Root.
//
// The zero Unrooted refers to nothing.
type Unrooted[T HeapObject] struct {
	ptr T
}

// FromLive captures a reference to obj, which the caller knows to be alive.
func FromLive[T HeapObject](t *Thread, obj T) Unrooted[T] {
	t.assertMutation("FromLive")
	return Unrooted[T]{ptr: obj}
}

// IsZero reports whether u refers to nothing.
func (u Unrooted[T]) IsZero() bool {
	return identity(u.ptr) == nil
}

// Same reports whether u and o refer to the same object.
func (u Unrooted[T]) Same(o Unrooted[T]) bool {
	return identity(u.ptr) == identity(o.ptr)
}

// Handle returns the referent's collector handle, or 0 for a zero reference.
func (u Unrooted[T]) Handle() Handle {
	if r := identity(u.ptr); r != nil {
		return r.Handle()
	}
	return 0
}

// Trace reports the referent to trc.
func (u Unrooted[T]) Trace(trc Tracer) {
	if r := identity(u.ptr); r != nil {
		TraceReflector(trc, "on heap", r)
	}
}

// Root registers the referent on t and returns the new root.
func (u Unrooted[T]) Root(t *Thread) *Root[T] {
	return newRoot(t, u.ptr)
}

// ToLayout converts u for use during the layout phase.
func (u Unrooted[T]) ToLayout(t *Thread) Layout[T] {
	t.assertLayout("ToLayout")
	return Layout[T]{ptr: u.ptr, thread: t}
}

// TrustedAddress returns an opaque address for handing the referent to the
// layout phase, where FromTrustedAddress turns it back into a reference.
func (u Unrooted[T]) TrustedAddress() TrustedAddress {
	return TrustedAddress{obj: u.ptr}
}

func (u Unrooted[T]) String() string {
	return fmt.Sprintf("Unrooted(%T@%d)", u.ptr, u.Handle())
}

// UpcastUnrooted widens u to a supertype U of T. A failed widening is
// reported through t's violation handler.
func UpcastUnrooted[U, T HeapObject](t *Thread, u Unrooted[T]) Unrooted[U] {
	up, ok := widen[U](u.ptr)
	if !ok {
		t.violate(ViolationBadCast, "%s", badWiden[U](u.ptr))
	}
	return Unrooted[U]{ptr: up}
}

// DowncastUnrooted narrows u to U if the referent's dynamic type is a U.
func DowncastUnrooted[U, T HeapObject](u Unrooted[T]) (Unrooted[U], bool) {
	down, ok := any(u.ptr).(U)
	if !ok {
		return Unrooted[U]{}, false
	}
	return Unrooted[U]{ptr: down}, true
}

// widen converts obj to U. Go cannot constrain T to be a subtype of U, so
// the conversion is checked when performed; it only fails when the type
// hierarchy was declared wrongly.
func widen[U, T HeapObject](obj T) (U, bool) {
	if any(obj) == nil {
		var zero U
		return zero, true
	}
	up, ok := any(obj).(U)
	return up, ok
}

func badWiden[U, T HeapObject](obj T) string {
	var u U
	return fmt.Sprintf("%T does not derive from %T", obj, &u)
}
