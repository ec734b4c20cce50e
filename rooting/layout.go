// ABOUTME: Unregistered references for the read-only layout phase
// ABOUTME: Valid only because no collection runs while layout is active

package rooting

// TrustedAddress is an opaque object address handed from the mutation phase
// to the layout phase.
type TrustedAddress struct {
	obj HeapObject
}

// Layout is a reference used during the layout phase. It is not registered
// anywhere; it stays valid only because the layout phase excludes collection.
// Layout values are freely copyable across layout workers.
type Layout[T HeapObject] struct {
	ptr    T
	thread *Thread
}

// FromTrustedAddress turns addr back into a reference. The caller vouches
// that the object is alive and that its dynamic type is T.
func FromTrustedAddress[T HeapObject](t *Thread, addr TrustedAddress) Layout[T] {
	t.assertLayout("FromTrustedAddress")
	obj, ok := addr.obj.(T)
	if !ok {
		var want T
		t.violate(ViolationBadCast, "trusted address holds %T, not %T", addr.obj, &want)
	}
	return Layout[T]{ptr: obj, thread: t}
}

// IsZero reports whether l refers to nothing.
func (l Layout[T]) IsZero() bool {
	return identity(l.ptr) == nil
}

// UnsafeGet returns the object without any liveness check.
func (l Layout[T]) UnsafeGet() T {
	l.thread.assertLayout("Layout.UnsafeGet")
	return l.ptr
}

// GetForScript returns the object back in the mutation phase. It does not
// root anything: the caller must already hold a Root for the object.
func (l Layout[T]) GetForScript() T {
	l.thread.assertMutation("Layout.GetForScript")
	return l.ptr
}

// Handle returns the object's collector handle.
func (l Layout[T]) Handle() Handle {
	l.thread.assertLayout("Layout.Handle")
	return identity(l.ptr).Handle()
}

// Same reports whether l and o refer to the same object.
func (l Layout[T]) Same(o Layout[T]) bool {
	return identity(l.ptr) == identity(o.ptr)
}

// UpcastLayout widens l to a supertype U of T.
func UpcastLayout[U, T HeapObject](l Layout[T]) Layout[U] {
	l.thread.assertLayout("UpcastLayout")
	up, ok := widen[U](l.ptr)
	if !ok {
		l.thread.violate(ViolationBadCast, "%s", badWiden[U](l.ptr))
	}
	return Layout[U]{ptr: up, thread: l.thread}
}

// DowncastLayout narrows l to U if the object's dynamic type is a U.
func DowncastLayout[U, T HeapObject](l Layout[T]) (Layout[U], bool) {
	l.thread.assertLayout("DowncastLayout")
	down, ok := any(l.ptr).(U)
	if !ok {
		return Layout[U]{}, false
	}
	return Layout[U]{ptr: down, thread: l.thread}, true
}
