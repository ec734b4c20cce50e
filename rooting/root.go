// ABOUTME: Registered reference that keeps a heap object alive
// ABOUTME: One registry entry per Root, removed exactly once by Release

package rooting

import "fmt"

// Root keeps a heap object alive until Release. Roots are additive: each one
// owns its own registry entry, so releasing one never invalidates another
// root of the same object. A Root belongs to the Thread it was created on and
// must be released before that thread closes:
//
//	r := rooting.NewRoot(t, node)
//	defer r.Release()
type Root[T HeapObject] struct {
	ptr      T
	registry *RootRegistry
	released bool
}

// NewRoot roots obj on t.
func NewRoot[T HeapObject](t *Thread, obj T) *Root[T] {
	return newRoot(t, obj)
}

func newRoot[T HeapObject](t *Thread, obj T) *Root[T] {
	t.assertMutation("NewRoot")
	t.roots.root(identity(obj))
	return &Root[T]{ptr: obj, registry: &t.roots}
}

func (r *Root[T]) thread() *Thread {
	return r.registry.thread
}

func (r *Root[T]) live(op string) {
	if r.released {
		r.thread().violate(ViolationUseAfterRelease, "%s on a released root", op)
	}
}

// Get returns the rooted object. The result must not be kept past Release.
func (r *Root[T]) Get() T {
	r.live("Get")
	r.thread().assertMutation("Root.Get")
	return r.ptr
}

// Clone roots the same object again with an independent entry.
func (r *Root[T]) Clone() *Root[T] {
	r.live("Clone")
	return newRoot(r.thread(), r.ptr)
}

// Unrooted returns a traced-field reference to the rooted object.
func (r *Root[T]) Unrooted() Unrooted[T] {
	r.live("Unrooted")
	return Unrooted[T]{ptr: r.ptr}
}

// Handle returns the rooted object's collector handle.
func (r *Root[T]) Handle() Handle {
	r.live("Handle")
	return identity(r.ptr).Handle()
}

// Same reports whether r and o root the same object.
func (r *Root[T]) Same(o *Root[T]) bool {
	return identity(r.ptr) == identity(o.ptr)
}

// Is reports whether r roots obj.
func (r *Root[T]) Is(obj T) bool {
	return identity(r.ptr) == identity(obj)
}

// Trace does nothing: the object is already reported through the registry.
func (r *Root[T]) Trace(Tracer) {}

// Release removes this root's registry entry.
func (r *Root[T]) Release() {
	if r.released {
		r.thread().violate(ViolationDoubleRelease, "root of handle %d released twice", identity(r.ptr).Handle())
	}
	r.registry.unroot(identity(r.ptr))
	r.released = true
}

// WithRoot roots obj for the duration of fn. The root is released when fn
// returns or panics, unless fn consumed it with a cast.
func WithRoot[T HeapObject](t *Thread, obj T, fn func(r *Root[T]) error) error {
	r := newRoot(t, obj)
	defer func() {
		if !r.released {
			r.Release()
		}
	}()
	return fn(r)
}

// Released reports whether the root was released or moved by a cast.
func (r *Root[T]) Released() bool {
	return r.released
}

func (r *Root[T]) String() string {
	if r.released {
		return fmt.Sprintf("Root(%T, released)", r.ptr)
	}
	return fmt.Sprintf("Root(%T@%d)", r.ptr, identity(r.ptr).Handle())
}

// UpcastRoot widens r to a supertype U of T. r is consumed: its registry
// entry moves to the result.
func UpcastRoot[U, T HeapObject](r *Root[T]) *Root[U] {
	r.live("UpcastRoot")
	up, ok := widen[U](r.ptr)
	if !ok {
		r.thread().violate(ViolationBadCast, "%s", badWiden[U](r.ptr))
	}
	r.released = true
	return &Root[U]{ptr: up, registry: r.registry}
}

// DowncastRoot narrows r to U if the object's dynamic type is a U. r is
// consumed either way; on a mismatch its entry is released.
func DowncastRoot[U, T HeapObject](r *Root[T]) (*Root[U], bool) {
	r.live("DowncastRoot")
	down, ok := any(r.ptr).(U)
	if !ok {
		r.Release()
		return nil, false
	}
	r.released = true
	return &Root[U]{ptr: down, registry: r.registry}, true
}
