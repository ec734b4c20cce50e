// ABOUTME: Mutable traced slots for references stored inside heap objects
// ABOUTME: MutCell, NullableCell and OnceCell; reads always return a Root

package rooting

// MutCell is a traced field that always holds a reference and can be
// replaced in place. Like Unrooted, it is only sound as a field of a heap
// object whose Trace reports it.
type MutCell[T HeapObject] struct {
	val Unrooted[T]
}

// NewMutCell returns a cell holding initial.
func NewMutCell[T HeapObject](t *Thread, initial T) *MutCell[T] {
	return &MutCell[T]{val: FromLive(t, initial)}
}

// Set replaces the stored reference.
func (c *MutCell[T]) Set(t *Thread, v T) {
	c.val = FromLive(t, v)
}

// Get roots the stored object on t.
func (c *MutCell[T]) Get(t *Thread) *Root[T] {
	return c.val.Root(t)
}

// Is reports whether the cell holds obj.
func (c *MutCell[T]) Is(obj T) bool {
	return identity(c.val.ptr) == identity(obj)
}

// Equal reports whether both cells hold the same object.
func (c *MutCell[T]) Equal(o *MutCell[T]) bool {
	return c.val.Same(o.val)
}

// Trace reports the stored reference.
func (c *MutCell[T]) Trace(trc Tracer) {
	c.val.Trace(trc)
}

// NullableCell is a traced field holding zero or one reference. The zero
// value is an empty cell.
type NullableCell[T HeapObject] struct {
	val Unrooted[T]
	set bool
}

// NewNullableCell returns a cell holding the object rooted by initial, or an
// empty cell when initial is nil.
func NewNullableCell[T HeapObject](t *Thread, initial *Root[T]) *NullableCell[T] {
	c := &NullableCell[T]{}
	if initial != nil {
		c.Set(t, initial.Get())
	}
	return c
}

// Set stores v. Setting a nil reference empties the cell.
func (c *NullableCell[T]) Set(t *Thread, v T) {
	if identity(v) == nil {
		c.Clear(t)
		return
	}
	c.val = FromLive(t, v)
	c.set = true
}

// Clear empties the cell.
func (c *NullableCell[T]) Clear(t *Thread) {
	t.assertMutation("NullableCell.Clear")
	c.val = Unrooted[T]{}
	c.set = false
}

// IsSet reports whether the cell holds a reference.
func (c *NullableCell[T]) IsSet() bool {
	return c.set
}

// Get roots the stored object on t, or returns nil when the cell is empty.
func (c *NullableCell[T]) Get(t *Thread) *Root[T] {
	t.assertMutation("NullableCell.Get")
	if !c.set {
		return nil
	}
	return c.val.Root(t)
}

// OrInit returns the stored object rooted on t. An empty cell is first filled
// with the result of producer, whose root is handed to the caller.
// producer must not touch this cell.
func (c *NullableCell[T]) OrInit(t *Thread, producer func() *Root[T]) *Root[T] {
	if r := c.Get(t); r != nil {
		return r
	}
	r := producer()
	c.Set(t, r.Get())
	return r
}

// Take returns the stored object rooted on t and empties the cell.
func (c *NullableCell[T]) Take(t *Thread) *Root[T] {
	r := c.Get(t)
	c.Clear(t)
	return r
}

// GetLayout returns the stored reference for use during the layout phase.
func (c *NullableCell[T]) GetLayout(t *Thread) (Layout[T], bool) {
	t.assertLayout("NullableCell.GetLayout")
	if !c.set {
		return Layout[T]{}, false
	}
	return Layout[T]{ptr: c.val.ptr, thread: t}, true
}

// Is reports whether the cell holds obj.
func (c *NullableCell[T]) Is(obj T) bool {
	return c.set && identity(c.val.ptr) == identity(obj)
}

// Equal reports whether both cells are empty or hold the same object.
func (c *NullableCell[T]) Equal(o *NullableCell[T]) bool {
	if c.set != o.set {
		return false
	}
	return !c.set || c.val.Same(o.val)
}

// Trace reports the stored reference, if any.
func (c *NullableCell[T]) Trace(trc Tracer) {
	if c.set {
		c.val.Trace(trc)
	}
}

// OnceCell is a traced field written at most once. The zero value is an
// uninitialized cell.
type OnceCell[T HeapObject] struct {
	val  Unrooted[T]
	set  bool
	busy bool
}

// InitOnce returns the stored object rooted on t. The first call runs
// producer, stores its result and hands its root to the caller; later calls
// never run producer again.
func (c *OnceCell[T]) InitOnce(t *Thread, producer func() *Root[T]) *Root[T] {
	t.assertMutation("OnceCell.InitOnce")
	if c.set {
		return c.val.Root(t)
	}
	if c.busy {
		t.violate(ViolationReentrantInit, "OnceCell producer re-entered its own cell")
	}
	c.busy = true
	r := func() *Root[T] {
		defer func() { c.busy = false }()
		return producer()
	}()
	c.val = FromLive(t, r.Get())
	c.set = true
	return r
}

// Get roots the stored object on t, or returns nil before initialization.
func (c *OnceCell[T]) Get(t *Thread) *Root[T] {
	t.assertMutation("OnceCell.Get")
	if !c.set {
		return nil
	}
	return c.val.Root(t)
}

// IsSet reports whether the cell was initialized.
func (c *OnceCell[T]) IsSet() bool {
	return c.set
}

// Trace reports the stored reference, if any.
func (c *OnceCell[T]) Trace(trc Tracer) {
	if c.set {
		c.val.Trace(trc)
	}
}
