// ABOUTME: Tests for Root and Unrooted references
// ABOUTME: Covers additivity, cloning, casts and release misuse

package rooting_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prateek/heaproot/rooting"
)

func TestRootsAreAdditive(t *testing.T) {
	th := newTestThread(t)
	a := newText("a")

	r1 := rooting.NewRoot(th, a)
	r2 := rooting.NewRoot(th, a)
	assert.Equal(t, 2, th.Roots().Count(a))

	r1.Release()
	assert.Equal(t, 1, th.Roots().Count(a))
	assert.Same(t, a, r2.Get())

	var trc recordingTracer
	th.TraceRoots(&trc)
	assert.Equal(t, []rooting.Handle{a.Handle()}, trc.handles())

	r2.Release()
	assert.Equal(t, 0, th.Roots().Count(a))
	assert.Equal(t, 0, th.Roots().Len())
}

func TestReleaseOrderIsFree(t *testing.T) {
	th := newTestThread(t)
	a, b, c := newText("a"), newText("b"), newText("c")

	ra := rooting.NewRoot(th, a)
	rb := rooting.NewRoot(th, b)
	rc := rooting.NewRoot(th, c)

	ra.Release()
	assert.Equal(t, []rooting.Handle{b.Handle(), c.Handle()}, th.Roots().Entries())
	rc.Release()
	assert.Equal(t, []rooting.Handle{b.Handle()}, th.Roots().Entries())
	rb.Release()
	assert.Empty(t, th.Roots().Entries())
}

func TestCloneOwnsSeparateEntry(t *testing.T) {
	th := newTestThread(t)
	a := newText("a")

	r := rooting.NewRoot(th, a)
	c := r.Clone()
	assert.True(t, r.Same(c))
	assert.Equal(t, 2, th.Roots().Len())

	c.Release()
	assert.Equal(t, 1, th.Roots().Count(a))
	r.Release()
	assert.Equal(t, 0, th.Roots().Len())
}

func TestRegistryEmptiesAfterAllReleased(t *testing.T) {
	th := newTestThread(t)
	var roots []*rooting.Root[*TextNode]
	for range 10 {
		obj := newText("x")
		roots = append(roots, rooting.NewRoot(th, obj), rooting.NewRoot(th, obj))
	}
	require.Equal(t, 20, th.Roots().Len())

	// Release in an interleaved order.
	for i := 0; i < len(roots); i += 2 {
		roots[i].Release()
	}
	for i := 1; i < len(roots); i += 2 {
		roots[i].Release()
	}

	var trc recordingTracer
	th.TraceRoots(&trc)
	assert.Empty(t, trc.reports)
	th.Close()
}

func TestCastRoundTrip(t *testing.T) {
	th := newTestThread(t)
	btn := newButton("ok")

	r := rooting.NewRoot(th, btn)
	asNode := rooting.UpcastRoot[Node](r)
	assert.True(t, r.Released(), "upcast consumes its input")
	assert.Equal(t, 1, th.Roots().Len())

	back, ok := rooting.DowncastRoot[*ButtonElement](asNode)
	require.True(t, ok)
	assert.Same(t, btn, back.Get())
	assert.Equal(t, 1, th.Roots().Len())

	back.Release()
	assert.Equal(t, 0, th.Roots().Len())
}

func TestDowncastMismatchReleasesEntry(t *testing.T) {
	th := newTestThread(t)
	text := newText("t")

	r := rooting.UpcastRoot[Node](rooting.NewRoot(th, text))
	got, ok := rooting.DowncastRoot[Element](r)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.True(t, r.Released())
	assert.Equal(t, 0, th.Roots().Len())
}

func TestDowncastToIntermediateInterface(t *testing.T) {
	th := newTestThread(t)
	btn := newButton("b")

	r := rooting.UpcastRoot[Node](rooting.NewRoot(th, btn))
	el, ok := rooting.DowncastRoot[Element](r)
	require.True(t, ok)
	defer el.Release()
	assert.True(t, el.Is(btn))
}

func TestUnrootedCasts(t *testing.T) {
	th := newTestThread(t)
	btn := newButton("b")
	text := newText("t")

	u := rooting.UpcastUnrooted[Node](th, rooting.FromLive(th, btn))
	back, ok := rooting.DowncastUnrooted[*ButtonElement](u)
	require.True(t, ok)
	assert.True(t, back.Same(rooting.FromLive(th, btn)))

	_, ok = rooting.DowncastUnrooted[Element](rooting.UpcastUnrooted[Node](th, rooting.FromLive(th, text)))
	assert.False(t, ok)
}

func TestUnrootedTrace(t *testing.T) {
	th := newTestThread(t)
	a := newText("a")

	var trc recordingTracer
	rooting.FromLive(th, a).Trace(&trc)
	var zero rooting.Unrooted[*TextNode]
	zero.Trace(&trc)

	require.Len(t, trc.reports, 1)
	assert.Equal(t, report{label: "on heap", handle: a.Handle()}, trc.reports[0])
	assert.True(t, zero.IsZero())
	assert.Equal(t, rooting.Handle(0), zero.Handle())
}

func TestUnrootedRootMaterializes(t *testing.T) {
	th := newTestThread(t)
	a := newText("a")

	u := rooting.FromLive(th, a)
	r := u.Root(th)
	defer r.Release()
	assert.Same(t, a, r.Get())
	assert.Equal(t, 1, th.Roots().Count(a))
}

func TestRootViolations(t *testing.T) {
	t.Run("double release", func(t *testing.T) {
		th := newTestThread(t)
		r := rooting.NewRoot(th, newText("a"))
		r.Release()
		requireViolation(t, rooting.ViolationDoubleRelease, r.Release)
	})

	t.Run("use after release", func(t *testing.T) {
		th := newTestThread(t)
		r := rooting.NewRoot(th, newText("a"))
		r.Release()
		requireViolation(t, rooting.ViolationUseAfterRelease, func() { r.Get() })
		requireViolation(t, rooting.ViolationUseAfterRelease, func() { r.Clone() })
	})

	t.Run("use after upcast", func(t *testing.T) {
		th := newTestThread(t)
		r := rooting.NewRoot(th, newButton("b"))
		up := rooting.UpcastRoot[Element](r)
		defer up.Release()
		requireViolation(t, rooting.ViolationUseAfterRelease, func() { r.Get() })
	})

	t.Run("null handle", func(t *testing.T) {
		th := newTestThread(t)
		unwrapped := &TextNode{}
		requireViolation(t, rooting.ViolationNullHandle, func() { rooting.NewRoot(th, unwrapped) })
	})

	t.Run("finalized object", func(t *testing.T) {
		th := newTestThread(t)
		a := newText("a")
		a.Finalize()
		requireViolation(t, rooting.ViolationNullHandle, func() { rooting.NewRoot(th, a) })
	})

	t.Run("wrong phase", func(t *testing.T) {
		th := newTestThread(t)
		a := newText("a")
		leave := th.Enter(rooting.PhaseLayout)
		defer leave()
		requireViolation(t, rooting.ViolationWrongPhase, func() { rooting.NewRoot(th, a) })
		requireViolation(t, rooting.ViolationWrongPhase, func() { rooting.FromLive(th, a) })
	})

	t.Run("get in layout phase", func(t *testing.T) {
		th := newTestThread(t)
		r := rooting.NewRoot(th, newText("a"))
		leave := th.Enter(rooting.PhaseLayout)
		requireViolation(t, rooting.ViolationWrongPhase, func() { r.Get() })
		leave()
		r.Release()
	})

	t.Run("release in layout phase keeps the entry", func(t *testing.T) {
		th := newTestThread(t)
		r := rooting.NewRoot(th, newText("a"))
		leave := th.Enter(rooting.PhaseLayout)
		requireViolation(t, rooting.ViolationWrongPhase, r.Release)
		leave()

		assert.False(t, r.Released())
		assert.Equal(t, 1, th.Roots().Len())
		r.Release()
		assert.Equal(t, 0, th.Roots().Len())
	})
}

func TestUpcastBadHierarchy(t *testing.T) {
	th := newTestThread(t)
	r := rooting.NewRoot(th, newText("t"))
	// A TextNode is not an Element; widening must refuse.
	requireViolation(t, rooting.ViolationBadCast, func() { rooting.UpcastRoot[Element](r) })
	assert.False(t, r.Released())
	r.Release()
}

func TestWithRootReleasesOnEveryExit(t *testing.T) {
	th := newTestThread(t)
	a := newText("a")

	err := rooting.WithRoot(th, a, func(r *rooting.Root[*TextNode]) error {
		assert.Equal(t, 1, th.Roots().Count(a))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, th.Roots().Len())

	boom := errors.New("boom")
	err = rooting.WithRoot(th, a, func(*rooting.Root[*TextNode]) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, th.Roots().Len())

	assert.Panics(t, func() {
		_ = rooting.WithRoot(th, a, func(*rooting.Root[*TextNode]) error { panic("fail") })
	})
	assert.Equal(t, 0, th.Roots().Len())

	// A root consumed by a cast is released through the cast result.
	_ = rooting.WithRoot(th, a, func(r *rooting.Root[*TextNode]) error {
		n := rooting.UpcastRoot[Node](r)
		assert.Equal(t, 1, th.Roots().Len())
		n.Release()
		return nil
	})
	assert.Equal(t, 0, th.Roots().Len())
}

func TestFailedUpcastGoesThroughHandler(t *testing.T) {
	var handled []rooting.Code
	th := rooting.NewThread(rooting.Config{
		Name:        t.Name(),
		OnViolation: func(v *rooting.Violation) { handled = append(handled, v.Code) },
	})
	text := rooting.FromLive(th, newText("t"))

	requireViolation(t, rooting.ViolationBadCast, func() { rooting.UpcastUnrooted[Element](th, text) })
	assert.Equal(t, []rooting.Code{rooting.ViolationBadCast}, handled)

	r := text.Root(th)
	requireViolation(t, rooting.ViolationBadCast, func() { rooting.UpcastRoot[Element](r) })
	assert.Equal(t, []rooting.Code{rooting.ViolationBadCast, rooting.ViolationBadCast}, handled)
	r.Release()
}
