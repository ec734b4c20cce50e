// ABOUTME: Small object hierarchy and helpers shared by the rooting tests
// ABOUTME: Node <- Element <- ButtonElement, plus a recording tracer

package rooting_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prateek/heaproot/rooting"
)

type Node interface {
	rooting.HeapObject
	isNode()
}

type Element interface {
	Node
	isElement()
}

type Button interface {
	Element
	isButton()
}

type node struct {
	rooting.Reflector
	name   string
	parent rooting.NullableCell[Node]
}

func (*node) isNode() {}

func (n *node) Trace(trc rooting.Tracer) {
	n.parent.Trace(trc)
}

type TextNode struct {
	node
	text string
}

type ElementNode struct {
	node
	firstChild rooting.NullableCell[Node]
}

func (*ElementNode) isElement() {}

func (e *ElementNode) Trace(trc rooting.Tracer) {
	e.node.Trace(trc)
	e.firstChild.Trace(trc)
}

type ButtonElement struct {
	ElementNode
}

func (*ButtonElement) isButton() {}

var (
	_ rooting.HeapObject = (*node)(nil)
	_ rooting.HeapObject = (*TextNode)(nil)
	_ Element            = (*ElementNode)(nil)
	_ Button             = (*ButtonElement)(nil)
)

var nextHandle rooting.Handle

// wrap gives obj a fresh collector handle, as the collector does on allocation.
func wrap[T rooting.HeapObject](obj T) T {
	nextHandle++
	obj.Reflect().Init(nextHandle)
	return obj
}

func newText(name string) *TextNode {
	return wrap(&TextNode{node: node{name: name}})
}

func newElement(name string) *ElementNode {
	return wrap(&ElementNode{node: node{name: name}})
}

func newButton(name string) *ButtonElement {
	return wrap(&ButtonElement{ElementNode{node: node{name: name}}})
}

func newTestThread(t *testing.T) *rooting.Thread {
	t.Helper()
	return rooting.NewThread(rooting.Config{
		Name:        t.Name(),
		OnViolation: func(*rooting.Violation) {},
	})
}

// requireViolation runs fn and requires it to stop with a violation of code.
func requireViolation(t *testing.T, code rooting.Code, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		v, ok := r.(*rooting.Violation)
		require.Truef(t, ok, "expected violation %s, got %v", code, r)
		require.Equal(t, code, v.Code, v.Message)
	}()
	fn()
}

type report struct {
	label  string
	handle rooting.Handle
}

// recordingTracer collects every report.
type recordingTracer struct {
	reports []report
}

func (r *recordingTracer) Report(label string, h rooting.Handle) {
	r.reports = append(r.reports, report{label: label, handle: h})
}

func (r *recordingTracer) handles() []rooting.Handle {
	out := make([]rooting.Handle, 0, len(r.reports))
	for _, rep := range r.reports {
		out = append(out, rep.handle)
	}
	return out
}
