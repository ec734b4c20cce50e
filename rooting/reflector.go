// ABOUTME: Collector-visible identity shared by every heap object
// ABOUTME: Defines Reflector, Handle, HeapObject and the tracer contracts

// Package rooting keeps host references into a collector-owned object graph
// alive. Objects are allocated, moved and reclaimed by an external tracing
// collector; the host may only hold them through the handles in this package:
//
//   - Root: a registered reference that keeps its object alive until Release.
//   - Unrooted: a traced field inside another heap object. It can only be
//     read back by rooting it first.
//   - MutCell, NullableCell, OnceCell: mutable traced fields.
//   - Layout: an unregistered reference valid only during the layout phase.
//
// Every registered root lives in the RootRegistry of a Thread, which the
// collector walks through Thread.TraceRoots when it marks.
package rooting

import "reflect"

// Handle is the collector's name for a heap object. The zero Handle is null.
type Handle uint64

// Reflector carries the collector handle of a heap object. Concrete types
// embed it in their base struct so that every derived type reports the same
// *Reflector, which is the identity used for rooting and tracing.
type Reflector struct {
	handle Handle
}

// Reflect returns r. Embedding Reflector makes a type a HeapObject.
func (r *Reflector) Reflect() *Reflector {
	return r
}

// Handle returns the collector handle, or 0 if the object was never wrapped
// or has been finalized.
func (r *Reflector) Handle() Handle {
	return r.handle
}

// Init binds the reflector to a collector handle. Called by the collector
// when it allocates the object.
func (r *Reflector) Init(h Handle) {
	r.handle = h
}

// Finalize clears the handle. Called by the collector when it reclaims the object.
func (r *Reflector) Finalize() {
	r.handle = 0
}

// HeapObject is any object allocated and owned by the collector.
type HeapObject interface {
	Reflect() *Reflector
}

// Tracer is the collector's reporting primitive. Report marks h live for the
// current collection pass.
type Tracer interface {
	Report(label string, h Handle)
}

// Traceable is implemented by heap objects and fields that hold references
// the collector must see.
type Traceable interface {
	Trace(trc Tracer)
}

// TraceReflector reports the object behind r to trc.
func TraceReflector(trc Tracer, label string, r *Reflector) {
	trc.Report(label, r.Handle())
}

// identity returns the reflector of obj, or nil when obj is a nil interface
// or a nil pointer.
func identity[T HeapObject](obj T) *Reflector {
	if any(obj) == nil {
		return nil
	}
	if v := reflect.ValueOf(obj); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	return obj.Reflect()
}
