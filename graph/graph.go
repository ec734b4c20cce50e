// ABOUTME: Graph interface and in-memory implementation
// ABOUTME: Stores the heap objects the collector tracks and their traced edges

package graph

import (
	"slices"
	"sync"
)

// Graph is a heap snapshot: objects, their traced edges, and the roots of
// the collection that produced it.
type Graph interface {
	// AddObject adds or replaces an object
	AddObject(obj *Object)

	// GetObject retrieves an object by ID, or nil
	GetObject(id ObjID) *Object

	// NumObjects returns the total number of objects
	NumObjects() int

	// ForEachObject iterates over all objects in ascending ID order
	ForEachObject(fn func(*Object))

	// SetRoots sets the roots
	SetRoots(roots Roots)

	// GetRoots returns the roots
	GetRoots() Roots
}

// MemGraph is an in-memory Graph. The collector owns one for its whole
// lifetime: Alloc adds objects, marking rewrites their edges with SetPtrs,
// sweeping calls RemoveObject and every collection ends with SetRoots. It is
// safe for concurrent use so snapshots can be written while the host runs.
type MemGraph struct {
	mu      sync.RWMutex
	objects map[ObjID]*Object
	roots   Roots
}

// NewMemGraph creates an empty graph
func NewMemGraph() *MemGraph {
	return &MemGraph{
		objects: make(map[ObjID]*Object),
	}
}

// AddObject adds or replaces an object
func (g *MemGraph) AddObject(obj *Object) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.objects[obj.ID] = obj
}

// RemoveObject drops an object. Edges pointing at it are left in place; an
// object is only swept once nothing marked still reports it, so after a
// collection no remaining edge names it.
func (g *MemGraph) RemoveObject(id ObjID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.objects, id)
}

// SetPtrs replaces the traced edges of an existing object. Unknown IDs are
// ignored.
func (g *MemGraph) SetPtrs(id ObjID, ptrs []ObjID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if obj, ok := g.objects[id]; ok {
		obj.Ptrs = ptrs
	}
}

// GetObject retrieves an object by ID
func (g *MemGraph) GetObject(id ObjID) *Object {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.objects[id]
}

// NumObjects returns the total number of objects
func (g *MemGraph) NumObjects() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.objects)
}

// IDs returns every object ID in ascending order
func (g *MemGraph) IDs() []ObjID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]ObjID, 0, len(g.objects))
	for id := range g.objects {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ForEachObject iterates over all objects in ascending ID order
func (g *MemGraph) ForEachObject(fn func(*Object)) {
	for _, id := range g.IDs() {
		if obj := g.GetObject(id); obj != nil {
			fn(obj)
		}
	}
}

// SetRoots sets the roots
func (g *MemGraph) SetRoots(roots Roots) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roots = roots
}

// GetRoots returns the roots
func (g *MemGraph) GetRoots() Roots {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.roots
}
