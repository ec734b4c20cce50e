// ABOUTME: Core data types for the collector's heap snapshot
// ABOUTME: Defines Object, ObjID, and Roots as seen at a collection boundary

package graph

// ObjID is the collector handle of a heap object. Zero is never a live object.
type ObjID uint64

// Object is one live heap object. The collector adds it at allocation with no
// edges, replaces Ptrs with whatever its trace reported on every collection
// that marks it, and removes it when it is swept. Between collections Ptrs
// therefore describes the heap as of the last mark, not the current one.
type Object struct {
	ID   ObjID   // Collector handle
	Type string  // Go type of the host object (e.g. "*dom.Element")
	Size uint64  // Shallow size of the host struct in bytes
	Ptrs []ObjID // Handles reported when this object was last traced
}

// Roots is what the root tracers reported during one collection.
type Roots struct {
	IDs   []ObjID // Each rooted handle once, in first-report order
	Cycle int     // Collection that reported them; 0 for hand-built graphs
}
