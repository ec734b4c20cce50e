// ABOUTME: Reachability from the roots of a heap snapshot
// ABOUTME: Mirrors the collector's mark pass over recorded edges

package graph

// Reachable returns the set of objects reachable from the roots. Roots and
// edges naming objects absent from the graph are ignored.
func Reachable(g Graph) map[ObjID]bool {
	marked := make(map[ObjID]bool)
	var work []ObjID
	for _, id := range g.GetRoots().IDs {
		if g.GetObject(id) != nil && !marked[id] {
			marked[id] = true
			work = append(work, id)
		}
	}

	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		for _, ptr := range g.GetObject(id).Ptrs {
			if marked[ptr] || g.GetObject(ptr) == nil {
				continue
			}
			marked[ptr] = true
			work = append(work, ptr)
		}
	}
	return marked
}

// Unreachable returns the IDs of objects not reachable from the roots, in
// ascending order. These are what the next collection would sweep.
func Unreachable(g Graph) []ObjID {
	marked := Reachable(g)
	var out []ObjID
	g.ForEachObject(func(obj *Object) {
		if !marked[obj.ID] {
			out = append(out, obj.ID)
		}
	})
	return out
}
