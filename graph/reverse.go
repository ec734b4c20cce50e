// ABOUTME: Builds reverse edges for graph traversal
// ABOUTME: Maps objects to the objects whose trace reported them

package graph

import "slices"

// ReverseEdges maps each object to the objects that point to it, sorted by ID
type ReverseEdges map[ObjID][]ObjID

// BuildReverseEdges creates a map of reverse edges. An object reporting the
// same target twice contributes one edge.
func BuildReverseEdges(g Graph) ReverseEdges {
	reverse := make(ReverseEdges)

	g.ForEachObject(func(obj *Object) {
		for _, targetID := range obj.Ptrs {
			if !slices.Contains(reverse[targetID], obj.ID) {
				reverse[targetID] = append(reverse[targetID], obj.ID)
			}
		}
	})

	for id := range reverse {
		slices.Sort(reverse[id])
	}
	return reverse
}
