// ABOUTME: BFS search for the chains of references that keep an object alive
// ABOUTME: Answers "why was this object not collected" for a heap snapshot

package graph

import "slices"

// Path is a chain of references from an object back to a root
type Path struct {
	IDs []ObjID // Sequence of object IDs from target to root
}

// Root returns the root the path ends at
func (p Path) Root() ObjID {
	return p.IDs[len(p.IDs)-1]
}

// PathsToRoots returns up to maxPaths shortest retention paths from an object
// to the roots, shortest first. A rooted object yields the one-element path.
func PathsToRoots(g Graph, from ObjID, maxPaths int) []Path {
	if maxPaths <= 0 {
		return nil
	}

	rootSet := make(map[ObjID]bool)
	for _, id := range g.GetRoots().IDs {
		rootSet[id] = true
	}
	if rootSet[from] {
		return []Path{{IDs: []ObjID{from}}}
	}

	reverse := BuildReverseEdges(g)

	var result []Path
	queue := [][]ObjID{{from}}
	for head := 0; head < len(queue) && len(result) < maxPaths; head++ {
		path := queue[head]
		last := path[len(path)-1]

		for _, referrer := range reverse[last] {
			// A path never visits the same object twice
			if slices.Contains(path, referrer) {
				continue
			}
			next := append(slices.Clip(path), referrer)
			if rootSet[referrer] {
				result = append(result, Path{IDs: next})
				if len(result) == maxPaths {
					break
				}
				continue
			}
			queue = append(queue, next)
		}
	}

	return result
}

// Retainers returns the objects whose trace reported id
func Retainers(g Graph, id ObjID) []ObjID {
	return BuildReverseEdges(g)[id]
}
