// ABOUTME: Parser and Format interfaces for heap snapshot encodings
// ABOUTME: Defines the contract for pluggable snapshot readers and writers

package heapdump

import (
	"fmt"
	"io"

	"github.com/prateek/heaproot/graph"
)

// Parser reads a heap snapshot
type Parser interface {
	// CanParse checks if this parser can handle the given snapshot.
	// The reader is a preview of at most a few KiB; implementations must
	// not require the whole snapshot to decide
	CanParse(r io.Reader) bool

	// Parse reads the snapshot and builds a graph
	// The reader will be a fresh reader positioned at the start
	Parse(r io.Reader) (graph.Graph, error)
}

// Format is a Parser that can also write snapshots
type Format interface {
	Parser

	// Name is the short name used to select the format (e.g. "json")
	Name() string

	// Encode writes g in this format
	Encode(w io.Writer, g graph.Graph) error
}

// formatVersion is bumped whenever the snapshot layout changes
const formatVersion = 1

// snapshot is the layout shared by every encoding
type snapshot struct {
	Format  string           `json:"format" msgpack:"format"`
	Version int              `json:"version" msgpack:"version"`
	Objects []snapshotObject `json:"objects" msgpack:"objects"`
	Roots   []graph.ObjID    `json:"roots" msgpack:"roots"`
	Cycle   int              `json:"cycle,omitempty" msgpack:"cycle,omitempty"`
}

type snapshotObject struct {
	ID   graph.ObjID   `json:"id" msgpack:"id"`
	Type string        `json:"type" msgpack:"type"`
	Size uint64        `json:"size" msgpack:"size"`
	Ptrs []graph.ObjID `json:"ptrs" msgpack:"ptrs"`
}

func newSnapshot(g graph.Graph) *snapshot {
	s := &snapshot{
		Format:  "heaproot",
		Version: formatVersion,
		Objects: make([]snapshotObject, 0, g.NumObjects()),
		Roots:   g.GetRoots().IDs,
		Cycle:   g.GetRoots().Cycle,
	}
	g.ForEachObject(func(obj *graph.Object) {
		s.Objects = append(s.Objects, snapshotObject{
			ID:   obj.ID,
			Type: obj.Type,
			Size: obj.Size,
			Ptrs: obj.Ptrs,
		})
	})
	if s.Roots == nil {
		s.Roots = []graph.ObjID{}
	}
	return s
}

// build validates s and turns it into a graph
func (s *snapshot) build() (graph.Graph, error) {
	if s.Version > formatVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported version %d", s.Version, formatVersion)
	}
	for i, obj := range s.Objects {
		if obj.ID == 0 {
			return nil, fmt.Errorf("object at index %d missing ID", i)
		}
	}

	g := graph.NewMemGraph()
	for _, obj := range s.Objects {
		ptrs := obj.Ptrs
		if ptrs == nil {
			ptrs = []graph.ObjID{}
		}
		g.AddObject(&graph.Object{
			ID:   obj.ID,
			Type: obj.Type,
			Size: obj.Size,
			Ptrs: ptrs,
		})
	}

	roots := graph.Roots{IDs: s.Roots, Cycle: s.Cycle}
	if roots.IDs == nil {
		roots.IDs = []graph.ObjID{}
	}
	g.SetRoots(roots)
	return g, nil
}
