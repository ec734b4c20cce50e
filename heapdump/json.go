// ABOUTME: JSON snapshot format, readable by humans and test fixtures
// ABOUTME: Reads and writes objects, traced edges and roots

package heapdump

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/prateek/heaproot/graph"
)

// JSONFormat reads and writes JSON snapshots
type JSONFormat struct{}

// Name implements Format
func (p *JSONFormat) Name() string {
	return "json"
}

// CanParse checks whether the first key of the top-level object is "format"
// naming a heaproot snapshot, or "objects" for hand-written fixtures. Only the
// first key is inspected so truncated previews still match.
func (p *JSONFormat) CanParse(r io.Reader) bool {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return false
	}
	key, err := dec.Token()
	if err != nil {
		return false
	}
	switch key {
	case "format":
		var name string
		if err := dec.Decode(&name); err != nil {
			return false
		}
		return name == "heaproot"
	case "objects":
		tok, err := dec.Token()
		return err == nil && tok == json.Delim('[')
	default:
		return false
	}
}

// Parse reads a JSON snapshot and builds a graph
func (p *JSONFormat) Parse(r io.Reader) (graph.Graph, error) {
	var s snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return s.build()
}

// Encode writes g as indented JSON
func (p *JSONFormat) Encode(w io.Writer, g graph.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newSnapshot(g)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// init registers the JSON format
func init() {
	Register(&JSONFormat{})
}
