// ABOUTME: Registry for heap snapshot formats
// ABOUTME: Sniffs the format when reading and selects a format by name when writing

package heapdump

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/prateek/heaproot/graph"
)

var (
	// ErrNoParser is returned when no parser can handle the snapshot
	ErrNoParser = errors.New("no parser found for snapshot format")

	// ErrUnknownFormat is returned when writing with an unregistered format name
	ErrUnknownFormat = errors.New("unknown snapshot format")
)

// detectSize is how much of a snapshot parsers get to look at
const detectSize = 4096

// parserRegistry holds registered parsers
type parserRegistry struct {
	mu      sync.RWMutex
	parsers []Parser
}

// Global registry instance
var registry = &parserRegistry{
	parsers: make([]Parser, 0),
}

// Register adds a parser to the registry
func Register(p Parser) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.parsers = append(registry.parsers, p)
}

// Open reads a snapshot and returns its graph, trying each registered parser
// in registration order
func Open(r io.Reader) (graph.Graph, error) {
	detectBuf := make([]byte, detectSize)
	n, err := io.ReadFull(r, detectBuf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("read snapshot header: %w", err)
	}
	detectBuf = detectBuf[:n]

	registry.mu.RLock()
	defer registry.mu.RUnlock()

	for _, parser := range registry.parsers {
		if parser.CanParse(bytes.NewReader(detectBuf)) {
			return parser.Parse(io.MultiReader(bytes.NewReader(detectBuf), r))
		}
	}

	return nil, ErrNoParser
}

// Lookup returns the registered format with the given name
func Lookup(name string) (Format, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	for _, p := range registry.parsers {
		if f, ok := p.(Format); ok && f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// Formats returns the names of every registered format, sorted
func Formats() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	var names []string
	for _, p := range registry.parsers {
		if f, ok := p.(Format); ok {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Write encodes g with the named format
func Write(w io.Writer, g graph.Graph, format string) error {
	f, ok := Lookup(format)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return f.Encode(w, g)
}
