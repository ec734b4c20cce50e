// ABOUTME: Compact binary snapshot format based on msgpack
// ABOUTME: A magic prefix identifies the stream, followed by one msgpack document

package heapdump

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/prateek/heaproot/graph"
)

// msgpackMagic prefixes every msgpack snapshot
var msgpackMagic = []byte("HRSNAP\x00")

// MsgpackFormat reads and writes msgpack snapshots
type MsgpackFormat struct{}

// Name implements Format
func (p *MsgpackFormat) Name() string {
	return "msgpack"
}

// CanParse checks for the magic prefix
func (p *MsgpackFormat) CanParse(r io.Reader) bool {
	buf := make([]byte, len(msgpackMagic))
	if _, err := io.ReadFull(r, buf); err != nil {
		return false
	}
	return bytes.Equal(buf, msgpackMagic)
}

// Parse reads a msgpack snapshot and builds a graph
func (p *MsgpackFormat) Parse(r io.Reader) (graph.Graph, error) {
	magic := make([]byte, len(msgpackMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read msgpack header: %w", err)
	}
	if !bytes.Equal(magic, msgpackMagic) {
		return nil, fmt.Errorf("not a msgpack snapshot")
	}

	var s snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode msgpack: %w", err)
	}
	return s.build()
}

// Encode writes g as a msgpack snapshot
func (p *MsgpackFormat) Encode(w io.Writer, g graph.Graph) error {
	if _, err := w.Write(msgpackMagic); err != nil {
		return err
	}
	if err := msgpack.NewEncoder(w).Encode(newSnapshot(g)); err != nil {
		return fmt.Errorf("failed to encode msgpack: %w", err)
	}
	return nil
}

func init() {
	Register(&MsgpackFormat{})
}
