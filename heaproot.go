// ABOUTME: Root heaproot package providing version information and package documentation
// ABOUTME: The rooting layer itself lives in the rooting subpackage

// Package heaproot keeps host objects owned by a tracing collector alive while
// native code holds them. The rooting package provides the reference kinds
// (Unrooted, Root, cells and Layout), collector drives marking and sweeping
// through them, and heapdump writes the resulting heap graph to disk.
package heaproot

// Version is the semantic version of heaproot
const Version = "0.1.0-dev"
