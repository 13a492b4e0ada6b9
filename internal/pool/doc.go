// Package pool provides memory management optimizations.
// Buffered readers wrapped around open streams are pooled by size class
// so that opening many files does not allocate a fresh read buffer each time.
package pool
