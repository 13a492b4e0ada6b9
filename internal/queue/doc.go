// Package queue provides the shared queues a scan is built on.
//
// Three structures are used together:
//   - Queue: an unbounded lock-free FIFO for references waiting to be opened
//   - HandlePool: a deque of parked open streams with a timed, cancellable poll
//   - Buffer: a mutex-guarded FIFO of decoded records
//
// All of them are safe for concurrent use by any number of goroutines.
package queue
