// Package blockq provides a blocking FIFO queue for goroutine handoff.
//
// This package implements [Queue], a mutex and condition variable based queue
// with blocking and non-blocking operations, optional capacity bounds with
// producer backpressure, and drain-on-close semantics: elements accepted
// before [Queue.Close] remain poppable, and [ErrClosed] is reported only once
// the queue is both closed and empty.
package blockq
