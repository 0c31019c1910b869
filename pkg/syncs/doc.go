// Package syncs provides synchronization primitives and utilities.
//
// This package implements concurrency control mechanisms used throughout the
// toolkit: [KeyLock] for per-key mutual exclusion, and [Cond], a condition
// variable supporting timed and context-bound waits in addition to the
// [sync.Cond] contract. Waits follow the predicate loop convention: callers
// re-check their condition after every wakeup, under the associated lock.
package syncs
