// Package guard provides strong and weak ownership handles over a value.
//
// This package implements reference counted lifetime management for objects
// shared across goroutines: [Strong] handles keep an object alive, and [Weak]
// handles observe it without extending its lifetime. [Weak.Lock] promotes a
// weak handle atomically, so a caller either obtains a handle to a fully live
// object or learns that the object is gone; there is no window in which a
// promoted handle refers to a partially destroyed object.
//
// The disposer registered with [WithDisposer] runs exactly once, when the
// last strong handle is released. Weak handles are minted from live strong
// handles only, which keeps a half constructed object from ever becoming
// observable.
//
// Distinct handles to one object may be used from different goroutines
// without locking. A single handle value is not synchronized: goroutines
// sharing the same handle variable must serialize access themselves.
package guard
