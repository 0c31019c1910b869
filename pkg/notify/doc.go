// Package notify provides a lifetime-safe observer registry.
//
// This package implements [Broadcaster], a synchronous pub-sub registry whose
// observers may be tied to [guard.Weak] handles via [Observe]. Delivery to a
// guarded observer promotes its handle for the duration of the callback, so a
// subject never invokes an observer whose receiver has been destroyed, and a
// receiver is never destroyed mid delivery. Observers whose receiver is gone
// are pruned automatically.
package notify
