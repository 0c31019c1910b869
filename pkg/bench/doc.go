// Package bench provides a load scenario engine for the toolkit's primitives.
//
// This package implements [Runner], which executes [Suite]s of [Scenario]s
// against [blockq.Queue], [guard.Strong]/[guard.Weak] handles, and
// [notify.Broadcaster], verifying delivery order, exactly-once consumption,
// and lifetime atomicity under configurable concurrency. Progress is
// published as events to subscribers, mirroring the scenario fan-out on the
// worker pool.
package bench
