// Package dashboard is the core of the live view.
//
// A Dashboard owns the price store, tick tracker, alert log and movers
// ranking. All of that state is confined to the goroutine running
// Dashboard.Run: feed adapters and callers post tasks to a FIFO queue and
// the loop executes them one at a time, so none of the owned structures
// take locks.
//
// Feed integration:
//   - stream.Adapter -> HandleTick, OnStateChange
//   - poller.Poller  -> HandleBatch
//
// Presentation integration is through Observer, whose methods are invoked
// on the loop goroutine and must not block.
package dashboard
