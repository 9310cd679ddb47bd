// Package stream implements the push-based ticker feed.
//
// An Adapter keeps one WebSocket connection to a combined ticker stream
// open, reconnecting after every close with a pluggable Backoff. Frames are
// decoded into model.Tick values and handed to a TickHandler; connection
// state changes go to a StateListener.
//
// State machine:
//
//	Connecting -> Open -> Closed -> (backoff) -> Connecting ...
//	any state  -> Stopped (context cancelled)
//
// Malformed frames are dropped and counted; they never close the
// connection.
package stream
