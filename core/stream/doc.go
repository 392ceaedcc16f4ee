// Package stream implements the accumulator for incrementally-built assistant
// messages. A [Session] is bound to exactly one in-flight streamed response:
// it is opened against a conversation store, accepts ordered text fragments,
// and transitions exactly once to a completed or failed state, producing a
// finalized stored message with derived metadata (chunk count, duration,
// token usage).
//
// Sessions follow a single-writer model. The code driving the provider's
// streaming callback is expected to deliver fragments sequentially from one
// goroutine; the session performs no internal locking. Independent sessions
// for different responses share no state and may run in parallel.
package stream
