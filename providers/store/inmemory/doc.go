// Package inmemory provides a concurrency-safe, map-backed implementation
// of the [store.Store] interface for keeping conversation history in process
// memory. It is designed for single-process use cases, tests, and examples
// where persistence across restarts is not required.
// The main entry point is [New], which returns a ready-to-use [MemoryStore].
package inmemory
