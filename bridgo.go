// Package bridgo bridges conversation persistence and LLM provider calls.
// Stored messages live in a [store.Store] implementation (in-memory,
// PostgreSQL, or SQLite); [Conversation] is the high-level entry point that
// appends typed turns, normalizes stored history into provider messages, and
// opens streaming sessions for incrementally-generated assistant replies.
//
// The lower-level building blocks are importable directly: core/convert for
// message normalization and response-metadata extraction, core/stream for the
// streaming accumulator, and providers/store for the persistence interface.
package bridgo
