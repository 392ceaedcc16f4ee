// Package store defines the conversation-store contract consumed by the shim.
// Implementations persist [Message] values per conversation and are expected
// to perform each write as a single atomic operation; the shim layers no
// transaction or retry logic on top. Read methods return errors so that
// database-backed implementations can surface failures instead of silently
// swallowing them.
//
// Bundled implementations live in the sibling packages
// [github.com/mfalcone/bridgo/providers/store/inmemory],
// [github.com/mfalcone/bridgo/providers/store/pgstore] and
// [github.com/mfalcone/bridgo/providers/store/sqlitestore].
package store
