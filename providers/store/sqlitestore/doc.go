// Package sqlitestore implements the [store.Store] interface on SQLite via
// database/sql and the pure-Go modernc.org/sqlite driver, so no cgo is
// required. It suits single-binary deployments and local development where a
// file-backed (or in-memory) database is enough.
// The main entry point is [New]; [SQLiteStore.EnsureSchema] creates the
// backing table.
package sqlitestore
