// Package pgstore implements the [store.Store] interface with PostgreSQL
// persistence via pgx. It targets multi-process deployments where
// conversation history must survive restarts and be shared across instances.
// The main entry point is [New]; [PgStore.EnsureSchema] creates the backing
// table for development setups.
package pgstore
