// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - HistoryStore: remembered search terms
//   - SnapshotStore: first pages of list endpoints, used to seed list views
//   - SessionStore: the signed-in PocketBase session
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Timestamps are stored as Unix milliseconds so they compare numerically.
//
// # Data Location
//
// By default, the database is stored at ~/.pbcn/data/pbcn.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
