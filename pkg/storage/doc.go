// Package storage defines the user directory boundary: the persistence
// interface the session manager and auth middleware depend on, its shared
// configuration, and an in-memory implementation for development and tests.
// The PostgreSQL implementation lives in the postgres subpackage.
package storage
