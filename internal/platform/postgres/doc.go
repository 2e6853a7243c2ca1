// Package postgres provides PostgreSQL implementations of the store
// interfaces plus the embedded schema migrations. Stores accept a store.DBTX
// so they run identically against a connection pool or an open transaction.
package postgres
