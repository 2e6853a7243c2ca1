// Package store defines the persistence interfaces and shared error taxonomy
// for users and tasks. Concrete implementations live under
// internal/platform (e.g., the Postgres stores).
package store
