// Package postgres provides PostgreSQL implementations of the store
// interfaces. All implementations use database/sql with the pgx driver and
// map database errors to the shared store error types.
package postgres
