// Package store defines the persistence interfaces for the review engine's
// entities and shared store errors. Implementations live under
// internal/platform; services depend only on these interfaces so tests can
// substitute in-memory fakes.
package store
