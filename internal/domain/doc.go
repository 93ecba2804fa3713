// Package domain defines the core business entities and errors for the
// spaced-repetition engine: learners, content items, exercises, cards with
// their memory state, and the append-only review event log.
package domain
