// Package events provides types and interfaces for an event-driven architecture.
//
// Services emit events without knowing which handlers will process them,
// which keeps the session orchestrator decoupled from consumers like the
// statistics layer or future notification hooks.
//
// The primary components are:
// - ReviewGradedEvent: Emitted after a review is graded and persisted
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
