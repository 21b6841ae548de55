// Package events provides types and interfaces for an event-driven architecture.
//
// This package defines event types and handler interfaces that allow for loose
// coupling between components. The generation service emits a JobRequestEvent
// when a user submits work; it does not know which handlers pick the event up.
// In this process the task package bridges events onto its queue, but the
// service compiles against these interfaces alone.
package events
