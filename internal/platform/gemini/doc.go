// Package gemini implements the generation.Generator interface using
// Google's Gemini API.
//
// The client performs exactly one model call per invocation: retry and
// deadline enforcement belong to the asyncop tracker that wraps these calls,
// so failures here are classified (transient vs. permanent) rather than
// retried. A circuit breaker sits in front of the API so a dead upstream
// fails fast instead of consuming the caller's SLA budget.
package gemini
