// Package router implements the minimal pattern router that dispatches
// incoming requests to registered handlers.
//
// Patterns are matched segment by segment in registration order. A segment is
// either a literal, a ":name" capture for a single path segment, or a trailing
// "*" that captures the remainder of the path. Captured values are URL-decoded
// before handlers see them. The router knows nothing about the handlers it
// invokes; when no route matches, Dispatch reports false and the caller
// decides how to respond.
package router
