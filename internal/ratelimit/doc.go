// Package ratelimit provides the per-client fixed-window request counter that
// guards name generation.
//
// Each client identity gets a window of configurable length; the first request
// after a window expires starts a fresh one. Because windows are discrete
// rather than sliding, a burst straddling a window boundary can admit close to
// double the configured ceiling. That is a known property of the algorithm,
// not a defect.
//
// State lives only in process memory and is never persisted.
package ratelimit
