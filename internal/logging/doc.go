// Package logging constructs the slog loggers used across namearchive.
//
// It supports json and console output, auto-selecting console when stdout is
// a terminal, and provides attribute helpers plus component loggers so log
// fields stay consistent between the server, the store, and the generation
// client. Obtain loggers here rather than calling slog directly so format and
// level handling stay in one place.
package logging
