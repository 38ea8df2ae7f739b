// Package config loads, normalizes, and validates namearchive configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the GEMINI_API_KEY environment
// fallback. The Config type centralizes every knob the server and CLI need:
// data, log, and cache directories, the HTTP bind address, rate limiting, and
// generation service credentials.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
