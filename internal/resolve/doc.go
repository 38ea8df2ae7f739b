// Package resolve orchestrates name lookups: stored series first, then the
// negative cache, then validation and synthesis through the generation
// service. Every request ends in a typed outcome that the HTTP layer maps to
// a status code.
package resolve
