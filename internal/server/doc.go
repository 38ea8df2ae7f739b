// Package server hosts the HTTP surface of the archive: name page lookups,
// the bulk data listing, preview images, and a status endpoint.
package server
