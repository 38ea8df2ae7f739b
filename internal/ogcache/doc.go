// Package ogcache renders social preview images for stored names and serves
// them from a version-namespaced disk cache. Images are rendered lazily on
// first request; bumping the version directory invalidates every cached file
// at once.
package ogcache
