// Package namestore persists name trend series in SQLite and owns the
// sparse-to-dense interpolation that turns anchor points into complete
// 1900-2026 series.
//
// The Store manages database connections, schema initialization,
// case-insensitive canonical name lookup, neighbor navigation for name pages,
// the negative cache of rejected candidates, and idempotent series upserts.
// Series are only ever replaced wholesale inside a transaction; readers never
// observe a partially written series.
//
// Schema changes bump the version in schema.go; users clear the database to
// adopt the new schema.
package namestore
