package testsupport

import (
	"testing"

	"namearchive/internal/namestore"
)

// NewStore opens a namestore in a per-test temp directory and closes it when
// the test finishes.
func NewStore(t testing.TB, opts ...ConfigOption) *namestore.Store {
	t.Helper()

	cfg := NewConfig(t, opts...)
	store, err := namestore.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
