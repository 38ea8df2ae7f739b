package ogcache

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"namearchive/internal/logging"
	"namearchive/internal/namestore"
	"namearchive/internal/testsupport"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func seriesWithShares(t *testing.T, shares []float64) []namestore.Point {
	t.Helper()
	series := make([]namestore.Point, len(shares))
	for i, share := range shares {
		series[i] = namestore.Point{Period: namestore.YearStart + i, Share: share}
	}
	return series
}

func TestSummarizeTrendRising(t *testing.T) {
	shares := make([]float64, 20)
	for i := 10; i < 20; i++ {
		shares[i] = 50
	}
	summary := summarizeTrend(seriesWithShares(t, shares))

	if !summary.Upward {
		t.Fatal("expected an upward trend")
	}
	if summary.Percent != 999 {
		t.Fatalf("percent = %d, want capped at 999", summary.Percent)
	}
	if summary.SinceYear != namestore.YearStart+10 {
		t.Fatalf("since year = %d, want %d", summary.SinceYear, namestore.YearStart+10)
	}
	if summary.Color() != colorUp {
		t.Fatalf("color = %q", summary.Color())
	}
	if !strings.HasPrefix(summary.Label(), "↑ 999% since") {
		t.Fatalf("label = %q", summary.Label())
	}
}

func TestSummarizeTrendFalling(t *testing.T) {
	shares := make([]float64, 20)
	for i := 0; i < 10; i++ {
		shares[i] = 80
	}
	for i := 10; i < 20; i++ {
		shares[i] = 40
	}
	summary := summarizeTrend(seriesWithShares(t, shares))

	if summary.Upward {
		t.Fatal("expected a downward trend")
	}
	if summary.Percent != 50 {
		t.Fatalf("percent = %d, want 50", summary.Percent)
	}
	if summary.Color() != colorDown {
		t.Fatalf("color = %q", summary.Color())
	}
}

func TestSummarizeTrendShortSeries(t *testing.T) {
	summary := summarizeTrend(seriesWithShares(t, []float64{42}))
	if !summary.Upward || summary.Percent != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.SinceYear != namestore.YearStart {
		t.Fatalf("since year = %d, want %d", summary.SinceYear, namestore.YearStart)
	}
}

func TestSamplePointsStride(t *testing.T) {
	series := seriesWithShares(t, make([]float64, namestore.SeriesLength))
	sampled := samplePoints(series)
	if len(sampled) != 43 {
		t.Fatalf("sampled %d points, want 43", len(sampled))
	}
	if sampled[1].Period != namestore.YearStart+3 {
		t.Fatalf("second sample period = %d, want %d", sampled[1].Period, namestore.YearStart+3)
	}
}

func TestEnsureImageRendersAndCaches(t *testing.T) {
	ctx := context.Background()
	store := testsupport.NewStore(t)
	if err := store.Upsert(ctx, "Emma", namestore.AnchorSet{1900: 120, 1950: 500, 2026: 80}); err != nil {
		t.Fatalf("seed Emma: %v", err)
	}

	cache := New(t.TempDir(), store, logging.NewNop())

	path, err := cache.EnsureImage(ctx, "emma")
	if err != nil {
		t.Fatalf("EnsureImage: %v", err)
	}
	if path == "" {
		t.Fatal("expected a rendered image path")
	}
	if !strings.Contains(path, Version) {
		t.Fatalf("path %q is not version namespaced", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read rendered image: %v", err)
	}
	if !bytes.HasPrefix(data, pngSignature) {
		t.Fatal("rendered file is not a PNG")
	}

	// A second call must serve the cached file without re-rendering.
	sentinel := []byte("sentinel")
	if err := os.WriteFile(path, sentinel, 0o644); err != nil {
		t.Fatalf("write sentinel: %v", err)
	}
	again, err := cache.EnsureImage(ctx, "Emma")
	if err != nil {
		t.Fatalf("EnsureImage (cached): %v", err)
	}
	if again != path {
		t.Fatalf("cached path = %q, want %q", again, path)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("read cached image: %v", err)
	}
	if !bytes.Equal(data, sentinel) {
		t.Fatal("cache hit re-rendered the file")
	}
}

func TestEnsureImageUnknownName(t *testing.T) {
	store := testsupport.NewStore(t)
	cache := New(t.TempDir(), store, logging.NewNop())

	path, err := cache.EnsureImage(context.Background(), "Nobody")
	if err != nil {
		t.Fatalf("EnsureImage: %v", err)
	}
	if path != "" {
		t.Fatalf("expected empty path for unknown name, got %q", path)
	}
}
