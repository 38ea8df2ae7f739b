package namestore

import (
	"errors"
	"testing"
)

func TestInterpolateSeriesCoversEveryYear(t *testing.T) {
	series, err := InterpolateSeries(AnchorSet{1900: 0, 1950: 500, 2026: 300})
	if err != nil {
		t.Fatalf("InterpolateSeries: %v", err)
	}
	if len(series) != SeriesLength {
		t.Fatalf("expected %d points, got %d", SeriesLength, len(series))
	}
	for i, point := range series {
		if point.Period != YearStart+i {
			t.Fatalf("year %d out of place at index %d", point.Period, i)
		}
	}
}

func TestInterpolateSeriesAnchorValuesPreserved(t *testing.T) {
	series, err := InterpolateSeries(AnchorSet{1900: 0, 1950: 500, 2026: 300})
	if err != nil {
		t.Fatalf("InterpolateSeries: %v", err)
	}
	byYear := make(map[int]Point, len(series))
	for _, point := range series {
		byYear[point.Period] = point
	}
	if byYear[1950].Value != 500 {
		t.Fatalf("expected value 500 at 1950, got %d", byYear[1950].Value)
	}
	if byYear[1950].Share != 100 {
		t.Fatalf("expected share 100 at the peak, got %v", byYear[1950].Share)
	}
	if byYear[1900].Value != 0 || byYear[2026].Value != 300 {
		t.Fatalf("boundary values not preserved: %d, %d", byYear[1900].Value, byYear[2026].Value)
	}
}

func TestInterpolateSeriesLinearMidpoint(t *testing.T) {
	series, err := InterpolateSeries(AnchorSet{1900: 100, 2026: 0})
	if err != nil {
		t.Fatalf("InterpolateSeries: %v", err)
	}
	// 1963 is exactly halfway between the boundaries.
	for _, point := range series {
		if point.Period == 1963 && point.Value != 50 {
			t.Fatalf("expected midpoint value 50, got %d", point.Value)
		}
	}
}

func TestInterpolateSeriesShareBounds(t *testing.T) {
	series, err := InterpolateSeries(AnchorSet{1900: 10, 1960: 7500, 2026: 30})
	if err != nil {
		t.Fatalf("InterpolateSeries: %v", err)
	}
	sawMax := false
	for _, point := range series {
		if point.Share < 0 || point.Share > 100 {
			t.Fatalf("share %v out of bounds at %d", point.Share, point.Period)
		}
		if point.Share == 100 {
			sawMax = true
		}
	}
	if !sawMax {
		t.Fatal("expected the series maximum to carry share 100")
	}
}

func TestInterpolateSeriesAllZeroYieldsZeroShares(t *testing.T) {
	series, err := InterpolateSeries(AnchorSet{1900: 0, 2026: 0})
	if err != nil {
		t.Fatalf("InterpolateSeries: %v", err)
	}
	for _, point := range series {
		if point.Value != 0 || point.Share != 0 {
			t.Fatalf("expected all-zero series, got %+v", point)
		}
	}
}

func TestInterpolateSeriesRejectsMissingBoundary(t *testing.T) {
	if _, err := InterpolateSeries(AnchorSet{1900: 10, 1990: 20}); !errors.Is(err, ErrMissingBoundary) {
		t.Fatalf("expected ErrMissingBoundary, got %v", err)
	}
	if _, err := InterpolateSeries(AnchorSet{1950: 10, 2026: 20}); !errors.Is(err, ErrMissingBoundary) {
		t.Fatalf("expected ErrMissingBoundary, got %v", err)
	}
}

func TestInterpolateSeriesRejectsTooFewAnchors(t *testing.T) {
	if _, err := InterpolateSeries(AnchorSet{1900: 10}); !errors.Is(err, ErrTooFewAnchors) {
		t.Fatalf("expected ErrTooFewAnchors, got %v", err)
	}
	// Out-of-range years are discarded before the count check.
	if _, err := InterpolateSeries(AnchorSet{1900: 10, 1850: 5, 2300: 7}); !errors.Is(err, ErrTooFewAnchors) {
		t.Fatalf("expected ErrTooFewAnchors after filtering, got %v", err)
	}
}

func TestDisplayForm(t *testing.T) {
	cases := map[string]string{
		"emma":      "Emma",
		"EMMA":      "Emma",
		"  aiden2 ": "Aiden2",
		"éloise":    "Éloise",
		"":          "",
		"   ":       "",
	}
	for input, want := range cases {
		if got := DisplayForm(input); got != want {
			t.Fatalf("DisplayForm(%q) = %q, want %q", input, got, want)
		}
	}
}
