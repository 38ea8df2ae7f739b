package namestore

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Interpolation failure modes. These are data-integrity guards against
// malformed anchor input, not recoverable conditions.
var (
	ErrMissingBoundary  = errors.New("interpolate: boundary years missing")
	ErrTooFewAnchors    = errors.New("interpolate: at least two anchor years required")
	ErrIncompleteSeries = errors.New("interpolate: series does not cover every year")
)

// InterpolateSeries densifies a sparse anchor set into a complete series with
// one point per year in [YearStart, YearEnd]. Values between anchors are
// linearly interpolated, rounded, and clamped to be non-negative. Shares are
// computed against the series maximum; an all-zero series yields all-zero
// shares.
func InterpolateSeries(anchors AnchorSet) ([]Point, error) {
	years := make([]int, 0, len(anchors))
	for year := range anchors {
		if year < YearStart || year > YearEnd {
			continue
		}
		years = append(years, year)
	}
	sort.Ints(years)

	if len(years) < 2 {
		return nil, ErrTooFewAnchors
	}
	if years[0] != YearStart || years[len(years)-1] != YearEnd {
		return nil, fmt.Errorf("%w: need both %d and %d", ErrMissingBoundary, YearStart, YearEnd)
	}

	series := make([]Point, 0, SeriesLength)
	for i := 0; i < len(years)-1; i++ {
		y0, y1 := years[i], years[i+1]
		v0, v1 := float64(anchors[y0]), float64(anchors[y1])

		start := y0
		if i > 0 {
			// The boundary year was already emitted by the previous segment.
			start = y0 + 1
		}
		for year := start; year <= y1; year++ {
			value := int64(math.Round(v0 + (v1-v0)*float64(year-y0)/float64(y1-y0)))
			if value < 0 {
				value = 0
			}
			series = append(series, Point{Period: year, Value: value})
		}
	}

	if len(series) != SeriesLength {
		return nil, fmt.Errorf("%w: got %d points, want %d", ErrIncompleteSeries, len(series), SeriesLength)
	}
	for i, point := range series {
		if point.Period != YearStart+i {
			return nil, fmt.Errorf("%w: year %d out of place", ErrIncompleteSeries, point.Period)
		}
	}

	var maxValue int64
	for _, point := range series {
		if point.Value > maxValue {
			maxValue = point.Value
		}
	}
	denominator := float64(maxValue)
	if denominator < 1 {
		denominator = 1
	}
	for i := range series {
		series[i].Share = float64(series[i].Value) / denominator * 100
	}
	return series, nil
}
