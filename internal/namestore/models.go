package namestore

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Series bounds. A complete series has exactly one point for every year in
// [YearStart, YearEnd].
const (
	YearStart = 1900
	YearEnd   = 2026

	// SeriesLength is the number of points in a complete series.
	SeriesLength = YearEnd - YearStart + 1
)

// maxReasonLength caps stored rejection reasons.
const maxReasonLength = 500

// Point is a single year of a trend series. Share is the point's value as a
// percentage of the series maximum.
type Point struct {
	Period int     `json:"period"`
	Value  int64   `json:"value"`
	Share  float64 `json:"share"`
}

// Page bundles a canonical name with its series and its immediate neighbors
// in the case-insensitive name listing.
type Page struct {
	Name         string  `json:"key"`
	Series       []Point `json:"series"`
	PreviousName *string `json:"previousKey"`
	NextName     *string `json:"nextKey"`
}

// AnchorSet is a sparse year-to-value mapping, supplied by seed data or by
// the generation service, that interpolation densifies into a full series.
type AnchorSet map[int]int64

// DisplayForm normalizes a name to its stored display casing: first rune
// upper, remainder lower.
func DisplayForm(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(raw)
	return string(unicode.ToUpper(first)) + strings.ToLower(raw[size:])
}
