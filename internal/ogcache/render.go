package ogcache

import (
	"fmt"
	"math"
	"strconv"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"namearchive/internal/namestore"
)

const (
	imageWidth  = 1200
	imageHeight = 630

	chartX      = 100.0
	chartY      = 250.0
	chartWidth  = 1000.0
	chartHeight = 260.0

	// Every third year keeps the polyline smooth at this resolution.
	sampleStride = 3
)

const (
	colorUp   = "#4d8f5c"
	colorDown = "#b55a5a"
)

var previewFont = mustParseFont()

func mustParseFont() *opentype.Font {
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("parse embedded font: %v", err))
	}
	return parsed
}

func fontFace(size float64) (font.Face, error) {
	return opentype.NewFace(previewFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// trendSummary compares the average share of the most recent window of years
// against the window immediately before it.
type trendSummary struct {
	Upward    bool
	Percent   int
	SinceYear int
}

func (t trendSummary) Label() string {
	arrow := "↑"
	if !t.Upward {
		arrow = "↓"
	}
	return fmt.Sprintf("%s %d%% since %d", arrow, t.Percent, t.SinceYear)
}

func (t trendSummary) Color() string {
	if t.Upward {
		return colorUp
	}
	return colorDown
}

func summarizeTrend(series []namestore.Point) trendSummary {
	if len(series) < 2 {
		return trendSummary{Upward: true, SinceYear: namestore.YearStart}
	}

	window := len(series) / 2
	if window > 10 {
		window = 10
	}
	recentStart := len(series) - window
	previousStart := recentStart - window
	if previousStart < 0 {
		previousStart = 0
	}

	recent := averageShare(series[recentStart:])
	previous := averageShare(series[previousStart:recentStart])
	base := math.Max(previous, 1)
	rawChange := (recent - previous) / base * 100

	percent := int(math.Round(math.Abs(rawChange)))
	if percent > 999 {
		percent = 999
	}
	return trendSummary{
		Upward:    rawChange >= 0,
		Percent:   percent,
		SinceYear: series[recentStart].Period,
	}
}

func averageShare(points []namestore.Point) float64 {
	if len(points) == 0 {
		return 0
	}
	var total float64
	for _, point := range points {
		total += point.Share
	}
	return total / float64(len(points))
}

func samplePoints(series []namestore.Point) []namestore.Point {
	sampled := make([]namestore.Point, 0, len(series)/sampleStride+1)
	for i, point := range series {
		if i%sampleStride == 0 {
			sampled = append(sampled, point)
		}
	}
	return sampled
}

// renderPreview draws the fixed-layout preview card for a name and its
// series.
func renderPreview(name string, series []namestore.Point) (*gg.Context, error) {
	dc := gg.NewContext(imageWidth, imageHeight)

	dc.SetHexColor("#ffffff")
	dc.Clear()
	dc.SetHexColor("#f8f3e6")
	dc.DrawRoundedRectangle(16, 16, 1168, 598, 26)
	dc.Fill()
	dc.SetHexColor("#ebe4d1")
	dc.DrawRoundedRectangle(40, 40, 1120, 550, 22)
	dc.Fill()
	dc.SetHexColor("#d4b896")
	dc.SetLineWidth(4)
	dc.DrawRoundedRectangle(40, 40, 1120, 550, 22)
	dc.Stroke()

	titleFace, err := fontFace(86)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(titleFace)
	dc.SetHexColor("#4a3f2f")
	dc.DrawStringAnchored(name, 90, 120, 0, 0.35)

	summary := summarizeTrend(series)
	badgeFace, err := fontFace(54)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(badgeFace)
	dc.SetHexColor(summary.Color())
	dc.DrawStringAnchored(summary.Label(), 1110, 120, 1, 0.35)

	subtitleFace, err := fontFace(30)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(subtitleFace)
	dc.SetHexColor("#6b5d4f")
	dc.DrawString(fmt.Sprintf("Baby Name Trend Since %d", namestore.YearStart), 90, 195)

	watermarkFace, err := fontFace(120)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(watermarkFace)
	dc.SetHexColor("#8b73552b")
	dc.DrawStringAnchored("namearchive.org", 600, 335, 0.5, 0.5)

	// Axes.
	dc.SetHexColor("#c4a886")
	dc.SetLineWidth(4)
	dc.DrawLine(chartX, chartY+chartHeight, chartX+chartWidth, chartY+chartHeight)
	dc.Stroke()
	dc.DrawLine(chartX, chartY, chartX, chartY+chartHeight)
	dc.Stroke()

	if sampled := samplePoints(series); len(sampled) > 1 {
		denominator := float64(len(sampled) - 1)
		dc.SetHexColor("#6b5914")
		dc.SetLineWidth(8)
		dc.SetLineCapRound()
		dc.SetLineJoinRound()
		for i, point := range sampled {
			x := chartX + float64(i)/denominator*chartWidth
			y := chartY + chartHeight - point.Share/100*chartHeight
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}

	dc.SetHexColor("#8b6914")
	dc.DrawCircle(chartX+chartWidth, chartY+chartHeight, 4)
	dc.Fill()

	axisFace, err := fontFace(24)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(axisFace)
	dc.SetHexColor("#8b7355")
	dc.DrawString(strconv.Itoa(namestore.YearStart), chartX, 548)
	dc.DrawString(strconv.Itoa(namestore.YearEnd), 1040, 548)

	return dc, nil
}
