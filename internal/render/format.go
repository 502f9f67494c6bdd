// Package render turns metric reports into terminal output. All rounding to
// one decimal place happens here; the metrics package hands over raw floats.
package render

import (
	"fmt"
	"math"
	"strings"

	"wastelog/internal/core"
	"wastelog/internal/metrics"
)

// Kg formats a weight with one decimal, e.g. "12.5 kg".
func Kg(v float64) string {
	return fmt.Sprintf("%.1f kg", v)
}

// Percent formats a percentage with one decimal, e.g. "40.0%".
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Share is one slice of the per-type breakdown.
type Share struct {
	Type     core.WasteType
	WeightKg float64
	Percent  float64
}

// Shares orders the breakdown by waste type and computes each type's share of
// the month's total. Types with no weight are left out.
func Shares(byType map[core.WasteType]float64) []Share {
	var total float64
	for _, kg := range byType {
		total += kg
	}
	if total == 0 {
		return nil
	}

	out := make([]Share, 0, len(byType))
	for _, t := range core.WasteTypes() {
		kg, ok := byType[t]
		if !ok || kg == 0 {
			continue
		}
		out = append(out, Share{Type: t, WeightKg: kg, Percent: kg / total * 100})
	}
	return out
}

// BarWidths scales each trend point to at most width cells against the
// largest month. A month with any weight gets at least one cell.
func BarWidths(points []metrics.TrendPoint, width int) []int {
	maxKg := 1.0
	for _, p := range points {
		maxKg = math.Max(maxKg, p.WeightKg)
	}
	out := make([]int, len(points))
	for i, p := range points {
		n := int(math.Round(p.WeightKg / maxKg * float64(width)))
		if n == 0 && p.WeightKg > 0 {
			n = 1
		}
		out[i] = n
	}
	return out
}

// LinePoints lays the trend out as an SVG polyline inside a width x height
// box with pad on every side. Fewer than two points yield no line.
func LinePoints(points []metrics.TrendPoint, width, height, pad float64) string {
	if len(points) < 2 {
		return ""
	}
	maxKg := 1.0
	for _, p := range points {
		maxKg = math.Max(maxKg, p.WeightKg)
	}
	w, h := width-2*pad, height-2*pad
	coords := make([]string, len(points))
	for i, p := range points {
		x := pad + float64(i)/float64(len(points)-1)*w
		y := pad + h - p.WeightKg/maxKg*h
		coords[i] = fmt.Sprintf("%.1f,%.1f", x, y)
	}
	return strings.Join(coords, " ")
}

// TrendLabels returns the two-digit month labels, switching to full YYYY-MM
// keys when two points would otherwise share a label.
func TrendLabels(points []metrics.TrendPoint) []string {
	seen := make(map[string]bool, len(points))
	dup := false
	for _, p := range points {
		if seen[p.Label] {
			dup = true
			break
		}
		seen[p.Label] = true
	}

	out := make([]string, len(points))
	for i, p := range points {
		if dup {
			out[i] = p.Key.String()
		} else {
			out[i] = p.Label
		}
	}
	return out
}

// ScoreGrade buckets an environmental score for coloring.
func ScoreGrade(score int) string {
	switch {
	case score >= 80:
		return "good"
	case score >= 50:
		return "fair"
	default:
		return "poor"
	}
}
