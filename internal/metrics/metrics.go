// Package metrics derives monthly aggregates, pollution estimates, scores and
// advice from a waste log.
//
// Every function here is pure: inputs are never mutated, nothing is cached and
// results are not rounded. Formatting belongs to the callers.
package metrics

import (
	"sort"

	"wastelog/internal/core"
)

// DefaultTrendWindow is the number of months returned by MonthlyTrends when
// the caller passes a non-positive window.
const DefaultTrendWindow = 6

type (
	// Monthly is the headline summary for one month.
	Monthly struct {
		TotalWeightKg        float64 `json:"totalWeightKg"`
		TotalCarbonKg        float64 `json:"totalCarbonKg"`
		RecyclingRatePercent float64 `json:"recyclingRatePercent"`
		EnvironmentalScore   int     `json:"environmentalScore"`
	}

	// Pollution holds per-pollutant totals in kg.
	Pollution struct {
		AirKg   float64 `json:"airKg"`
		WaterKg float64 `json:"waterKg"`
		SoilKg  float64 `json:"soilKg"`
	}

	// TrendPoint is one bar of the monthly trend chart.
	TrendPoint struct {
		Label    string        `json:"month"` // two-digit month only
		Key      core.MonthKey `json:"key"`
		WeightKg float64       `json:"weight"`
	}
)

// EntriesForMonth returns the entries dated within month, in log order.
func EntriesForMonth(log []core.Entry, month core.MonthKey) []core.Entry {
	out := make([]core.Entry, 0, len(log))
	for _, e := range log {
		if month.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// MonthlyMetrics sums weight, carbon and recycled weight for month and scores the result.
func MonthlyMetrics(log []core.Entry, month core.MonthKey) Monthly {
	var totalWeight, totalCarbon, recycled float64
	for _, e := range EntriesForMonth(log, month) {
		totalWeight += e.WeightKg
		totalCarbon += e.WeightKg * e.Factors().Carbon
		if e.IsRecycling() {
			recycled += e.WeightKg
		}
	}

	rate := 0.0
	if totalWeight > 0 {
		rate = recycled / totalWeight * 100
	}

	return Monthly{
		TotalWeightKg:        totalWeight,
		TotalCarbonKg:        totalCarbon,
		RecyclingRatePercent: rate,
		EnvironmentalScore:   EnvironmentalScore(totalWeight, rate, totalCarbon),
	}
}

// EnvironmentalScore starts from 100 and subtracts one penalty per dimension.
// Comparisons are strict: a weight of exactly 50 kg takes the -10 tier, not -20.
func EnvironmentalScore(weightKg, recyclingRatePercent, carbonKg float64) int {
	score := 100

	switch {
	case weightKg > 50:
		score -= 20
	case weightKg > 30:
		score -= 10
	case weightKg > 20:
		score -= 5
	}

	// Low recycling is punished.
	switch {
	case recyclingRatePercent < 20:
		score -= 30
	case recyclingRatePercent < 40:
		score -= 20
	case recyclingRatePercent < 60:
		score -= 10
	}

	switch {
	case carbonKg > 100:
		score -= 25
	case carbonKg > 50:
		score -= 15
	case carbonKg > 25:
		score -= 5
	}

	return max(0, min(100, score))
}

// PollutionImpact sums air, water and soil estimates for month.
func PollutionImpact(log []core.Entry, month core.MonthKey) Pollution {
	var p Pollution
	for _, e := range EntriesForMonth(log, month) {
		f := e.Factors()
		p.AirKg += e.WeightKg * f.Air
		p.WaterKg += e.WeightKg * f.Water
		p.SoilKg += e.WeightKg * f.Soil
	}
	return p
}

// MonthlyTrends groups the whole log by month and returns the last window
// months in ascending order.
func MonthlyTrends(log []core.Entry, window int) []TrendPoint {
	if window <= 0 {
		window = DefaultTrendWindow
	}

	totals := make(map[core.MonthKey]float64)
	for _, e := range log {
		totals[e.Date.MonthKey()] += e.WeightKg
	}

	keys := make([]core.MonthKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	if len(keys) > window {
		keys = keys[len(keys)-window:]
	}

	points := make([]TrendPoint, len(keys))
	for i, k := range keys {
		points[i] = TrendPoint{Label: k.Label(), Key: k, WeightKg: totals[k]}
	}
	return points
}

// WasteByType sums the month's weight per waste type. Types with no entries are absent.
func WasteByType(log []core.Entry, month core.MonthKey) map[core.WasteType]float64 {
	out := make(map[core.WasteType]float64)
	for _, e := range EntriesForMonth(log, month) {
		out[e.Type] += e.WeightKg
	}
	return out
}
