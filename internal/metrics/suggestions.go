package metrics

import (
	"wastelog/internal/core"
)

// Advice texts, in rule order.
const (
	SuggestReduceGeneration = "Consider reducing waste generation by 20-30% through better planning and consumption habits."
	SuggestRecyclingProgram = "Implement a comprehensive recycling program to increase recycling rate to 60%+."
	SuggestLowerCarbon      = "Focus on reducing carbon footprint by choosing more sustainable disposal methods."
	SuggestReducePlastic    = "Reduce plastic waste by using reusable containers and avoiding single-use plastics."
	SuggestCompost          = "Start composting organic waste to reduce landfill burden and create nutrient-rich soil."
	SuggestEWaste           = "Properly recycle electronic waste through certified e-waste recycling programs."
	SuggestKeepGoing        = "Great job! Your waste management practices are environmentally friendly. Keep up the good work!"
)

type rule struct {
	applies func(Monthly, map[core.WasteType]float64) bool
	text    string
}

var rules = []rule{
	{func(m Monthly, _ map[core.WasteType]float64) bool { return m.TotalWeightKg > 30 }, SuggestReduceGeneration},
	{func(m Monthly, _ map[core.WasteType]float64) bool { return m.RecyclingRatePercent < 40 }, SuggestRecyclingProgram},
	{func(m Monthly, _ map[core.WasteType]float64) bool { return m.TotalCarbonKg > 50 }, SuggestLowerCarbon},
	{func(_ Monthly, by map[core.WasteType]float64) bool { return by[core.Plastic] > 10 }, SuggestReducePlastic},
	{func(_ Monthly, by map[core.WasteType]float64) bool { return by[core.Organic] > 5 }, SuggestCompost},
	{func(_ Monthly, by map[core.WasteType]float64) bool { return by[core.Electronic] > 2 }, SuggestEWaste},
}

// Suggestions evaluates every rule independently and returns the texts of
// those that apply, in rule order. When none apply a single positive message
// is returned. An empty month always triggers the recycling rule.
func Suggestions(log []core.Entry, month core.MonthKey) []string {
	m := MonthlyMetrics(log, month)
	byType := WasteByType(log, month)

	var out []string
	for _, r := range rules {
		if r.applies(m, byType) {
			out = append(out, r.text)
		}
	}
	if len(out) == 0 {
		out = append(out, SuggestKeepGoing)
	}
	return out
}

// Report bundles everything a dashboard renders for one month.
type Report struct {
	Month       core.MonthKey              `json:"month"`
	EntryCount  int                        `json:"entryCount"`
	Metrics     Monthly                    `json:"metrics"`
	Pollution   Pollution                  `json:"pollution"`
	ByType      map[core.WasteType]float64 `json:"byType"`
	Trends      []TrendPoint               `json:"trends"`
	Suggestions []string                   `json:"suggestions"`
}

// BuildReport runs every metric for month over log.
func BuildReport(log []core.Entry, month core.MonthKey, window int) Report {
	return Report{
		Month:       month,
		EntryCount:  len(EntriesForMonth(log, month)),
		Metrics:     MonthlyMetrics(log, month),
		Pollution:   PollutionImpact(log, month),
		ByType:      WasteByType(log, month),
		Trends:      MonthlyTrends(log, window),
		Suggestions: Suggestions(log, month),
	}
}
