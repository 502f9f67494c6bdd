package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wastelog/internal/core"
)

func TestSuggestions(t *testing.T) {
	tests := []struct {
		name string
		log  []core.Entry
		want []string
	}{
		{
			name: "single plastic entry to landfill",
			log:  []core.Entry{entry(core.Plastic, 15, "landfill", "2024-09-10")},
			want: []string{SuggestRecyclingProgram, SuggestReducePlastic},
		},
		{
			name: "well managed month",
			log:  []core.Entry{entry(core.Paper, 10, core.DisposalRecycling, "2024-09-10")},
			want: []string{SuggestKeepGoing},
		},
		{
			name: "empty month still flags recycling",
			log:  nil,
			want: []string{SuggestRecyclingProgram},
		},
		{
			name: "every rule fires in order",
			log: []core.Entry{
				entry(core.Plastic, 20, "landfill", "2024-09-01"),
				entry(core.Organic, 6, "landfill", "2024-09-02"),
				entry(core.Electronic, 5, "landfill", "2024-09-03"),
			},
			want: []string{
				SuggestReduceGeneration,
				SuggestRecyclingProgram,
				SuggestLowerCarbon,
				SuggestReducePlastic,
				SuggestCompost,
				SuggestEWaste,
			},
		},
		{
			name: "thresholds are strict",
			log: []core.Entry{
				entry(core.Plastic, 10, core.DisposalRecycling, "2024-09-01"),
				entry(core.Organic, 5, core.DisposalRecycling, "2024-09-02"),
				entry(core.Electronic, 2, core.DisposalRecycling, "2024-09-03"),
			},
			want: []string{SuggestKeepGoing},
		},
		{
			name: "other months are ignored",
			log: []core.Entry{
				entry(core.Paper, 10, core.DisposalRecycling, "2024-09-10"),
				entry(core.Plastic, 90, "landfill", "2024-08-10"),
			},
			want: []string{SuggestKeepGoing},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggestions(tt.log, "2024-09"))
		})
	}
}

func TestBuildReport(t *testing.T) {
	log := sampleLog()
	r := BuildReport(log, "2024-03", 6)

	assert.Equal(t, core.MonthKey("2024-03"), r.Month)
	assert.Equal(t, 3, r.EntryCount)
	assert.Equal(t, MonthlyMetrics(log, "2024-03"), r.Metrics)
	assert.Equal(t, PollutionImpact(log, "2024-03"), r.Pollution)
	assert.Equal(t, WasteByType(log, "2024-03"), r.ByType)
	assert.Equal(t, MonthlyTrends(log, 6), r.Trends)
	assert.Equal(t, Suggestions(log, "2024-03"), r.Suggestions)
}
