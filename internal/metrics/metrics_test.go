package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wastelog/internal/core"
)

func entry(t core.WasteType, kg float64, method, date string) core.Entry {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Entry{
		ID:             fmt.Sprintf("%s-%s-%v", date, t, kg),
		Type:           t,
		WeightKg:       kg,
		DisposalMethod: method,
		Date:           d,
		RecordedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func sampleLog() []core.Entry {
	return []core.Entry{
		entry(core.Plastic, 4, "landfill", "2024-03-01"),
		entry(core.Paper, 6, core.DisposalRecycling, "2024-03-15"),
		entry(core.Glass, 2.5, core.DisposalRecycling, "2024-04-02"),
		entry(core.Organic, 3, "composting", "2024-03-31"),
		entry(core.Metal, 1, "landfill", "2023-03-10"),
	}
}

func TestEntriesForMonth(t *testing.T) {
	log := sampleLog()
	got := EntriesForMonth(log, "2024-03")
	require.Len(t, got, 3)
	assert.Equal(t, log[0], got[0])
	assert.Equal(t, log[1], got[1])
	assert.Equal(t, log[3], got[2])

	assert.Empty(t, EntriesForMonth(log, "2025-01"))
	assert.Empty(t, EntriesForMonth(nil, "2024-03"))
}

func TestMonthlyMetrics(t *testing.T) {
	log := sampleLog()
	m := MonthlyMetrics(log, "2024-03")

	var sum float64
	for _, e := range EntriesForMonth(log, "2024-03") {
		sum += e.WeightKg
	}
	assert.Equal(t, sum, m.TotalWeightKg)
	assert.InDelta(t, 4*2.1+6*0.4+3*0.6, m.TotalCarbonKg, 1e-9)
	assert.Equal(t, 6.0/13.0*100, m.RecyclingRatePercent)
	// 13 kg: no weight penalty; 46% recycled: -10; 12.6 kg CO2: none.
	assert.Equal(t, 90, m.EnvironmentalScore)
}

func TestMonthlyMetricsEmptyLog(t *testing.T) {
	m := MonthlyMetrics(nil, "2024-03")
	assert.Equal(t, Monthly{
		TotalWeightKg:        0,
		TotalCarbonKg:        0,
		RecyclingRatePercent: 0,
		EnvironmentalScore:   70,
	}, m)
}

func TestMonthlyMetricsIdempotent(t *testing.T) {
	log := sampleLog()
	before := append([]core.Entry(nil), log...)

	first := MonthlyMetrics(log, "2024-03")
	second := MonthlyMetrics(log, "2024-03")
	assert.Equal(t, first, second)
	assert.Equal(t, before, log)
}

func TestRecyclingRateBounds(t *testing.T) {
	cases := map[string][]core.Entry{
		"all recycled": {entry(core.Paper, 3, core.DisposalRecycling, "2024-05-01")},
		"none recycled": {entry(core.Paper, 3, "landfill", "2024-05-01")},
		"mixed": {
			entry(core.Paper, 1, core.DisposalRecycling, "2024-05-01"),
			entry(core.Glass, 3, "landfill", "2024-05-02"),
		},
		"method is case sensitive": {entry(core.Paper, 3, "Recycling", "2024-05-01")},
	}
	want := map[string]float64{
		"all recycled":             100,
		"none recycled":            0,
		"mixed":                    25,
		"method is case sensitive": 0,
	}
	for name, log := range cases {
		t.Run(name, func(t *testing.T) {
			rate := MonthlyMetrics(log, "2024-05").RecyclingRatePercent
			assert.GreaterOrEqual(t, rate, 0.0)
			assert.LessOrEqual(t, rate, 100.0)
			assert.Equal(t, want[name], rate)
		})
	}
}

func TestEnvironmentalScore(t *testing.T) {
	tests := []struct {
		name     string
		weight   float64
		rate     float64
		carbon   float64
		expected int
	}{
		{"perfect", 0, 100, 0, 100},
		{"weight exactly 50 takes the 30 tier", 50, 100, 0, 90},
		{"weight just above 50", 50.0001, 100, 0, 80},
		{"weight exactly 30", 30, 100, 0, 95},
		{"weight exactly 20", 20, 100, 0, 100},
		{"weight 20.5", 20.5, 100, 0, 95},
		{"rate exactly 60", 0, 60, 0, 100},
		{"rate 59.9", 0, 59.9, 0, 90},
		{"rate exactly 40", 0, 40, 0, 90},
		{"rate exactly 20", 0, 20, 0, 80},
		{"rate 19.99", 0, 19.99, 0, 70},
		{"carbon exactly 25", 0, 100, 25, 100},
		{"carbon 25.1", 0, 100, 25.1, 95},
		{"carbon exactly 50", 0, 100, 50, 95},
		{"carbon exactly 100", 0, 100, 100, 85},
		{"carbon 100.1", 0, 100, 100.1, 75},
		{"all worst tiers", 10000, 0, 10000, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EnvironmentalScore(tt.weight, tt.rate, tt.carbon))
		})
	}
}

func TestEnvironmentalScoreAlwaysInRange(t *testing.T) {
	values := []float64{-1e9, -1, 0, 19.9, 20, 25, 30, 40, 50, 60, 100, 1e9}
	for _, w := range values {
		for _, r := range values {
			for _, c := range values {
				s := EnvironmentalScore(w, r, c)
				require.GreaterOrEqual(t, s, 0)
				require.LessOrEqual(t, s, 100)
			}
		}
	}
}

func TestPollutionImpact(t *testing.T) {
	log := []core.Entry{
		entry(core.Plastic, 10, "landfill", "2024-06-01"),
		entry(core.Electronic, 2, "landfill", "2024-06-02"),
		entry(core.Electronic, 50, "landfill", "2024-07-02"),
	}
	p := PollutionImpact(log, "2024-06")
	assert.InDelta(t, 10*0.8+2*1.2, p.AirKg, 1e-9)
	assert.InDelta(t, 10*0.3+2*0.8, p.WaterKg, 1e-9)
	assert.InDelta(t, 10*0.2+2*0.5, p.SoilKg, 1e-9)

	assert.Equal(t, Pollution{}, PollutionImpact(log, "2024-01"))
}

func TestMonthlyTrends(t *testing.T) {
	var log []core.Entry
	for m := 1; m <= 8; m++ {
		log = append(log,
			entry(core.Paper, float64(m), "landfill", fmt.Sprintf("2024-%02d-01", m)),
			entry(core.Glass, 1, "landfill", fmt.Sprintf("2024-%02d-20", m)),
		)
	}
	// Out-of-order insertion must not matter.
	log = append([]core.Entry{entry(core.Metal, 5, "landfill", "2024-08-03")}, log...)

	got := MonthlyTrends(log, 6)
	require.Len(t, got, 6)
	wantKeys := []core.MonthKey{"2024-03", "2024-04", "2024-05", "2024-06", "2024-07", "2024-08"}
	for i, p := range got {
		assert.Equal(t, wantKeys[i], p.Key)
		assert.Equal(t, wantKeys[i].Label(), p.Label)
	}
	assert.Equal(t, 4.0, got[0].WeightKg)
	assert.Equal(t, 8.0+1+5, got[5].WeightKg)

	assert.Len(t, MonthlyTrends(log, 0), DefaultTrendWindow)
	assert.Empty(t, MonthlyTrends(nil, 6))
}

func TestMonthlyTrendsYearBoundaryLabels(t *testing.T) {
	log := []core.Entry{
		entry(core.Paper, 1, "landfill", "2023-12-05"),
		entry(core.Paper, 2, "landfill", "2024-12-05"),
	}
	got := MonthlyTrends(log, 6)
	require.Len(t, got, 2)
	assert.Equal(t, "12", got[0].Label)
	assert.Equal(t, "12", got[1].Label)
	assert.NotEqual(t, got[0].Key, got[1].Key)
}

func TestWasteByType(t *testing.T) {
	log := sampleLog()
	log = append(log, entry(core.Plastic, 1.5, core.DisposalRecycling, "2024-03-20"))
	got := WasteByType(log, "2024-03")
	assert.Equal(t, map[core.WasteType]float64{
		core.Plastic: 5.5,
		core.Paper:   6,
		core.Organic: 3,
	}, got)
	assert.Empty(t, WasteByType(log, "1999-01"))
}
