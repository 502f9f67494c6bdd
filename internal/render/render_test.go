package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wastelog/internal/core"
	"wastelog/internal/metrics"
)

func sampleLog() []core.Entry {
	return []core.Entry{
		{Type: core.Plastic, WeightKg: 15, DisposalMethod: "landfill", Date: core.NewDate(2024, 5, 3)},
		{Type: core.Paper, WeightKg: 5, DisposalMethod: "recycling", Date: core.NewDate(2024, 5, 9)},
		{Type: core.Glass, WeightKg: 4, DisposalMethod: "recycling", Date: core.NewDate(2024, 4, 9)},
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "12.5 kg", Kg(12.46))
	assert.Equal(t, "0.0 kg", Kg(0))
	assert.Equal(t, "33.3%", Percent(100.0/3))
	assert.Equal(t, "good", ScoreGrade(80))
	assert.Equal(t, "fair", ScoreGrade(50))
	assert.Equal(t, "poor", ScoreGrade(25))
}

func TestShares(t *testing.T) {
	shares := Shares(map[core.WasteType]float64{core.Paper: 5, core.Plastic: 15, core.Metal: 0})
	require.Len(t, shares, 2)
	assert.Equal(t, core.Plastic, shares[0].Type)
	assert.InDelta(t, 75.0, shares[0].Percent, 1e-9)
	assert.Equal(t, core.Paper, shares[1].Type)
	assert.InDelta(t, 25.0, shares[1].Percent, 1e-9)

	assert.Nil(t, Shares(nil))
}

func TestBarWidthsAndLabels(t *testing.T) {
	points := []metrics.TrendPoint{
		{Label: "11", Key: "2023-11", WeightKg: 10},
		{Label: "12", Key: "2023-12", WeightKg: 0.1},
		{Label: "01", Key: "2024-01", WeightKg: 20},
	}
	assert.Equal(t, []int{5, 1, 10}, BarWidths(points, 10))
	assert.Equal(t, []string{"11", "12", "01"}, TrendLabels(points))

	wrapped := []metrics.TrendPoint{
		{Label: "05", Key: "2023-05", WeightKg: 1},
		{Label: "05", Key: "2024-05", WeightKg: 2},
	}
	assert.Equal(t, []string{"2023-05", "2024-05"}, TrendLabels(wrapped))

	assert.Equal(t, []int{0}, BarWidths([]metrics.TrendPoint{{WeightKg: 0}}, 10))
}

func TestLinePoints(t *testing.T) {
	points := []metrics.TrendPoint{
		{Label: "04", Key: "2024-04", WeightKg: 10},
		{Label: "05", Key: "2024-05", WeightKg: 20},
		{Label: "06", Key: "2024-06", WeightKg: 0},
	}
	assert.Equal(t, "10.0,60.0 60.0,10.0 110.0,110.0", LinePoints(points, 120, 120, 10))
	assert.Empty(t, LinePoints(points[:1], 120, 120, 10))
}

func TestPlainDashboard(t *testing.T) {
	r := metrics.BuildReport(sampleLog(), "2024-05", 6)

	var buf bytes.Buffer
	require.NoError(t, Dashboard(&buf, r))
	out := buf.String()

	for _, want := range []string{
		"WASTE DASHBOARD 2024-05",
		"Entries:             2",
		"Monthly waste:       20.0 kg",
		"Carbon footprint:    33.5 kg CO2",
		"Recycling rate:      25.0%",
		"Environmental score: 75/100",
		"plastic",
		"15.0 kg (75.0%)",
		"Air pollution:       13.0 kg",
		"- " + metrics.SuggestRecyclingProgram,
		"- " + metrics.SuggestReducePlastic,
	} {
		assert.Contains(t, out, want)
	}
	assert.True(t, strings.Index(out, "04 ") < strings.Index(out, "05 "))
}

func TestPlainEmptyDashboard(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Plain(&buf, metrics.BuildReport(nil, "2024-05", 6)))
	assert.Contains(t, buf.String(), "No data yet")
	assert.Contains(t, buf.String(), "No entries this month")
	assert.Contains(t, buf.String(), "Environmental score: 70/100")
}

func TestStyledDashboard(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Styled(&buf, metrics.BuildReport(sampleLog(), "2024-05", 6)))
	out := buf.String()
	assert.Contains(t, out, "MONTHLY TRENDS")
	assert.Contains(t, out, "POLLUTION IMPACT")
	assert.Contains(t, out, "75/100")
	assert.Contains(t, out, "╭")
}

func TestTrendsPlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Trends(&buf, metrics.MonthlyTrends(sampleLog(), 6)))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "04 "))
	assert.True(t, strings.HasSuffix(lines[1], "20.0 kg"))
}
