package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"wastelog/internal/core"
	"wastelog/internal/metrics"
)

const (
	boxWidth      = 64
	trendBarWidth = 32
	shareBarWidth = 20
)

func titleColor() lipgloss.Color  { return lipgloss.Color("39") }
func borderColor() lipgloss.Color { return lipgloss.Color("240") }
func mutedColor() lipgloss.Color  { return lipgloss.Color("245") }

func gradeColor(score int) lipgloss.Color {
	switch ScoreGrade(score) {
	case "good":
		return lipgloss.Color("42")
	case "fair":
		return lipgloss.Color("214")
	default:
		return lipgloss.Color("196")
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Dashboard writes the full report, styled on a terminal and plain otherwise.
func Dashboard(w io.Writer, r metrics.Report) error {
	if IsTerminal(w) {
		return Styled(w, r)
	}
	return Plain(w, r)
}

// Trends writes only the trend chart.
func Trends(w io.Writer, points []metrics.TrendPoint) error {
	if IsTerminal(w) {
		_, err := fmt.Fprintln(w, box("MONTHLY TRENDS", trendBars(points, true)))
		return err
	}
	_, err := io.WriteString(w, trendBars(points, false))
	return err
}

// Styled renders the report as bordered lipgloss boxes.
func Styled(w io.Writer, r metrics.Report) error {
	label := lipgloss.NewStyle().Foreground(mutedColor())
	score := lipgloss.NewStyle().Bold(true).Foreground(gradeColor(r.Metrics.EnvironmentalScore))

	var card strings.Builder
	fmt.Fprintf(&card, "%s %s\n", label.Render("Entries:"), fmt.Sprint(r.EntryCount))
	fmt.Fprintf(&card, "%s %s\n", label.Render("Monthly waste:"), Kg(r.Metrics.TotalWeightKg))
	fmt.Fprintf(&card, "%s %s CO2\n", label.Render("Carbon footprint:"), Kg(r.Metrics.TotalCarbonKg))
	fmt.Fprintf(&card, "%s %s\n", label.Render("Recycling rate:"), Percent(r.Metrics.RecyclingRatePercent))
	fmt.Fprintf(&card, "%s %s", label.Render("Environmental score:"),
		score.Render(fmt.Sprintf("%d/100", r.Metrics.EnvironmentalScore)))

	var pollution strings.Builder
	fmt.Fprintf(&pollution, "%s %s\n", label.Render("Air pollution:"), Kg(r.Pollution.AirKg))
	fmt.Fprintf(&pollution, "%s %s\n", label.Render("Water pollution:"), Kg(r.Pollution.WaterKg))
	fmt.Fprintf(&pollution, "%s %s", label.Render("Soil contamination:"), Kg(r.Pollution.SoilKg))

	bullet := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✔")
	var advice strings.Builder
	for i, s := range r.Suggestions {
		if i > 0 {
			advice.WriteString("\n")
		}
		fmt.Fprintf(&advice, "%s %s", bullet, s)
	}

	sections := []string{
		box("WASTE DASHBOARD "+r.Month.String(), card.String()),
		box("MONTHLY TRENDS", trendBars(r.Trends, true)),
		box("BREAKDOWN BY TYPE", shareBars(r.ByType, true)),
		box("POLLUTION IMPACT", pollution.String()),
		box("SUGGESTIONS", advice.String()),
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, sections...))
	return err
}

func box(title, body string) string {
	t := lipgloss.NewStyle().Bold(true).Foreground(titleColor()).Render(title)
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(borderColor()).
		Padding(0, 1).
		Width(boxWidth).
		Render(t + "\n" + strings.TrimRight(body, "\n"))
}

// Plain renders the report as unstyled text suitable for pipes and logs.
func Plain(w io.Writer, r metrics.Report) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	fmt.Fprintf(&b, "WASTE DASHBOARD %s\n", r.Month)
	b.WriteString(strings.Repeat("=", 40) + "\n")
	p.Fprintf(&b, "Entries:             %d\n", r.EntryCount)
	p.Fprintf(&b, "Monthly waste:       %.1f kg\n", r.Metrics.TotalWeightKg)
	p.Fprintf(&b, "Carbon footprint:    %.1f kg CO2\n", r.Metrics.TotalCarbonKg)
	p.Fprintf(&b, "Recycling rate:      %.1f%%\n", r.Metrics.RecyclingRatePercent)
	fmt.Fprintf(&b, "Environmental score: %d/100\n", r.Metrics.EnvironmentalScore)

	b.WriteString("\nMONTHLY TRENDS\n")
	b.WriteString(trendBars(r.Trends, false))

	b.WriteString("\nBREAKDOWN BY TYPE\n")
	b.WriteString(shareBars(r.ByType, false))

	b.WriteString("\nPOLLUTION IMPACT\n")
	p.Fprintf(&b, "Air pollution:       %.1f kg\n", r.Pollution.AirKg)
	p.Fprintf(&b, "Water pollution:     %.1f kg\n", r.Pollution.WaterKg)
	p.Fprintf(&b, "Soil contamination:  %.1f kg\n", r.Pollution.SoilKg)

	b.WriteString("\nSUGGESTIONS\n")
	for _, s := range r.Suggestions {
		fmt.Fprintf(&b, "- %s\n", s)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func trendBars(points []metrics.TrendPoint, styled bool) string {
	if len(points) == 0 {
		return "No data yet\n"
	}
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	labels := TrendLabels(points)
	widths := BarWidths(points, trendBarWidth)

	var b strings.Builder
	for i, pt := range points {
		cells := strings.Repeat("█", widths[i])
		if styled {
			cells = bar.Render(cells)
		}
		fmt.Fprintf(&b, "%-7s %s %s\n", labels[i], cells, Kg(pt.WeightKg))
	}
	return b.String()
}

func shareBars(byType map[core.WasteType]float64, styled bool) string {
	shares := Shares(byType)
	if len(shares) == 0 {
		return "No entries this month\n"
	}
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color("141"))

	var b strings.Builder
	for _, sh := range shares {
		cells := strings.Repeat("█", max(1, int(sh.Percent/100*shareBarWidth+0.5)))
		if styled {
			cells = bar.Render(cells)
		}
		fmt.Fprintf(&b, "%-11s %-*s %s (%s)\n", sh.Type, shareBarWidth, cells, Kg(sh.WeightKg), Percent(sh.Percent))
	}
	return b.String()
}
