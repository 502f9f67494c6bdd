package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wastelog/internal/core"
	"wastelog/internal/metrics"
	"wastelog/internal/render"
)

type viewParams struct {
	month  string
	window int
	asJSON bool
	plain  bool
}

// monthOrCurrent parses --month, defaulting to the service's current month.
func monthOrCurrent(app *App, v string) (core.MonthKey, error) {
	if v == "" {
		return app.Service.CurrentMonth(), nil
	}
	m, err := core.ParseMonthKey(v)
	if err != nil {
		return "", fmt.Errorf("month %q: %w", v, err)
	}
	return m, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newReportCmd(r *root) *cobra.Command {
	var p viewParams
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the monthly dashboard",
		Long: `Shows the dashboard for a month: total weight, carbon footprint, recycling
rate, environmental score, monthly trends, breakdown by type, pollution impact
and suggestions. Output is styled on a terminal and plain when piped.`,
		Args: cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string, app *App) error {
			month, err := monthOrCurrent(app, p.month)
			if err != nil {
				return err
			}
			report, err := app.Service.Report(cmd.Context(), month)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case p.asJSON:
				return writeJSON(out, report)
			case p.plain:
				return render.Plain(out, report)
			default:
				return render.Dashboard(out, report)
			}
		}),
	}
	cmd.Flags().StringVar(&p.month, "month", "", "month as YYYY-MM (default current month)")
	cmd.Flags().BoolVar(&p.asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&p.plain, "plain", false, "disable styling")
	cmd.MarkFlagsMutuallyExclusive("json", "plain")
	return cmd
}

func newTrendsCmd(r *root) *cobra.Command {
	var p viewParams
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show total weight per month",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string, app *App) error {
			if p.window < 0 || p.window > 24 {
				return fmt.Errorf("window must be between 1 and 24, got %d", p.window)
			}
			points := app.Service.Trends(p.window)
			if p.asJSON {
				if points == nil {
					points = []metrics.TrendPoint{}
				}
				return writeJSON(cmd.OutOrStdout(), points)
			}
			return render.Trends(cmd.OutOrStdout(), points)
		}),
	}
	cmd.Flags().IntVar(&p.window, "window", 0, "number of most recent months (default TREND_WINDOW)")
	cmd.Flags().BoolVar(&p.asJSON, "json", false, "print the series as JSON")
	return cmd
}

func newListCmd(r *root) *cobra.Command {
	var p viewParams
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List waste entries",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string, app *App) error {
			entries := app.Service.Entries()
			if p.month != "" {
				month, err := monthOrCurrent(app, p.month)
				if err != nil {
					return err
				}
				entries = metrics.EntriesForMonth(entries, month)
			}
			if p.asJSON {
				if entries == nil {
					entries = []core.Entry{}
				}
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			return writeEntryTable(cmd.OutOrStdout(), entries)
		}),
	}
	cmd.Flags().StringVar(&p.month, "month", "", "only entries dated in this month (YYYY-MM)")
	cmd.Flags().BoolVar(&p.asJSON, "json", false, "print entries as JSON")
	return cmd
}

func writeEntryTable(w io.Writer, entries []core.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No entries")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tWEIGHT\tMETHOD\tFILES\tID")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", e.Date, e.Type, render.Kg(e.WeightKg), e.DisposalMethod, len(e.Attachments), e.ID)
	}
	return tw.Flush()
}
