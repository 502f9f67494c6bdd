package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"wastelog/internal/export"
	"wastelog/internal/render"
)

func newImportCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Append entries from a JSON snapshot",
		Long: `Appends the entries of a JSON array to the log. The format is the one the
browser stores under localStorage "wasteData" and the one "export" writes.
Entries without an id get one. Nothing is saved if any entry is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: r.run(func(cmd *cobra.Command, args []string, app *App) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			n, err := app.Service.Import(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries (%d total)\n", n, app.Service.EntryCount())
			return nil
		}),
	}
}

type exportParams struct {
	format string
	month  string
	output string
}

func newExportCmd(r *root) *cobra.Command {
	var p exportParams
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the log as JSON or an XLSX workbook",
		Example: `  wastelog export > backup.json
  wastelog export --format xlsx --month 2024-05 -o may.xlsx`,
		Args: cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string, app *App) error {
			return runExport(cmd, app, p)
		}),
	}
	cmd.Flags().StringVar(&p.format, "format", "json", "output format: json or xlsx")
	cmd.Flags().StringVar(&p.month, "month", "", "report month for the xlsx summary (default current month)")
	cmd.Flags().StringVarP(&p.output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func runExport(cmd *cobra.Command, app *App, p exportParams) (err error) {
	format := strings.ToLower(strings.TrimSpace(p.format))
	if format != "json" && format != "xlsx" {
		return fmt.Errorf("unsupported format %q: use json or xlsx", p.format)
	}

	out := cmd.OutOrStdout()
	if p.output == "" && format == "xlsx" && render.IsTerminal(out) {
		return errors.New("refusing to write a workbook to a terminal, use --output")
	}
	if p.output != "" {
		f, createErr := os.Create(p.output)
		if createErr != nil {
			return createErr
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		out = f
	}

	if format == "json" {
		return export.WriteJSON(out, app.Service.Entries())
	}

	month, err := monthOrCurrent(app, p.month)
	if err != nil {
		return err
	}
	report, err := app.Service.Report(cmd.Context(), month)
	if err != nil {
		return err
	}
	if err := export.WriteXLSX(out, app.Service.Entries(), report); err != nil {
		return err
	}
	if p.output != "" {
		cmd.PrintErrf("Wrote %s\n", p.output)
	}
	return nil
}

func newClearCmd(r *root) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string, app *App) error {
			if err := requireYes(yes, "clearing the log"); err != nil {
				return err
			}
			n := app.Service.EntryCount()
			if err := app.Service.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", n)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}
