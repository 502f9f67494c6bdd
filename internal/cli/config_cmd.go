package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newConfigCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Validate and print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string, app *App) error {
			c := app.Config
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			rows := [][2]string{
				{"PORT", c.Port},
				{"STORAGE_BACKEND", c.StorageBackend},
				{"SQLITE_DB_PATH", c.SQLiteDBPath},
				{"STORAGE_KEY", c.StorageKey},
				{"MAX_ATTACHMENT_BYTES", fmt.Sprint(c.MaxAttachmentBytes)},
				{"TREND_WINDOW", fmt.Sprint(c.TrendWindow)},
				{"REPORT_CACHE_SIZE", fmt.Sprint(c.ReportCacheSize)},
				{"REPORT_CACHE_TTL", c.ReportCacheTTL.String()},
				{"LOG_LEVEL", c.LogLevel},
			}
			for _, row := range rows {
				fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid (%d entries in log)\n", app.Service.EntryCount())
			return nil
		}),
	}
}
