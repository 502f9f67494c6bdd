package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wastelog/internal/config"
)

// Opener builds the App a command runs against.
type Opener func(ctx context.Context, cmd *cobra.Command) (*App, error)

// root opens an App per command run so help and usage never touch storage.
type root struct {
	open Opener
}

// run opens the App, hands it to fn and closes it afterwards.
func (r *root) run(fn func(cmd *cobra.Command, args []string, app *App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		app, err := r.open(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, app.Close())
		}()
		return fn(cmd, args, app)
	}
}

// NewRootCmd creates the wastelog command tree backed by the environment
// configuration.
func NewRootCmd(version string) *cobra.Command {
	return NewRootCmdWithOpener(version, openFromEnv)
}

// NewRootCmdWithOpener lets tests supply their own App.
func NewRootCmdWithOpener(version string, open Opener) *cobra.Command {
	r := &root{open: open}

	cmd := &cobra.Command{
		Use:           "wastelog",
		Short:         "Track household waste and its environmental impact",
		Long:          "wastelog records waste entries and reports monthly weight, carbon footprint, recycling rate, pollution impact and suggestions.",
		Version:       version,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("backend", "", "storage backend (sqlite or memory), overrides STORAGE_BACKEND")
	cmd.PersistentFlags().String("db", "", "SQLite database path, overrides SQLITE_DB_PATH")
	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error), overrides LOG_LEVEL")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	cmd.AddCommand(
		newAddCmd(r),
		newListCmd(r),
		newReportCmd(r),
		newTrendsCmd(r),
		newImportCmd(r),
		newExportCmd(r),
		newClearCmd(r),
		newServeCmd(r),
		newConfigCmd(r),
	)
	return cmd
}

const rootCmdExample = `  # Log 2.5 kg of plastic with a photo
  wastelog add --type plastic --weight 2.5 --method recycling --file bag.jpg

  # Show this month's dashboard
  wastelog report

  # Dashboard for a past month as JSON
  wastelog report --month 2024-05 --json

  # Import a browser localStorage dump
  wastelog import wasteData.json

  # Export a workbook
  wastelog export --format xlsx --month 2024-05 -o waste.xlsx

  # Run the web dashboard
  wastelog serve --port 8081`

// loadConfig reads the environment and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	LoadEnvFile()
	cfg := config.Load()

	flags := cmd.Flags()
	if v, _ := flags.GetString("backend"); v != "" {
		cfg.StorageBackend = v
	}
	if v, _ := flags.GetString("db"); v != "" {
		cfg.SQLiteDBPath = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if debug, _ := flags.GetBool("debug"); debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openFromEnv(ctx context.Context, cmd *cobra.Command) (*App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := SetupLogger(cfg.LogLevel, cmd.ErrOrStderr())
	return Open(ctx, cfg, logger)
}

var errAborted = errors.New("aborted")

func requireYes(yes bool, what string) error {
	if !yes {
		return fmt.Errorf("%w: %s needs --yes to confirm", errAborted, what)
	}
	return nil
}
