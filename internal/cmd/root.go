// Package cmd implements the dbassess command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbassess/dbassess/internal/config"
	"github.com/dbassess/dbassess/internal/logging"
	"github.com/dbassess/dbassess/internal/style"
)

// Command groups for help output.
const (
	GroupAssess      = "assess"
	GroupMaintenance = "maintenance"
)

var (
	rootConfigFile string
	rootDebug      bool
	rootLogFile    string

	// Set up by the root pre-run hook.
	cfg       *config.Config
	logger    = slog.Default()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "dbassess",
	Short: "MySQL/MariaDB capacity assessment tools",
	Long: `dbassess collects MySQL/MariaDB status and variables into an assessment
spreadsheet, and prints chunked cleanup statements for expired tokens.

Settings are read from ./dbassess.toml when present, or from --config.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigFile, "config", "", "Path to a TOML config file (default ./dbassess.toml if present)")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootLogFile, "log-file", "", "Also write logs to this file (rotated at 100MB)")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupAssess, Title: "Assessment:"},
		&cobra.Group{ID: GroupMaintenance, Title: "Maintenance:"},
	)
	rootCmd.AddCommand(populateCmd, flushTokensCmd, doctorCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(rootConfigFile)
	if err != nil {
		return err
	}

	closeLog()
	file := rootLogFile
	if file == "" {
		file = cfg.LogFile
	}
	logger, logCloser = logging.New(logging.Options{
		Debug:   rootDebug,
		Console: cmd.ErrOrStderr(),
		File:    file,
	})
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", style.Error.Render("✗"), err)
		return 1
	}
	return 0
}

// run executes the command tree and closes the log sinks, including when the
// command failed.
func run(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	closeLog()
	return err
}

func closeLog() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}
