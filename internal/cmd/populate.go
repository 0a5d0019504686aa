package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/dbassess/dbassess/internal/sheet"
	"github.com/dbassess/dbassess/internal/status"
	"github.com/dbassess/dbassess/internal/style"
)

var (
	populateSource   string
	populateOut      string
	populateSpentOn  string
	populateTemplate string

	// passwordPrompt is swapped out in tests.
	passwordPrompt status.PasswordPrompt = status.TerminalPrompt
)

var populateCmd = &cobra.Command{
	Use:     "populate",
	GroupID: GroupAssess,
	Short:   "Fill the assessment spreadsheet from server status",
	Long: `Fill the assessment spreadsheet with server status and variables.

The source is either a connection string or a text dump:

  mysql://[user[:password]@]host[:port]   queried live (SHOW GLOBAL STATUS,
                                          SHOW GLOBAL VARIABLES and the
                                          performance_schema memory row)
  path/to/dump.txt                        lines like "| key  value |"

A missing password is prompted for. The port defaults to 3306.

Every text cell of the first sheet (80x80 grid) is read as a label; text
after the first space is a comment. When the label names a status key, the
value is written into the cell on its right. The server version goes to D1.
.ods templates and outputs are converted through a headless soffice.

Examples:
  dbassess populate --source mysql://root@db01 --out db01.xlsx
  dbassess populate --source status-dump.txt --out db01.ods
  dbassess populate --source mysql://root@db01 --out db01.xlsx --debug`,
	RunE: runPopulate,
}

func init() {
	populateCmd.Flags().StringVar(&populateSource, "source", "", "Connection string (mysql://user@host:port) or dump file path")
	populateCmd.Flags().StringVar(&populateSource, "server", "", "Alias for --source")
	populateCmd.Flags().StringVar(&populateOut, "out", "", "Output spreadsheet path")
	populateCmd.Flags().StringVar(&populateSpentOn, "spent_on", defaultSpentOn(time.Now()), "Assessment date (recorded in the log)")
	populateCmd.Flags().StringVar(&populateTemplate, "template", "", "Template spreadsheet (default from config)")
	_ = populateCmd.Flags().MarkHidden("server")
}

// defaultSpentOn is the first day of the month of now.
func defaultSpentOn(now time.Time) string {
	return now.Format("2006-01") + "-01"
}

func runPopulate(cmd *cobra.Command, args []string) error {
	if populateSource == "" {
		return fmt.Errorf("--source is required")
	}
	if populateOut == "" {
		return fmt.Errorf("--out is required")
	}

	template := populateTemplate
	if template == "" {
		template = cfg.Template
	}
	layout, err := cfg.SheetLayout()
	if err != nil {
		return err
	}
	logger.Debug("populate", "source", redactSource(populateSource), "template", template, "out", populateOut, "spent_on", populateSpentOn)

	// Concurrent runs (cron overlap) must not write the same output. The
	// lock file is left in place: unlinking it would let a waiter and a new
	// run lock different inodes.
	lockPath := populateOut + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking %s: %w", lockPath, err)
	}
	if !locked {
		return fmt.Errorf("another run is writing %s (lock %s held)", populateOut, lockPath)
	}
	defer func() { _ = lock.Unlock() }()

	mapping, err := status.Load(cmd.Context(), populateSource, status.LoadOptions{
		Prompt:  passwordPrompt,
		Timeout: cfg.QueryTimeout(),
	})
	if err != nil {
		return err
	}
	logger.Info("status collected", "entries", mapping.Len())

	if rootDebug {
		dumpMapping(cmd.OutOrStdout(), mapping)
	}

	engine, err := sheet.NewEngine(template, populateOut, cfg.OfficeBinary)
	if err != nil {
		return err
	}
	defer engine.Close()

	report, err := sheet.Populate(engine, template, populateOut, mapping, layout, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Wrote %d values for %d labels to %s\n",
		style.Success.Render("✓"), len(report.Writes), len(report.Matched()), populateOut)
	if len(report.Warnings) > 0 {
		fmt.Fprintf(out, "%s %d values written as text:\n", style.Warning.Render("⚠"), len(report.Warnings))
		for _, w := range report.Warnings {
			fmt.Fprintf(out, "  %s\n", style.Dim.Render(w))
		}
	}
	return nil
}

// dumpMapping prints the raw mapping, one sorted "key = value" per line.
func dumpMapping(w io.Writer, m status.Mapping) {
	m.Each(func(k string, v status.Value) {
		fmt.Fprintf(w, "%s = %s\n", k, v)
	})
}

func redactSource(source string) string {
	if !status.IsDescriptor(source) {
		return source
	}
	d, err := status.ParseDescriptor(source)
	if err != nil {
		return "<malformed descriptor>"
	}
	return d.String()
}
