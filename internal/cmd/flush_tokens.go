package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	flushBack     string
	flushInterval string
	flushTable    string
	flushColumn   string
	flushNow      string
)

var flushTokensCmd = &cobra.Command{
	Use:     "flush-tokens",
	GroupID: GroupMaintenance,
	Short:   "Print chunked DELETE statements for expired tokens",
	Long: `Print one DELETE statement per time window to flush expired tokens.

Splits the deletion into short windows (30 minutes by default) over the last
2 days, so each statement holds row locks only briefly on MariaDB/Galera.
Nothing is executed: pipe the output into the mysql client.

BEWARE: the current time comes from this machine's clock unless --now is
given. Every statement also requires expires < now, so tokens that are still
valid are never deleted even if the clocks disagree.

Examples:
  dbassess flush-tokens | mysql keystone
  dbassess flush-tokens --back 24h --interval 10m
  dbassess flush-tokens --now "2024-03-10 14:30:00"`,
	RunE: runFlushTokens,
}

func init() {
	flushTokensCmd.Flags().StringVar(&flushBack, "back", "", "How far back to start (default 48h)")
	flushTokensCmd.Flags().StringVar(&flushInterval, "interval", "", "Window width (default 30m)")
	flushTokensCmd.Flags().StringVar(&flushTable, "table", "", "Token table (default keystone.token)")
	flushTokensCmd.Flags().StringVar(&flushColumn, "column", "", "Expiry column (default expires)")
	flushTokensCmd.Flags().StringVar(&flushNow, "now", "", "Reference time, RFC3339 or \"2006-01-02 15:04:05\" (default: machine clock)")
}

func runFlushTokens(cmd *cobra.Command, args []string) error {
	c := cfg.TokenFlush
	for _, o := range []struct {
		flag string
		dst  *string
	}{
		{flushBack, &c.BackStr},
		{flushInterval, &c.IntervalStr},
		{flushTable, &c.Table},
		{flushColumn, &c.Column},
	} {
		if o.flag != "" {
			*o.dst = o.flag
		}
	}
	for name, v := range map[string]string{"--back": flushBack, "--interval": flushInterval} {
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			return fmt.Errorf("invalid %s %q: must be a positive duration", name, v)
		}
	}

	now, err := parseNow(flushNow)
	if err != nil {
		return err
	}

	plan := c.Plan(now)
	logger.Debug("flush-tokens", "back", plan.Back, "interval", plan.Interval, "table", plan.Table, "now", now)
	_, err = plan.WriteTo(cmd.OutOrStdout())
	return err
}

func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateTime, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: %w", s, err)
	}
	return t, nil
}
