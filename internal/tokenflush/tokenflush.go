// Package tokenflush plans the deletion of expired tokens in fixed-width time
// windows, so each DELETE holds its locks only briefly.
package tokenflush

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

const (
	defaultBack     = 48 * time.Hour
	defaultInterval = 30 * time.Minute
	defaultTable    = "keystone.token"
	defaultColumn   = "expires"

	// TimeFormat is minute precision; seconds are always rendered as 00.
	TimeFormat = "2006-01-02 15:04:00"
)

// validIdent matches a bare or schema-qualified identifier.
var validIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*)?$`)

// Config holds the string form of a plan, as found in config files and flags.
type Config struct {
	// BackStr is how far before now the first window starts (e.g. "48h").
	BackStr string `toml:"back"`
	// IntervalStr is the width of each window (e.g. "30m").
	IntervalStr string `toml:"interval"`
	Table       string `toml:"table"`
	Column      string `toml:"column"`
}

// Back returns the configured look-back, or the default (48h).
func (c *Config) Back() time.Duration {
	return parseDuration(c, func(c *Config) string { return c.BackStr }, defaultBack)
}

// Interval returns the configured window width, or the default (30m).
func (c *Config) Interval() time.Duration {
	return parseDuration(c, func(c *Config) string { return c.IntervalStr }, defaultInterval)
}

func parseDuration(c *Config, field func(*Config) string, def time.Duration) time.Duration {
	if c != nil && field(c) != "" {
		if d, err := time.ParseDuration(field(c)); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// Plan builds a Plan rooted at now.
func (c *Config) Plan(now time.Time) *Plan {
	p := &Plan{
		Now:      now,
		Back:     c.Back(),
		Interval: c.Interval(),
		Table:    defaultTable,
		Column:   defaultColumn,
	}
	if c != nil && c.Table != "" {
		p.Table = c.Table
	}
	if c != nil && c.Column != "" {
		p.Column = c.Column
	}
	return p
}

// Window is one [Start, End] deletion range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Plan describes a tiling of [Now-Back, Now] into Interval-wide windows.
type Plan struct {
	Now      time.Time
	Back     time.Duration
	Interval time.Duration
	Table    string
	Column   string
}

// Validate reports configuration errors.
func (p *Plan) Validate() error {
	var errs []error
	if p.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %v", p.Interval))
	}
	if p.Back < p.Interval {
		errs = append(errs, fmt.Errorf("back %v is shorter than interval %v", p.Back, p.Interval))
	}
	if !validIdent.MatchString(p.Table) {
		errs = append(errs, fmt.Errorf("invalid table name %q", p.Table))
	}
	if !validIdent.MatchString(p.Column) || strings.Contains(p.Column, ".") {
		errs = append(errs, fmt.Errorf("invalid column name %q", p.Column))
	}
	return errors.Join(errs...)
}

// Windows returns consecutive Interval-wide windows covering [Now-Back, Now].
// The first starts at Now-Back and each starts where the previous ended. When
// Back is not a multiple of Interval the last window is shorter and ends at Now.
func (p *Plan) Windows() ([]Window, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := int(p.Back / p.Interval)
	windows := make([]Window, 0, n+1)
	start := p.Now.Add(-p.Back)
	for end := start.Add(p.Interval); !end.After(p.Now); end = end.Add(p.Interval) {
		windows = append(windows, Window{Start: start, End: end})
		start = end
	}
	if start.Before(p.Now) {
		windows = append(windows, Window{Start: start, End: p.Now})
	}
	return windows, nil
}

// Statement renders the DELETE for w.
func (p *Plan) Statement(w Window) string {
	col := fmt.Sprintf("%s.%s", alias(p.Table), p.Column)
	return fmt.Sprintf("DELETE FROM %s WHERE %s BETWEEN '%s' AND '%s' AND %s < '%s';", //nolint:gosec // G201: identifiers are validated
		p.Table, col, w.Start.Format(TimeFormat), w.End.Format(TimeFormat), col, p.Now.Format(TimeFormat))
}

// Statements renders one DELETE per window.
func (p *Plan) Statements() ([]string, error) {
	windows, err := p.Windows()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(windows))
	for i, w := range windows {
		out[i] = p.Statement(w)
	}
	return out, nil
}

// WriteTo prints every statement to w, one per line.
func (p *Plan) WriteTo(w io.Writer) (int64, error) {
	stmts, err := p.Statements()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, s := range stmts {
		n, err := fmt.Fprintln(w, s)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// alias is the unqualified table name, used to qualify the column.
func alias(table string) string {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[i+1:]
	}
	return table
}
