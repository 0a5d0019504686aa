// Package config loads dbassess settings from an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/xuri/excelize/v2"

	"github.com/dbassess/dbassess/internal/sheet"
	"github.com/dbassess/dbassess/internal/tokenflush"
)

const (
	// DefaultFile is read from the working directory when --config is not given.
	DefaultFile = "dbassess.toml"

	// DefaultTemplate is the stock assessment spreadsheet.
	DefaultTemplate = "mysql_innodb_resource_requirements.ods"

	defaultQueryTimeout = 10 * time.Second
)

// Config is the on-disk configuration.
type Config struct {
	// Template is the spreadsheet filled by populate.
	Template string `toml:"template"`

	// OfficeBinary converts non-xlsx documents (default "soffice").
	OfficeBinary string `toml:"office_binary,omitempty"`

	// QueryTimeoutStr bounds the connection dial (e.g. "10s").
	QueryTimeoutStr string `toml:"query_timeout,omitempty"`

	// LogFile, when set, receives a copy of the log with size-based rotation.
	LogFile string `toml:"log_file,omitempty"`

	Layout     LayoutConfig      `toml:"layout"`
	TokenFlush tokenflush.Config `toml:"token_flush"`
}

// LayoutConfig overrides parts of sheet.DefaultLayout.
type LayoutConfig struct {
	Sheet int `toml:"sheet,omitempty"`
	Rows  int `toml:"rows,omitempty"`
	Cols  int `toml:"cols,omitempty"`

	// VersionCell is the A1-style reference of the version field (e.g. "D1").
	VersionCell string `toml:"version_cell,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Template:     DefaultTemplate,
		OfficeBinary: sheet.DefaultOfficeBinary,
	}
}

// Load reads path over the defaults. An empty path tries DefaultFile and
// silently falls back to defaults when it does not exist; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if _, err := cfg.SheetLayout(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// QueryTimeout returns the configured timeout, or the default (10s).
func (c *Config) QueryTimeout() time.Duration {
	if c.QueryTimeoutStr != "" {
		if d, err := time.ParseDuration(c.QueryTimeoutStr); err == nil && d > 0 {
			return d
		}
	}
	return defaultQueryTimeout
}

// SheetLayout resolves the layout section against sheet.DefaultLayout.
func (c *Config) SheetLayout() (sheet.Layout, error) {
	layout := sheet.DefaultLayout()
	l := c.Layout

	if l.Sheet < 0 {
		return layout, fmt.Errorf("layout.sheet must not be negative")
	}
	layout.SheetIndex = l.Sheet
	if l.Rows > 0 {
		layout.Rows = l.Rows
	}
	if l.Cols > 0 {
		layout.Cols = l.Cols
	}
	if l.VersionCell != "" {
		col, row, err := excelize.CellNameToCoordinates(l.VersionCell)
		if err != nil {
			return layout, fmt.Errorf("layout.version_cell: %w", err)
		}
		layout.VersionRow, layout.VersionCol = row-1, col-1
	}
	return layout, nil
}
