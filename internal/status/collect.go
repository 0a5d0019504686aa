package status

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	queryGlobalStatus    = "SHOW GLOBAL STATUS"
	queryGlobalVariables = "SHOW GLOBAL VARIABLES"
	queryEnginePFS       = "SHOW ENGINE PERFORMANCE_SCHEMA STATUS"

	// Only this row of the performance_schema engine status is kept.
	pfsMemoryRow = "performance_schema.memory"
)

// Servers report NULL for unset variables (log_bin_basename with binary
// logging off, for example); those are kept as empty strings.
type variableRow struct {
	Name  string         `db:"Variable_name"`
	Value sql.NullString `db:"Value"`
}

type engineStatusRow struct {
	Type   string         `db:"Type"`
	Name   string         `db:"Name"`
	Status sql.NullString `db:"Status"`
}

// Connect opens a connection to the server described by d and verifies it.
// There is no retry: a refused connection or bad credentials is returned as is.
func Connect(ctx context.Context, d *Descriptor) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", d.DSN())
	if err != nil {
		return nil, fmt.Errorf("open connection to %s: %w", d, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to %s: %w", d, err)
	}
	return db, nil
}

// Collect runs the three introspection statements against db and merges
// their results. Status comes first, then variables, then the
// performance_schema memory row; later keys overwrite earlier ones.
//
// Values are kept as strings: numeric coercion belongs to the consumer.
func Collect(ctx context.Context, db sqlx.QueryerContext) (Mapping, error) {
	b := newBuilder()

	for _, q := range []string{queryGlobalStatus, queryGlobalVariables} {
		var rows []variableRow
		if err := sqlx.SelectContext(ctx, db, &rows, q); err != nil {
			return Mapping{}, fmt.Errorf("%s: %w", strings.ToLower(q), err)
		}
		for _, r := range rows {
			b.set(r.Name, String(r.Value.String))
		}
	}

	var engine []engineStatusRow
	if err := sqlx.SelectContext(ctx, db, &engine, queryEnginePFS); err != nil {
		return Mapping{}, fmt.Errorf("%s: %w", strings.ToLower(queryEnginePFS), err)
	}
	for _, r := range engine {
		if strings.EqualFold(r.Name, pfsMemoryRow) {
			b.set(r.Name, String(r.Status.String))
		}
	}

	return b.mapping(), nil
}

// Fetch connects, collects and disconnects.
func Fetch(ctx context.Context, d *Descriptor) (Mapping, error) {
	db, err := Connect(ctx, d)
	if err != nil {
		return Mapping{}, err
	}
	defer db.Close()
	return Collect(ctx, db)
}

// IsDescriptor reports whether source should be treated as a connection
// string rather than a dump path.
func IsDescriptor(source string) bool {
	return strings.Contains(source, "://")
}

// LoadOptions tunes how Load reaches a live server.
type LoadOptions struct {
	Prompt  PasswordPrompt
	Timeout time.Duration
}

// Load resolves source to a Mapping. Connection strings are queried live,
// everything else is read as a dump file.
func Load(ctx context.Context, source string, opts LoadOptions) (Mapping, error) {
	if !IsDescriptor(source) {
		return LoadDump(source)
	}
	d, err := ParseDescriptor(source)
	if err != nil {
		return Mapping{}, err
	}
	d.Timeout = opts.Timeout
	if err := d.ResolvePassword(opts.Prompt); err != nil {
		return Mapping{}, err
	}
	return Fetch(ctx, d)
}
