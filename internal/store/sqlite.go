package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/gridvolt/nfg-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It stages loaded
// tables into a local database, which keeps memory flat for large datasets
// and lets several processes share one loaded copy.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS data_rows (
	source_table  TEXT NOT NULL,
	property_name TEXT NOT NULL,
	category_name TEXT NOT NULL DEFAULT '',
	child_name    TEXT NOT NULL DEFAULT '',
	date_string   TEXT NOT NULL DEFAULT '',
	value         TEXT NOT NULL DEFAULT '',
	unit_name     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_data_rows_property ON data_rows(property_name);
CREATE INDEX IF NOT EXISTS idx_data_rows_child ON data_rows(child_name);
CREATE INDEX IF NOT EXISTS idx_data_rows_date ON data_rows(date_string);
`

// Migrate creates the row table and its indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// LoadTables replaces the database contents with the given tables.
func (s *SQLiteStore) LoadTables(ctx context.Context, tables []Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin load")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM data_rows`); err != nil {
		return eris.Wrap(err, "sqlite: clear rows")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO data_rows (source_table, property_name, category_name, child_name, date_string, value, unit_name)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	for _, table := range tables {
		for _, row := range table.Rows {
			if _, err := stmt.ExecContext(ctx,
				table.Name, row.Property, row.Category, row.Child, row.Date, row.Value, row.Unit,
			); err != nil {
				return eris.Wrapf(err, "sqlite: insert row into %s", table.Name)
			}
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit load")
}

func (s *SQLiteStore) Query(ctx context.Context, filters model.Filters, properties []string) ([]model.DataRow, error) {
	var (
		where []string
		args  []any
	)

	if len(properties) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(properties)), ",")
		where = append(where, fmt.Sprintf("property_name IN (%s)", placeholders))
		for _, p := range properties {
			args = append(args, p)
		}
	}
	if filters.Country != "" {
		where = append(where, "child_name LIKE ? || '%'")
		args = append(args, filters.Country)
	}
	if alternatives := filters.TechAlternatives(); len(alternatives) > 0 {
		clauses := make([]string, 0, len(alternatives))
		for _, alt := range alternatives {
			clauses = append(clauses, "instr(lower(category_name), ?) > 0 OR instr(lower(child_name), ?) > 0")
			needle := strings.ToLower(alt)
			args = append(args, needle, needle)
		}
		where = append(where, "("+strings.Join(clauses, " OR ")+")")
	}
	if filters.Year != "" {
		where = append(where, "(date_string = ? OR CAST(date_string AS INTEGER) = CAST(? AS INTEGER))")
		args = append(args, filters.Year, filters.Year)
	}

	query := `SELECT source_table, property_name, category_name, child_name, date_string, value, unit_name FROM data_rows`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY source_table, rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query rows")
	}
	defer rows.Close()

	var out []model.DataRow
	for rows.Next() {
		var (
			source string
			raw    Row
		)
		if err := rows.Scan(&source, &raw.Property, &raw.Category, &raw.Child, &raw.Date, &raw.Value, &raw.Unit); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan row")
		}
		value, ok := coerceValue(raw.Value)
		if !ok {
			zap.L().Warn("store: dropping non-numeric value",
				zap.String("table", source),
				zap.String("property", raw.Property),
				zap.String("value", raw.Value),
			)
			continue
		}
		out = append(out, model.DataRow{
			SourceTable: source,
			Property:    raw.Property,
			Category:    raw.Category,
			Child:       raw.Child,
			Date:        raw.Date,
			Value:       value,
			Unit:        raw.Unit,
		})
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate rows")
}

func (s *SQLiteStore) ListAvailableProperties(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, ColProperty)
}

func (s *SQLiteStore) GetUniqueValues(ctx context.Context, column string) ([]string, error) {
	switch column {
	case ColProperty, ColCategory, ColChild, ColDate, ColValue, ColUnit:
		return s.distinct(ctx, column)
	default:
		return nil, eris.Errorf("sqlite: unknown column %q", column)
	}
}

func (s *SQLiteStore) Tables(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "source_table")
}

func (s *SQLiteStore) distinct(ctx context.Context, column string) ([]string, error) {
	// column is validated against the fixed schema above; never user input.
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT DISTINCT %s FROM data_rows WHERE %s != '' ORDER BY %s", column, column, column))
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: distinct %s", column)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan distinct value")
		}
		out = append(out, v)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate distinct values")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
