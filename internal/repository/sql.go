package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"iipviz/internal/model"
)

// Supported SQL drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLSource reads records from a table with the columns
// id, name, province, type, raw_price and raw_area
type SQLSource struct {
	db     *sqlx.DB
	driver string
	table  string
}

// NewSQLSource connects to PostgreSQL or SQLite
func NewSQLSource(driver, dsn, table string, maxConn, maxIdleConn int) (*SQLSource, error) {
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}

	if driver == DriverPostgres {
		// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
		if !strings.Contains(dsn, "?") && strings.Contains(dsn, "://") {
			dsn += "?prefer_simple_protocol=true"
		} else if strings.Contains(dsn, "://") {
			dsn += "&prefer_simple_protocol=true"
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &SQLSource{db: db, driver: driver, table: table}, nil
}

// NewSQLSourceFromDB wraps an open connection
func NewSQLSourceFromDB(db *sqlx.DB, table string) (*SQLSource, error) {
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}
	return &SQLSource{db: db, driver: db.DriverName(), table: table}, nil
}

// Describe names the source for logs
func (s *SQLSource) Describe() string {
	return s.driver + ":" + s.table
}

// Load reads every row in id order. NULL columns read as empty text and
// numeric columns are read as their text form so they pass through the
// same normalization as workbook cells.
func (s *SQLSource) Load(ctx context.Context) ([]model.Record, error) {
	query := fmt.Sprintf(`
		SELECT
			COALESCE(CAST(name AS TEXT), '') AS name,
			COALESCE(CAST(province AS TEXT), '') AS province,
			COALESCE(CAST(type AS TEXT), '') AS type,
			COALESCE(CAST(raw_price AS TEXT), '') AS raw_price,
			COALESCE(CAST(raw_area AS TEXT), '') AS raw_area
		FROM %s
		ORDER BY id`, s.table)

	var records []model.Record
	if err := s.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.table, err)
	}

	out := records[:0]
	for _, r := range records {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Close closes the database connection
func (s *SQLSource) Close() error {
	return s.db.Close()
}
