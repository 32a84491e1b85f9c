package dataset

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
	"github.com/lamchahon-maker/web-dashboard/internal/utils"
)

// PostgresSource reads records from a table with a date column and one
// column per variable, named by short key (iron, silica, ...) or by the
// dataset column name. Other columns are ignored.
type PostgresSource struct {
	db    *sqlx.DB
	table string
}

// NewPostgresSource opens a connection pool for dsn. No connection is made
// until the first Load.
func NewPostgresSource(dsn, table string) (*PostgresSource, error) {
	quoted, err := quoteTable(table)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresSource{db: db, table: quoted}, nil
}

// Name returns "postgres"
func (s *PostgresSource) Name() string {
	return "postgres"
}

// Load reads the whole table ordered by date
func (s *PostgresSource) Load(ctx context.Context) (analytics.Dataset, error) {
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s ASC", s.table, pq.QuoteIdentifier(DateColumn))

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make(analytics.Dataset, 0, 1024)
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, ok := recordFromRow(row)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	return records, nil
}

// Close closes the connection pool
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

// recordFromRow converts a scanned row; false when the date is unusable
func recordFromRow(row map[string]interface{}) (analytics.Record, bool) {
	var date string
	switch d := row[DateColumn].(type) {
	case time.Time:
		date = d.Format(analytics.DateLayout)
	case string:
		date, _ = NormalizeDate(d)
	case []byte:
		date, _ = NormalizeDate(string(d))
	}
	if date == "" {
		return analytics.Record{}, false
	}

	rec := analytics.NewRecord(date)
	for name, value := range row {
		if name == DateColumn {
			continue
		}
		v, err := analytics.ParseVariable(name)
		if err != nil {
			continue
		}
		if x, ok := utils.ToFloat64(value); ok {
			rec = rec.With(v, x)
		}
	}
	return rec, true
}

// quoteTable quotes a table name, optionally schema-qualified
func quoteTable(table string) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", fmt.Errorf("postgres table is required")
	}
	parts := strings.Split(table, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	for i, p := range parts {
		if p == "" {
			return "", fmt.Errorf("invalid table name %q", table)
		}
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, "."), nil
}
