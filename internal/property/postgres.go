package property

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	defaultMaxOpenConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
)

const selectRecordsQuery = `SELECT name, route_code, COALESCE(stream, '') FROM collection_routes ORDER BY id`

// PostgresSource reads records from the collection_routes table
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource wraps an open database handle
func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// OpenPostgres opens and pings a PostgreSQL connection
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Load queries every route row
func (s *PostgresSource) Load(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecordsQuery)
	if err != nil {
		return nil, fmt.Errorf("error querying collection routes: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Name, &r.RouteCode, &r.Stream); err != nil {
			return nil, fmt.Errorf("error scanning collection route: %w", err)
		}
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			continue
		}
		r.RouteCode = strings.TrimSpace(r.RouteCode)
		r.Stream = strings.TrimSpace(r.Stream)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection routes: %w", err)
	}
	return records, nil
}
