package edgetable

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresSource reads an edge table from a PostgreSQL relation. Similarity
// and support are cast to double precision server-side so integer and
// numeric columns are accepted.
type postgresSource struct {
	table string
	pool  *pgxpool.Pool
}

func openPostgres(ctx context.Context, databaseURL, table string) (*postgresSource, error) {
	if table == "" {
		return nil, unreadable(redactURL(databaseURL), errors.New("no table named for postgres source"))
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, unreadable(redactURL(databaseURL), fmt.Errorf("failed to parse database URL: %w", err))
	}

	// One run reads one table with one query.
	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, unreadable(redactURL(databaseURL), fmt.Errorf("failed to create connection pool: %w", err))
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unreadable(redactURL(databaseURL), fmt.Errorf("database unreachable: %w", err))
	}

	return &postgresSource{table: table, pool: pool}, nil
}

// tableIdentifier splits an optionally schema-qualified name.
func tableIdentifier(table string) pgx.Identifier {
	return pgx.Identifier(strings.Split(table, "."))
}

// selectQuery builds the projection over the caller-named columns.
func selectQuery(table string, cols Columns) string {
	return fmt.Sprintf(
		"SELECT %s::text, %s::text, %s::float8, %s::float8 FROM %s",
		pgx.Identifier{cols.Node1}.Sanitize(),
		pgx.Identifier{cols.Node2}.Sanitize(),
		pgx.Identifier{cols.Weight}.Sanitize(),
		pgx.Identifier{cols.Support}.Sanitize(),
		tableIdentifier(table).Sanitize(),
	)
}

func (s *postgresSource) header(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", tableIdentifier(s.table).Sanitize()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, fd := range fields {
		header[i] = fd.Name
	}
	return header, rows.Err()
}

func (s *postgresSource) Read(ctx context.Context, cols Columns) (*Table, error) {
	location := "postgres:" + s.table

	header, err := s.header(ctx)
	if err != nil {
		return nil, unreadable(location, err)
	}
	if _, err := columnIndex(location, header, cols); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, selectQuery(s.table, cols))
	if err != nil {
		return nil, unreadable(location, err)
	}
	defer rows.Close()

	table := &Table{Columns: cols, Rows: make([]Row, 0, 1024)}
	for rows.Next() {
		var (
			node1, node2    *string
			weight, support *float64
		)
		if err := rows.Scan(&node1, &node2, &weight, &support); err != nil {
			return nil, unreadable(location, err)
		}
		row, err := scannedRow(len(table.Rows)+1, node1, node2, weight, support)
		if err != nil {
			return nil, unreadable(location, err)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, unreadable(location, err)
	}

	return table, nil
}

// scannedRow checks one scanned result row. float8 admits NaN and
// Infinity, which the text readers reject, so they are rejected here too.
func scannedRow(n int, node1, node2 *string, weight, support *float64) (Row, error) {
	if node1 == nil || node2 == nil || weight == nil || support == nil {
		return Row{}, fmt.Errorf("row %d: NULL cell", n)
	}
	row := Row{
		Node1:   strings.TrimSpace(*node1),
		Node2:   strings.TrimSpace(*node2),
		Weight:  *weight,
		Support: *support,
	}
	if row.Node1 == "" || row.Node2 == "" {
		return Row{}, fmt.Errorf("row %d: empty node identifier", n)
	}
	if err := finite(row.Weight); err != nil {
		return Row{}, fmt.Errorf("row %d: weight: %w", n, err)
	}
	if err := finite(row.Support); err != nil {
		return Row{}, fmt.Errorf("row %d: support: %w", n, err)
	}
	return row, nil
}

func (s *postgresSource) Close() error {
	s.pool.Close()
	return nil
}

// redactURL drops credentials from a connection URL before it is logged.
func redactURL(databaseURL string) string {
	at := strings.LastIndex(databaseURL, "@")
	scheme := strings.Index(databaseURL, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return databaseURL
	}
	return databaseURL[:scheme+3] + "***" + databaseURL[at:]
}
