// Package sqlsource loads chart tables from PostgreSQL.
//
// Queries run inside a read-only transaction and must be a single SELECT
// (or WITH ... SELECT) statement. Every value is rendered to text so the
// result can go through the same projection as a loaded CSV file.
package sqlsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/radial/internal/core"
)

// Defaults applied when the caller passes zero values.
const (
	DefaultQueryTimeout = 30 * time.Second
	DefaultMaxRows      = 10000
)

// SourceName is the Table.Source of query results.
const SourceName = "sql query"

// ErrQueryRejected is wrapped by every CheckReadOnly failure.
var ErrQueryRejected = errors.New("query rejected")

// Beginner starts transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Source runs read-only queries and converts the result to a core.Table.
type Source struct {
	db      Beginner
	timeout time.Duration
	maxRows int
}

// New returns a Source over db.
func New(db Beginner, timeout time.Duration, maxRows int) *Source {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &Source{db: db, timeout: timeout, maxRows: maxRows}
}

// PoolConfig holds the connection pool settings.
type PoolConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Connect opens and pings a connection pool.
func Connect(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// writeKeywords may not appear anywhere in an accepted query.
var writeKeywords = regexp.MustCompile(`(?i)\b(insert|update|delete|merge|drop|alter|create|truncate|grant|revoke|copy|call|do|vacuum|lock|set|reset|listen|notify)\b`)

// CheckReadOnly accepts a single SELECT or WITH statement. It is a first
// line of defense; the read-only transaction is the second.
func CheckReadOnly(query string) error {
	q := strings.TrimSpace(query)
	q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	if q == "" {
		return fmt.Errorf("%w: empty query", ErrQueryRejected)
	}
	if strings.Contains(q, ";") {
		return fmt.Errorf("%w: only one statement is allowed", ErrQueryRejected)
	}

	first := strings.ToLower(strings.Fields(q)[0])
	if first != "select" && first != "with" {
		return fmt.Errorf("%w: only SELECT statements are allowed", ErrQueryRejected)
	}
	if kw := writeKeywords.FindString(q); kw != "" {
		return fmt.Errorf("%w: %s is not allowed", ErrQueryRejected, strings.ToUpper(kw))
	}
	return nil
}

// Query runs query and returns its result as a table.
func (s *Source) Query(ctx context.Context, query string) (*core.Table, error) {
	if err := CheckReadOnly(query); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var data [][]string
	for rows.Next() {
		if len(data) >= s.maxRows {
			return nil, fmt.Errorf("%w: result exceeds %d rows", ErrQueryRejected, s.maxRows)
		}
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(data)+1, err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	slog.Debug("query loaded",
		"columns", len(columns),
		"rows", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return core.NewTable(columns, data, SourceName)
}

// FormatValue renders a decoded column value as cell text.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339)
	case [16]byte:
		return uuid.UUID(v).String()
	case pgtype.Numeric:
		if !v.Valid {
			return ""
		}
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return ""
		}
		return strconv.FormatFloat(f.Float64, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
