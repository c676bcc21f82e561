// Package clickhouse implements the analytics executor over the ClickHouse
// native protocol. The analytics store is read-only from this core's
// perspective; the adapter only ever issues SELECTs built by the query
// builder.
package clickhouse

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/wizel-ai/insight-engine/pkg/logging"
	"github.com/wizel-ai/insight-engine/pkg/models"
	enginesql "github.com/wizel-ai/insight-engine/pkg/sql"
)

// Config holds ClickHouse connection settings.
type Config struct {
	Host           string
	Port           int
	Database       string
	Username       string
	Password       string
	RequestTimeout time.Duration // per-query execution budget
	MaxRowsToRead  uint64        // server-side scan guard, 0 = server default
}

// Adapter provides ClickHouse connectivity for the analytics query builder.
type Adapter struct {
	conn   driver.Conn
	cfg    *Config
	logger *zap.Logger
}

// NewAdapter opens a native-protocol connection.
func NewAdapter(cfg *Config, logger *zap.Logger) (*Adapter, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("clickhouse host is required")
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	settings := clickhouse.Settings{
		"max_execution_time": int(timeout.Seconds()),
	}
	if cfg.MaxRowsToRead > 0 {
		settings["max_rows_to_read"] = cfg.MaxRowsToRead
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings:    settings,
		DialTimeout: 10 * time.Second,
		Compression: &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
	})
	if err != nil {
		return nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	return &Adapter{
		conn:   conn,
		cfg:    cfg,
		logger: logger.Named("clickhouse"),
	}, nil
}

// Query executes a single read statement with named parameters and returns
// row maps keyed by output column name.
func (a *Adapter) Query(ctx context.Context, query string, params map[string]any) ([]models.Row, error) {
	normalized, err := enginesql.ValidateSingleStatement(query)
	if err != nil {
		return nil, err
	}

	args := make([]any, 0, len(params))
	for name, value := range params {
		args = append(args, clickhouse.Named(name, value))
	}

	start := time.Now()
	rows, err := a.conn.Query(ctx, normalized, args...)
	if err != nil {
		a.logger.Error("query failed",
			zap.String("query", logging.SanitizeQuery(normalized)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("clickhouse query: %w", err)
	}
	defer rows.Close()

	results, err := scanRows(rows)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("query completed",
		zap.Int("rows", len(results)),
		zap.Duration("elapsed", time.Since(start)))

	return results, nil
}

// Ping verifies connectivity.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.conn.Ping(ctx)
}

// Close releases the connection.
func (a *Adapter) Close() error {
	return a.conn.Close()
}

// scanRows reads every row into a map using the column scan types reported by
// the server.
func scanRows(rows driver.Rows) ([]models.Row, error) {
	columns := rows.Columns()
	columnTypes := rows.ColumnTypes()

	var results []models.Row
	for rows.Next() {
		dest := make([]any, len(columnTypes))
		for i, ct := range columnTypes {
			dest[i] = reflect.New(ct.ScanType()).Interface()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(models.Row, len(columns))
		for i, col := range columns {
			row[col] = reflect.ValueOf(dest[i]).Elem().Interface()
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return results, nil
}
