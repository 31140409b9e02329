package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"staff-assistant/internal/common/errors"
	"staff-assistant/internal/common/logger"
)

var (
	ErrQueryFailed  = stderrors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout = stderrors.New("QUERY_TIMEOUT")
)

// GatewayOptions tunes connection acquisition and query execution.
type GatewayOptions struct {
	AcquireRetries int
	QueryTimeout   time.Duration
}

// Gateway hands out health-checked sessions from the pool and runs read-only
// parameterized queries on them.
type Gateway struct {
	db      *sql.DB
	options GatewayOptions
	logger  logger.Logger
}

// Session is a dedicated pooled connection. It must be released exactly once.
type Session struct {
	conn *sql.Conn
	once sync.Once
}

// ScanFunc consumes a result set; it must not close rows.
type ScanFunc func(rows *sql.Rows) error

func NewGateway(db *sql.DB, options GatewayOptions, log logger.Logger) *Gateway {
	if options.AcquireRetries < 0 {
		options.AcquireRetries = 0
	}
	return &Gateway{
		db:      db,
		options: options,
		logger:  log.WithFields(map[string]interface{}{"component": "database-gateway"}),
	}
}

// Acquire takes a connection from the pool and pings it. A connection that
// fails the ping is discarded and another one is tried.
func (g *Gateway) Acquire(ctx context.Context) (*Session, error) {
	var lastErr error
	for attempt := 0; attempt <= g.options.AcquireRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100<<uint(attempt-1)) * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, errors.NewDatabaseConnectionFailedError(ctx.Err())
			case <-time.After(backoff):
			}
		}

		conn, err := g.db.Conn(ctx)
		if err != nil {
			lastErr = err
			g.logger.Warn("Failed to acquire database connection", map[string]interface{}{
				"attempt": attempt + 1,
				"error":   err.Error(),
			})
			continue
		}

		if err := conn.PingContext(ctx); err != nil {
			lastErr = err
			discard(conn)
			g.logger.Warn("Discarded unhealthy database connection", map[string]interface{}{
				"attempt": attempt + 1,
				"error":   err.Error(),
			})
			continue
		}
		return &Session{conn: conn}, nil
	}
	return nil, errors.NewDatabaseConnectionFailedError(lastErr)
}

// discard drops the connection from the pool instead of returning it.
func discard(conn *sql.Conn) {
	_ = conn.Raw(func(interface{}) error { return driver.ErrBadConn })
	_ = conn.Close()
}

// Query runs a read query on the session's connection.
func (s *Session) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return s.conn.QueryContext(ctx, query, args...)
}

// Release returns the connection to the pool. Further calls are no-ops.
func (s *Session) Release() {
	s.once.Do(func() { _ = s.conn.Close() })
}

// Fetch acquires a session, runs the query under the configured timeout,
// hands the rows to scan and releases the session.
func (g *Gateway) Fetch(ctx context.Context, query string, args []interface{}, scan ScanFunc) error {
	if g.options.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.options.QueryTimeout)
		defer cancel()
	}

	session, err := g.Acquire(ctx)
	if err != nil {
		return err
	}
	defer session.Release()

	start := time.Now()
	rows, err := session.Query(ctx, query, args...)
	if err != nil {
		return g.queryError(ctx, err)
	}
	defer rows.Close()

	if err := scan(rows); err != nil {
		return g.queryError(ctx, err)
	}
	if err := rows.Err(); err != nil {
		return g.queryError(ctx, err)
	}

	g.logger.Debug("Query executed", map[string]interface{}{
		"duration_ms": time.Since(start).Milliseconds(),
		"args":        len(args),
	})
	return nil
}

func (g *Gateway) queryError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %v", ErrQueryTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrQueryFailed, err)
}

// Ping checks pool health without holding a session.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.db.PingContext(ctx)
}
