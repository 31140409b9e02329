package database

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"
	"time"

	"staff-assistant/internal/common/errors"
	"staff-assistant/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T) (*Gateway, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gw := NewGateway(db, GatewayOptions{AcquireRetries: 1, QueryTimeout: time.Second}, logger.NewTestLogger(t))
	return gw, mock
}

func TestGateway_FetchScansRows(t *testing.T) {
	gw, mock := newTestGateway(t)

	mock.ExpectPing()
	mock.ExpectQuery(`SELECT 'EventList'`).
		WithArgs("%митап%").
		WillReturnRows(sqlmock.NewRows([]string{"tag", "Name"}).
			AddRow("EventList", "Митап").
			AddRow("EventList", "Турнир"))

	var names []string
	err := gw.Fetch(context.Background(), `SELECT 'EventList', "Name" FROM "Event" WHERE "Name" ILIKE $1`,
		[]interface{}{"%митап%"},
		func(rows *sql.Rows) error {
			for rows.Next() {
				var tag, name string
				if err := rows.Scan(&tag, &name); err != nil {
					return err
				}
				names = append(names, name)
			}
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, []string{"Митап", "Турнир"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_FetchQueryError(t *testing.T) {
	gw, mock := newTestGateway(t)

	mock.ExpectPing()
	mock.ExpectQuery(`SELECT`).WillReturnError(stderrors.New("relation \"Event\" does not exist"))

	err := gw.Fetch(context.Background(), "SELECT 1", nil, func(*sql.Rows) error { return nil })

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestGateway_FetchScanError(t *testing.T) {
	gw, mock := newTestGateway(t)

	mock.ExpectPing()
	mock.ExpectQuery(`SELECT`).WillReturnRows(sqlmock.NewRows([]string{"tag"}).AddRow("PersonInfo"))

	err := gw.Fetch(context.Background(), "SELECT 1", nil, func(*sql.Rows) error {
		return stderrors.New("result tag mismatch")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryFailed)
}

func TestGateway_AcquireDiscardsUnhealthyConnection(t *testing.T) {
	gw, mock := newTestGateway(t)

	mock.ExpectPing().WillReturnError(stderrors.New("server closed the connection unexpectedly"))

	session, err := gw.Acquire(context.Background())

	require.Error(t, err)
	assert.Nil(t, session)
	assert.Equal(t, errors.ErrCodeDatabaseConnectionFailed, errors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_AcquireHonoursCancelledContext(t *testing.T) {
	gw, _ := newTestGateway(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Acquire(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDatabaseConnectionFailed, errors.CodeOf(err))
}

func TestSession_ReleaseIsIdempotent(t *testing.T) {
	gw, mock := newTestGateway(t)
	mock.ExpectPing()

	session, err := gw.Acquire(context.Background())
	require.NoError(t, err)

	session.Release()
	assert.NotPanics(t, session.Release)
}
