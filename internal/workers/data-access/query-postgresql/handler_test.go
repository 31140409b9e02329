package querypostgresql

import (
	"context"
	"errors"
	"testing"
	"time"

	"staff-assistant/internal/common/database"
	apperrors "staff-assistant/internal/common/errors"
	"staff-assistant/internal/common/logger"
	"staff-assistant/internal/models"
	"staff-assistant/internal/normalize"
	"staff-assistant/internal/query"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC)

func setupTestHandler(t *testing.T, queryTimeout time.Duration) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	gateway := database.NewGateway(db, database.GatewayOptions{QueryTimeout: queryTimeout}, log)
	compiler := query.NewCompiler(query.DefaultOptions(), log).WithClock(func() time.Time { return fixedNow })

	h := NewHandler(&Config{Timeout: queryTimeout}, compiler, normalize.New(nil, log), gateway, log)
	return h, mock
}

func birthdayColumns() []string {
	return []string{"tag", "Surname", "Name", "Father", "Birthday", "DepartmentName"}
}

func assertCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok, "expected StandardError, got %v", err)
	assert.Equal(t, code, stdErr.Code)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Birthdays(t *testing.T) {
	h, mock := setupTestHandler(t, time.Second)

	birthday := time.Date(1991, time.June, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT").
		WithArgs("%разработк%").
		WillReturnRows(sqlmock.NewRows(birthdayColumns()).
			AddRow("BirthdayList", "Смирнова", "Анна", "Игоревна", birthday, "Отдел разработки"))

	output, err := h.Execute(context.Background(), &Input{
		Intent:   "find_birthday",
		Entities: []models.Entity{{Entity: "department", Value: "Разработки"}},
	})
	require.NoError(t, err)

	assert.Equal(t, models.ResultBirthdayList, output.Kind)
	assert.Equal(t, 1, output.RowCount)
	rows, ok := output.Rows.(models.BirthdayRows)
	require.True(t, ok)
	assert.Equal(t, "Смирнова", rows[0].Surname)
	assert.Equal(t, "Отдел разработки", rows[0].Department)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Query_EmptyResultKeepsKind(t *testing.T) {
	h, mock := setupTestHandler(t, time.Second)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"tag", "Name", "Begin", "End", "Category", "Description",
			"OrganizerName", "OrganizerSurname"}))

	rows, err := h.Query(context.Background(), "search_event", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ResultEventList, rows.Kind())
	assert.Equal(t, 0, rows.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Query_NamesAreNotStemmed(t *testing.T) {
	h, mock := setupTestHandler(t, time.Second)

	mock.ExpectQuery("SELECT").
		WithArgs("%Иванова%", "%Иванова%").
		WillReturnRows(sqlmock.NewRows([]string{"tag", "Surname", "Name", "Father", "Birthday", "FirstDay",
			"LanguageName", "RankStatus", "ProjectName", "DepartmentName", "Contacts"}))

	_, err := h.Query(context.Background(), "search_person", []models.Entity{{Entity: "name", Value: " Иванова "}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Query_BadRequestSkipsDatabase(t *testing.T) {
	h, mock := setupTestHandler(t, time.Second)

	tests := []struct {
		name     string
		intent   string
		entities []models.Entity
		code     apperrors.ErrorCode
	}{
		{"unsupported intent", "greet", nil, apperrors.ErrCodeUnsupportedIntent},
		{"person without name", "search_person", nil, apperrors.ErrCodeMissingEntity},
		{"birthday without criteria", "find_birthday", nil, apperrors.ErrCodeInsufficientCriteria},
		{"null entity ignored", "find_birthday", []models.Entity{{Entity: "department", Null: true}}, apperrors.ErrCodeInsufficientCriteria},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Query(context.Background(), tt.intent, tt.entities)
			assertCode(t, err, tt.code)
			assert.True(t, apperrors.IsBadRequest(err))
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Query_DatabaseErrors(t *testing.T) {
	t.Run("query failure", func(t *testing.T) {
		h, mock := setupTestHandler(t, time.Second)
		mock.ExpectQuery("SELECT").WillReturnError(errors.New("relation does not exist"))

		_, err := h.Query(context.Background(), "find_birthday", []models.Entity{{Entity: "department", Value: "HR"}})
		assertCode(t, err, apperrors.ErrCodeQueryExecutionFailed)
		assert.False(t, apperrors.IsBadRequest(err))
		assert.Contains(t, err.Error(), "relation does not exist")
	})

	t.Run("timeout", func(t *testing.T) {
		h, mock := setupTestHandler(t, 20*time.Millisecond)
		mock.ExpectQuery("SELECT").
			WillDelayFor(200 * time.Millisecond).
			WillReturnRows(sqlmock.NewRows(birthdayColumns()))

		_, err := h.Query(context.Background(), "find_birthday", []models.Entity{{Entity: "department", Value: "HR"}})
		assertCode(t, err, apperrors.ErrCodeQueryTimeout)
	})

	t.Run("row tag mismatch", func(t *testing.T) {
		h, mock := setupTestHandler(t, time.Second)
		mock.ExpectQuery("SELECT").
			WillReturnRows(sqlmock.NewRows(birthdayColumns()).AddRow("TaskList", "a", "b", nil, nil, nil))

		_, err := h.Query(context.Background(), "find_birthday", []models.Entity{{Entity: "department", Value: "HR"}})
		assertCode(t, err, apperrors.ErrCodeQueryExecutionFailed)
	})
}

func TestHandler_Execute_NilInput(t *testing.T) {
	h, _ := setupTestHandler(t, time.Second)

	_, err := h.Execute(context.Background(), nil)
	assert.Error(t, err)
}

func TestInputSchema(t *testing.T) {
	tests := []struct {
		name  string
		vars  string
		valid bool
	}{
		{"intent with entities", `{"intent":"search_person","entities":[{"entity":"name","value":"Иванов"}]}`, true},
		{"process variables alongside", `{"intent":"search_event","entities":null,"chatId":42}`, true},
		{"numeric entity value", `{"intent":"find_birthday","entities":[{"entity":"age_older_than","value":30}]}`, true},
		{"missing intent", `{"entities":[]}`, false},
		{"empty intent", `{"intent":""}`, false},
		{"entity without type", `{"intent":"check_task","entities":[{"value":"x"}]}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, inputSchema.ValidateBytes([]byte(tt.vars)).Valid)
		})
	}
}
