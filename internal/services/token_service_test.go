package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedbackapp/internal/config"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func TestMintToken(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	svc := NewTokenService(db, testLogger())

	created := time.Now()
	mock.ExpectQuery(`INSERT INTO survey_tokens`).
		WithArgs(sqlmock.AnyArg(), int64(42), false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	token, err := svc.MintToken(context.Background(), "42")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, "42", token.CustomerID)
	assert.False(t, token.Consumed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMintToken_InvalidCustomerID(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	svc := NewTokenService(db, testLogger())

	_, err := svc.MintToken(context.Background(), "not-a-number")
	assert.Error(t, err)
}

func TestFindUnconsumed_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	svc := NewTokenService(db, testLogger())

	created := time.Now()
	rows := sqlmock.NewRows([]string{"token", "customer_id", "consumed", "created_at"}).
		AddRow("6f1c2b3a-9d4e-4f5a-8b6c-7d8e9f0a1b2c", int64(42), false, created)
	mock.ExpectQuery(`SELECT token, customer_id, consumed, created_at`).
		WithArgs("6f1c2b3a-9d4e-4f5a-8b6c-7d8e9f0a1b2c").
		WillReturnRows(rows)

	st, err := svc.FindUnconsumed(context.Background(), "6f1c2b3a-9d4e-4f5a-8b6c-7d8e9f0a1b2c")
	require.NoError(t, err)
	assert.Equal(t, "6f1c2b3a-9d4e-4f5a-8b6c-7d8e9f0a1b2c", st.Token)
	assert.Equal(t, "42", st.CustomerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindUnconsumed_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	svc := NewTokenService(db, testLogger())

	mock.ExpectQuery(`SELECT token, customer_id, consumed, created_at`).
		WithArgs("11111111-2222-3333-4444-555555555555").
		WillReturnError(sql.ErrNoRows)

	_, err := svc.FindUnconsumed(context.Background(), "11111111-2222-3333-4444-555555555555")
	assert.True(t, contextutils.IsError(err, contextutils.ErrTokenNotFound))
}

func TestFindUnconsumed_MalformedToken(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	svc := NewTokenService(db, testLogger())

	// No query expectation: a value the UUID column cannot hold must be
	// rejected before it reaches the database.
	for _, token := range []string{"abc", "", "6f1c2b3a-9d4e-4f5a-8b6c"} {
		_, err := svc.FindUnconsumed(context.Background(), token)
		assert.True(t, contextutils.IsError(err, contextutils.ErrTokenNotFound), "token %q", token)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeToken_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	svc := NewTokenService(db, testLogger())

	mock.ExpectExec(`UPDATE survey_tokens SET consumed=true`).
		WithArgs("6f1c2b3a-9d4e-4f5a-8b6c-7d8e9f0a1b2c").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.ConsumeToken(context.Background(), "6f1c2b3a-9d4e-4f5a-8b6c-7d8e9f0a1b2c")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeToken_AlreadyConsumed(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	svc := NewTokenService(db, testLogger())

	// Zero rows affected covers both unknown and already-consumed tokens
	mock.ExpectExec(`UPDATE survey_tokens SET consumed=true`).
		WithArgs("6f1c2b3a-9d4e-4f5a-8b6c-7d8e9f0a1b2c").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.ConsumeToken(context.Background(), "6f1c2b3a-9d4e-4f5a-8b6c-7d8e9f0a1b2c")
	assert.True(t, contextutils.IsError(err, contextutils.ErrTokenNotFound))
}

func TestConsumeToken_MalformedToken(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	svc := NewTokenService(db, testLogger())

	err := svc.ConsumeToken(context.Background(), "not-a-uuid")
	assert.True(t, contextutils.IsError(err, contextutils.ErrTokenNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
