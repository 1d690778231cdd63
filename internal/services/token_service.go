package services

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"

	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"
)

// TokenService implements TokenServiceInterface over the survey_tokens table.
// Token consumption is a single conditional update so that two concurrent
// submissions racing on the same token can produce at most one success.
type TokenService struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewTokenService creates a new TokenService instance.
func NewTokenService(db *sql.DB, logger *observability.Logger) *TokenService {
	if db == nil {
		panic("NewTokenService: db is nil")
	}
	if logger == nil {
		panic("NewTokenService: logger is nil")
	}
	return &TokenService{db: db, logger: logger}
}

// MintToken creates a new unconsumed survey token bound to the customer.
func (s *TokenService) MintToken(ctx context.Context, customerID string) (result0 *models.SurveyToken, err error) {
	ctx, span := observability.TraceTokenFunction(ctx, "mint_token", observability.AttributeCustomerID(customerID))
	defer observability.FinishSpan(span, &err)

	numericID, parseErr := strconv.ParseInt(customerID, 10, 64)
	if parseErr != nil {
		return nil, contextutils.WrapError(parseErr, "invalid customer id")
	}

	token := &models.SurveyToken{
		Token:      uuid.NewString(),
		CustomerID: customerID,
		Consumed:   false,
	}

	query := `INSERT INTO survey_tokens (token, customer_id, consumed, created_at)
              VALUES ($1,$2,$3,$4) RETURNING created_at`
	var createdAt time.Time
	err = s.db.QueryRowContext(ctx, query, token.Token, numericID, false, time.Now()).Scan(&createdAt)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to insert survey token")
	}
	token.CreatedAt = createdAt
	return token, nil
}

// FindUnconsumed returns the token row if it exists and has not been consumed.
// Unknown and already-consumed tokens both yield ErrTokenNotFound so that
// callers cannot distinguish the two cases.
func (s *TokenService) FindUnconsumed(ctx context.Context, token string) (result0 *models.SurveyToken, err error) {
	ctx, span := observability.TraceTokenFunction(ctx, "find_unconsumed_token")
	defer observability.FinishSpan(span, &err)

	// The token column is a UUID; a malformed value would fail the cast in
	// Postgres rather than match zero rows, so reject it up front.
	if _, parseErr := uuid.Parse(token); parseErr != nil {
		return nil, contextutils.ErrTokenNotFound
	}

	query := `SELECT token, customer_id, consumed, created_at
              FROM survey_tokens WHERE token=$1 AND consumed=false`
	row := s.db.QueryRowContext(ctx, query, token)

	var st models.SurveyToken
	var customerID int64
	err = row.Scan(&st.Token, &customerID, &st.Consumed, &st.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.ErrTokenNotFound
		}
		return nil, contextutils.WrapError(err, "failed to scan survey token")
	}
	st.CustomerID = strconv.FormatInt(customerID, 10)
	return &st, nil
}

// ConsumeToken atomically marks the token consumed. The conditional update
// matches only unconsumed rows; zero rows affected means the token is unknown
// or was already consumed, reported identically as ErrTokenNotFound.
func (s *TokenService) ConsumeToken(ctx context.Context, token string) (err error) {
	ctx, span := observability.TraceTokenFunction(ctx, "consume_token")
	defer observability.FinishSpan(span, &err)

	if _, parseErr := uuid.Parse(token); parseErr != nil {
		return contextutils.ErrTokenNotFound
	}

	query := `UPDATE survey_tokens SET consumed=true WHERE token=$1 AND consumed=false`
	result, err := s.db.ExecContext(ctx, query, token)
	if err != nil {
		return contextutils.WrapError(err, "failed to consume survey token")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return contextutils.ErrTokenNotFound
	}
	return nil
}

// LatestTokenForCustomer returns the customer's most recent unconsumed token, if any.
func (s *TokenService) LatestTokenForCustomer(ctx context.Context, customerID string) (result0 *models.SurveyToken, err error) {
	ctx, span := observability.TraceTokenFunction(ctx, "latest_token_for_customer", observability.AttributeCustomerID(customerID))
	defer observability.FinishSpan(span, &err)

	numericID, parseErr := strconv.ParseInt(customerID, 10, 64)
	if parseErr != nil {
		return nil, contextutils.ErrTokenNotFound
	}

	query := `SELECT token, customer_id, consumed, created_at
              FROM survey_tokens WHERE customer_id=$1 AND consumed=false
              ORDER BY created_at DESC LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, numericID)

	var st models.SurveyToken
	var rowCustomerID int64
	err = row.Scan(&st.Token, &rowCustomerID, &st.Consumed, &st.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.ErrTokenNotFound
		}
		return nil, contextutils.WrapError(err, "failed to scan survey token")
	}
	st.CustomerID = strconv.FormatInt(rowCustomerID, 10)
	return &st, nil
}
