package services

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"
)

// FeedbackService implements FeedbackServiceInterface over the feedback table.
type FeedbackService struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewFeedbackService creates a new FeedbackService instance.
func NewFeedbackService(db *sql.DB, logger *observability.Logger) *FeedbackService {
	if db == nil {
		panic("NewFeedbackService: db is nil")
	}
	if logger == nil {
		panic("NewFeedbackService: logger is nil")
	}
	return &FeedbackService{db: db, logger: logger}
}

// CreateFeedback inserts a new feedback record. The archive path starts
// null and is attached later if the archive step succeeds.
func (s *FeedbackService) CreateFeedback(ctx context.Context, fr *models.FeedbackRecord) (result0 *models.FeedbackRecord, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "create_feedback",
		observability.AttributeCustomerID(fr.CustomerID),
		observability.AttributeStarRating(fr.StarRating),
	)
	defer observability.FinishSpan(span, &err)

	customerID, parseErr := strconv.ParseInt(fr.CustomerID, 10, 64)
	if parseErr != nil {
		return nil, contextutils.WrapError(parseErr, "invalid customer id")
	}

	query := `INSERT INTO feedback (customer_id, token, star_rating, textual_feedback, sentiment, summary, archive_path, created_at)
              VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at`
	var id int64
	var createdAt time.Time
	err = s.db.QueryRowContext(ctx, query,
		customerID, fr.Token, fr.StarRating, fr.Text, fr.Sentiment, fr.Summary, fr.ArchivePath, time.Now()).
		Scan(&id, &createdAt)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to insert feedback")
	}

	fr.ID = strconv.FormatInt(id, 10)
	fr.CreatedAt = createdAt
	return fr, nil
}

// AttachArchivePath records the archival location on an existing feedback record.
func (s *FeedbackService) AttachArchivePath(ctx context.Context, feedbackID, archivePath string) (err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "attach_archive_path",
		observability.AttributeFeedbackID(feedbackID),
		attribute.String("archive.path", archivePath),
	)
	defer observability.FinishSpan(span, &err)

	numericID, parseErr := strconv.ParseInt(feedbackID, 10, 64)
	if parseErr != nil {
		return contextutils.WrapError(parseErr, "invalid feedback id")
	}

	query := `UPDATE feedback SET archive_path=$1 WHERE id=$2`
	result, err := s.db.ExecContext(ctx, query, archivePath, numericID)
	if err != nil {
		return contextutils.WrapError(err, "failed to update feedback archive path")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "feedback with ID %s not found", feedbackID)
	}
	return nil
}

// GetFeedbackPaginated returns one page of feedback records, newest first.
func (s *FeedbackService) GetFeedbackPaginated(ctx context.Context, page, pageSize int) (result0 []models.FeedbackRecord, result1 int, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "get_feedback_paginated",
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)
	defer observability.FinishSpan(span, &err)

	var total int
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedback").Scan(&total); err != nil {
		return nil, 0, contextutils.WrapError(err, "failed to count feedback")
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, customer_id, token, star_rating, textual_feedback, sentiment, summary, archive_path, created_at
              FROM feedback ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := s.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, contextutils.WrapError(err, "failed to query feedback list")
	}
	defer func() {
		_ = rows.Close()
	}()

	list := []models.FeedbackRecord{}
	for rows.Next() {
		var fr models.FeedbackRecord
		var id, customerID int64
		if err := rows.Scan(&id, &customerID, &fr.Token, &fr.StarRating, &fr.Text, &fr.Sentiment, &fr.Summary, &fr.ArchivePath, &fr.CreatedAt); err != nil {
			return nil, 0, contextutils.WrapError(err, "scan feedback list")
		}
		fr.ID = strconv.FormatInt(id, 10)
		fr.CustomerID = strconv.FormatInt(customerID, 10)
		list = append(list, fr)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, contextutils.WrapError(err, "iterate feedback list")
	}
	return list, total, nil
}
