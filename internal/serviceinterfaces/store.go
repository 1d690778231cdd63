// Package serviceinterfaces defines service interfaces for dependency injection and testing.
package serviceinterfaces

import (
	"context"

	"feedbackapp/internal/models"
)

// CustomerServiceInterface defines operations on stored customer profiles
type CustomerServiceInterface interface {
	// CreateCustomer persists a new customer profile and returns it with its generated id
	CreateCustomer(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error)

	// GetCustomerByID fetches a customer by id
	GetCustomerByID(ctx context.Context, id string) (*models.Customer, error)
}

// TokenServiceInterface defines the survey token lifecycle
type TokenServiceInterface interface {
	// MintToken creates a new unconsumed token bound to the customer
	MintToken(ctx context.Context, customerID string) (*models.SurveyToken, error)

	// FindUnconsumed returns the token row if it exists and has not been consumed
	FindUnconsumed(ctx context.Context, token string) (*models.SurveyToken, error)

	// ConsumeToken atomically flips consumed=false to true. Returns
	// ErrTokenNotFound when the token is unknown or already consumed.
	ConsumeToken(ctx context.Context, token string) error

	// LatestTokenForCustomer returns the customer's most recent unconsumed token, if any
	LatestTokenForCustomer(ctx context.Context, customerID string) (*models.SurveyToken, error)
}

// FeedbackServiceInterface defines operations on stored feedback records
type FeedbackServiceInterface interface {
	// CreateFeedback persists a new feedback record and returns it with its generated id
	CreateFeedback(ctx context.Context, fr *models.FeedbackRecord) (*models.FeedbackRecord, error)

	// AttachArchivePath records the archival location on an existing feedback record
	AttachArchivePath(ctx context.Context, feedbackID, archivePath string) error

	// GetFeedbackPaginated returns one page of feedback records, newest first, with the total count
	GetFeedbackPaginated(ctx context.Context, page, pageSize int) ([]models.FeedbackRecord, int, error)
}
