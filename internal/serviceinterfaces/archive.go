package serviceinterfaces

import (
	"context"

	"feedbackapp/internal/models"
)

// ArchiveService defines the long-term object storage interface for feedback payloads
type ArchiveService interface {
	// ArchiveFeedback uploads one JSON document for a submission and returns its storage path
	ArchiveFeedback(ctx context.Context, payload *models.ArchivePayload) (string, error)

	// IsEnabled returns whether archival is configured
	IsEnabled() bool
}
