package serviceinterfaces

import "context"

// EmailService defines the interface for email functionality
type EmailService interface {
	// SendSurveyInvite sends a survey invite email embedding the survey link
	SendSurveyInvite(ctx context.Context, to, customerName, inviteBody, surveyURL string) error

	// IsEnabled returns whether email functionality is enabled
	IsEnabled() bool
}
