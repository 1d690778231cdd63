package serviceinterfaces

import "context"

// GeneratorService defines the text generation operations used by the survey workflow
type GeneratorService interface {
	// GenerateSurveyInvite composes a personalized invite email body for a customer visit
	GenerateSurveyInvite(ctx context.Context, customerName, purpose, branchName, staffName string) (string, error)

	// SummarizeFeedback produces a short summary of submitted feedback text
	SummarizeFeedback(ctx context.Context, text string, starRating int) (string, error)
}
