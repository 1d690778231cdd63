package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"feedbackapp/internal/config"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/serviceinterfaces"
	contextutils "feedbackapp/internal/utils"
)

// PlaceholderCustomerName is used when a token's customer record is missing
const PlaceholderCustomerName = "Valued Customer"

// SurveyService orchestrates the survey lifecycle: intake with invite
// delivery, form fetch, and the submission sequence. Record creation is the
// durable side effect of each operation; generator, mail, and archive calls
// are best-effort.
type SurveyService struct {
	cfg       *config.Config
	customers serviceinterfaces.CustomerServiceInterface
	tokens    serviceinterfaces.TokenServiceInterface
	feedback  serviceinterfaces.FeedbackServiceInterface
	generator serviceinterfaces.GeneratorService
	mailer    serviceinterfaces.EmailService
	archiver  serviceinterfaces.ArchiveService
	logger    *observability.Logger
}

// NewSurveyService creates a new survey workflow service.
func NewSurveyService(
	cfg *config.Config,
	customers serviceinterfaces.CustomerServiceInterface,
	tokens serviceinterfaces.TokenServiceInterface,
	feedback serviceinterfaces.FeedbackServiceInterface,
	generator serviceinterfaces.GeneratorService,
	mailer serviceinterfaces.EmailService,
	archiver serviceinterfaces.ArchiveService,
	logger *observability.Logger,
) *SurveyService {
	if logger == nil {
		panic("NewSurveyService: logger is nil")
	}
	return &SurveyService{
		cfg:       cfg,
		customers: customers,
		tokens:    tokens,
		feedback:  feedback,
		generator: generator,
		mailer:    mailer,
		archiver:  archiver,
		logger:    logger,
	}
}

// Intake persists the customer profile and, when consent was given, mints a
// survey token and sends the invite. Generation or send failures leave the
// customer and token in place and are reported as email_sent=false.
func (s *SurveyService) Intake(ctx context.Context, req *models.CreateCustomerRequest) (result0 *models.CreateCustomerResponse, err error) {
	ctx, span := observability.TraceSurveyFunction(ctx, "intake")
	defer observability.FinishSpan(span, &err)

	customer, err := s.customers.CreateCustomer(ctx, req)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to create customer")
	}
	span.SetAttributes(observability.AttributeCustomerID(customer.ID))

	if !customer.EmailConsent {
		return &models.CreateCustomerResponse{
			CustomerID: customer.ID,
			Message:    "Customer registered successfully!",
		}, nil
	}

	token, err := s.tokens.MintToken(ctx, customer.ID)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to mint survey token")
	}

	emailSent := s.sendInvite(ctx, customer, token.Token)
	return &models.CreateCustomerResponse{
		CustomerID:  customer.ID,
		SurveyToken: token.Token,
		EmailSent:   &emailSent,
		Message:     "Customer registered successfully!",
	}, nil
}

// sendInvite generates and sends the invite email. Failures are absorbed
// and reported as false; the token stays valid for manual re-invitation.
func (s *SurveyService) sendInvite(ctx context.Context, customer *models.Customer, token string) bool {
	inviteBody, err := s.generator.GenerateSurveyInvite(ctx, customer.Name, customer.Purpose, customer.BranchName, customer.StaffName)
	if err != nil {
		s.logger.Warn(ctx, "Invite generation failed, email not sent", map[string]interface{}{
			"customer_id": customer.ID,
			"error":       err.Error(),
		})
		return false
	}

	surveyURL := fmt.Sprintf("%s/feedback/%s", s.cfg.Server.AppBaseURL, token)
	if err := s.mailer.SendSurveyInvite(ctx, customer.Email, customer.Name, inviteBody, surveyURL); err != nil {
		s.logger.Warn(ctx, "Invite send failed", map[string]interface{}{
			"customer_id": customer.ID,
			"error":       err.Error(),
		})
		return false
	}
	return true
}

// Reinvite re-sends the survey invite for a customer using their most
// recent unconsumed token. Used as the manual recovery path when the
// intake-time email failed.
func (s *SurveyService) Reinvite(ctx context.Context, customerID string) (result0 *models.CreateCustomerResponse, err error) {
	ctx, span := observability.TraceSurveyFunction(ctx, "reinvite", observability.AttributeCustomerID(customerID))
	defer observability.FinishSpan(span, &err)

	customer, err := s.customers.GetCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !customer.EmailConsent {
		return nil, contextutils.WrapError(contextutils.ErrInvalidInput, "customer did not consent to email contact")
	}

	token, err := s.tokens.LatestTokenForCustomer(ctx, customerID)
	if err != nil {
		if contextutils.IsError(err, contextutils.ErrTokenNotFound) {
			token, err = s.tokens.MintToken(ctx, customerID)
			if err != nil {
				return nil, contextutils.WrapError(err, "failed to mint survey token")
			}
		} else {
			return nil, err
		}
	}

	emailSent := s.sendInvite(ctx, customer, token.Token)
	return &models.CreateCustomerResponse{
		CustomerID:  customer.ID,
		SurveyToken: token.Token,
		EmailSent:   &emailSent,
		Message:     "Survey invite re-sent",
	}, nil
}

// FormData returns the display data for an unconsumed survey link. This is
// a pure read; the token is consumed only on submission.
func (s *SurveyService) FormData(ctx context.Context, token string) (result0 *models.SurveyFormData, err error) {
	ctx, span := observability.TraceSurveyFunction(ctx, "form_data")
	defer observability.FinishSpan(span, &err)

	st, err := s.tokens.FindUnconsumed(ctx, token)
	if err != nil {
		return nil, err
	}

	data := &models.SurveyFormData{
		CustomerName: PlaceholderCustomerName,
		Token:        st.Token,
		Message:      "Please provide your feedback",
	}
	customer, err := s.customers.GetCustomerByID(ctx, st.CustomerID)
	if err == nil {
		data.CustomerName = customer.Name
		data.Purpose = customer.Purpose
		data.BranchName = customer.BranchName
	} else if !contextutils.IsError(err, contextutils.ErrRecordNotFound) {
		return nil, err
	}
	return data, nil
}

// Submit runs the submission sequence: validate the token, load the
// customer, derive sentiment, summarize, persist, archive, attach the
// archive path, and consume the token last. Summary and archive failures
// are absorbed; the feedback write is the acceptance point.
func (s *SurveyService) Submit(ctx context.Context, token string, req *models.SubmitFeedbackRequest) (result0 *models.SubmitFeedbackResponse, err error) {
	ctx, span := observability.TraceSurveyFunction(ctx, "submit",
		observability.AttributeStarRating(req.StarRating),
	)
	defer observability.FinishSpan(span, &err)

	// Step 1: token validation. Unknown and consumed tokens fail identically.
	st, err := s.tokens.FindUnconsumed(ctx, token)
	if err != nil {
		return nil, err
	}

	// Step 2: customer lookup. A missing record must not abort the
	// submission; the archive payload gets placeholder fields.
	customer, err := s.customers.GetCustomerByID(ctx, st.CustomerID)
	if err != nil {
		if !contextutils.IsError(err, contextutils.ErrRecordNotFound) {
			return nil, err
		}
		s.logger.Warn(ctx, "Token references missing customer, using placeholder", map[string]interface{}{
			"customer_id": st.CustomerID,
		})
		customer = &models.Customer{ID: st.CustomerID, Name: PlaceholderCustomerName}
	}

	// Step 3: sentiment derivation.
	sentiment := models.SentimentForRating(req.StarRating)
	span.SetAttributes(attribute.String("feedback.sentiment", string(sentiment)))

	// Step 4: summary generation with deterministic fallback.
	summary, err := s.generator.SummarizeFeedback(ctx, req.Text, req.StarRating)
	if err != nil {
		s.logger.Warn(ctx, "Summary generation failed, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
		summary = FallbackSummary(req.StarRating)
		err = nil
	}

	// Step 5: persist the feedback record. This write is fatal on failure.
	record := &models.FeedbackRecord{
		CustomerID: st.CustomerID,
		Token:      st.Token,
		StarRating: req.StarRating,
		Text:       req.Text,
		Sentiment:  sentiment,
		Summary:    summary,
	}
	record, err = s.feedback.CreateFeedback(ctx, record)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to persist feedback")
	}
	span.SetAttributes(observability.AttributeFeedbackID(record.ID))

	// Steps 6-7: archive the combined payload and attach the path. Both
	// are non-fatal; the submission already succeeded.
	archivePath := ""
	payload := &models.ArchivePayload{
		FeedbackID:  record.ID,
		Customer:    *customer,
		StarRating:  record.StarRating,
		Text:        record.Text,
		Sentiment:   record.Sentiment,
		Summary:     record.Summary,
		Token:       record.Token,
		SubmittedAt: record.CreatedAt,
	}
	if path, archiveErr := s.archiver.ArchiveFeedback(ctx, payload); archiveErr != nil {
		s.logger.Warn(ctx, "Archive upload failed, submission still accepted", map[string]interface{}{
			"feedback_id": record.ID,
			"error":       archiveErr.Error(),
		})
	} else {
		archivePath = path
		if attachErr := s.feedback.AttachArchivePath(ctx, record.ID, path); attachErr != nil {
			s.logger.Warn(ctx, "Failed to attach archive path", map[string]interface{}{
				"feedback_id": record.ID,
				"error":       attachErr.Error(),
			})
		}
	}

	// Step 8: consume the token last, so a crash before this point leaves
	// the feedback captured and the token still open.
	if err = s.tokens.ConsumeToken(ctx, st.Token); err != nil {
		return nil, err
	}

	return &models.SubmitFeedbackResponse{
		FeedbackID:  record.ID,
		ArchivePath: archivePath,
		Message:     "Feedback submitted successfully!",
	}, nil
}

// ListFeedback returns one page of submitted feedback, newest first.
func (s *SurveyService) ListFeedback(ctx context.Context, page, pageSize int) (result0 *models.FeedbackListPage, err error) {
	ctx, span := observability.TraceSurveyFunction(ctx, "list_feedback",
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)
	defer observability.FinishSpan(span, &err)

	records, total, err := s.feedback.GetFeedbackPaginated(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &models.FeedbackListPage{
		Feedback: records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
