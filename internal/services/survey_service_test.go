package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"feedbackapp/internal/config"
	"feedbackapp/internal/models"
	contextutils "feedbackapp/internal/utils"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerService) GetCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) MintToken(ctx context.Context, customerID string) (*models.SurveyToken, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SurveyToken), args.Error(1)
}

func (m *MockTokenService) FindUnconsumed(ctx context.Context, token string) (*models.SurveyToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SurveyToken), args.Error(1)
}

func (m *MockTokenService) ConsumeToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenService) LatestTokenForCustomer(ctx context.Context, customerID string) (*models.SurveyToken, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SurveyToken), args.Error(1)
}

type MockFeedbackStore struct {
	mock.Mock
}

func (m *MockFeedbackStore) CreateFeedback(ctx context.Context, fr *models.FeedbackRecord) (*models.FeedbackRecord, error) {
	args := m.Called(ctx, fr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeedbackRecord), args.Error(1)
}

func (m *MockFeedbackStore) AttachArchivePath(ctx context.Context, feedbackID, archivePath string) error {
	args := m.Called(ctx, feedbackID, archivePath)
	return args.Error(0)
}

func (m *MockFeedbackStore) GetFeedbackPaginated(ctx context.Context, page, pageSize int) ([]models.FeedbackRecord, int, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.FeedbackRecord), args.Int(1), args.Error(2)
}

type MockGeneratorService struct {
	mock.Mock
}

func (m *MockGeneratorService) GenerateSurveyInvite(ctx context.Context, customerName, purpose, branchName, staffName string) (string, error) {
	args := m.Called(ctx, customerName, purpose, branchName, staffName)
	return args.String(0), args.Error(1)
}

func (m *MockGeneratorService) SummarizeFeedback(ctx context.Context, text string, starRating int) (string, error) {
	args := m.Called(ctx, text, starRating)
	return args.String(0), args.Error(1)
}

type MockMailService struct {
	mock.Mock
}

func (m *MockMailService) SendSurveyInvite(ctx context.Context, to, customerName, inviteBody, surveyURL string) error {
	args := m.Called(ctx, to, customerName, inviteBody, surveyURL)
	return args.Error(0)
}

func (m *MockMailService) IsEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}

type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) ArchiveFeedback(ctx context.Context, payload *models.ArchivePayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

func (m *MockArchiveService) IsEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}

type surveyMocks struct {
	customers *MockCustomerService
	tokens    *MockTokenService
	feedback  *MockFeedbackStore
	generator *MockGeneratorService
	mailer    *MockMailService
	archiver  *MockArchiveService
}

func newSurveyService(t *testing.T) (*SurveyService, *surveyMocks) {
	t.Helper()
	mocks := &surveyMocks{
		customers: &MockCustomerService{},
		tokens:    &MockTokenService{},
		feedback:  &MockFeedbackStore{},
		generator: &MockGeneratorService{},
		mailer:    &MockMailService{},
		archiver:  &MockArchiveService{},
	}
	cfg := &config.Config{}
	cfg.Server.AppBaseURL = "http://localhost:3000"
	svc := NewSurveyService(cfg, mocks.customers, mocks.tokens, mocks.feedback, mocks.generator, mocks.mailer, mocks.archiver, testLogger())
	return svc, mocks
}

func sampleCustomer(consent bool) *models.Customer {
	return &models.Customer{
		ID:           "42",
		Name:         "Jane Doe",
		Email:        "jane@x.com",
		EmailConsent: consent,
		Purpose:      "Loan",
		BranchID:     "B1",
		BranchName:   "Main",
		StaffName:    "Amit",
	}
}

func sampleRequest() *models.CreateCustomerRequest {
	consent := true
	return &models.CreateCustomerRequest{
		Name:         "Jane Doe",
		Email:        "jane@x.com",
		EmailConsent: &consent,
		Purpose:      "Loan",
		BranchID:     "B1",
		BranchName:   "Main",
		StaffName:    "Amit",
	}
}

func TestIntake_NoConsent_NoToken(t *testing.T) {
	svc, mocks := newSurveyService(t)

	req := sampleRequest()
	noConsent := false
	req.EmailConsent = &noConsent
	mocks.customers.On("CreateCustomer", mock.Anything, req).Return(sampleCustomer(false), nil)

	resp, err := svc.Intake(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "42", resp.CustomerID)
	assert.Empty(t, resp.SurveyToken)
	assert.Nil(t, resp.EmailSent)
	mocks.tokens.AssertNotCalled(t, "MintToken", mock.Anything, mock.Anything)
}

func TestIntake_WithConsent_SendsInvite(t *testing.T) {
	svc, mocks := newSurveyService(t)

	req := sampleRequest()
	mocks.customers.On("CreateCustomer", mock.Anything, req).Return(sampleCustomer(true), nil)
	mocks.tokens.On("MintToken", mock.Anything, "42").Return(&models.SurveyToken{Token: "tok-1", CustomerID: "42"}, nil)
	mocks.generator.On("GenerateSurveyInvite", mock.Anything, "Jane Doe", "Loan", "Main", "Amit").Return("Hello Jane", nil)
	mocks.mailer.On("SendSurveyInvite", mock.Anything, "jane@x.com", "Jane Doe", "Hello Jane", "http://localhost:3000/feedback/tok-1").Return(nil)

	resp, err := svc.Intake(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.SurveyToken)
	require.NotNil(t, resp.EmailSent)
	assert.True(t, *resp.EmailSent)
}

func TestIntake_MailFailure_PartialSuccess(t *testing.T) {
	svc, mocks := newSurveyService(t)

	req := sampleRequest()
	mocks.customers.On("CreateCustomer", mock.Anything, req).Return(sampleCustomer(true), nil)
	mocks.tokens.On("MintToken", mock.Anything, "42").Return(&models.SurveyToken{Token: "tok-1", CustomerID: "42"}, nil)
	mocks.generator.On("GenerateSurveyInvite", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("Hello Jane", nil)
	mocks.mailer.On("SendSurveyInvite", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(contextutils.ErrMailSendFailed)

	resp, err := svc.Intake(context.Background(), req)
	require.NoError(t, err, "mail failure must not fail the intake")
	assert.Equal(t, "42", resp.CustomerID)
	assert.Equal(t, "tok-1", resp.SurveyToken)
	require.NotNil(t, resp.EmailSent)
	assert.False(t, *resp.EmailSent)
}

func TestIntake_GeneratorFailure_SkipsSend(t *testing.T) {
	svc, mocks := newSurveyService(t)

	req := sampleRequest()
	mocks.customers.On("CreateCustomer", mock.Anything, req).Return(sampleCustomer(true), nil)
	mocks.tokens.On("MintToken", mock.Anything, "42").Return(&models.SurveyToken{Token: "tok-1", CustomerID: "42"}, nil)
	mocks.generator.On("GenerateSurveyInvite", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("generator down"))

	resp, err := svc.Intake(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.EmailSent)
	assert.False(t, *resp.EmailSent)
	mocks.mailer.AssertNotCalled(t, "SendSurveyInvite", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIntake_StoreFailure_Fatal(t *testing.T) {
	svc, mocks := newSurveyService(t)

	req := sampleRequest()
	mocks.customers.On("CreateCustomer", mock.Anything, req).Return(nil, contextutils.ErrDatabaseQuery)

	_, err := svc.Intake(context.Background(), req)
	assert.Error(t, err)
}

func TestFormData_Success(t *testing.T) {
	svc, mocks := newSurveyService(t)

	mocks.tokens.On("FindUnconsumed", mock.Anything, "tok-1").Return(&models.SurveyToken{Token: "tok-1", CustomerID: "42"}, nil)
	mocks.customers.On("GetCustomerByID", mock.Anything, "42").Return(sampleCustomer(true), nil)

	data, err := svc.FormData(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", data.CustomerName)
	assert.Equal(t, "Loan", data.Purpose)
	assert.Equal(t, "Main", data.BranchName)
	assert.Equal(t, "tok-1", data.Token)
	mocks.tokens.AssertNotCalled(t, "ConsumeToken", mock.Anything, mock.Anything)
}

func TestFormData_MissingCustomer_Fallbacks(t *testing.T) {
	svc, mocks := newSurveyService(t)

	mocks.tokens.On("FindUnconsumed", mock.Anything, "tok-1").Return(&models.SurveyToken{Token: "tok-1", CustomerID: "42"}, nil)
	mocks.customers.On("GetCustomerByID", mock.Anything, "42").Return(nil, contextutils.ErrRecordNotFound)

	data, err := svc.FormData(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, PlaceholderCustomerName, data.CustomerName)
	assert.Empty(t, data.Purpose)
	assert.Empty(t, data.BranchName)
}

func TestFormData_UnknownToken(t *testing.T) {
	svc, mocks := newSurveyService(t)

	mocks.tokens.On("FindUnconsumed", mock.Anything, "missing").Return(nil, contextutils.ErrTokenNotFound)

	_, err := svc.FormData(context.Background(), "missing")
	assert.True(t, contextutils.IsError(err, contextutils.ErrTokenNotFound))
}

func sampleSubmission() *models.SubmitFeedbackRequest {
	return &models.SubmitFeedbackRequest{
		StarRating: 5,
		Text:       "Great service, very helpful staff!",
	}
}

func TestSubmit_HappyPath(t *testing.T) {
	svc, mocks := newSurveyService(t)

	mocks.tokens.On("FindUnconsumed", mock.Anything, "tok-1").Return(&models.SurveyToken{Token: "tok-1", CustomerID: "42"}, nil)
	mocks.customers.On("GetCustomerByID", mock.Anything, "42").Return(sampleCustomer(true), nil)
	mocks.generator.On("SummarizeFeedback", mock.Anything, "Great service, very helpful staff!", 5).Return("Customer was happy.", nil)
	mocks.feedback.On("CreateFeedback", mock.Anything, mock.MatchedBy(func(fr *models.FeedbackRecord) bool {
		return fr.Sentiment == models.SentimentPositive && fr.Summary == "Customer was happy." && fr.Token == "tok-1"
	})).Return(&models.FeedbackRecord{ID: "3", CustomerID: "42", Token: "tok-1", StarRating: 5, Sentiment: models.SentimentPositive, Summary: "Customer was happy."}, nil)
	mocks.archiver.On("ArchiveFeedback", mock.Anything, mock.Anything).Return("feedback-data/feedback_42_20250601_120000.json", nil)
	mocks.feedback.On("AttachArchivePath", mock.Anything, "3", "feedback-data/feedback_42_20250601_120000.json").Return(nil)
	mocks.tokens.On("ConsumeToken", mock.Anything, "tok-1").Return(nil)

	resp, err := svc.Submit(context.Background(), "tok-1", sampleSubmission())
	require.NoError(t, err)
	assert.Equal(t, "3", resp.FeedbackID)
	assert.Equal(t, "feedback-data/feedback_42_20250601_120000.json", resp.ArchivePath)
	assert.Equal(t, "Feedback submitted successfully!", resp.Message)
	mocks.tokens.AssertCalled(t, "ConsumeToken", mock.Anything, "tok-1")
}

func TestSubmit_UnknownToken(t *testing.T) {
	svc, mocks := newSurveyService(t)

	mocks.tokens.On("FindUnconsumed", mock.Anything, "missing").Return(nil, contextutils.ErrTokenNotFound)

	_, err := svc.Submit(context.Background(), "missing", sampleSubmission())
	assert.True(t, contextutils.IsError(err, contextutils.ErrTokenNotFound))
	mocks.feedback.AssertNotCalled(t, "CreateFeedback", mock.Anything, mock.Anything)
}

func TestSubmit_GeneratorFailure_FallbackSummary(t *testing.T) {
	svc, mocks := newSurveyService(t)

	mocks.tokens.On("FindUnconsumed", mock.Anything, "tok-1").Return(&models.SurveyToken{Token: "tok-1", CustomerID: "42"}, nil)
	mocks.customers.On("GetCustomerByID", mock.Anything, "42").Return(sampleCustomer(true), nil)
	mocks.generator.On("SummarizeFeedback", mock.Anything, mock.Anything, 4).Return("", errors.New("generator down"))
	mocks.feedback.On("CreateFeedback", mock.Anything, mock.MatchedBy(func(fr *models.FeedbackRecord) bool {
		return fr.Summary == "Customer provided 4-star rating with feedback about their experience."
	})).Return(&models.FeedbackRecord{ID: "3", CustomerID: "42", Token: "tok-1", StarRating: 4}, nil)
	mocks.archiver.On("ArchiveFeedback", mock.Anything, mock.Anything).Return("", contextutils.ErrArchiveNotConfigured)
	mocks.tokens.On("ConsumeToken", mock.Anything, "tok-1").Return(nil)

	req := &models.SubmitFeedbackRequest{StarRating: 4, Text: "Pretty good experience overall"}
	resp, err := svc.Submit(context.Background(), "tok-1", req)
	require.NoError(t, err)
	assert.Equal(t, "3", resp.FeedbackID)
	assert.Empty(t, resp.ArchivePath)
}

func TestSubmit_ArchiveFailure_NonFatal(t *testing.T) {
	svc, mocks := newSurveyService(t)

	mocks.tokens.On("FindUnconsumed", mock.Anything, "tok-1").Return(&models.SurveyToken{Token: "tok-1", CustomerID: "42"}, nil)
	mocks.customers.On("GetCustomerByID", mock.Anything, "42").Return(sampleCustomer(true), nil)
	mocks.generator.On("SummarizeFeedback", mock.Anything, mock.Anything, 5).Return("Customer was happy.", nil)
	mocks.feedback.On("CreateFeedback", mock.Anything, mock.Anything).Return(&models.FeedbackRecord{ID: "3", CustomerID: "42", Token: "tok-1", StarRating: 5}, nil)
	mocks.archiver.On("ArchiveFeedback", mock.Anything, mock.Anything).Return("", contextutils.ErrArchiveUploadFailed)
	mocks.tokens.On("ConsumeToken", mock.Anything, "tok-1").Return(nil)

	resp, err := svc.Submit(context.Background(), "tok-1", sampleSubmission())
	require.NoError(t, err, "archive failure must not fail the submission")
	assert.Empty(t, resp.ArchivePath)
	mocks.feedback.AssertNotCalled(t, "AttachArchivePath", mock.Anything, mock.Anything, mock.Anything)
	mocks.tokens.AssertCalled(t, "ConsumeToken", mock.Anything, "tok-1")
}

func TestSubmit_StoreFailure_Fatal(t *testing.T) {
	svc, mocks := newSurveyService(t)

	mocks.tokens.On("FindUnconsumed", mock.Anything, "tok-1").Return(&models.SurveyToken{Token: "tok-1", CustomerID: "42"}, nil)
	mocks.customers.On("GetCustomerByID", mock.Anything, "42").Return(sampleCustomer(true), nil)
	mocks.generator.On("SummarizeFeedback", mock.Anything, mock.Anything, 5).Return("Customer was happy.", nil)
	mocks.feedback.On("CreateFeedback", mock.Anything, mock.Anything).Return(nil, contextutils.ErrDatabaseQuery)

	_, err := svc.Submit(context.Background(), "tok-1", sampleSubmission())
	assert.Error(t, err)
	mocks.tokens.AssertNotCalled(t, "ConsumeToken", mock.Anything, mock.Anything)
}

func TestSubmit_MissingCustomer_Placeholder(t *testing.T) {
	svc, mocks := newSurveyService(t)

	mocks.tokens.On("FindUnconsumed", mock.Anything, "tok-1").Return(&models.SurveyToken{Token: "tok-1", CustomerID: "42"}, nil)
	mocks.customers.On("GetCustomerByID", mock.Anything, "42").Return(nil, contextutils.ErrRecordNotFound)
	mocks.generator.On("SummarizeFeedback", mock.Anything, mock.Anything, 5).Return("Customer was happy.", nil)
	mocks.feedback.On("CreateFeedback", mock.Anything, mock.Anything).Return(&models.FeedbackRecord{ID: "3", CustomerID: "42", Token: "tok-1", StarRating: 5}, nil)
	mocks.archiver.On("ArchiveFeedback", mock.Anything, mock.MatchedBy(func(p *models.ArchivePayload) bool {
		return p.Customer.ID == "42" && p.Customer.Name == PlaceholderCustomerName
	})).Return("", contextutils.ErrArchiveNotConfigured)
	mocks.tokens.On("ConsumeToken", mock.Anything, "tok-1").Return(nil)

	resp, err := svc.Submit(context.Background(), "tok-1", sampleSubmission())
	require.NoError(t, err)
	assert.Equal(t, "3", resp.FeedbackID)
}

func TestReinvite_ExistingToken(t *testing.T) {
	svc, mocks := newSurveyService(t)

	mocks.customers.On("GetCustomerByID", mock.Anything, "42").Return(sampleCustomer(true), nil)
	mocks.tokens.On("LatestTokenForCustomer", mock.Anything, "42").Return(&models.SurveyToken{Token: "tok-1", CustomerID: "42"}, nil)
	mocks.generator.On("GenerateSurveyInvite", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("Hello again", nil)
	mocks.mailer.On("SendSurveyInvite", mock.Anything, "jane@x.com", "Jane Doe", "Hello again", "http://localhost:3000/feedback/tok-1").Return(nil)

	resp, err := svc.Reinvite(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.SurveyToken)
	require.NotNil(t, resp.EmailSent)
	assert.True(t, *resp.EmailSent)
	mocks.tokens.AssertNotCalled(t, "MintToken", mock.Anything, mock.Anything)
}

func TestReinvite_MintsWhenNoOpenToken(t *testing.T) {
	svc, mocks := newSurveyService(t)

	mocks.customers.On("GetCustomerByID", mock.Anything, "42").Return(sampleCustomer(true), nil)
	mocks.tokens.On("LatestTokenForCustomer", mock.Anything, "42").Return(nil, contextutils.ErrTokenNotFound)
	mocks.tokens.On("MintToken", mock.Anything, "42").Return(&models.SurveyToken{Token: "tok-2", CustomerID: "42"}, nil)
	mocks.generator.On("GenerateSurveyInvite", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("Hello again", nil)
	mocks.mailer.On("SendSurveyInvite", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.Reinvite(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", resp.SurveyToken)
}

func TestReinvite_NoConsent(t *testing.T) {
	svc, mocks := newSurveyService(t)

	mocks.customers.On("GetCustomerByID", mock.Anything, "42").Return(sampleCustomer(false), nil)

	_, err := svc.Reinvite(context.Background(), "42")
	assert.True(t, contextutils.IsError(err, contextutils.ErrInvalidInput))
}

func TestListFeedback(t *testing.T) {
	svc, mocks := newSurveyService(t)

	records := []models.FeedbackRecord{{ID: "2"}, {ID: "1"}}
	mocks.feedback.On("GetFeedbackPaginated", mock.Anything, 1, 20).Return(records, 2, nil)

	page, err := svc.ListFeedback(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Feedback, 2)
}
