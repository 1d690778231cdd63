package services

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedbackapp/internal/config"
	"feedbackapp/internal/models"
	contextutils "feedbackapp/internal/utils"
)

type capturingS3Client struct {
	input *s3.PutObjectInput
	err   error
}

func (c *capturingS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	c.input = params
	if c.err != nil {
		return nil, c.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestArchiveFeedback_KeyNaming(t *testing.T) {
	client := &capturingS3Client{}
	cfg := &config.ArchiveConfig{Enabled: true, Bucket: "feedback-archive"}
	svc := NewArchiveServiceWithClient(cfg, client, testLogger())
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	payload := &models.ArchivePayload{
		FeedbackID: "3",
		Customer:   models.Customer{ID: "42", Name: "Jane Doe"},
		StarRating: 5,
		Sentiment:  models.SentimentPositive,
	}
	path, err := svc.ArchiveFeedback(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "feedback-data/feedback_42_20250601_120000.json", path)

	require.NotNil(t, client.input)
	assert.Equal(t, "feedback-archive", *client.input.Bucket)
	assert.Equal(t, path, *client.input.Key)

	body, err := io.ReadAll(client.input.Body)
	require.NoError(t, err)
	var uploaded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &uploaded))
	assert.Equal(t, "3", uploaded["feedback_id"])
}

func TestArchiveFeedback_CustomPrefix(t *testing.T) {
	client := &capturingS3Client{}
	cfg := &config.ArchiveConfig{Enabled: true, Bucket: "feedback-archive", Prefix: "archive/v2"}
	svc := NewArchiveServiceWithClient(cfg, client, testLogger())
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	path, err := svc.ArchiveFeedback(context.Background(), &models.ArchivePayload{
		Customer: models.Customer{ID: "42"},
	})
	require.NoError(t, err)
	assert.Equal(t, "archive/v2/feedback_42_20250601_120000.json", path)
}

func TestArchiveFeedback_Disabled(t *testing.T) {
	svc := NewArchiveServiceWithClient(&config.ArchiveConfig{}, nil, testLogger())
	assert.False(t, svc.IsEnabled())

	_, err := svc.ArchiveFeedback(context.Background(), &models.ArchivePayload{})
	assert.True(t, contextutils.IsError(err, contextutils.ErrArchiveNotConfigured))
}

func TestArchiveFeedback_UploadFailure(t *testing.T) {
	client := &capturingS3Client{err: context.DeadlineExceeded}
	cfg := &config.ArchiveConfig{Enabled: true, Bucket: "feedback-archive"}
	svc := NewArchiveServiceWithClient(cfg, client, testLogger())

	_, err := svc.ArchiveFeedback(context.Background(), &models.ArchivePayload{
		Customer: models.Customer{ID: "42"},
	})
	assert.True(t, contextutils.IsError(err, contextutils.ErrArchiveUploadFailed))
}
