package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel/attribute"

	"feedbackapp/internal/config"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"
)

// s3PutAPI is the subset of the S3 client used by the archiver
type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ArchiveService uploads one JSON document per feedback submission to
// object storage. Uploads are best-effort from the workflow's point of
// view; a failed or disabled archiver never blocks a submission.
type ArchiveService struct {
	cfg    *config.ArchiveConfig
	client s3PutAPI
	logger *observability.Logger
	now    func() time.Time
}

// NewArchiveService creates a new archive service. When no bucket is
// configured the service stays disabled and uploads report a failure result.
func NewArchiveService(ctx context.Context, cfg *config.ArchiveConfig, logger *observability.Logger) (result0 *ArchiveService, err error) {
	if logger == nil {
		panic("NewArchiveService: logger is nil")
	}

	svc := &ArchiveService{cfg: cfg, logger: logger, now: time.Now}
	if !cfg.Enabled || cfg.Bucket == "" {
		logger.Info(ctx, "Archive service disabled, feedback uploads will be skipped")
		return svc, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, contextutils.WrapError(err, "unable to load AWS SDK config")
	}

	opts := s3.Options{
		Region:      awsCfg.Region,
		Credentials: awsCfg.Credentials,
		HTTPClient:  awsCfg.HTTPClient,
	}
	if cfg.Region != "" {
		opts.Region = cfg.Region
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	svc.client = s3.New(opts)
	return svc, nil
}

// NewArchiveServiceWithClient creates an archive service with an injected client (for tests).
func NewArchiveServiceWithClient(cfg *config.ArchiveConfig, client s3PutAPI, logger *observability.Logger) *ArchiveService {
	return &ArchiveService{cfg: cfg, client: client, logger: logger, now: time.Now}
}

// IsEnabled returns whether archival is configured
func (a *ArchiveService) IsEnabled() bool {
	return a.cfg.Enabled && a.cfg.Bucket != "" && a.client != nil
}

// ArchiveFeedback uploads the combined payload and returns its storage path.
func (a *ArchiveService) ArchiveFeedback(ctx context.Context, payload *models.ArchivePayload) (result0 string, err error) {
	ctx, span := observability.TraceArchiveFunction(ctx, "archive_feedback",
		observability.AttributeFeedbackID(payload.FeedbackID),
		observability.AttributeCustomerID(payload.Customer.ID),
	)
	defer observability.FinishSpan(span, &err)

	if !a.IsEnabled() {
		return "", contextutils.ErrArchiveNotConfigured
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", contextutils.WrapError(err, "failed to marshal archive payload")
	}

	prefix := a.cfg.Prefix
	if prefix == "" {
		prefix = config.DefaultArchivePrefix
	}
	key := fmt.Sprintf("%s/feedback_%s_%s.json", prefix, payload.Customer.ID, a.now().Format("20060102_150405"))
	span.SetAttributes(attribute.String("archive.key", key))

	ctx, cancel := context.WithTimeout(ctx, config.ArchiveUploadTimeout)
	defer cancel()

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		a.logger.Error(ctx, "Archive upload failed", err, map[string]interface{}{
			"bucket": a.cfg.Bucket,
			"key":    key,
		})
		return "", contextutils.WrapError(contextutils.ErrArchiveUploadFailed, err.Error())
	}

	a.logger.Info(ctx, "Feedback archived", map[string]interface{}{
		"bucket": a.cfg.Bucket,
		"key":    key,
	})
	return key, nil
}
