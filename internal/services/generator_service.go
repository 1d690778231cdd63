package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"feedbackapp/internal/config"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"
)

// Message represents one chat message in an OpenAI-compatible request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIRequest is the request body for an OpenAI-compatible chat completions call
type OpenAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// OpenAIResponse is the response body from an OpenAI-compatible chat completions call
type OpenAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

const inviteSystemPrompt = "You are a professional customer service email generator. " +
	"Do not include subject line in your response. Always end the email with 'Warm Regards,' " +
	"followed by the staff name and branch name on separate lines."

// GeneratorServiceImpl implements GeneratorService against an
// OpenAI-compatible chat completions endpoint.
type GeneratorServiceImpl struct {
	cfg        *config.GeneratorConfig
	httpClient *http.Client
	logger     *observability.Logger
}

// NewGeneratorService creates a new generator service with an instrumented HTTP client.
func NewGeneratorService(cfg *config.GeneratorConfig, logger *observability.Logger) *GeneratorServiceImpl {
	if logger == nil {
		panic("NewGeneratorService: logger is nil")
	}
	httpClient := &http.Client{
		Timeout: config.GeneratorRequestTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
		),
	}
	return &GeneratorServiceImpl{cfg: cfg, httpClient: httpClient, logger: logger}
}

// GenerateSurveyInvite composes a personalized survey invite email body.
func (s *GeneratorServiceImpl) GenerateSurveyInvite(ctx context.Context, customerName, purpose, branchName, staffName string) (result0 string, err error) {
	ctx, span := observability.TraceGeneratorFunction(ctx, "generate_survey_invite",
		attribute.String("generator.model", s.cfg.Model),
	)
	defer observability.FinishSpan(span, &err)

	userPrompt := fmt.Sprintf(`Generate a personalized survey email for:
Customer: %s
Purpose of visit: %s
Branch: %s
Staff Name: %s

Include a professional greeting, mention their specific visit purpose, and request feedback. Keep the email more in a funny way but professional.

Note:
- Don't write the subject line in the email
- End the email with exactly this format:
  Warm Regards,

  %s
  %s
- Keep the tone friendly and engaging`,
		customerName, purpose, branchName, staffName, staffName, branchName)

	messages := []Message{
		{Role: "system", Content: inviteSystemPrompt},
		{Role: "user", Content: userPrompt},
	}
	return s.chatCompletion(ctx, messages, s.cfg.MaxTokens)
}

// SummarizeFeedback produces a 1-2 sentence summary of submitted feedback.
// Callers absorb failures with a fallback string; this method only reports them.
func (s *GeneratorServiceImpl) SummarizeFeedback(ctx context.Context, text string, starRating int) (result0 string, err error) {
	ctx, span := observability.TraceGeneratorFunction(ctx, "summarize_feedback",
		observability.AttributeStarRating(starRating),
	)
	defer observability.FinishSpan(span, &err)

	prompt := fmt.Sprintf("Summarize this customer feedback in 1-2 sentences. Rating: %d/5. Feedback: %s", starRating, text)
	messages := []Message{{Role: "user", Content: prompt}}
	return s.chatCompletion(ctx, messages, config.SummaryMaxTokens)
}

// FallbackSummary is the deterministic substitute used when summarization fails.
func FallbackSummary(starRating int) string {
	return fmt.Sprintf("Customer provided %d-star rating with feedback about their experience.", starRating)
}

func (s *GeneratorServiceImpl) chatCompletion(ctx context.Context, messages []Message, maxTokens int) (result0 string, err error) {
	ctx, span := observability.TraceGeneratorFunction(ctx, "chat_completion",
		attribute.String("generator.model", s.cfg.Model),
		attribute.Int("generator.max_tokens", maxTokens),
	)
	defer observability.FinishSpan(span, &err)

	if s.cfg.URL == "" {
		span.SetAttributes(attribute.String("call.result", "no_url_configured"))
		return "", contextutils.WrapError(contextutils.ErrGeneratorUnavailable, "no base URL configured for text generator")
	}

	apiURL := strings.TrimSuffix(s.cfg.URL, "/") + "/chat/completions"

	reqBody := OpenAIRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", contextutils.WrapErrorf(err, "failed to marshal request body")
	}

	ctx, cancel := context.WithTimeout(ctx, config.GeneratorRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", contextutils.WrapErrorf(err, "failed to create HTTP request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "feedbackapp/1.0")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	startTime := time.Now()
	resp, err := s.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		span.SetAttributes(attribute.String("call.result", "http_request_failed"), attribute.String("duration", duration.String()))
		return "", contextutils.WrapErrorf(contextutils.ErrGeneratorRequestFailed, "HTTP request failed after %v: %v", duration, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close response body", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", contextutils.WrapErrorf(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		span.SetAttributes(attribute.String("call.result", "http_error"), attribute.Int("status_code", resp.StatusCode))
		return "", contextutils.WrapErrorf(contextutils.ErrGeneratorRequestFailed, "API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var openAIResp OpenAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrGeneratorResponseInvalid, "failed to parse response as JSON: %v", err)
	}
	if openAIResp.Error != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrGeneratorRequestFailed, "API error: %s", openAIResp.Error.Message)
	}
	if len(openAIResp.Choices) == 0 {
		return "", contextutils.WrapError(contextutils.ErrGeneratorResponseInvalid, "no choices in response")
	}

	content := openAIResp.Choices[0].Message.Content
	if content == "" {
		return "", contextutils.WrapError(contextutils.ErrGeneratorResponseInvalid, "generator returned empty content")
	}

	s.logger.Debug(ctx, "Generator request completed", map[string]interface{}{
		"duration":    duration.String(),
		"status_code": resp.StatusCode,
	})
	return strings.TrimSpace(content), nil
}
