package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedbackapp/internal/config"
	contextutils "feedbackapp/internal/utils"
)

func newGeneratorTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *GeneratorServiceImpl) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := &config.GeneratorConfig{
		URL:       server.URL,
		Model:     "gpt-3.5-turbo",
		APIKey:    "test-key",
		MaxTokens: 300,
	}
	return server, NewGeneratorService(cfg, testLogger())
}

func completionResponse(content string) []byte {
	resp := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	}
	data, _ := json.Marshal(resp)
	return data
}

func TestGenerateSurveyInvite(t *testing.T) {
	var gotReq OpenAIRequest
	_, svc := newGeneratorTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write(completionResponse("Dear Jane, we would love your thoughts."))
	})

	body, err := svc.GenerateSurveyInvite(context.Background(), "Jane Doe", "Loan", "Main", "Amit")
	require.NoError(t, err)
	assert.Equal(t, "Dear Jane, we would love your thoughts.", body)

	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[0].Content, "customer service email generator")
	assert.Contains(t, gotReq.Messages[1].Content, "Jane Doe")
	assert.Contains(t, gotReq.Messages[1].Content, "Loan")
	assert.Equal(t, 300, gotReq.MaxTokens)
}

func TestSummarizeFeedback(t *testing.T) {
	var gotReq OpenAIRequest
	_, svc := newGeneratorTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write(completionResponse("Customer praised the branch staff."))
	})

	summary, err := svc.SummarizeFeedback(context.Background(), "Great service, very helpful staff!", 5)
	require.NoError(t, err)
	assert.Equal(t, "Customer praised the branch staff.", summary)

	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, "Rating: 5/5")
	assert.Equal(t, config.SummaryMaxTokens, gotReq.MaxTokens)
}

func TestSummarizeFeedback_ServerError(t *testing.T) {
	_, svc := newGeneratorTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := svc.SummarizeFeedback(context.Background(), "some feedback text here", 3)
	assert.True(t, contextutils.IsError(err, contextutils.ErrGeneratorRequestFailed))
}

func TestSummarizeFeedback_EmptyChoices(t *testing.T) {
	_, svc := newGeneratorTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := svc.SummarizeFeedback(context.Background(), "some feedback text here", 3)
	assert.True(t, contextutils.IsError(err, contextutils.ErrGeneratorResponseInvalid))
}

func TestChatCompletion_NoURLConfigured(t *testing.T) {
	svc := NewGeneratorService(&config.GeneratorConfig{Model: "gpt-3.5-turbo"}, testLogger())
	_, err := svc.SummarizeFeedback(context.Background(), "some feedback text here", 3)
	assert.True(t, contextutils.IsError(err, contextutils.ErrGeneratorUnavailable))
}

func TestFallbackSummary(t *testing.T) {
	assert.Equal(t, "Customer provided 2-star rating with feedback about their experience.", FallbackSummary(2))
}
