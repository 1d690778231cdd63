package models

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentimentForRating(t *testing.T) {
	tests := []struct {
		rating   int
		expected Sentiment
	}{
		{1, SentimentNegative},
		{2, SentimentNegative},
		{3, SentimentNeutral},
		{4, SentimentPositive},
		{5, SentimentPositive},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SentimentForRating(tt.rating), "rating %d", tt.rating)
	}
}

func TestCustomerMarshalJSON_NullPhone(t *testing.T) {
	c := Customer{
		ID:           "42",
		Name:         "Jane Doe",
		Email:        "jane@example.com",
		EmailConsent: true,
		Purpose:      "Loan",
		BranchID:     "B1",
		BranchName:   "Main",
		StaffName:    "Amit",
		CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Nil(t, out["phone"])
	assert.Equal(t, "Jane Doe", out["name"])
	assert.Equal(t, true, out["email_consent"])
}

func TestCustomerMarshalJSON_WithPhone(t *testing.T) {
	c := Customer{
		ID:    "42",
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Phone: sql.NullString{String: "5551234567", Valid: true},
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "5551234567", out["phone"])
}

func TestFeedbackRecordMarshalJSON_ArchivePath(t *testing.T) {
	f := FeedbackRecord{
		ID:         "7",
		CustomerID: "42",
		Token:      "tok",
		StarRating: 5,
		Text:       "Great service, very helpful staff!",
		Sentiment:  SentimentPositive,
		Summary:    "Customer was happy.",
	}

	data, err := json.Marshal(f)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Nil(t, out["archive_path"], "archive path should be null until the archive step succeeds")

	f.ArchivePath = sql.NullString{String: "feedback-data/feedback_42_20250601_120000.json", Valid: true}
	data, err = json.Marshal(f)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "feedback-data/feedback_42_20250601_120000.json", out["archive_path"])
}
