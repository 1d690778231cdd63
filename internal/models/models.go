// Package models defines data structures used throughout the feedback application.
package models

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

// Sentiment is the coarse sentiment category derived from a star rating
type Sentiment string

// Sentiment categories
const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// SentimentForRating derives the sentiment category from a star rating.
// Ratings of 4 and above are positive, exactly 3 is neutral, 2 and below
// are negative.
func SentimentForRating(rating int) Sentiment {
	switch {
	case rating >= 4:
		return SentimentPositive
	case rating == 3:
		return SentimentNeutral
	default:
		return SentimentNegative
	}
}

// Customer represents one customer profile captured at intake
type Customer struct {
	ID           string         `json:"id" yaml:"id"`
	Name         string         `json:"name" yaml:"name"`
	Email        string         `json:"email" yaml:"email"`
	Phone        sql.NullString `json:"phone" yaml:"phone"`
	EmailConsent bool           `json:"email_consent" yaml:"email_consent"`
	Purpose      string         `json:"purpose_of_visit" yaml:"purpose_of_visit"`
	BranchID     string         `json:"branch_id" yaml:"branch_id"`
	BranchName   string         `json:"branch_name" yaml:"branch_name"`
	StaffName    string         `json:"staff_name" yaml:"staff_name"`
	CreatedAt    time.Time      `json:"created_at" yaml:"created_at"`
}

// MarshalJSON customizes JSON marshaling for Customer to handle sql.NullString properly
func (c Customer) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		Phone        *string   `json:"phone"`
		EmailConsent bool      `json:"email_consent"`
		Purpose      string    `json:"purpose_of_visit"`
		BranchID     string    `json:"branch_id"`
		BranchName   string    `json:"branch_name"`
		StaffName    string    `json:"staff_name"`
		CreatedAt    time.Time `json:"created_at"`
	}{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        nullStringToPointer(c.Phone),
		EmailConsent: c.EmailConsent,
		Purpose:      c.Purpose,
		BranchID:     c.BranchID,
		BranchName:   c.BranchName,
		StaffName:    c.StaffName,
		CreatedAt:    c.CreatedAt,
	})
}

// SurveyToken is a single-use capability granting access to one feedback form
type SurveyToken struct {
	Token      string    `json:"token" yaml:"token"`
	CustomerID string    `json:"customer_id" yaml:"customer_id"`
	Consumed   bool      `json:"consumed" yaml:"consumed"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// FeedbackRecord is one customer's rating and narrative plus derived fields.
// ArchivePath stays invalid until the archive step succeeds.
type FeedbackRecord struct {
	ID          string         `json:"id" yaml:"id"`
	CustomerID  string         `json:"customer_id" yaml:"customer_id"`
	Token       string         `json:"token" yaml:"token"`
	StarRating  int            `json:"star_rating" yaml:"star_rating"`
	Text        string         `json:"textual_feedback" yaml:"textual_feedback"`
	Sentiment   Sentiment      `json:"sentiment" yaml:"sentiment"`
	Summary     string         `json:"summary" yaml:"summary"`
	ArchivePath sql.NullString `json:"archive_path" yaml:"archive_path"`
	CreatedAt   time.Time      `json:"created_at" yaml:"created_at"`
}

// MarshalJSON customizes JSON marshaling for FeedbackRecord to handle sql.NullString properly
func (f FeedbackRecord) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID          string    `json:"id"`
		CustomerID  string    `json:"customer_id"`
		Token       string    `json:"token"`
		StarRating  int       `json:"star_rating"`
		Text        string    `json:"textual_feedback"`
		Sentiment   Sentiment `json:"sentiment"`
		Summary     string    `json:"summary"`
		ArchivePath *string   `json:"archive_path"`
		CreatedAt   time.Time `json:"created_at"`
	}{
		ID:          f.ID,
		CustomerID:  f.CustomerID,
		Token:       f.Token,
		StarRating:  f.StarRating,
		Text:        f.Text,
		Sentiment:   f.Sentiment,
		Summary:     f.Summary,
		ArchivePath: nullStringToPointer(f.ArchivePath),
		CreatedAt:   f.CreatedAt,
	})
}

func nullStringToPointer(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

// CreateCustomerRequest is the intake request body
type CreateCustomerRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=100"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"omitempty,min=10,max=15"`
	EmailConsent *bool  `json:"email_consent" binding:"required"`
	Purpose      string `json:"purpose_of_visit" binding:"required"`
	BranchID     string `json:"branch_id" binding:"required"`
	BranchName   string `json:"branch_name" binding:"required"`
	StaffName    string `json:"staff_name" binding:"required"`
}

// Trim strips surrounding whitespace from every text field so that length
// validation runs against what would actually be stored.
func (r *CreateCustomerRequest) Trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Purpose = strings.TrimSpace(r.Purpose)
	r.BranchID = strings.TrimSpace(r.BranchID)
	r.BranchName = strings.TrimSpace(r.BranchName)
	r.StaffName = strings.TrimSpace(r.StaffName)
}

// CreateCustomerResponse reports the intake outcome. SurveyToken and
// EmailSent are present only when the customer gave consent.
type CreateCustomerResponse struct {
	CustomerID  string `json:"customer_id"`
	SurveyToken string `json:"survey_token,omitempty"`
	EmailSent   *bool  `json:"email_sent,omitempty"`
	Message     string `json:"message"`
}

// SurveyFormData is the display payload for an unconsumed survey link
type SurveyFormData struct {
	CustomerName string `json:"customer_name"`
	Purpose      string `json:"purpose_of_visit"`
	BranchName   string `json:"branch_name"`
	Token        string `json:"token"`
	Message      string `json:"message"`
}

// SubmitFeedbackRequest is the submission request body
type SubmitFeedbackRequest struct {
	StarRating int    `json:"star_rating" binding:"required,min=1,max=5"`
	Text       string `json:"textual_feedback" binding:"required,min=10,max=500"`
}

// Trim strips surrounding whitespace from the narrative so that the minimum
// length applies to the real content and the stored text carries no padding.
func (r *SubmitFeedbackRequest) Trim() {
	r.Text = strings.TrimSpace(r.Text)
}

// SubmitFeedbackResponse reports the submission outcome. ArchivePath is
// empty when the archive step failed or the archiver is disabled.
type SubmitFeedbackResponse struct {
	FeedbackID  string `json:"feedback_id"`
	ArchivePath string `json:"azure_file_path"`
	Message     string `json:"message"`
}

// ArchivePayload is the combined customer+feedback document persisted to
// long-term object storage, one per submission
type ArchivePayload struct {
	FeedbackID  string    `json:"feedback_id"`
	Customer    Customer  `json:"customer"`
	StarRating  int       `json:"star_rating"`
	Text        string    `json:"textual_feedback"`
	Sentiment   Sentiment `json:"sentiment"`
	Summary     string    `json:"summary"`
	Token       string    `json:"token"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// FeedbackListPage is one page of stored feedback, newest first
type FeedbackListPage struct {
	Feedback []FeedbackRecord `json:"feedback"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}
