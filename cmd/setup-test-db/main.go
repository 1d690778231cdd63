// Package main provides a utility to set up the test database with initial data.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"feedbackapp/internal/config"
	"feedbackapp/internal/database"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// TestCustomer represents a customer in the test data file
type TestCustomer struct {
	Name         string `yaml:"name"`
	Email        string `yaml:"email"`
	Phone        string `yaml:"phone"`
	EmailConsent bool   `yaml:"email_consent"`
	Purpose      string `yaml:"purpose"`
	BranchID     string `yaml:"branch_id"`
	BranchName   string `yaml:"branch_name"`
	StaffName    string `yaml:"staff_name"`

	// Feedback, when present, is submitted against a consumed token
	Feedback *TestFeedback `yaml:"feedback"`
}

// TestFeedback represents a submitted feedback row in the test data file
type TestFeedback struct {
	StarRating int    `yaml:"star_rating"`
	Text       string `yaml:"text"`
	Summary    string `yaml:"summary"`
}

// TestData represents the test data file
type TestData struct {
	Customers []TestCustomer `yaml:"customers"`
}

func main() {
	ctx := context.Background()

	verbose := flag.Bool("verbose", false, "enable info-level logging")
	dataFile := flag.String("data", "test-data.yaml", "path to the YAML test data file")
	flag.Parse()

	// Load configuration first
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false

	logLevel := zapcore.WarnLevel
	if *verbose {
		logLevel = zapcore.InfoLevel
	}
	logger := observability.NewLoggerWithLevel(&cfg.OpenTelemetry, logLevel)

	// Allow override from TEST_DATABASE_URL
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		databaseURL = cfg.Database.URL
	}
	if databaseURL == "" {
		fmt.Fprintln(os.Stderr, "No database URL configured; set TEST_DATABASE_URL or the config file")
		os.Exit(1)
	}

	logger.Info(ctx, "Using database URL", map[string]interface{}{"database_url": databaseURL})

	dbCfg := cfg.Database
	dbCfg.URL = databaseURL

	dbManager := database.NewManager(logger)
	db, err := dbManager.InitDBWithConfig(dbCfg)
	if err != nil {
		logger.Error(ctx, "Failed to initialize test database", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "Failed to close database connection", map[string]interface{}{"error": err.Error()})
		}
	}()

	data, err := loadTestData(*dataFile)
	if err != nil {
		logger.Error(ctx, "Failed to load test data", err, map[string]interface{}{"file": *dataFile})
		os.Exit(1)
	}

	if err := seedTestData(ctx, db, data, logger); err != nil {
		logger.Error(ctx, "Failed to seed test data", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d customers from %s\n", len(data.Customers), *dataFile)
}

// loadTestData reads and parses the YAML test data file
func loadTestData(path string) (*TestData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to read test data file %s", path)
	}

	var data TestData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to parse test data file %s", path)
	}
	return &data, nil
}

// seedTestData inserts the customers, their tokens, and any feedback rows
func seedTestData(ctx context.Context, db *sql.DB, data *TestData, logger *observability.Logger) error {
	for i := range data.Customers {
		tc := &data.Customers[i]

		var customerID int64
		phone := sql.NullString{String: tc.Phone, Valid: tc.Phone != ""}
		err := db.QueryRowContext(ctx, `
			INSERT INTO customers (name, email, phone, email_consent, purpose_of_visit, branch_id, branch_name, staff_name)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			tc.Name, tc.Email, phone, tc.EmailConsent, tc.Purpose, tc.BranchID, tc.BranchName, tc.StaffName,
		).Scan(&customerID)
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to insert customer %s", tc.Email)
		}

		if !tc.EmailConsent {
			continue
		}

		token := uuid.NewString()
		consumed := tc.Feedback != nil
		if _, err := db.ExecContext(ctx, `
			INSERT INTO survey_tokens (token, customer_id, consumed)
			VALUES ($1, $2, $3)`,
			token, customerID, consumed,
		); err != nil {
			return contextutils.WrapErrorf(err, "failed to insert token for customer %s", tc.Email)
		}

		if tc.Feedback == nil {
			continue
		}

		sentiment := models.SentimentForRating(tc.Feedback.StarRating)
		if _, err := db.ExecContext(ctx, `
			INSERT INTO feedback (customer_id, token, star_rating, textual_feedback, sentiment, summary)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			customerID, token, tc.Feedback.StarRating, tc.Feedback.Text, string(sentiment), tc.Feedback.Summary,
		); err != nil {
			return contextutils.WrapErrorf(err, "failed to insert feedback for customer %s", tc.Email)
		}

		logger.Info(ctx, "Seeded customer with feedback", map[string]interface{}{
			"customer_id": customerID,
			"star_rating": tc.Feedback.StarRating,
			"sentiment":   string(sentiment),
		})
	}

	return nil
}
