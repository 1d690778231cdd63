package config

import "time"

// Timeout constants
const (
	// HTTP timeouts
	GeneratorRequestTimeout = 30 * time.Second
	MailSendTimeout         = 15 * time.Second
	ArchiveUploadTimeout    = 30 * time.Second
	ServerShutdownTimeout   = 30 * time.Second

	// Database timeouts
	DatabaseConnMaxLifetime = 5 * time.Minute
)

// Rate limiting constants
const (
	// DefaultRateLimitPerMinute is the per-IP intake budget.
	DefaultRateLimitPerMinute = 10
	DefaultRateLimitBurst     = 10

	// RateLimiterIdleEviction is how long an idle client entry survives.
	RateLimiterIdleEviction = time.Hour
)

// Text generation constants
const (
	DefaultGeneratorMaxTokens = 300
	SummaryMaxTokens          = 100
)

// Archival constants
const (
	// DefaultArchivePrefix is the container/namespace for archived feedback documents.
	DefaultArchivePrefix = "feedback-data"
)

// Security configuration constants
const (
	// Content Security Policy
	DefaultCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:;"
)
