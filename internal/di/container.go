// Package di provides dependency injection container for managing service lifecycle and dependencies.
package di

import (
	"context"
	"database/sql"
	"sync"

	"feedbackapp/internal/config"
	"feedbackapp/internal/database"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/serviceinterfaces"
	"feedbackapp/internal/services"
	contextutils "feedbackapp/internal/utils"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetCustomerService() (serviceinterfaces.CustomerServiceInterface, error)
	GetTokenService() (serviceinterfaces.TokenServiceInterface, error)
	GetFeedbackService() (serviceinterfaces.FeedbackServiceInterface, error)
	GetGeneratorService() (serviceinterfaces.GeneratorService, error)
	GetEmailService() (serviceinterfaces.EmailService, error)
	GetArchiveService() (serviceinterfaces.ArchiveService, error)
	GetSurveyService() (*services.SurveyService, error)
	GetDatabase() *sql.DB
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	dbManager     *database.Manager
	db            *sql.DB
	services      map[string]interface{}
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger) *ServiceContainer {
	return &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		services: make(map[string]interface{}),
	}
}

// Initialize sets up all services and their dependencies
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Initialize database
	sc.dbManager = database.NewManager(sc.logger)
	db, err := sc.dbManager.InitDBWithConfig(sc.cfg.Database)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to initialize database")
	}
	sc.db = db
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
		return db.Close()
	})

	if err := sc.initializeServices(ctx); err != nil {
		_ = sc.cleanup(ctx)
		return contextutils.WrapErrorf(err, "failed to initialize services")
	}

	return nil
}

// GetService retrieves a service by name with type assertion
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetCustomerService returns the customer service
func (sc *ServiceContainer) GetCustomerService() (serviceinterfaces.CustomerServiceInterface, error) {
	return GetServiceAs[serviceinterfaces.CustomerServiceInterface](sc, "customer")
}

// GetTokenService returns the survey token service
func (sc *ServiceContainer) GetTokenService() (serviceinterfaces.TokenServiceInterface, error) {
	return GetServiceAs[serviceinterfaces.TokenServiceInterface](sc, "token")
}

// GetFeedbackService returns the feedback store service
func (sc *ServiceContainer) GetFeedbackService() (serviceinterfaces.FeedbackServiceInterface, error) {
	return GetServiceAs[serviceinterfaces.FeedbackServiceInterface](sc, "feedback")
}

// GetGeneratorService returns the text generator service
func (sc *ServiceContainer) GetGeneratorService() (serviceinterfaces.GeneratorService, error) {
	return GetServiceAs[serviceinterfaces.GeneratorService](sc, "generator")
}

// GetEmailService returns the email service
func (sc *ServiceContainer) GetEmailService() (serviceinterfaces.EmailService, error) {
	return GetServiceAs[serviceinterfaces.EmailService](sc, "email")
}

// GetArchiveService returns the archive service
func (sc *ServiceContainer) GetArchiveService() (serviceinterfaces.ArchiveService, error) {
	return GetServiceAs[serviceinterfaces.ArchiveService](sc, "archive")
}

// GetSurveyService returns the survey workflow service
func (sc *ServiceContainer) GetSurveyService() (*services.SurveyService, error) {
	service, err := sc.GetService("survey")
	if err != nil {
		return nil, err
	}
	surveyService, ok := service.(*services.SurveyService)
	if !ok {
		return nil, contextutils.ErrorWithContextf("survey service has incorrect type")
	}
	return surveyService, nil
}

// GetDatabase returns the database instance
func (sc *ServiceContainer) GetDatabase() *sql.DB {
	return sc.db
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.cleanup(ctx)
}

// cleanup handles shutdown of all services
func (sc *ServiceContainer) cleanup(ctx context.Context) error {
	var errors []error

	// Shutdown services in reverse order of initialization
	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return contextutils.ErrorWithContextf("shutdown errors: %v", errors)
	}
	return nil
}

// initializeServices sets up all service dependencies
func (sc *ServiceContainer) initializeServices(ctx context.Context) error {
	// Store services backed by the database
	customerService := services.NewCustomerService(sc.db, sc.logger)
	sc.services["customer"] = customerService

	tokenService := services.NewTokenService(sc.db, sc.logger)
	sc.services["token"] = tokenService

	feedbackService := services.NewFeedbackService(sc.db, sc.logger)
	sc.services["feedback"] = feedbackService

	// Outbound services
	generatorService := services.NewGeneratorService(&sc.cfg.Generator, sc.logger)
	sc.services["generator"] = generatorService

	emailService := services.NewEmailService(sc.cfg, sc.logger)
	sc.services["email"] = emailService

	archiveService, err := services.NewArchiveService(ctx, &sc.cfg.Archive, sc.logger)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to initialize archive service")
	}
	sc.services["archive"] = archiveService

	// Workflow service composed from the above
	surveyService := services.NewSurveyService(
		sc.cfg,
		customerService,
		tokenService,
		feedbackService,
		generatorService,
		emailService,
		archiveService,
		sc.logger,
	)
	sc.services["survey"] = surveyService

	return nil
}
