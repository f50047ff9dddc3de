package app

import (
	"formsentry/config"
	"formsentry/internal/adapters"
	"formsentry/internal/database"
	"formsentry/internal/events"
	"formsentry/internal/handlers/middleware"
	"formsentry/internal/logger"
	"formsentry/internal/repositories"
	"formsentry/internal/services"
	"formsentry/internal/websockets"

	captureController "formsentry/internal/controllers/capture"
	formsController "formsentry/internal/controllers/forms"
	sessionController "formsentry/internal/controllers/session"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Registry   *adapters.Registry
	Config     config.Config

	// Services
	TransactionService *services.TransactionService
	IdentityService    *services.IdentityService
	TokenService       *services.TokenService
	CleanupService     *services.CleanupService
	SweepService       *services.SweepService
	MetricsService     *services.MetricsService

	// Repositories
	SessionRepo  repositories.SessionRepository
	EntryRepo    repositories.EntryRepository
	SettingsRepo repositories.SettingsRepository

	// Controllers
	SessionController *sessionController.SessionController
	CaptureController *captureController.CaptureController
	FormsController   *formsController.FormsController
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New()
	registry := adapters.DefaultRegistry(db)

	// Initialize services
	metricsService := services.NewMetricsService()
	transactionService := services.NewTransactionService(db)
	controlPlane := services.NewControlPlaneClient(config)
	identityService := services.NewIdentityService(db, controlPlane, metricsService, config)
	tokenService := services.NewTokenService(db, controlPlane, config)

	// Initialize repositories
	sessionRepo := repositories.NewSession(db)
	entryRepo := repositories.NewEntry(db)
	settingsRepo := repositories.NewSettings(db)

	cleanupService := services.NewCleanupService(sessionRepo, db.Cache.Forms)
	sweepService := services.NewSweepService(sessionRepo, metricsService, config)

	// Initialize controllers with repositories and services
	sessionCtrl := sessionController.New(sessionRepo, settingsRepo, metricsService, eventBus, config)
	captureCtrl := captureController.New(
		registry, entryRepo, cleanupService, transactionService, metricsService, eventBus)
	formsCtrl := formsController.New(entryRepo, registry, db)

	middleware := middleware.New(db, identityService, tokenService, sessionCtrl, config)

	websocket, err := websockets.New(eventBus, config)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	app := &App{
		Database:           db,
		Config:             config,
		Middleware:         middleware,
		Websocket:          websocket,
		EventBus:           eventBus,
		Registry:           registry,
		TransactionService: transactionService,
		IdentityService:    identityService,
		TokenService:       tokenService,
		CleanupService:     cleanupService,
		SweepService:       sweepService,
		MetricsService:     metricsService,
		SessionRepo:        sessionRepo,
		EntryRepo:          entryRepo,
		SettingsRepo:       settingsRepo,
		SessionController:  sessionCtrl,
		CaptureController:  captureCtrl,
		FormsController:    formsCtrl,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Registry,
		a.TransactionService,
		a.IdentityService,
		a.TokenService,
		a.CleanupService,
		a.SweepService,
		a.MetricsService,
		a.SessionRepo,
		a.EntryRepo,
		a.SettingsRepo,
		a.SessionController,
		a.CaptureController,
		a.FormsController,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.SweepService != nil {
		a.SweepService.Stop()
	}

	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
