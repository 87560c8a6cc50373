package app

import (
	"doacin/config"
	"doacin/internal/auth"
	"doacin/internal/conecta"
	"doacin/internal/database"
	"doacin/internal/handlers/middleware"
	"doacin/internal/logger"
	"doacin/internal/repositories"
	"doacin/internal/services"
	"doacin/internal/websockets"

	authController "doacin/internal/controllers/auth"
	campaignController "doacin/internal/controllers/campaigns"
	dashboardController "doacin/internal/controllers/dashboard"
	donationController "doacin/internal/controllers/donations"
	quizController "doacin/internal/controllers/quiz"
	userController "doacin/internal/controllers/users"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	Conecta    *conecta.Client
	Tokens     *auth.TokenManager
	Config     config.Config

	// Services
	TransactionService       *services.TransactionService
	CacheInvalidationService *services.CacheInvalidationService

	// Repositories
	UserRepo            repositories.UserRepository
	DonationRepo        repositories.DonationRepository
	CollectionPointRepo repositories.CollectionPointRepository
	DashboardRepo       repositories.DashboardRepository
	QuizAttemptRepo     repositories.QuizAttemptRepository

	// Controllers
	AuthController      *authController.AuthController
	UserController      *userController.UserController
	DashboardController *dashboardController.DashboardController
	DonationController  *donationController.DonationController
	CampaignController  *campaignController.CampaignController
	QuizController      *quizController.QuizController
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	return NewWithConfig(config)
}

// NewWithConfig wires the application around an already loaded config.
// The database schema is expected to be migrated.
func NewWithConfig(config config.Config) (*App, error) {
	log := logger.New("app").Function("NewWithConfig")

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	// Initialize services
	transactionService := services.NewTransactionService(db)
	cacheInvalidationService := services.NewCacheInvalidationService(db)

	// Initialize repositories
	userRepo := repositories.New(db)
	donationRepo := repositories.NewDonation(db)
	collectionPointRepo := repositories.NewCollectionPoint(db, config.CacheTTL)
	dashboardRepo := repositories.NewDashboard(db, config.CacheTTL)
	quizAttemptRepo := repositories.NewQuizAttempt(db)

	websocket, err := websockets.New(config)
	if err != nil {
		_ = db.Close()
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	conectaClient := conecta.New(config)
	if conectaClient == nil {
		log.Info("conecta integration disabled")
	}

	tokens := auth.NewTokenManager(config.JWTSecret, config.JWTExpiry)

	// Initialize controllers with repositories and services
	authController := authController.New(userRepo, tokens)
	userController := userController.New(userRepo, conectaClient, cacheInvalidationService, websocket)
	dashboardController := dashboardController.New(userRepo, donationRepo, dashboardRepo)
	donationController := donationController.New(
		donationRepo,
		collectionPointRepo,
		transactionService,
		cacheInvalidationService,
		websocket,
		conectaClient,
		config,
	)
	campaignController := campaignController.New(collectionPointRepo, cacheInvalidationService)
	quizController := quizController.New(quizAttemptRepo)

	middleware := middleware.New(authController)

	app := &App{
		Database:                 db,
		Config:                   config,
		Middleware:               middleware,
		Websocket:                websocket,
		Conecta:                  conectaClient,
		Tokens:                   tokens,
		TransactionService:       transactionService,
		CacheInvalidationService: cacheInvalidationService,
		UserRepo:                 userRepo,
		DonationRepo:             donationRepo,
		CollectionPointRepo:      collectionPointRepo,
		DashboardRepo:            dashboardRepo,
		QuizAttemptRepo:          quizAttemptRepo,
		AuthController:           authController,
		UserController:           userController,
		DashboardController:      dashboardController,
		DonationController:       donationController,
		CampaignController:       campaignController,
		QuizController:           quizController,
	}

	if err := app.validate(); err != nil {
		_ = app.Close()
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
		a.Tokens,
		a.TransactionService,
		a.CacheInvalidationService,
		a.UserRepo,
		a.DonationRepo,
		a.CollectionPointRepo,
		a.DashboardRepo,
		a.QuizAttemptRepo,
		a.AuthController,
		a.UserController,
		a.DashboardController,
		a.DonationController,
		a.CampaignController,
		a.QuizController,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

// Close waits for background Conecta check-ins, then closes websockets
// and the database.
func (a *App) Close() (err error) {
	if a.DonationController != nil {
		a.DonationController.Wait()
	}

	if a.Websocket != nil {
		if closeErr := a.Websocket.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
