package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"vendorcover_backend/database"
	"vendorcover_backend/internal/ai"
	"vendorcover_backend/internal/config"
	"vendorcover_backend/internal/email"
	"vendorcover_backend/internal/handlers"
	"vendorcover_backend/internal/idempotency"
	"vendorcover_backend/internal/logger"
	"vendorcover_backend/internal/middleware"
	"vendorcover_backend/internal/models"
	"vendorcover_backend/internal/repositories"
	"vendorcover_backend/internal/routes"
	"vendorcover_backend/internal/services"
	"vendorcover_backend/internal/storage"
	"vendorcover_backend/internal/validator"
	"vendorcover_backend/internal/workers"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	// Фоновые воркеры живут до остановки процесса
	workerCtx := context.Background()
	workers.NewJobWorker(
		repositories.NewHelpRequestRepository(gormDB),
		repositories.NewNotificationRepository(gormDB),
	).Start(workerCtx)
	workers.NewSubscriptionWorker(gormDB).Start(workerCtx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	storageInstance, err := storage.NewStorage(storage.Config{
		BasePath: cfg.Storage.BasePath,
		BaseURL:  cfg.Storage.BaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}

	serviceContainer := initializeServices(cfg, gormDB, storageInstance)
	appHandlers := initializeHandlers(serviceContainer)

	ginRouter := initializeGinRouter()
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB, storageInstance storage.Storage) *services.ServiceContainer {
	var emailService email.Provider
	if cfg.Email.Enabled {
		emailService = email.NewSMTPProvider(&email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
	} else {
		logger.Warn("Email delivery disabled, using noop provider")
		emailService = &email.NoopProvider{}
	}

	idempotencyStore, err := idempotency.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err, "addr", cfg.Redis.Addr)
	}

	var riskAssessor ai.RiskAssessor
	if cfg.AI.Enabled {
		assessor, err := ai.NewGeminiAssessor(context.Background(), cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			logger.Warn("Risk assessor unavailable, profiles will not be scored", "error", err)
		} else {
			riskAssessor = assessor
		}
	}

	// --- Инициализация репозиториев ---
	userRepo := repositories.NewUserRepository(gormDB)
	profileRepo := repositories.NewVendorProfileRepository(gormDB)
	jobRepo := repositories.NewHelpRequestRepository(gormDB)
	appRepo := repositories.NewApplicationRepository(gormDB)
	agreementRepo := repositories.NewAgreementRepository(gormDB)
	notificationRepo := repositories.NewNotificationRepository(gormDB)
	chatRepo := repositories.NewChatRepository(gormDB)
	reviewRepo := repositories.NewReviewRepository(gormDB)
	supportRepo := repositories.NewSupportRepository(gormDB)

	// --- Инициализация сервисов ---
	notificationService := services.NewNotificationService(notificationRepo, userRepo, emailService)
	subscriptionService := services.NewSubscriptionService(userRepo)
	authService := services.NewAuthService(userRepo)
	profileService := services.NewProfileService(profileRepo, userRepo, riskAssessor, notificationService)
	agreementService := services.NewAgreementService(agreementRepo, notificationService)
	jobService := services.NewJobService(jobRepo, appRepo, agreementRepo, subscriptionService, agreementService, notificationService)
	applicationService := services.NewApplicationService(appRepo, jobRepo, userRepo, profileRepo, subscriptionService, agreementService, notificationService, idempotencyStore)
	chatService := services.NewChatService(chatRepo, jobRepo, appRepo)
	reviewService := services.NewReviewService(reviewRepo, jobRepo)
	supportService := services.NewSupportService(supportRepo, subscriptionService)

	return &services.ServiceContainer{
		AuthService:         authService,
		ProfileService:      profileService,
		JobService:          jobService,
		ApplicationService:  applicationService,
		AgreementService:    agreementService,
		SubscriptionService: subscriptionService,
		NotificationService: notificationService,
		ChatService:         chatService,
		ReviewService:       reviewService,
		SupportService:      supportService,
		EmailService:        emailService,
		Storage:             storageInstance,
	}
}

func initializeHandlers(services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	validator.RegisterGinRules()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, services.AuthService),
		ProfileHandler:      handlers.NewProfileHandler(baseHandler, services.ProfileService),
		JobHandler:          handlers.NewJobHandler(baseHandler, services.JobService),
		ApplicationHandler:  handlers.NewApplicationHandler(baseHandler, services.ApplicationService),
		AgreementHandler:    handlers.NewAgreementHandler(baseHandler, services.AgreementService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(baseHandler, services.SubscriptionService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, services.NotificationService),
		ChatHandler:         handlers.NewChatHandler(baseHandler, services.ChatService),
		ReviewHandler:       handlers.NewReviewHandler(baseHandler, services.ReviewService),
		SupportHandler:      handlers.NewSupportHandler(baseHandler, services.SupportService),
	}
}

func initializeGinRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.FirstAdminEmail
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var adminUser models.User
	result := db.Where("email = ?", adminEmail).First(&adminUser)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Email:        adminEmail,
		PasswordHash: string(hashedPassword),
		Name:         "Administrator",
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user in database: %w", err)
	}

	logger.Info("First admin user created", "email", adminEmail)
	return nil
}
