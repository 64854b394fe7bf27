package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/mabel-app/mabel-backend/pkg/validator"

	"github.com/mabel-app/mabel-backend/internal/adapter/handler"
	"github.com/mabel-app/mabel-backend/internal/adapter/repository"
	"github.com/mabel-app/mabel-backend/internal/infrastructure/cache"
	"github.com/mabel-app/mabel-backend/internal/infrastructure/database"
	"github.com/mabel-app/mabel-backend/internal/infrastructure/storage"
	"github.com/mabel-app/mabel-backend/internal/usecase/auth"
	"github.com/mabel-app/mabel-backend/internal/usecase/dispatch"
	"github.com/mabel-app/mabel-backend/internal/usecase/jobs"
	"github.com/mabel-app/mabel-backend/internal/usecase/lifecycle"
	"github.com/mabel-app/mabel-backend/internal/usecase/project"
	pkgai "github.com/mabel-app/mabel-backend/pkg/ai"
	"github.com/mabel-app/mabel-backend/pkg/config"
	"github.com/mabel-app/mabel-backend/pkg/jwt"
	"github.com/mabel-app/mabel-backend/pkg/pdf"
)

// @title           Mabel API
// @version         1.0
// @description     API for the Mabel memoir builder: interview questions, audio transcription, chapter generation and PDF export

// @contact.name   API Support
// @contact.email  support@mabel.app

// @host      localhost:8080
// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run migrations only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("DB_AUTO_MIGRATE is enabled in production. Manage schema with sql-migrate instead.")
		}
		log.Println("🔄 Running SQL migrations (development only) ...")
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.CloseRedis(redisClient)

	// Initialize object storage
	log.Println("🗄️  Connecting to object storage...")
	store, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	jobRepo := repository.NewJobRepository(db)

	// Initialize AI providers
	log.Println("🤖 Initializing AI providers...")
	var gateway pkgai.Gateway
	var transcriber pkgai.Transcriber
	if cfg.UseMockAI() {
		log.Println("⚠️  AI running in MOCK mode (no provider keys needed)")
		mock := pkgai.NewMockGateway()
		gateway = mock
		transcriber = mock
	} else {
		gateway = pkgai.NewOpenAIClient(&cfg.AI)
		transcriber = pkgai.NewAssemblyAIClient(&cfg.Assembly)
	}

	// Initialize JWT manager
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize services
	log.Println("✨ Initializing services...")
	authService := auth.NewService(userRepo, jwtManager, logger)
	projectService := project.NewService(projectRepo, logger)
	tracker := jobs.NewTracker(jobRepo, logger)

	dispatcher := dispatch.NewDispatcher(redisClient, "", logger)
	lifecycleService := lifecycle.NewService(
		projectRepo,
		moduleRepo,
		questionRepo,
		chapterRepo,
		tracker,
		dispatcher,
		gateway,
		transcriber,
		store,
		pdf.NewRenderer(),
		logger,
	)

	// Start stream consumers after the handlers are registered
	log.Println("📨 Starting event consumers...")
	if err := dispatcher.Start(context.Background(), 0); err != nil {
		log.Fatalf("Failed to start event consumers: %v", err)
	}

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	authHandler := handler.NewAuth(authService, logger)
	projectHandler := handler.NewProject(projectService, lifecycleService, logger)
	moduleHandler := handler.NewModule(lifecycleService, logger)
	questionHandler := handler.NewQuestion(lifecycleService, logger)
	jobHandler := handler.NewJob(tracker, projectService, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, jwtManager, authHandler, projectHandler, moduleHandler, questionHandler, jobHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := dispatcher.Stop(); err != nil {
		log.Printf("⚠️  Event consumers did not stop cleanly: %v", err)
	}

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
