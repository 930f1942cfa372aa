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

	pkgvalidator "github.com/meetwise-team/meetwise/pkg/validator"

	"github.com/meetwise-team/meetwise/internal/adapter/handler"
	"github.com/meetwise-team/meetwise/internal/adapter/repository"
	"github.com/meetwise-team/meetwise/internal/domain/repositories"
	"github.com/meetwise-team/meetwise/internal/infrastructure/database"
	"github.com/meetwise-team/meetwise/internal/infrastructure/metrics"
	"github.com/meetwise-team/meetwise/internal/infrastructure/similarity"
	"github.com/meetwise-team/meetwise/internal/usecase/contextsel"
	"github.com/meetwise-team/meetwise/internal/usecase/extraction"
	meetinguse "github.com/meetwise-team/meetwise/internal/usecase/meeting"
	"github.com/meetwise-team/meetwise/internal/usecase/owner"
	"github.com/meetwise-team/meetwise/internal/usecase/review"
	"github.com/meetwise-team/meetwise/pkg/config"
	"github.com/meetwise-team/meetwise/pkg/llm"
)

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

	// Configure Echo
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
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, handler.ActorHeader},
		AllowCredentials: true,
	}))

	// Initialize dependencies
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

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running GORM AutoMigrate (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("🔄 Skipping GORM AutoMigrate; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize metrics sink
	log.Println("📦 Connecting to Redis...")
	var sink repositories.MetricsSink
	redisSink, err := metrics.NewRedisSink(cfg, logger)
	if err != nil {
		log.Printf("⚠️  Redis unavailable, model telemetry disabled: %v", err)
		sink = metrics.NoopSink{}
	} else {
		defer redisSink.Close()
		sink = redisSink
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	meetingRepo := repository.NewMeetingRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	changeSetRepo := repository.NewChangeSetRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Initialize model providers. Groq serves the primary and repair models,
	// Gemini serves transport failover and embeddings.
	log.Println("🤖 Initializing model providers...")
	var providers []llm.Provider
	if cfg.Groq.APIKey != "" {
		providers = append(providers, llm.NewGroqClient(&cfg.Groq, cfg.Groq.Model))
	}
	if cfg.Gemini.APIKey != "" {
		geminiClient, err := llm.NewGeminiClient(&cfg.Gemini)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		providers = append(providers, geminiClient)
	}
	if len(providers) == 0 {
		log.Fatalf("No model provider configured")
	}

	var repair llm.Provider
	if cfg.Groq.APIKey != "" {
		repair = llm.NewGroqClient(&cfg.Groq, cfg.Groq.RepairModel)
	} else {
		repair = providers[0]
	}

	// Initialize similarity index
	log.Println("🧭 Initializing similarity index...")
	embedder, err := llm.NewGeminiEmbedder(&cfg.Gemini)
	if err != nil {
		log.Fatalf("Failed to initialize embedder: %v", err)
	}
	index, err := similarity.NewChromemIndex(embedder, cfg.Pipeline.VectorStorePath, cfg.Pipeline.EmbeddingCacheTTL, logger)
	if err != nil {
		log.Fatalf("Failed to open similarity index: %v", err)
	}

	// Initialize pipeline services
	log.Println("✨ Initializing pipeline services...")
	selector := contextsel.NewSelector(recordRepo, index, &cfg.Pipeline, logger)
	engine := extraction.NewEngine(providers, repair, sink, logger)
	resolver := owner.NewResolver(rosterRepo, &cfg.Pipeline, logger)
	assembler := review.NewAssembler(index, logger)

	reviewService := review.NewService(
		meetingRepo,
		changeSetRepo,
		recordRepo,
		auditRepo,
		index,
		selector,
		engine,
		resolver,
		assembler,
		&cfg.Pipeline,
		logger,
	)
	meetingService := meetinguse.NewService(meetingRepo, logger)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	meetingHandler := handler.NewMeeting(meetingService, reviewService, logger)
	reviewHandler := handler.NewReview(reviewService, recordRepo, logger)
	log.Println("✅ Handlers initialized successfully")

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, meetingHandler, reviewHandler)
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

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
