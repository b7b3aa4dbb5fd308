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

	"github.com/johnquangdev/meeting-insights/internal/adapter/handler"
	"github.com/johnquangdev/meeting-insights/internal/adapter/repository"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/graph"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/queue"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-insights/internal/usecase/insights"
	meetinguse "github.com/johnquangdev/meeting-insights/internal/usecase/meeting"
	pkgai "github.com/johnquangdev/meeting-insights/pkg/ai"
	"github.com/johnquangdev/meeting-insights/pkg/config"
	pkgvalidator "github.com/johnquangdev/meeting-insights/pkg/validator"
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

	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	log.Println("🔄 Running schema migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	taskQueue := queue.NewRedisQueue(redisClient, logger)

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	meetingRepo := repository.NewMeetingRepository(db)

	// Initialize graph store
	log.Println("🕸️  Initializing graph store...")
	graphConn := graph.NewConnector(cfg.Neo4j, logger)
	defer graphConn.Close(context.Background())
	graphStore := graph.NewStore(graphConn, logger)
	if !graphStore.Configured() {
		log.Println("⚠️  Graph store not configured, context reads fall back to the relational record")
	}

	// Initialize object storage for exported reports
	log.Println("🪣 Initializing object storage...")
	var reportStore meetinguse.ReportStore
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Printf("⚠️  Object storage unavailable, report export disabled: %v", err)
	} else {
		reportStore = minioClient
	}

	// Initialize language model client
	log.Println("🤖 Initializing language model client...")
	groqClient := pkgai.NewGroqClient(&cfg.Groq)
	generator := insights.NewGenerator(groqClient, logger)

	// Initialize meeting service and handlers
	log.Println("🚀 Initializing meeting service...")
	meetingService := meetinguse.NewService(
		meetingRepo,
		taskQueue,
		graphStore,
		generator,
		reportStore,
		cfg.Upload,
		logger,
	)
	meetingController := handler.NewMeetingController(meetingService, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	var graphPinger handler.Pinger
	if graphConn.Configured() {
		graphPinger = graphConn
	}
	var storagePinger handler.Pinger
	if minioClient != nil {
		storagePinger = minioClient
	}
	router := handler.NewRouter(cfg, meetingController, db, redisClient, graphPinger, storagePinger)
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
