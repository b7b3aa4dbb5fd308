package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/adapter/repository"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/graph"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/queue"
	"github.com/johnquangdev/meeting-insights/internal/usecase/insights"
	"github.com/johnquangdev/meeting-insights/internal/usecase/pipeline"
	pkgai "github.com/johnquangdev/meeting-insights/pkg/ai"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	log.Println("🔧 Initializing worker dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	taskQueue := queue.NewRedisQueue(redisClient, logger)

	// Initialize repositories
	meetingRepo := repository.NewMeetingRepository(db)

	// Initialize graph store
	graphConn := graph.NewConnector(cfg.Neo4j, logger)
	defer graphConn.Close(context.Background())
	graphStore := graph.NewStore(graphConn, logger)
	if !graphStore.Configured() {
		log.Println("⚠️  Graph store not configured, meetings will not be synced to the graph")
	}

	// Initialize AI components
	log.Println("🤖 Initializing AI components...")
	asmClient := pkgai.NewAssemblyAIClient(&cfg.Assembly)
	groqClient := pkgai.NewGroqClient(&cfg.Groq)
	generator := insights.NewGenerator(groqClient, logger)

	// Initialize pipeline stages
	normalizer := pipeline.NewFFmpegNormalizer(cfg.Pipeline.FFmpegPath, cfg.Pipeline.FFmpegTimeout, logger)
	transcriber := pipeline.NewAssemblyAITranscriber(asmClient, &cfg.Assembly, logger)

	pipelineService := pipeline.NewService(
		meetingRepo,
		normalizer,
		transcriber,
		generator,
		graphStore,
		logger,
	)

	// Start the worker pool
	pool := pipeline.NewWorkerPool(taskQueue, pipelineService, cfg.Pipeline, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pool.Start(ctx); err != nil {
		log.Fatalf("Failed to start worker pool: %v", err)
	}
	log.Printf("👷 Worker pool started with %d workers", cfg.Pipeline.WorkerCount)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down worker pool...")
	cancel()
	pool.Stop()
	log.Println("✅ Worker pool stopped gracefully")
}
