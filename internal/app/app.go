package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/samir1maity/fixy/internal/config"
	"github.com/samir1maity/fixy/internal/core"
	db "github.com/samir1maity/fixy/internal/core/database"
	"github.com/samir1maity/fixy/internal/core/embedding"
	"github.com/samir1maity/fixy/internal/core/llm"
	objectclient "github.com/samir1maity/fixy/internal/core/object-client"
	"github.com/samir1maity/fixy/internal/core/scraper"
	"github.com/samir1maity/fixy/internal/pipeline"
	"github.com/samir1maity/fixy/internal/services"
)

// App ties together the persistence, embedding, pipeline and HTTP layers.
type App struct {
	DBClient     core.DbClient
	Embedder     core.Embedder
	LLM          core.LLMProvider
	Orchestrator *pipeline.Orchestrator
	Server       *Server

	log *zap.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	initCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(initCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	log.Info("database initialized and ready")

	// Page snapshots are optional; without AWS credentials crawling simply
	// skips archival.
	var objClient core.ObjectClient
	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" && cfg.SnapshotBucket != "" {
		objClient, err = objectclient.NewS3Client(initCtx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init object client: %w", err)
		}
		log.Info("page snapshot archival enabled", zap.String("bucket", cfg.SnapshotBucket))
	} else {
		log.Info("page snapshot archival disabled")
	}

	embedder, err := embedding.NewONNXEmbedder(cfg.EmbedModelPath, cfg.EmbedModelName, cfg.EmbedDim, cfg.EmbedMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	log.Info("embedder ready",
		zap.String("model", embedder.ModelName()),
		zap.Int("dimensions", embedder.Dimensions()))

	llmProvider, err := llm.NewGeminiLLM(initCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("init llm: %w", err)
	}

	store := pipeline.NewContentStore(dbClient, objClient, cfg.SnapshotBucket, cfg.ChunkSize, log)
	crawler := scraper.NewCrawler(
		scraper.NewFetcher(0),
		store,
		scraper.Config{
			MaxDepth: cfg.CrawlMaxDepth,
			MaxPages: cfg.CrawlMaxPages,
			Delay:    cfg.CrawlDelay,
		},
		log,
	)
	processor := pipeline.NewProcessor(dbClient, embedder, log, cfg.EmbedBatchSize, time.Second)
	orch := pipeline.NewOrchestrator(dbClient, crawler, processor, log)
	orch.Start(ctx, cfg.Workers)

	websiteSvc := services.NewWebsiteService(dbClient, orch)
	chatSvc := services.NewChatService(
		dbClient,
		services.NewRetrievalService(dbClient, embedder),
		llmProvider,
		log,
	)

	server := NewServer(cfg, dbClient, websiteSvc, chatSvc, log)

	return &App{
		DBClient:     dbClient,
		Embedder:     embedder,
		LLM:          llmProvider,
		Orchestrator: orch,
		Server:       server,
		log:          log,
	}, nil
}

// Close releases resources after the workers have drained.
func (a *App) Close() {
	if err := a.Orchestrator.Wait(); err != nil {
		a.log.Warn("orchestrator shutdown", zap.Error(err))
	}
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
