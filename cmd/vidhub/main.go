package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/vidhub/internal/ai"
	"github.com/xxxsen/vidhub/internal/config"
	"github.com/xxxsen/vidhub/internal/db"
	"github.com/xxxsen/vidhub/internal/embedcache"
	"github.com/xxxsen/vidhub/internal/handler"
	"github.com/xxxsen/vidhub/internal/job"
	"github.com/xxxsen/vidhub/internal/middleware"
	"github.com/xxxsen/vidhub/internal/repo"
	"github.com/xxxsen/vidhub/internal/schedule"
	"github.com/xxxsen/vidhub/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "vidhub",
		Short: "vidhub search backend",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run vidhub server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("embed_model", cfg.AI.EmbedModel),
	)

	videoRepo := repo.NewVideoRepo(conn)
	tagRepo := repo.NewTagRepo(conn)
	chapterRepo := repo.NewChapterRepo(conn)
	transcriptRepo := repo.NewTranscriptRepo(conn)
	chunkRepo := repo.NewChunkRepo(conn)
	ftsRepo := repo.NewFTSRepo(conn)
	embedCacheRepo := repo.NewEmbeddingCacheRepo(conn)

	provider, err := ai.NewEmbedProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}
	embedder := ai.NewEmbedder(provider, cfg.AI.EmbedModel)
	embedder = embedcache.WrapDBCacheToEmbedder(embedder, embedCacheRepo)
	embedder = embedcache.WrapLruCacheToEmbedder(embedder,
		cfg.AI.EmbedCacheSize,
		time.Duration(cfg.AI.EmbedCacheTTLMinutes)*time.Minute,
	)

	embeddingService := service.NewEmbeddingService(embedder, chunkRepo, cfg.Search)
	relatedService := service.NewRelatedService(
		embeddingService,
		transcriptRepo,
		cfg.Search.RelatedCacheSize,
		time.Duration(cfg.Search.RelatedCacheTTLMinutes)*time.Minute,
	)
	searchService := service.NewSearchService(
		ftsRepo,
		videoRepo,
		embeddingService,
		videoRepo,
		tagRepo,
		chapterRepo,
		transcriptRepo,
		cfg.Search,
	)
	indexService := service.NewIndexService(
		videoRepo,
		transcriptRepo,
		tagRepo,
		embeddingService,
		ftsRepo,
		relatedService,
	)
	videoService := service.NewVideoService(videoRepo, videoRepo, tagRepo, chapterRepo)

	deps := handler.RouterDeps{
		Search: handler.NewSearchHandler(searchService),
		Videos: handler.NewVideoHandler(videoService, relatedService),
		Index:  handler.NewIndexHandler(indexService),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			middleware.RateLimit(time.Duration(cfg.RateLimitMs)*time.Millisecond),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	resyncJob := job.NewEmbeddingResyncJob(videoRepo, indexService, cfg.Jobs.EmbeddingResyncBatch)
	if err := scheduler.AddJob(resyncJob, cfg.Jobs.EmbeddingResyncSpec); err != nil {
		return fmt.Errorf("schedule resync job: %w", err)
	}
	cleanupJob := job.NewEmbeddingCacheCleanupJob(embedCacheRepo, cfg.AI.EmbedCacheMaxAgeDays)
	if err := scheduler.AddJob(cleanupJob, cfg.Jobs.CacheCleanupSpec); err != nil {
		return fmt.Errorf("schedule cleanup job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
