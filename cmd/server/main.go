package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/behuman/cascade/internal/cache"
	"github.com/behuman/cascade/internal/config"
	"github.com/behuman/cascade/internal/graph"
	"github.com/behuman/cascade/internal/oracle"
	"github.com/behuman/cascade/internal/repository"
	"github.com/behuman/cascade/internal/service"
	"github.com/behuman/cascade/internal/transport/rest"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx := context.Background()
	cfg := config.Load()

	// AI config
	aiConfig := config.DefaultAIConfig()
	log.Infow("model configuration",
		"selector", aiConfig.Models.Selector,
		"dialogue", aiConfig.Models.Dialogue,
		"confidence", aiConfig.Models.Confidence,
		"analysis", aiConfig.Models.Analysis,
		"apiKeyConfigured", aiConfig.IsEnabled())
	if !aiConfig.IsEnabled() {
		log.Warn("GEMINI_API_KEY not set; selector, confidence, and analysis run on deterministic fallbacks")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalw("mongodb connect failed", "error", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatalw("mongodb ping failed", "error", err)
	}
	log.Infow("connected to mongodb", "database", cfg.MongoDB)

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalw("redis ping failed", "error", err)
	}
	log.Infow("connected to redis", "addr", cfg.RedisAddr)

	// Optional graph mirror
	mirror, err := graph.NewMirror(cfg, log)
	if err != nil {
		log.Fatalw("neo4j connect failed", "error", err)
	}
	if mirror != nil {
		defer mirror.Close(ctx)
		log.Infow("graph mirror enabled", "uri", cfg.Neo4jURI)
	} else {
		log.Info("graph mirror disabled (NEO4J_URI not set)")
	}

	// Repositories
	sessionRepo := repository.NewSessionRepo(db)
	catalogRepo := repository.NewCatalogRepo(db)
	invitationRepo := repository.NewInvitationRepo(db)

	// Caches
	sessionCache := cache.NewSessionCache(rdb)
	catalogCache := cache.NewCatalogCache(rdb)

	// Oracle client and AI-backed engines
	gen := oracle.NewClient(aiConfig)
	selector := service.NewQuestionSelector(gen, aiConfig, log)
	dialogue := service.NewDialogueEngine(gen, aiConfig, log)
	confidence := service.NewConfidenceScorer(gen, aiConfig, log)
	gate := service.NewAnalysisGate(gen, aiConfig, log)

	// Services
	authSvc := service.NewAuthService()
	invitationSvc := service.NewInvitationService(invitationRepo)
	sessionSvc := service.NewSessionService(
		sessionRepo, catalogRepo, invitationRepo,
		sessionCache, catalogCache,
		selector, dialogue, confidence, gate,
		log,
	)
	if mirror != nil {
		sessionSvc.SetMirror(mirror)
	}

	// Router
	container := &rest.Container{
		AuthService:       authSvc,
		SessionService:    sessionSvc,
		InvitationService: invitationSvc,
		Log:               log,
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Infow("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("listen and serve failed", "error", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
