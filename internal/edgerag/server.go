// Package edgerag provides the edge-rag server implementation.
package edgerag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/edge-rag/internal/edgerag/biz"
	"github.com/kart-io/edge-rag/internal/edgerag/handler"
	"github.com/kart-io/edge-rag/internal/edgerag/metrics"
	"github.com/kart-io/edge-rag/internal/edgerag/middleware"
	"github.com/kart-io/edge-rag/internal/edgerag/ratelimit"
	"github.com/kart-io/edge-rag/internal/edgerag/router"
	"github.com/kart-io/edge-rag/internal/edgerag/store"
	"github.com/kart-io/edge-rag/pkg/component/milvus"
	"github.com/kart-io/edge-rag/pkg/component/ollama"
	redisclient "github.com/kart-io/edge-rag/pkg/component/redis"
	corsopts "github.com/kart-io/edge-rag/pkg/options/cors"
	logopts "github.com/kart-io/edge-rag/pkg/options/logger"
	milvusopts "github.com/kart-io/edge-rag/pkg/options/milvus"
	ollamaopts "github.com/kart-io/edge-rag/pkg/options/ollama"
	ratelimitopts "github.com/kart-io/edge-rag/pkg/options/ratelimit"
	redisopts "github.com/kart-io/edge-rag/pkg/options/redis"
)

// Name is the name of the application.
const Name = "edge-rag"

// Config contains everything needed to build a Server.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	NotesPath       string

	LogOptions       *logopts.Options
	MilvusOptions    *milvusopts.Options
	RedisOptions     *redisopts.Options
	OllamaOptions    *ollamaopts.Options
	RateLimitOptions *ratelimitopts.Options
	CORSOptions      *corsopts.Options
}

// Server is the edge-rag HTTP server with its backing clients.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	milvusClose     func()
	redisClose      func()
}

// NewServer initializes all components and returns a runnable Server.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	if err := cfg.LogOptions.Init(Name); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting edge-rag service...")

	milvusClient, err := milvus.New(cfg.MilvusOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize milvus: %w", err)
	}
	if err := milvusClient.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to bootstrap collection: %w", err)
	}
	logger.Infow("Milvus client initialized",
		"collection", cfg.MilvusOptions.Collection,
		"dimension", cfg.MilvusOptions.Dimension,
	)

	redisClient, err := redisclient.NewWithContext(ctx, cfg.RedisOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Infow("Redis client initialized", "addr", cfg.RedisOptions.String())

	ollamaClient := ollama.New(cfg.OllamaOptions)
	if err := ollamaClient.Ping(ctx); err != nil {
		logger.Warnw("ollama not reachable at startup, requests will fail until it is",
			"base_url", cfg.OllamaOptions.BaseURL,
			"error", err.Error(),
		)
	}

	notesStore, err := store.NewNotesStore(cfg.NotesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notes store: %w", err)
	}

	m := metrics.New()
	vectorStore := store.NewMilvusStore(milvusClient)
	logStore := store.NewRedisLogStore(redisClient.Client())

	synth := biz.NewSynthesizer(ollamaClient, biz.SynthesizerConfig{
		PromptModel: cfg.OllamaOptions.PromptModel,
		AnswerModel: cfg.OllamaOptions.AnswerModel,
	}, m)

	svc := biz.NewService(
		ollamaClient,
		vectorStore,
		notesStore,
		synth,
		ollamaClient,
		biz.NewRequestLogger(logStore),
		m,
		biz.ServiceConfig{
			Dimension: cfg.MilvusOptions.Dimension,
			AskModel:  cfg.OllamaOptions.AnswerModel,
		},
	)
	logger.Info("Pipeline service initialized")

	patterns, err := cfg.CORSOptions.Compile()
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.CORS(patterns))

	var limitMW gin.HandlerFunc
	if cfg.RateLimitOptions.Enabled {
		limiter := ratelimit.New(
			ratelimit.NewRedisStore(redisClient.Client()),
			cfg.RateLimitOptions.MaxRequests,
			cfg.RateLimitOptions.Window,
		)
		limitMW = middleware.RateLimit(limiter, cfg.RateLimitOptions.KeyPrefix, m)
		logger.Infow("Rate limiter enabled",
			"max_requests", cfg.RateLimitOptions.MaxRequests,
			"window", cfg.RateLimitOptions.Window,
		)
	} else {
		logger.Warn("Rate limiter disabled")
	}

	router.Register(engine, handler.New(svc, m), limitMW)

	logger.Infow("edge-rag service is ready", "addr", cfg.Addr)
	return &Server{
		httpServer: &http.Server{
			Addr:    cfg.Addr,
			Handler: engine,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		milvusClose:     func() { _ = milvusClient.Close(context.Background()) },
		redisClose:      func() { _ = redisClient.Close() },
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		s.milvusClose()
		s.redisClose()
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down edge-rag service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("edge-rag service stopped")
	return nil
}
