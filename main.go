package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"trustlens/internal/config"
	"trustlens/internal/embeddings"
	"trustlens/internal/inference"
	"trustlens/internal/model"
	"trustlens/internal/repository"
	"trustlens/internal/server"
	"trustlens/internal/service"
	"trustlens/internal/translator_client"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()
	log := logrus.New()

	// Load configuration
	cfgPath := "configs/config.yml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	service.SetJWTSecret([]byte(cfg.Auth.JWTSecret))

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// Artifact storage for model bundles
	store, err := model.NewFileStore(cfg.Models.Dir)
	if err != nil {
		logger.Fatal("Failed to initialize artifact store", zap.Error(err))
	}

	// Load (or bootstrap) the model bundle once; it is shared read-only
	// across all requests from here on.
	embCfg := embeddings.Config{
		Backend:   embeddings.Backend(cfg.Embeddings.Backend),
		ModelName: cfg.Embeddings.Model,
		Endpoint:  cfg.Embeddings.Endpoint,
	}
	bundle, err := model.Load(store, embCfg, logger)
	if err != nil {
		logger.Fatal("Failed to load model bundle", zap.Error(err))
	}
	logger.Info("Model bundle ready",
		zap.String("origin", string(bundle.Origin)),
		zap.Int("feature_width", bundle.FeatureWidth()))

	// Initialize translation service client (optional)
	var translator inference.Translator
	if cfg.Translator.Enabled {
		translator = translator_client.NewClient(cfg.Translator.URL, logger)
		logger.Info("Translation service enabled for non-English submissions")
	}

	// Initialize the inference orchestrator
	feedbackRepo := repository.NewFeedbackRepository(db, log)
	svc := inference.NewService(bundle, translator, store, feedbackRepo, embCfg, cfg.Inference.SampleBudget, logger)

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize and run the server
	srv := server.NewServer(db, cfg, svc, logger, log)
	go srv.Run(cfg.Server.Port)

	<-ctx.Done()
	logger.Info("Application stopped.")
}
