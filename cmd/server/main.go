package main

import (
	"log"
	"net/http"

	"stagecoach/internal/ai"
	"stagecoach/internal/analysis"
	"stagecoach/internal/api"
	"stagecoach/internal/config"
	"stagecoach/internal/database"
	"stagecoach/internal/media"
	"stagecoach/internal/metrics"
	"stagecoach/internal/payments"
	"stagecoach/internal/pipeline"
	"stagecoach/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	if cfg.AIAPIKey == "" {
		log.Fatal("AI_API_KEY is required")
	}

	localStorage, err := storage.NewLocalStorage(cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	db, err := database.NewDB(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	log.Printf("Running database migrations from %s", cfg.MigrationsPath)
	migrator := database.NewMigrator(db.Conn())
	if err := migrator.Run(cfg.MigrationsPath); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	userRepo := database.NewUserRepository(db)
	performanceRepo := database.NewPerformanceRepository(db)

	frameExtractor, err := media.NewExtractor(cfg.FrameSize)
	if err != nil {
		log.Fatal("Failed to initialize frame extractor:", err)
	}
	defer frameExtractor.Cleanup()

	segmenter, err := media.NewSegmenter()
	if err != nil {
		log.Fatal("Failed to initialize audio segmenter:", err)
	}
	defer segmenter.Cleanup()

	aiClient := ai.NewClient(ai.Config{
		BaseURL: cfg.AIBaseURL,
		APIKey:  cfg.AIAPIKey,
		Model:   cfg.AIModel,
	})
	orchestrator := analysis.NewOrchestrator(aiClient)

	m := metrics.New()
	pipe := pipeline.New(localStorage, frameExtractor, segmenter, orchestrator, performanceRepo, m)

	app := &api.App{
		Storage:       localStorage,
		Users:         userRepo,
		Performances:  performanceRepo,
		Pipeline:      pipe,
		Chat:          aiClient,
		Checkout:      payments.NewClient(payments.Config{SecretKey: cfg.StripeSecretKey}),
		PriceID:       cfg.StripePriceID,
		ReturnURL:     cfg.StripeReturnURL,
		MaxUploadSize: cfg.MaxUploadSize,
	}

	router := api.NewRouter(app, m.Handler())

	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("Upload directory: %s", cfg.UploadDir)
	log.Printf("Database path: %s", cfg.DBPath)
	log.Printf("Max upload size: %d bytes", cfg.MaxUploadSize)

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
