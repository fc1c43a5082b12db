package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"stagecoach/internal/ai"
	"stagecoach/internal/analysis"
	"stagecoach/internal/config"
	"stagecoach/internal/database"
	"stagecoach/internal/media"
	"stagecoach/internal/metrics"
	"stagecoach/internal/pipeline"
	"stagecoach/internal/storage"
)

func main() {
	var (
		file        = flag.String("file", "", "Path to a local video file")
		title       = flag.String("title", "", "Performance title")
		userID      = flag.String("user", "", "User ID to attribute the performance to")
		methodology = flag.String("methodology", "stanislavski", "Acting methodology")
	)
	flag.Parse()

	if *file == "" || *userID == "" {
		log.Fatal("Both -file and -user are required")
	}
	if *title == "" {
		*title = filepath.Base(*file)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}
	if cfg.AIAPIKey == "" {
		log.Fatal("AI_API_KEY is required")
	}

	video, err := os.Open(*file)
	if err != nil {
		log.Fatal("Failed to open video:", err)
	}
	defer video.Close()

	stat, err := video.Stat()
	if err != nil {
		log.Fatal("Failed to stat video:", err)
	}

	db, err := database.NewDB(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	localStorage, err := storage.NewLocalStorage(cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

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

	pipe := pipeline.New(
		localStorage,
		frameExtractor,
		segmenter,
		analysis.NewOrchestrator(aiClient),
		database.NewPerformanceRepository(db),
		metrics.New(),
	)

	fmt.Printf("Analyzing %s (%d bytes)\n", *title, stat.Size())

	performance, err := pipe.Run(context.Background(), pipeline.Input{
		UserID:      *userID,
		Title:       *title,
		File:        video,
		Size:        stat.Size(),
		ContentType: "video/mp4",
		Methodology: analysis.Methodology(*methodology),
		OnProgress: func(stage pipeline.Stage, percent int) {
			fmt.Printf("  %s: %d%%\n", stage, percent)
		},
	})
	if err != nil {
		log.Fatal("Analysis failed:", err)
	}

	out, err := json.MarshalIndent(performance, "", "  ")
	if err != nil {
		log.Fatal("Failed to render result:", err)
	}
	fmt.Println(string(out))
}
