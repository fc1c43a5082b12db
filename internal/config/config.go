package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries everything the binaries need, read from the environment
// with development defaults.
type Config struct {
	Port          string
	BaseURL       string
	MaxUploadSize int64
	UploadDir     string

	DBPath         string
	MigrationsPath string

	AIBaseURL string
	AIAPIKey  string
	AIModel   string

	StripeSecretKey string
	StripePriceID   string
	StripeReturnURL string

	FrameSize int
}

// Load reads the environment, after a best-effort .env load.
func Load() (*Config, error) {
	_ = godotenv.Load()

	maxSize, err := strconv.ParseInt(getenvDefault("MAX_UPLOAD_SIZE", "104857600"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_SIZE: %w", err)
	}

	frameSize, err := strconv.Atoi(getenvDefault("FRAME_SIZE", "512"))
	if err != nil {
		return nil, fmt.Errorf("invalid FRAME_SIZE: %w", err)
	}

	port := getenvDefault("PORT", "8080")

	return &Config{
		Port:          port,
		BaseURL:       getenvDefault("BASE_URL", "http://localhost:"+port),
		MaxUploadSize: maxSize,
		UploadDir:     getenvDefault("UPLOAD_DIR", "./uploads"),

		DBPath:         getenvDefault("DB_PATH", "./stagecoach.db"),
		MigrationsPath: getenvDefault("MIGRATIONS_PATH", "./migrations"),

		AIBaseURL: os.Getenv("AI_BASE_URL"),
		AIAPIKey:  os.Getenv("AI_API_KEY"),
		AIModel:   os.Getenv("AI_MODEL"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		StripePriceID:   getenvDefault("STRIPE_PRICE_ID", "price_pro_monthly"),
		StripeReturnURL: getenvDefault("STRIPE_RETURN_URL", "http://localhost:"+port+"/account"),

		FrameSize: frameSize,
	}, nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
