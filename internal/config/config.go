package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	DocoutlineAPIKey string

	// Batch directories
	InputDir  string
	OutputDir string

	// Extraction
	MaxPages      int
	HeadingLevels int

	// PDF
	PDFEngine         string
	PDFFallbackStream bool

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Optional push of finished outlines to a collector.
	PushURL    string
	PushAPIKey string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8080"),

		DocoutlineAPIKey: os.Getenv("DOCOUTLINE_API_KEY"),

		InputDir:  envOr("INPUT_DIR", "input"),
		OutputDir: envOr("OUTPUT_DIR", "output"),

		MaxPages:      envInt("MAX_PAGES", 50),
		HeadingLevels: envInt("HEADING_LEVELS", 3),

		PDFEngine:         envOr("PDF_ENGINE", "layout"),
		PDFFallbackStream: envBool("PDF_FALLBACK_STREAM", true),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PushURL:    os.Getenv("PUSH_URL"),
		PushAPIKey: os.Getenv("PUSH_API_KEY"),
	}

	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	if cfg.HeadingLevels <= 0 {
		cfg.HeadingLevels = 3
	}
	if cfg.PDFEngine != "layout" && cfg.PDFEngine != "stream" {
		cfg.PDFEngine = "layout"
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DocoutlineAPIKey == "" {
		return fmt.Errorf("DOCOUTLINE_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
