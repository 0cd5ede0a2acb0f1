package config

import (
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so ambient environment cannot
// leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DOCOUTLINE_API_KEY", "INPUT_DIR", "OUTPUT_DIR",
		"MAX_PAGES", "HEADING_LEVELS", "PDF_ENGINE", "PDF_FALLBACK_STREAM",
		"WORKER_COUNT", "MAX_QUEUE_SIZE", "MAX_UPLOAD_BYTES", "JOB_TTL",
		"PUSH_URL", "PUSH_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.InputDir != "input" || cfg.OutputDir != "output" {
		t.Errorf("expected input/output dirs, got %q/%q", cfg.InputDir, cfg.OutputDir)
	}
	if cfg.MaxPages != 50 {
		t.Errorf("expected max pages 50, got %d", cfg.MaxPages)
	}
	if cfg.HeadingLevels != 3 {
		t.Errorf("expected 3 heading levels, got %d", cfg.HeadingLevels)
	}
	if cfg.PDFEngine != "layout" || !cfg.PDFFallbackStream {
		t.Errorf("expected layout engine with fallback, got %q/%v", cfg.PDFEngine, cfg.PDFFallbackStream)
	}
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 {
		t.Errorf("expected 4 workers and queue 100, got %d/%d", cfg.WorkerCount, cfg.MaxQueueSize)
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("expected 50MB upload cap, got %d", cfg.MaxUploadBytes)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h job TTL, got %v", cfg.JobTTL)
	}
	if cfg.PushURL != "" || cfg.PushAPIKey != "" {
		t.Errorf("expected push disabled by default, got %q/%q", cfg.PushURL, cfg.PushAPIKey)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("INPUT_DIR", "/data/in")
	t.Setenv("OUTPUT_DIR", "/data/out")
	t.Setenv("MAX_PAGES", "10")
	t.Setenv("HEADING_LEVELS", "5")
	t.Setenv("PDF_ENGINE", "stream")
	t.Setenv("PDF_FALLBACK_STREAM", "false")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("JOB_TTL", "30m")
	t.Setenv("PUSH_URL", "http://collector.local")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.InputDir != "/data/in" || cfg.OutputDir != "/data/out" {
		t.Errorf("expected overridden dirs, got %q/%q", cfg.InputDir, cfg.OutputDir)
	}
	if cfg.MaxPages != 10 || cfg.HeadingLevels != 5 {
		t.Errorf("expected 10 pages / 5 levels, got %d/%d", cfg.MaxPages, cfg.HeadingLevels)
	}
	if cfg.PDFEngine != "stream" {
		t.Errorf("expected stream engine, got %q", cfg.PDFEngine)
	}
	if cfg.PDFFallbackStream {
		t.Error("expected fallback disabled")
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != 30*time.Minute {
		t.Errorf("expected 30m TTL, got %v", cfg.JobTTL)
	}
	if cfg.PushURL != "http://collector.local" {
		t.Errorf("expected push URL, got %q", cfg.PushURL)
	}
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_PAGES", "-3")
	t.Setenv("HEADING_LEVELS", "0")
	t.Setenv("PDF_ENGINE", "imaginary")
	t.Setenv("WORKER_COUNT", "lots")
	t.Setenv("JOB_TTL", "soon")
	t.Setenv("MAX_UPLOAD_BYTES", "-1")

	cfg := Load()
	if cfg.MaxPages != 50 {
		t.Errorf("expected negative max pages clamped to 50, got %d", cfg.MaxPages)
	}
	if cfg.HeadingLevels != 3 {
		t.Errorf("expected zero levels clamped to 3, got %d", cfg.HeadingLevels)
	}
	if cfg.PDFEngine != "layout" {
		t.Errorf("expected unknown engine to fall back to layout, got %q", cfg.PDFEngine)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected unparsable worker count to fall back to 4, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected unparsable TTL to fall back to 1h, got %v", cfg.JobTTL)
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("expected negative upload cap clamped, got %d", cfg.MaxUploadBytes)
	}
}

func TestValidate_RequiresAPIKey(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without API key")
	}

	t.Setenv("DOCOUTLINE_API_KEY", "secret")
	cfg = Load()
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
