package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/source"
	"github.com/dgallion1/docoutline/internal/stats"
)

// RunBatch extracts an outline from every supported document in
// cfg.InputDir and delivers one result per document, by default as JSON
// files under cfg.OutputDir. Individual documents may fail; the run keeps
// going and reports totals at the end.
func RunBatch(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	start := time.Now()

	if _, err := os.Stat(cfg.InputDir); os.IsNotExist(err) {
		if mkErr := os.MkdirAll(cfg.InputDir, 0o755); mkErr != nil {
			return fmt.Errorf("create input dir: %w", mkErr)
		}
		log.Info("created input directory, add documents and rerun", "dir", cfg.InputDir)
		return nil
	}

	names, err := listSupported(cfg.InputDir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		log.Info("no supported documents found", "dir", cfg.InputDir)
		return nil
	}

	if err := clearDir(cfg.OutputDir); err != nil {
		return fmt.Errorf("clear output dir: %w", err)
	}

	registry := NewSourceRegistry(cfg)
	sinks, closeSinks := NewSinks(cfg)
	defer closeSinks()
	tracker := stats.NewTracker(0)

	log.Info("starting batch run", "documents", len(names), "workers", cfg.WorkerCount)

	queue := make(chan *Job)
	var wg sync.WaitGroup
	for range cfg.WorkerCount {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := NewWorker(registry, sinks, tracker, log, cfg.MaxPages, cfg.HeadingLevels)
			for job := range queue {
				w.Process(ctx, job)
			}
		}()
	}

	batch := make([]*Job, 0, len(names))
	for _, name := range names {
		job := NewJob(name)
		batch = append(batch, job)
		data, err := os.ReadFile(filepath.Join(cfg.InputDir, name))
		if err != nil {
			log.Error("read failed", "file", name, "error", err)
			job.AddError(err.Error())
			job.SetStatus(StatusFailed, "reading")
			tracker.RecordFailure()
			continue
		}
		job.SetFileData(data)
		queue <- job
	}
	close(queue)
	wg.Wait()

	completed := 0
	for _, job := range batch {
		if job.Snapshot().Status == StatusCompleted {
			completed++
		}
	}
	snap := tracker.Snapshot()
	log.Info("batch complete",
		"documents", len(batch),
		"completed", completed,
		"failed", len(batch)-completed,
		"pages", snap.Pages,
		"headings", snap.Headings,
		"elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// clearDir empties dir, creating it if needed. Outlines from a previous
// run must not survive alongside fresh ones.
func clearDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// listSupported returns names of extractable files in dir. os.ReadDir
// already sorts entries by filename.
func listSupported(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !source.IsSupportedExtension(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
