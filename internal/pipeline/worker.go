package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/sink"
	"github.com/dgallion1/docoutline/internal/source"
	"github.com/dgallion1/docoutline/internal/stats"
)

// Worker turns one queued document into an outline and delivers it.
type Worker struct {
	registry *source.Registry
	sinks    sink.Sink
	tracker  *stats.Tracker
	log      *slog.Logger

	maxPages int
	levels   int
}

func NewWorker(registry *source.Registry, sinks sink.Sink, tracker *stats.Tracker, log *slog.Logger, maxPages, levels int) *Worker {
	return &Worker{
		registry: registry,
		sinks:    sinks,
		tracker:  tracker,
		log:      log,
		maxPages: maxPages,
		levels:   levels,
	}
}

// Process runs the full extraction pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()

	// Phase 1: read line observations.
	job.SetStatus(StatusReading, "reading")
	src, err := w.registry.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "reading")
		w.tracker.RecordFailure()
		return
	}

	maxPages := job.MaxPages
	if maxPages <= 0 {
		maxPages = w.maxPages
	}
	pages, err := src.Pages(bytes.NewReader(job.FileData()), maxPages)
	if err != nil {
		log.Error("read failed", "error", err)
		job.AddError(fmt.Sprintf("read: %s", err))
		job.SetStatus(StatusFailed, "reading")
		w.tracker.RecordFailure()
		return
	}

	// Phase 2: classify.
	job.SetStatus(StatusClassifying, "classifying")
	levels := job.Levels
	if levels <= 0 {
		levels = w.levels
	}
	o := outline.NewClassifier(levels).Classify(pages)

	lines := 0
	for _, page := range pages {
		lines += len(page)
	}
	job.SetResult(o, len(pages), lines)
	log.Info("classified document", "pages", len(pages), "lines", lines, "headings", len(o.Headings))

	// Phase 3: deliver to sinks.
	job.SetStatus(StatusWriting, "writing")
	res := sink.Result{
		Name:    job.Filename,
		Outline: o,
		Pages:   len(pages),
		Elapsed: time.Since(start),
	}
	if err := w.deliverWithRetry(ctx, log, res); err != nil {
		log.Error("delivery failed", "error", err)
		job.AddError(fmt.Sprintf("deliver: %s", err))
		job.SetStatus(StatusFailed, "writing")
		w.tracker.RecordFailure()
		return
	}

	w.tracker.RecordExtraction(time.Since(start).Milliseconds(), len(pages), lines, len(o.Headings))
	job.SetStatus(StatusCompleted, "done")
	log.Info("extraction complete", "headings", len(o.Headings), "elapsed_ms", time.Since(start).Milliseconds())
}

// deliverWithRetry retries transient sink failures with backoff. Permanent
// failures return immediately.
func (w *Worker) deliverWithRetry(ctx context.Context, log *slog.Logger, res sink.Result) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = w.sinks.Deliver(ctx, res)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		log.Warn("retryable delivery error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// IsRetryable checks if a delivery error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *sink.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3
