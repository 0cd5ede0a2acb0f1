package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/sink"
	"github.com/dgallion1/docoutline/internal/source"
	"github.com/dgallion1/docoutline/internal/stats"
)

const mdGuide = `# Field Guide

## Setup

### Wiring

## Operation
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// collectSink records every delivered result.
type collectSink struct {
	mu      sync.Mutex
	results []sink.Result
	err     error
}

func (c *collectSink) Deliver(ctx context.Context, res sink.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, res)
	return c.err
}

func (c *collectSink) delivered() []sink.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sink.Result(nil), c.results...)
}

func newTestWorker(sinks sink.Sink, tracker *stats.Tracker) *Worker {
	return NewWorker(source.NewRegistry(nil), sinks, tracker, testLogger(), 50, 3)
}

func TestWorker_ProcessMarkdown(t *testing.T) {
	sinks := &collectSink{}
	tracker := stats.NewTracker(0)
	w := newTestWorker(sinks, tracker)

	job := NewJob("guide.md")
	job.SetFileData([]byte(mdGuide))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed job, got %s: %+v", snap.Status, snap.Progress.Errors)
	}
	if snap.Outline == nil || snap.Outline.Title != "Field Guide" {
		t.Fatalf("expected title %q, got %+v", "Field Guide", snap.Outline)
	}
	if snap.Progress.Headings != 3 {
		t.Errorf("expected 3 headings, got %d", snap.Progress.Headings)
	}
	if snap.Progress.Lines != 4 {
		t.Errorf("expected 4 observed lines, got %d", snap.Progress.Lines)
	}

	got := sinks.delivered()
	if len(got) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(got))
	}
	if got[0].Name != "guide.md" || got[0].Pages != 1 {
		t.Errorf("expected result for guide.md page 1, got %+v", got[0])
	}

	st := tracker.Snapshot()
	if st.Documents != 1 || st.Headings != 3 || st.Failures != 0 {
		t.Errorf("expected tracker to record the extraction, got %+v", st)
	}
}

func TestWorker_LevelOverride(t *testing.T) {
	sinks := &collectSink{}
	w := newTestWorker(sinks, stats.NewTracker(0))

	job := NewJob("guide.md")
	job.SetFileData([]byte(mdGuide))
	job.Levels = 1
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed job, got %s", snap.Status)
	}
	// Only one heading tier survives: the H3 line falls off the table.
	for _, h := range snap.Outline.Headings {
		if h.Level != "H1" {
			t.Errorf("expected only H1 headings, got %+v", h)
		}
	}
	if len(snap.Outline.Headings) != 2 {
		t.Errorf("expected 2 headings, got %d", len(snap.Outline.Headings))
	}
}

func TestWorker_UnsupportedFormat(t *testing.T) {
	sinks := &collectSink{}
	tracker := stats.NewTracker(0)
	w := newTestWorker(sinks, tracker)

	job := NewJob("notes.xyz")
	job.SetFileData([]byte("whatever"))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "reading" {
		t.Errorf("expected failure while reading, got %s/%s", snap.Status, snap.Phase)
	}
	if len(sinks.delivered()) != 0 {
		t.Error("expected no delivery for unsupported format")
	}
	if tracker.Snapshot().Failures != 1 {
		t.Errorf("expected 1 recorded failure, got %d", tracker.Snapshot().Failures)
	}
}

func TestWorker_UnreadableDocument(t *testing.T) {
	sinks := &collectSink{}
	tracker := stats.NewTracker(0)
	w := newTestWorker(sinks, tracker)

	job := NewJob("broken.pdf")
	job.SetFileData([]byte("this is not a pdf"))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "reading" {
		t.Errorf("expected failure while reading, got %s/%s", snap.Status, snap.Phase)
	}
	if len(snap.Progress.Errors) == 0 {
		t.Error("expected an error recorded on the job")
	}
	if tracker.Snapshot().Failures != 1 {
		t.Errorf("expected 1 recorded failure, got %d", tracker.Snapshot().Failures)
	}
}

func TestWorker_PermanentSinkFailure(t *testing.T) {
	sinks := &collectSink{err: errors.New("disk full")}
	tracker := stats.NewTracker(0)
	w := newTestWorker(sinks, tracker)

	job := NewJob("guide.md")
	job.SetFileData([]byte(mdGuide))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "writing" {
		t.Errorf("expected failure while writing, got %s/%s", snap.Status, snap.Phase)
	}
	// Permanent failures are not retried.
	if got := len(sinks.delivered()); got != 1 {
		t.Errorf("expected exactly 1 delivery attempt, got %d", got)
	}
	if tracker.Snapshot().Failures != 1 {
		t.Errorf("expected 1 recorded failure, got %d", tracker.Snapshot().Failures)
	}
}

func TestIsRetryable(t *testing.T) {
	retry := &sink.RetryableError{StatusCode: 503, Message: "busy"}
	if !IsRetryable(retry) {
		t.Error("expected retryable error to be retryable")
	}
	if !IsRetryable(fmt.Errorf("deliver: %w", retry)) {
		t.Error("expected wrapped retryable error to stay retryable")
	}
	if IsRetryable(errors.New("boom")) {
		t.Error("expected plain error to be permanent")
	}
	if IsRetryable(nil) {
		t.Error("expected nil to be permanent")
	}
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := 0; attempt < 8; attempt++ {
		base := time.Duration(1<<uint(attempt)) * time.Second
		if base > 30*time.Second {
			base = 30 * time.Second
		}
		for range 20 {
			d := Backoff(attempt)
			if d < base || d >= base+base/2 {
				t.Fatalf("attempt %d: backoff %v outside [%v, %v)", attempt, d, base, base+base/2)
			}
		}
	}
}
