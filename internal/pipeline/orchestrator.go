package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/sink"
	"github.com/dgallion1/docoutline/internal/source"
	"github.com/dgallion1/docoutline/internal/stats"
)

// Orchestrator manages the async extraction pipeline behind the API.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	registry *source.Registry
	sinks    sink.Sink
	tracker  *stats.Tracker
	log      *slog.Logger
	cfg      config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline; Start launches its workers.
func NewOrchestrator(cfg config.Config, registry *source.Registry, sinks sink.Sink, tracker *stats.Tracker, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		registry: registry,
		sinks:    sinks,
		tracker:  tracker,
		log:      log,
		cfg:      cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.registry, o.sinks, o.tracker, o.log, o.cfg.MaxPages, o.cfg.HeadingLevels)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// NewSourceRegistry builds the source registry cfg describes: the stream
// engine alone, or the layout engine with or without its stream fallback.
func NewSourceRegistry(cfg config.Config) *source.Registry {
	var pdf source.Source
	switch {
	case cfg.PDFEngine == source.EngineStream:
		pdf = &source.StreamPDFSource{}
	case cfg.PDFFallbackStream:
		pdf = &source.LayoutPDFSource{Fallback: &source.StreamPDFSource{}}
	default:
		pdf = &source.LayoutPDFSource{}
	}
	return source.NewRegistry(pdf)
}

// NewSinks builds the delivery chain cfg describes: always the file sink,
// plus the push sink when a collector URL is set. The returned closer
// releases push connections.
func NewSinks(cfg config.Config) (sink.Sink, func()) {
	fileSink := &sink.FileSink{Dir: cfg.OutputDir}
	if cfg.PushURL == "" {
		return fileSink, func() {}
	}
	push := sink.NewPushSink(cfg.PushURL, cfg.PushAPIKey)
	return sink.MultiSink{fileSink, push}, push.Close
}
