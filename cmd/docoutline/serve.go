package main

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/stats"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the outline extraction HTTP API",
	Long: `Serve starts the docoutline HTTP server.

Endpoints:
  POST /api/outline        extract synchronously, respond with the outline
  POST /api/outline/async  queue a job, respond with a poll URL
  GET  /api/jobs/{id}      job status and result
  GET  /api/stats          extraction statistics
  GET  /health             liveness (unauthenticated)

API endpoints require "Authorization: Bearer $DOCOUTLINE_API_KEY".
Async results are also delivered to OUTPUT_DIR and, when PUSH_URL is
set, to the remote collector.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		cfg := config.Load()
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}
		if err := cfg.Validate(); err != nil {
			log.Error("invalid configuration", "error", err)
			return err
		}

		registry := pipeline.NewSourceRegistry(cfg)
		sinks, closeSinks := pipeline.NewSinks(cfg)
		defer closeSinks()
		tracker := stats.NewTracker(time.Hour)

		orch := pipeline.NewOrchestrator(cfg, registry, sinks, tracker, log)
		orch.Start(cmd.Context())

		srv := api.NewServer(orch, registry, tracker, log, cfg)
		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown once the command context is cancelled. The server
		// quiesces first so no handler can submit to a stopped pipeline.
		go func() {
			<-cmd.Context().Done()
			log.Info("shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)

			orch.Stop()
		}()

		log.Info("starting docoutline", "port", cfg.Port, "pdf_engine", cfg.PDFEngine, "workers", cfg.WorkerCount)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "port to listen on")
}
