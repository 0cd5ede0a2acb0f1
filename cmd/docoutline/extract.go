package main

import (
	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

var (
	extractInput     string
	extractOutput    string
	extractMaxPages  int
	extractLevels    int
	extractWorkers   int
	extractPDFEngine string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract outlines from every document in a directory",
	Long: `Extract scans the input directory for supported documents (pdf, docx,
html, md, txt), classifies each into a title and heading outline, and
writes one <name>.json per document into the output directory. The
output directory is cleared first so stale outlines never linger.

Configuration comes from the environment (INPUT_DIR, OUTPUT_DIR,
MAX_PAGES, HEADING_LEVELS, WORKER_COUNT, PDF_ENGINE); flags override it
for one run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		cfg := config.Load()

		if cmd.Flags().Changed("input") {
			cfg.InputDir = extractInput
		}
		if cmd.Flags().Changed("output") {
			cfg.OutputDir = extractOutput
		}
		if cmd.Flags().Changed("max-pages") && extractMaxPages > 0 {
			cfg.MaxPages = extractMaxPages
		}
		if cmd.Flags().Changed("levels") && extractLevels > 0 {
			cfg.HeadingLevels = extractLevels
		}
		if cmd.Flags().Changed("workers") && extractWorkers > 0 {
			cfg.WorkerCount = extractWorkers
		}
		if cmd.Flags().Changed("pdf-engine") {
			cfg.PDFEngine = extractPDFEngine
		}

		return pipeline.RunBatch(cmd.Context(), cfg, log)
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractInput, "input", "i", "input", "directory of documents to process")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "output", "directory for outline JSON files")
	extractCmd.Flags().IntVar(&extractMaxPages, "max-pages", 50, "pages read per document")
	extractCmd.Flags().IntVar(&extractLevels, "levels", 3, "heading tiers below the title (H1..Hn)")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 4, "documents processed in parallel")
	extractCmd.Flags().StringVar(&extractPDFEngine, "pdf-engine", "layout", "PDF engine: layout or stream")
}
