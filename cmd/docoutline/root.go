package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docoutline",
	Short: "Extract document titles and heading outlines",
	Long: `docoutline turns documents into structured outlines: a title plus a
heading hierarchy with page numbers, as JSON.

PDF headings are inferred from font metrics (size ranking, bold weight,
numbered section prefixes); DOCX, HTML, Markdown, and plain text go
through the same classifier via their native structure.

Run "docoutline extract" to process a directory of documents, or
"docoutline serve" to expose the extractor as an HTTP API.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process-wide JSON logger both subcommands share.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
