// Package sink delivers finished outlines to their destinations: JSON
// files on disk, a remote collector, or both.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
)

// Result is one document's finished extraction.
type Result struct {
	Name    string
	Outline outline.Outline
	Pages   int
	Elapsed time.Duration
}

// Sink receives the outline extracted from one document.
type Sink interface {
	Deliver(ctx context.Context, res Result) error
}

// FileSink writes one pretty-printed JSON file per document under Dir.
type FileSink struct {
	Dir string
}

// Path returns the output file for a given source filename: the source
// stem with a .json extension, under Dir.
func (s *FileSink) Path(name string) string {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return filepath.Join(s.Dir, stem+".json")
}

func (s *FileSink) Deliver(ctx context.Context, res Result) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(s.Path(res.Name))
	if err != nil {
		return fmt.Errorf("create outline file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res.Outline); err != nil {
		f.Close()
		return fmt.Errorf("encode outline: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close outline file: %w", err)
	}
	return nil
}

// MultiSink fans one outline out to several destinations. Delivery
// continues past failures; the first error is returned.
type MultiSink []Sink

func (m MultiSink) Deliver(ctx context.Context, res Result) error {
	var firstErr error
	for _, s := range m {
		if err := s.Deliver(ctx, res); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
