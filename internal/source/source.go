// Package source turns documents into per-page observation lists for the
// outline classifier. Each format backend decides how to derive font size
// and bold votes; formats without real font metrics report a fixed
// synthetic size ladder instead.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
)

// Source reads one document and returns its observations, one slice per
// page in page order. maxPages caps how many pages are read; zero or
// negative means no cap. Pages with no usable text may be omitted since
// every observation carries its own page number.
type Source interface {
	Pages(r io.Reader, maxPages int) ([][]outline.Observation, error)
}

// SupportedExtensions lists the file extensions the registry can dispatch.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// Registry dispatches filenames to sources. The PDF source is injected at
// construction so the engine choice stays explicit instead of being probed
// at import time.
type Registry struct {
	pdf Source
}

// NewRegistry returns a registry using the given PDF source. A nil source
// gets the default layout engine with its stream fallback.
func NewRegistry(pdf Source) *Registry {
	if pdf == nil {
		pdf = NewPDFSource(EngineLayout)
	}
	return &Registry{pdf: pdf}
}

// ForFile returns the source for a filename's extension.
func (g *Registry) ForFile(filename string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return g.pdf, nil
	case ".docx":
		return &DOCXSource{}, nil
	case ".html", ".htm":
		return &HTMLSource{}, nil
	case ".md", ".markdown":
		return &MarkdownSource{}, nil
	case ".txt":
		return &TextSource{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// syntheticTitleSize anchors the ladder used by markup formats: native
// title elements report this size so they always outrank headings.
const syntheticTitleSize = 24.0

var syntheticHeadingSizes = [...]float64{20, 17, 14.5, 12.5, 11.5, 10.5}

// syntheticSize maps a markup heading level (1-based) onto a strictly
// decreasing ladder, so the classifier's size ranking reproduces the
// native hierarchy. Levels past the ladder clamp to its last step.
func syntheticSize(level int) float64 {
	if level < 1 {
		return syntheticTitleSize
	}
	if level > len(syntheticHeadingSizes) {
		return syntheticHeadingSizes[len(syntheticHeadingSizes)-1]
	}
	return syntheticHeadingSizes[level-1]
}
