package source

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docoutline/internal/outline"
)

// PDF engine names accepted in configuration.
const (
	EngineLayout = "layout"
	EngineStream = "stream"
)

// NewPDFSource returns the PDF source for the named engine. The layout
// engine reads positioned text runs and keeps the stream engine as a
// fallback for files it cannot open; the stream engine scans raw content
// streams and stands alone.
func NewPDFSource(engine string) Source {
	if engine == EngineStream {
		return &StreamPDFSource{}
	}
	return &LayoutPDFSource{Fallback: &StreamPDFSource{}}
}

// LayoutPDFSource reads PDFs with ledongthuc/pdf, which reports each text
// run with its font name, size, and position. Runs sharing a baseline are
// merged into line observations.
type LayoutPDFSource struct {
	// Fallback, when set, handles documents the layout reader rejects.
	Fallback Source
}

func (s *LayoutPDFSource) Pages(r io.Reader, maxPages int) ([][]outline.Observation, error) {
	// The reader needs a ReaderAt and a size, so buffer the document.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	pages, err := layoutPages(data, maxPages)
	if err != nil && s.Fallback != nil {
		return s.Fallback.Pages(bytes.NewReader(data), maxPages)
	}
	return pages, err
}

func layoutPages(data []byte, maxPages int) (pages [][]outline.Observation, err error) {
	// The library panics on some malformed files; turn that into an error
	// so the fallback engine gets its turn.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	numPages := reader.NumPage()
	if maxPages > 0 && numPages > maxPages {
		numPages = maxPages
	}

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		obs := mergeRuns(page.Content().Text, i)
		if len(obs) > 0 {
			pages = append(pages, obs)
		}
	}
	return pages, nil
}

// mergeRuns groups positioned text runs into lines by truncated baseline,
// top to bottom, and merges each line into one observation.
func mergeRuns(runs []pdflib.Text, pageNr int) []outline.Observation {
	if len(runs) == 0 {
		return nil
	}
	sorted := append([]pdflib.Text(nil), runs...)
	sort.Sort(pdflib.TextVertical(sorted))

	var (
		obs   []outline.Observation
		line  []pdflib.Text
		lineY int64
	)
	flush := func() {
		if len(line) == 0 {
			return
		}
		if o, ok := lineObservation(line, pageNr); ok {
			obs = append(obs, o)
		}
		line = line[:0]
	}

	for _, run := range sorted {
		y := int64(run.Y)
		if len(line) > 0 && y != lineY {
			flush()
		}
		if len(line) == 0 {
			lineY = y
		}
		line = append(line, run)
	}
	flush()
	return obs
}

// lineObservation merges one baseline's runs, left to right. Word gaps
// often arrive as positioning rather than space glyphs, so a horizontal
// jump past a fifth of the font size becomes a space. The line's size is
// the rounded size covering the most runes (first seen wins ties) and the
// bold vote needs a strict rune majority, so an empty-extent line can
// never read as bold.
func lineObservation(line []pdflib.Text, pageNr int) (outline.Observation, bool) {
	type sizeWeight struct {
		size   float64
		weight int
	}
	var (
		text    strings.Builder
		weights []sizeWeight
		bold    int
		total   int
		endX    float64
		hasEnd  bool
	)

	for _, run := range line {
		if hasEnd {
			threshold := run.FontSize * 0.2
			if threshold <= 0 {
				threshold = 1
			}
			if run.X-endX > threshold {
				text.WriteString(" ")
			}
		}
		text.WriteString(run.S)
		if run.W > 0 {
			endX = run.X + run.W
			hasEnd = true
		}

		n := len([]rune(run.S))
		if n == 0 {
			continue
		}
		total += n
		if boldFont(run.Font) {
			bold += n
		}
		size := roundSize(run.FontSize)
		found := false
		for i := range weights {
			if weights[i].size == size {
				weights[i].weight += n
				found = true
				break
			}
		}
		if !found {
			weights = append(weights, sizeWeight{size: size, weight: n})
		}
	}

	trimmed := strings.TrimSpace(text.String())
	if trimmed == "" || len(weights) == 0 {
		return outline.Observation{}, false
	}

	best := weights[0]
	for _, w := range weights[1:] {
		if w.weight > best.weight {
			best = w
		}
	}

	return outline.Observation{
		Text: trimmed,
		Page: pageNr,
		Size: best.size,
		Bold: bold*2 > total,
	}, true
}

// boldFont reports whether a PostScript font name advertises a bold or
// black weight, e.g. "Helvetica-Bold" or "Arial-Black".
func boldFont(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "bold") || strings.Contains(n, "black")
}

// roundSize quantizes a font size to a tenth of a point so float noise from
// transform math cannot split one visual size into several tiers.
func roundSize(size float64) float64 {
	return math.Round(size*10) / 10
}
