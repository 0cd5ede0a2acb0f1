package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/docoutline/internal/outline"
)

// MarkdownSource reads Markdown with goldmark. ATX and setext headings map
// onto the synthetic size ladder; the largest heading class then wins the
// title tier, which matches how a single "#" doubles as a document title.
type MarkdownSource struct{}

func (s *MarkdownSource) Pages(r io.Reader, maxPages int) ([][]outline.Observation, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var page []outline.Observation
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		title := string(heading.Text(src))
		if title == "" {
			continue
		}
		page = append(page, outline.Observation{Text: title, Page: 1, Size: syntheticSize(heading.Level)})
	}

	// Heading-free notes still get a title shot from their first line.
	if len(page) == 0 {
		if first := firstTextLine(src); first != "" {
			page = append(page, outline.Observation{Text: first, Page: 1, Size: syntheticTitleSize})
		}
	}
	if len(page) == 0 {
		return nil, nil
	}
	return [][]outline.Observation{page}, nil
}

// firstTextLine returns the first non-blank line of a document.
func firstTextLine(src []byte) string {
	for _, line := range strings.Split(string(src), "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
