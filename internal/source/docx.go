package source

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docoutline/internal/outline"
)

// DOCXSource reads .docx files. Word carries hierarchy in named paragraph
// styles rather than font metrics, so Title and Heading styles map onto the
// synthetic size ladder. Body paragraphs are dropped: fed at one fixed
// size, they would claim a heading tier of their own.
type DOCXSource struct{}

func (s *DOCXSource) Pages(r io.Reader, maxPages int) ([][]outline.Observation, error) {
	// go-docx needs a ReaderAt and a size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var (
		page  []outline.Observation
		first string
	)
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		if first == "" {
			first = text
		}

		style := paragraphStyle(para)
		if strings.EqualFold(style, "Title") {
			page = append(page, outline.Observation{Text: text, Page: 1, Size: syntheticTitleSize})
			continue
		}
		if level := headingStyleLevel(style); level > 0 {
			page = append(page, outline.Observation{Text: text, Page: 1, Size: syntheticSize(level)})
		}
	}

	// A document with no styled paragraphs still gets a title shot from its
	// opening paragraph.
	if len(page) == 0 && first != "" {
		page = append(page, outline.Observation{Text: first, Page: 1, Size: syntheticTitleSize})
	}
	if len(page) == 0 {
		return nil, nil
	}
	return [][]outline.Observation{page}, nil
}

// headingStyleLevel reads Word's built-in heading styles, which producers
// spell as "Heading1" or "heading 1".
func headingStyleLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if !strings.HasPrefix(s, "heading") {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "heading"))
	if err != nil || n < 1 || n > 9 {
		return 0
	}
	return n
}

func paragraphStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
