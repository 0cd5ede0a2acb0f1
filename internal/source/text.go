package source

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
)

// plainTextSize is the uniform size reported for plain text lines. With a
// single size class the classifier sees one tier, so a plain file yields a
// title and an empty outline.
const plainTextSize = 12.0

// TextSource reads plain text files.
type TextSource struct{}

func (s *TextSource) Pages(r io.Reader, maxPages int) ([][]outline.Observation, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var page []outline.Observation
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		page = append(page, outline.Observation{Text: line, Page: 1, Size: plainTextSize})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(page) == 0 {
		return nil, nil
	}
	return [][]outline.Observation{page}, nil
}
