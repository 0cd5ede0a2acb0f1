package outline

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultLevels is the number of heading tiers emitted below the title tier.
const DefaultLevels = 3

// titleMaxWords bounds how long an un-bold, mixed-case line can be and still
// count as a title candidate.
const titleMaxWords = 15

var numberedPrefix = regexp.MustCompile(`^(\d+(?:\.\d+)*)\s+`)

// Classifier turns page observations into an outline. It is deterministic
// and total: any input, including an empty one, yields a result and no error.
type Classifier struct {
	Levels int // heading tiers below the title tier, H1..H<Levels>
}

// NewClassifier returns a classifier emitting the given number of heading
// tiers. Non-positive values fall back to DefaultLevels.
func NewClassifier(levels int) *Classifier {
	if levels < 1 {
		levels = DefaultLevels
	}
	return &Classifier{Levels: levels}
}

// Classify ranks the distinct font sizes across all pages, assigns each
// observation a tier (0 = title, 1..Levels = headings), and accumulates the
// title and heading list in reading order. Numbered prefixes like "2.1 "
// override the size vote when they land inside the tier range.
func (c *Classifier) Classify(pages [][]Observation) Outline {
	out := Outline{Headings: []Heading{}}

	var flat []Observation
	for _, page := range pages {
		flat = append(flat, page...)
	}
	if len(flat) == 0 {
		return out
	}

	table := c.sizeTable(flat)

	var (
		title     string
		haveTitle bool
	)

	for _, obs := range flat {
		level := levelFor(obs.Size, table)
		if n := numericLevel(obs.Text); n >= 1 && n <= c.Levels {
			level = n
		}

		switch {
		case level == 0:
			// First acceptable line in the largest size class on the
			// first page wins the title.
			if !haveTitle && obs.Page <= 1 && titleCandidate(obs) {
				title = obs.Text
				haveTitle = true
			}
		case level >= 1 && level <= c.Levels:
			text := CleanText(obs.Text)
			if !validHeading(text) {
				continue
			}
			h := Heading{Level: fmt.Sprintf("H%d", level), Text: text, Page: obs.Page}
			if n := len(out.Headings); n > 0 && out.Headings[n-1] == h {
				continue
			}
			out.Headings = append(out.Headings, h)
		}
	}

	if !haveTitle {
		// Fall back to the first line in the largest size class, on any page.
		for _, obs := range flat {
			if obs.Size == table[0] {
				title = obs.Text
				break
			}
		}
	}

	out.Title = CleanText(title)
	return out
}

// sizeTable returns the distinct observed font sizes, largest first, trimmed
// to one title tier plus Levels heading tiers. Sizes compare exactly;
// backends quantize noisy metrics before reporting.
func (c *Classifier) sizeTable(flat []Observation) []float64 {
	seen := make(map[float64]bool)
	var sizes []float64
	for _, obs := range flat {
		if seen[obs.Size] {
			continue
		}
		seen[obs.Size] = true
		sizes = append(sizes, obs.Size)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))
	if len(sizes) > c.Levels+1 {
		sizes = sizes[:c.Levels+1]
	}
	return sizes
}

// levelFor returns the tier index of size in the ranked table, or -1 when
// the size did not make the table.
func levelFor(size float64, table []float64) int {
	for i, s := range table {
		if s == size {
			return i
		}
	}
	return -1
}

// numericLevel reads a numbered section prefix: "3 Scope" is level 1,
// "2.1 Background" level 2, one level per dot plus one. Returns 0 when the
// text does not start with a number.
func numericLevel(text string) int {
	m := numberedPrefix.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	return strings.Count(m[1], ".") + 1
}

// titleCandidate reports whether a title-tier line is plausible as the
// document title: bold, or shouting, or short enough to be one.
func titleCandidate(obs Observation) bool {
	return obs.Bold || isAllUpper(obs.Text) || len(strings.Fields(obs.Text)) < titleMaxWords
}
