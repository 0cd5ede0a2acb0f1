package outline

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// "18 JUNE 2014" and similar standalone dates that headers and footers
	// repeat on every page.
	datePattern   = regexp.MustCompile(`^\d{1,2}\s+[A-Z]{3,}\s+\d{2,4}$`)
	digitsPattern = regexp.MustCompile(`^\d+$`)
)

// CleanText collapses whitespace runs to single spaces and trims the ends.
// It is idempotent.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// validHeading checks cleaned heading text. Standalone dates, bare numbers
// (page folios), and strings with no letters at all are noise, not headings.
func validHeading(text string) bool {
	if datePattern.MatchString(text) {
		return false
	}
	if digitsPattern.MatchString(text) {
		return false
	}
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// isAllUpper reports whether s contains at least one cased letter and no
// lower- or title-case ones.
func isAllUpper(s string) bool {
	hasCased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r) || unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			hasCased = true
		}
	}
	return hasCased
}
