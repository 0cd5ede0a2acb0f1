package source

import (
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/outline"
)

func TestTextSource_UniformSize(t *testing.T) {
	src := &TextSource{}
	pages, err := src.Pages(strings.NewReader("Shift Notes\n\n  first entry  \nsecond entry\n"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}

	want := []string{"Shift Notes", "first entry", "second entry"}
	if len(pages[0]) != len(want) {
		t.Fatalf("expected %d observations, got %d: %+v", len(want), len(pages[0]), pages[0])
	}
	for i, w := range want {
		o := pages[0][i]
		if o.Text != w {
			t.Errorf("observation[%d]: expected %q, got %q", i, w, o.Text)
		}
		if o.Size != plainTextSize || o.Page != 1 || o.Bold {
			t.Errorf("observation[%d]: expected plain metrics, got %+v", i, o)
		}
	}
}

func TestTextSource_TitleOnlyOutline(t *testing.T) {
	src := &TextSource{}
	pages, err := src.Pages(strings.NewReader("Shift Notes\nline two\nline three\n"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := outline.NewClassifier(outline.DefaultLevels).Classify(pages)
	if out.Title != "Shift Notes" {
		t.Errorf("expected title %q, got %q", "Shift Notes", out.Title)
	}
	if len(out.Headings) != 0 {
		t.Errorf("expected empty outline for plain text, got %+v", out.Headings)
	}
}

func TestTextSource_Empty(t *testing.T) {
	src := &TextSource{}
	pages, err := src.Pages(strings.NewReader("\n   \n\t\n"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected no pages, got %+v", pages)
	}
}
