package source

import "testing"

func TestForFile_Dispatch(t *testing.T) {
	pdf := &StreamPDFSource{}
	reg := NewRegistry(pdf)

	got, err := reg.ForFile("report.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != pdf {
		t.Error("expected the injected PDF source back")
	}

	cases := []struct {
		filename string
		want     string
	}{
		{"notes.docx", "*source.DOCXSource"},
		{"page.html", "*source.HTMLSource"},
		{"page.htm", "*source.HTMLSource"},
		{"readme.md", "*source.MarkdownSource"},
		{"readme.markdown", "*source.MarkdownSource"},
		{"plain.txt", "*source.TextSource"},
		{"REPORT.PDF", "*source.StreamPDFSource"},
	}
	for _, tc := range cases {
		src, err := reg.ForFile(tc.filename)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.filename, err)
		}
		if typ := typeName(src); typ != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.filename, tc.want, typ)
		}
	}
}

func typeName(s Source) string {
	switch s.(type) {
	case *LayoutPDFSource:
		return "*source.LayoutPDFSource"
	case *StreamPDFSource:
		return "*source.StreamPDFSource"
	case *DOCXSource:
		return "*source.DOCXSource"
	case *HTMLSource:
		return "*source.HTMLSource"
	case *MarkdownSource:
		return "*source.MarkdownSource"
	case *TextSource:
		return "*source.TextSource"
	}
	return "unknown"
}

func TestForFile_Unsupported(t *testing.T) {
	reg := NewRegistry(nil)
	for _, name := range []string{"data.csv", "image.png", "noext", "archive.tar.gz"} {
		if _, err := reg.ForFile(name); err == nil {
			t.Errorf("expected error for %s", name)
		}
	}
}

func TestNewRegistry_DefaultPDFSource(t *testing.T) {
	reg := NewRegistry(nil)
	src, err := reg.ForFile("x.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	layout, ok := src.(*LayoutPDFSource)
	if !ok {
		t.Fatalf("expected layout engine by default, got %T", src)
	}
	if layout.Fallback == nil {
		t.Error("expected default layout engine to carry a stream fallback")
	}
}

func TestIsSupportedExtension(t *testing.T) {
	supported := []string{"a.pdf", "b.DOCX", "c.html", "d.htm", "e.md", "f.markdown", "g.txt"}
	for _, name := range supported {
		if !IsSupportedExtension(name) {
			t.Errorf("expected %s to be supported", name)
		}
	}
	for _, name := range []string{"a.csv", "b.png", "c", "d.doc"} {
		if IsSupportedExtension(name) {
			t.Errorf("expected %s to be unsupported", name)
		}
	}
}

func TestSyntheticSize_StrictlyDecreasing(t *testing.T) {
	prev := syntheticTitleSize
	for level := 1; level <= 6; level++ {
		size := syntheticSize(level)
		if size >= prev {
			t.Errorf("level %d: expected size below %v, got %v", level, prev, size)
		}
		prev = size
	}
	if got := syntheticSize(7); got != syntheticSize(6) {
		t.Errorf("expected levels past the ladder to clamp, got %v", got)
	}
	if got := syntheticSize(0); got != syntheticTitleSize {
		t.Errorf("expected level 0 to map to the title size, got %v", got)
	}
}
