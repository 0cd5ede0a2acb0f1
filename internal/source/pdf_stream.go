package source

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/dgallion1/docoutline/internal/outline"
)

// StreamPDFSource reads PDFs with pdfcpu and scans the decoded page content
// streams for text-showing operators. It has no layout model: positioning
// operators delimit lines, Tf and Tm supply the font size, and the bold
// vote comes from the fonts the page resources name.
type StreamPDFSource struct{}

func (s *StreamPDFSource) Pages(r io.Reader, maxPages int) ([][]outline.Observation, error) {
	// pdfcpu wants a ReadSeeker.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	numPages := ctx.PageCount
	if maxPages > 0 && numPages > maxPages {
		numPages = maxPages
	}

	var pages [][]outline.Observation
	for pageNr := 1; pageNr <= numPages; pageNr++ {
		cr, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || cr == nil {
			continue
		}
		content, err := io.ReadAll(cr)
		if err != nil || len(content) == 0 {
			continue
		}
		obs := scanContentStream(content, pageNr, pageBoldFonts(ctx, pageNr))
		if len(obs) > 0 {
			pages = append(pages, obs)
		}
	}
	return pages, nil
}

// pageBoldFonts maps a page's font resource names ("F1") to whether the
// underlying font advertises a bold weight.
func pageBoldFonts(ctx *model.Context, pageNr int) map[string]bool {
	bold := make(map[string]bool)
	if ctx.Optimize == nil {
		return bold
	}
	for _, objNr := range pdfcpu.FontObjNrs(ctx, pageNr) {
		fo, ok := ctx.Optimize.FontObjects[objNr]
		if !ok || fo == nil {
			continue
		}
		isBold := boldFont(fo.FontName)
		for _, res := range fo.ResourceNames {
			bold[res] = bold[res] || isBold
		}
	}
	return bold
}

// scanContentStream walks a page content stream and accumulates one
// observation per text line. Vertical moves (Td with a y component, TD,
// T*, Tm to a new baseline) end a line; horizontal moves and big negative
// TJ kerns stand in for word spaces.
func scanContentStream(data []byte, pageNr int, boldFonts map[string]bool) []outline.Observation {
	var (
		obs      []outline.Observation
		line     strings.Builder
		lineSize float64
		lineBold bool
		fontRes  string
		fontSize = 1.0
		tmScale  = 1.0
		tmY      float64
		haveTmY  bool
		ops      []streamToken
	)

	flush := func() {
		text := strings.TrimSpace(line.String())
		size := lineSize
		bold := lineBold
		line.Reset()
		lineSize = 0
		lineBold = false
		if text == "" {
			return
		}
		obs = append(obs, outline.Observation{Text: text, Page: pageNr, Size: size, Bold: bold})
	}

	show := func(s string) {
		if s == "" {
			return
		}
		line.WriteString(s)
		if eff := roundSize(fontSize * tmScale); eff > lineSize {
			lineSize = eff
		}
		if boldFonts[fontRes] {
			lineBold = true
		}
	}

	wordGap := func() {
		if line.Len() > 0 {
			line.WriteString(" ")
		}
	}

	for _, t := range tokenizeContent(data) {
		if t.kind != tokOperator {
			ops = append(ops, t)
			continue
		}

		switch t.text {
		case "Tf":
			if v, ok := lastNumber(ops); ok {
				fontSize = v
			}
			if name, ok := lastName(ops); ok {
				fontRes = name
			}
		case "Tj":
			if s, ok := lastString(ops); ok {
				show(s)
			}
		case "'", "\"":
			flush()
			if s, ok := lastString(ops); ok {
				show(s)
			}
		case "TJ":
			for _, o := range ops {
				switch o.kind {
				case tokString:
					show(o.text)
				case tokNumber:
					// Kerning in thousandths of an em; a large negative
					// jump is a word space the stream never spells out.
					if o.num <= -200 {
						wordGap()
					}
				}
			}
		case "Td", "TD":
			if ty, ok := numberFromEnd(ops, 1); ok && ty != 0 {
				flush()
			} else {
				wordGap()
			}
		case "T*":
			flush()
		case "Tm":
			// a b c d e f Tm: d scales the font size, f is the baseline.
			// A move along the same baseline is a word gap, not a new line.
			f, okF := numberFromEnd(ops, 1)
			if okF && haveTmY && math.Abs(f-tmY) < 0.5 {
				wordGap()
			} else {
				flush()
			}
			if okF {
				tmY = f
				haveTmY = true
			}
			if d, ok := numberFromEnd(ops, 3); ok && math.Abs(d) > 0 {
				tmScale = math.Abs(d)
			}
		case "BT":
			flush()
			tmScale = 1
			haveTmY = false
		case "ET":
			flush()
		}
		ops = ops[:0]
	}
	flush()
	return obs
}

// Content stream token kinds.
const (
	tokString     = 's'
	tokNumber     = 'n'
	tokName       = 'm'
	tokOperator   = 'o'
	tokArrayOpen  = '['
	tokArrayClose = ']'
)

type streamToken struct {
	kind byte
	text string
	num  float64
}

// tokenizeContent splits a content stream into strings, numbers, names,
// array brackets, and operators. Hex strings and inline dictionaries carry
// no plain text and are skipped, as are inline image payloads.
func tokenizeContent(data []byte) []streamToken {
	var toks []streamToken
	n := len(data)
	i := 0
	for i < n {
		c := data[i]
		switch {
		case isStreamSpace(c):
			i++
		case c == '%':
			for i < n && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '(':
			raw, next := rawLiteralString(data, i)
			toks = append(toks, streamToken{kind: tokString, text: decodeStreamString(raw)})
			i = next
		case c == '<':
			if i+1 < n && data[i+1] == '<' {
				i = skipInlineDict(data, i)
			} else {
				for i++; i < n && data[i] != '>'; i++ {
				}
				if i < n {
					i++
				}
			}
		case c == '[':
			toks = append(toks, streamToken{kind: tokArrayOpen})
			i++
		case c == ']':
			toks = append(toks, streamToken{kind: tokArrayClose})
			i++
		case c == '/':
			j := i + 1
			for j < n && isRegularChar(data[j]) {
				j++
			}
			toks = append(toks, streamToken{kind: tokName, text: string(data[i+1 : j])})
			i = j
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			j := i + 1
			for j < n && (data[j] == '.' || data[j] == '-' || data[j] == '+' || (data[j] >= '0' && data[j] <= '9')) {
				j++
			}
			if v, err := strconv.ParseFloat(string(data[i:j]), 64); err == nil {
				toks = append(toks, streamToken{kind: tokNumber, num: v})
			}
			i = j
		case c == ')' || c == '>' || c == '{' || c == '}':
			i++
		default:
			j := i
			for j < n && isRegularChar(data[j]) {
				j++
			}
			if j == i {
				i++
				continue
			}
			op := string(data[i:j])
			toks = append(toks, streamToken{kind: tokOperator, text: op})
			i = j
			if op == "ID" {
				i = skipInlineImage(data, i)
			}
		}
	}
	return toks
}

func isStreamSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isRegularChar(c byte) bool {
	if isStreamSpace(c) {
		return false
	}
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}

// rawLiteralString returns the bytes between the parenthesis at open and
// its balanced closer, leaving escapes intact for decodeStreamString.
func rawLiteralString(data []byte, open int) ([]byte, int) {
	depth := 1
	for i := open + 1; i < len(data); i++ {
		switch data[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return data[open+1 : i], i + 1
			}
		}
	}
	return data[open+1:], len(data)
}

func skipInlineDict(data []byte, open int) int {
	depth := 0
	i := open
	for i+1 < len(data) {
		switch {
		case data[i] == '<' && data[i+1] == '<':
			depth++
			i += 2
		case data[i] == '>' && data[i+1] == '>':
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return len(data)
}

// skipInlineImage advances past an inline image payload to the EI marker.
func skipInlineImage(data []byte, from int) int {
	for i := from; i+1 < len(data); i++ {
		if data[i] != 'E' || data[i+1] != 'I' {
			continue
		}
		if i > from && !isStreamSpace(data[i-1]) {
			continue
		}
		if i+2 < len(data) && !isStreamSpace(data[i+2]) {
			continue
		}
		return i + 2
	}
	return len(data)
}

// decodeStreamString resolves the escape sequences of a literal PDF string:
// named escapes, line continuations, and up to three octal digits.
func decodeStreamString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(raw) {
			break
		}
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b', 'f':
			// Control glyphs carry nothing a heading needs.
		case '\n':
			// Line continuation.
		case '\r':
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

func lastString(ops []streamToken) (string, bool) {
	for i := len(ops) - 1; i >= 0; i-- {
		if ops[i].kind == tokString {
			return ops[i].text, true
		}
	}
	return "", false
}

func lastName(ops []streamToken) (string, bool) {
	for i := len(ops) - 1; i >= 0; i-- {
		if ops[i].kind == tokName {
			return ops[i].text, true
		}
	}
	return "", false
}

func lastNumber(ops []streamToken) (float64, bool) {
	return numberFromEnd(ops, 1)
}

// numberFromEnd returns the nth numeric operand counting back from the
// operator, so for "a b c d e f Tm" position 1 is f and position 3 is d.
func numberFromEnd(ops []streamToken, nth int) (float64, bool) {
	seen := 0
	for i := len(ops) - 1; i >= 0; i-- {
		if ops[i].kind != tokNumber {
			continue
		}
		seen++
		if seen == nth {
			return ops[i].num, true
		}
	}
	return 0, false
}
