// Package outline classifies per-page text lines into a document outline
// using font-size ranking, bold/caps/length votes, and numbered-prefix
// overrides. It has no knowledge of file formats; sources feed it
// observations and it returns a title plus a flat heading list.
package outline

// Observation is one text line lifted from a document page, carrying the
// layout attributes the classifier votes on. Size is the dominant font size
// of the line in points; backends that have no real font metrics report a
// synthetic size ladder instead.
type Observation struct {
	Text string
	Page int
	Size float64
	Bold bool
}

// Heading is a single classified outline entry. Level is a tier tag of the
// form "H1".."H3" (up to the configured tier count).
type Heading struct {
	Level string `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Outline is the classification result for one document. Headings is never
// nil so the JSON rendition always carries an "outline" array.
type Outline struct {
	Title    string    `json:"title"`
	Headings []Heading `json:"outline"`
}
