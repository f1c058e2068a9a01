// Package render turns canonical annotations into static interactive pages.
// All correctness guarantees are established by the normalizer; nothing here
// re-validates annotation data.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/neicedai/translate/internal/annotate"
	"github.com/neicedai/translate/internal/document"
)

//go:embed templates
var templateFS embed.FS

// IndexEntry is one generated page in the navigation listing.
type IndexEntry struct {
	Title string
	File  string
}

// Renderer renders annotation pages and the navigation index.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type charView struct {
	Char   string
	Pinyin string
	Gloss  string
	// First covering phrase, if any.
	PhraseText   string
	PhrasePinyin string
	PhraseGloss  string
}

type lineView struct {
	Text  string
	Chars []charView
}

type pageView struct {
	Title      string
	Summary    string
	Lines      []lineView
	Vernacular string
	Comment    string
}

type indexView struct {
	Entries []IndexEntry
}

// Page renders the interactive page for one document.
func (r *Renderer) Page(doc *document.Document, ann *annotate.Annotation) ([]byte, error) {
	view := pageView{
		Title:      pageTitle(doc, ann),
		Summary:    ann.Summary,
		Vernacular: doc.Vernacular,
		Comment:    doc.Comment,
		Lines:      make([]lineView, len(ann.Lines)),
	}

	for i := range ann.Lines {
		line := &ann.Lines[i]
		lv := lineView{
			Text:  line.Text,
			Chars: make([]charView, len(line.Chars)),
		}
		runes := []rune(line.Text)
		for j, c := range line.Chars {
			cv := charView{Char: c.Char, Pinyin: c.Pinyin, Gloss: c.Gloss}
			if p := line.PhraseAt(j); p != nil {
				cv.PhraseText = string(runes[p.Start : p.End+1])
				cv.PhrasePinyin = p.Pinyin
				cv.PhraseGloss = p.Gloss
			}
			lv.Chars[j] = cv
		}
		view.Lines[i] = lv
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "page.html.tmpl", view); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return buf.Bytes(), nil
}

// Index renders the navigation listing of generated pages.
func (r *Renderer) Index(entries []IndexEntry) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "index.html.tmpl", indexView{Entries: entries}); err != nil {
		return nil, fmt.Errorf("failed to render index: %w", err)
	}
	return buf.Bytes(), nil
}

// pageTitle prefers the response title, then the manifest title, then the
// file name.
func pageTitle(doc *document.Document, ann *annotate.Annotation) string {
	if ann.Title != "" {
		return ann.Title
	}
	if doc.Title != "" {
		return doc.Title
	}
	return doc.Name
}
