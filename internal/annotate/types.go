// Package annotate builds annotation requests for a document and normalizes
// untrusted provider responses into a canonical, index-aligned structure.
package annotate

import (
	"github.com/neicedai/translate/internal/document"
)

// Annotation is the validated annotation structure for one document.
// Its lines align one-to-one, in order, with the document's original lines.
type Annotation struct {
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`
	Lines   []Line `json:"lines"`
}

// Line carries the annotations of one original line.
type Line struct {
	// Text is the original line, authoritative.
	Text string `json:"text"`
	// Chars holds one entry per Unicode character of Text, in order.
	Chars []CharGloss `json:"chars"`
	// Phrases are validated character-index ranges. Overlaps are allowed.
	Phrases []Phrase `json:"phrases,omitempty"`
}

// CharGloss annotates a single character. Char is always the original
// character; Pinyin and Gloss are empty unless validated evidence exists.
type CharGloss struct {
	Char   string `json:"char"`
	Pinyin string `json:"pinyin,omitempty"`
	Gloss  string `json:"gloss,omitempty"`
}

// Phrase is a contiguous character range sharing one reading/meaning.
// Invariant: 0 <= Start <= End < len(Line.Chars).
type Phrase struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Pinyin string `json:"pinyin,omitempty"`
	Gloss  string `json:"gloss,omitempty"`
}

// NewBlank builds an all-blank annotation for a document: every character
// slot carries the original character with empty pinyin/gloss and no phrases.
// This is both the skip-annotation path and the fallback shape the normalizer
// degrades to.
func NewBlank(doc *document.Document) *Annotation {
	ann := &Annotation{
		Lines: make([]Line, len(doc.OriginalLines)),
	}
	for i, text := range doc.OriginalLines {
		runes := []rune(text)
		chars := make([]CharGloss, len(runes))
		for j, r := range runes {
			chars[j] = CharGloss{Char: string(r)}
		}
		ann.Lines[i] = Line{Text: text, Chars: chars}
	}
	return ann
}

// PhraseAt returns the first phrase covering character index i, or nil.
func (l *Line) PhraseAt(i int) *Phrase {
	for p := range l.Phrases {
		if l.Phrases[p].Start <= i && i <= l.Phrases[p].End {
			return &l.Phrases[p]
		}
	}
	return nil
}
