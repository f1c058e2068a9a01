// Package document models a single source work and splits its raw text
// into original lines, vernacular translation, and commentary.
package document

import (
	"strings"
)

const (
	// VernacularMarker delimits the vernacular translation section.
	VernacularMarker = "【译文】"

	// CommentMarker delimits the commentary section.
	CommentMarker = "【评析】"
)

// Document is one source work. The original lines are authoritative and
// immutable after splitting; all downstream indexing refers to them.
type Document struct {
	// Name is the manifest file reference, used to derive the output page name.
	Name string

	// Title is the work title from the manifest (may be overridden by an
	// annotation response).
	Title string

	// OriginalText is the raw original segment before line splitting.
	OriginalText string

	// OriginalLines is the ordered, trimmed, non-empty original lines.
	OriginalLines []string

	// Vernacular is the vernacular translation block (may be empty).
	Vernacular string

	// Comment is the commentary block (may be empty).
	Comment string
}

// New splits raw work text into a Document.
//
// Everything before the vernacular marker is original text. If the comment
// marker follows, text between the two is the vernacular translation and the
// remainder is commentary. Without the vernacular marker the whole text is
// original.
func New(name, title, raw string) *Document {
	doc := &Document{
		Name:  name,
		Title: title,
	}

	original := raw
	if i := strings.Index(raw, VernacularMarker); i >= 0 {
		original = raw[:i]
		rest := raw[i+len(VernacularMarker):]
		if j := strings.Index(rest, CommentMarker); j >= 0 {
			doc.Vernacular = strings.TrimSpace(rest[:j])
			doc.Comment = strings.TrimSpace(rest[j+len(CommentMarker):])
		} else {
			doc.Vernacular = strings.TrimSpace(rest)
		}
	}

	doc.OriginalText = strings.TrimSpace(original)
	doc.OriginalLines = splitLines(doc.OriginalText)

	return doc
}

// splitLines splits on one-or-more newlines, trims each segment, and drops
// empty segments.
func splitLines(text string) []string {
	var lines []string
	for _, seg := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r'
	}) {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			lines = append(lines, seg)
		}
	}
	return lines
}

// LineRunes returns the Unicode characters of line i.
func (d *Document) LineRunes(i int) []rune {
	return []rune(d.OriginalLines[i])
}

// Empty reports whether the document has no original lines and is therefore
// not annotatable.
func (d *Document) Empty() bool {
	return len(d.OriginalLines) == 0
}
