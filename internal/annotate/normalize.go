package annotate

import (
	"encoding/json"
	"reflect"
	"sort"

	"github.com/neicedai/translate/internal/document"
)

// Normalize reconciles an untrusted provider response against the document's
// authoritative text. The response may use any of several field-name
// spellings, nest its line entries arbitrarily deep, supply lines out of
// order or with gaps, and claim characters that disagree with the original;
// none of that escapes this function. The result always satisfies:
//
//   - one line entry per original line, in order, with the original text
//   - one char slot per Unicode character, carrying the original character
//   - every retained phrase within the line's character-index range
//
// Malformed or conflicting pieces degrade to blank defaults per field, per
// entry, per line; Normalize never fails.
func Normalize(doc *document.Document, raw json.RawMessage) *Annotation {
	ann := NewBlank(doc)

	if len(raw) == 0 {
		return ann
	}
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return ann
	}

	if rootMap, ok := root.(map[string]any); ok {
		ann.Title = firstString(rootMap, titleKeys)
		ann.Summary = firstString(rootMap, summaryKeys)
	}

	byIndex := indexLineEntries(findLineEntries(root))
	for i := range ann.Lines {
		entry, ok := byIndex[i]
		if !ok {
			continue
		}
		normalizeLine(&ann.Lines[i], doc.LineRunes(i), entry)
	}

	return ann
}

// findLineEntries searches the response tree breadth-first for the array of
// line-like entries. Map values named by the line-array synonyms are explored
// before the rest, so at equal depth a named candidate wins; otherwise the
// shallowest qualifying array found wins. Visited containers are tracked by
// identity so self-referential structures terminate.
func findLineEntries(root any) []any {
	visited := make(map[uintptr]struct{})
	queue := []any{root}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		switch n := node.(type) {
		case map[string]any:
			if !visit(visited, reflect.ValueOf(n).Pointer()) {
				continue
			}
			named := make(map[string]struct{}, len(lineArrayKeys))
			for _, k := range lineArrayKeys {
				if v, ok := n[k]; ok {
					queue = append(queue, v)
					named[k] = struct{}{}
				}
			}
			rest := make([]string, 0, len(n))
			for k := range n {
				if _, ok := named[k]; !ok {
					rest = append(rest, k)
				}
			}
			sort.Strings(rest)
			for _, k := range rest {
				queue = append(queue, n[k])
			}

		case []any:
			if !visit(visited, reflect.ValueOf(n).Pointer()) {
				continue
			}
			if qualifies(n) {
				return n
			}
			queue = append(queue, n...)
		}
	}

	return nil
}

func visit(visited map[uintptr]struct{}, ptr uintptr) bool {
	if _, seen := visited[ptr]; seen {
		return false
	}
	visited[ptr] = struct{}{}
	return true
}

// qualifies reports whether an array looks like line entries: at least one
// element with a coercible line index or a string text field.
func qualifies(arr []any) bool {
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := firstInt(m, lineIndexKeys); ok {
			return true
		}
		if _, ok := m["text"].(string); ok {
			return true
		}
	}
	return false
}

// indexLineEntries maps line index to entry. Entries without a valid index
// are discarded; a duplicate index replaces the earlier entry (last wins).
func indexLineEntries(entries []any) map[int]map[string]any {
	byIndex := make(map[int]map[string]any, len(entries))
	for _, el := range entries {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		idx, ok := firstInt(m, lineIndexKeys)
		if !ok {
			continue
		}
		byIndex[idx] = m
	}
	return byIndex
}

// normalizeLine merges one response line entry into an initialized blank
// line. runes is the authoritative character sequence of the line.
func normalizeLine(line *Line, runes []rune, entry map[string]any) {
	if charArr, ok := firstArray(entry, charArrayKeys); ok {
		for _, el := range charArr {
			sub, ok := el.(map[string]any)
			if !ok {
				continue
			}
			pos, ok := firstInt(sub, charIndexKeys)
			if !ok || pos < 0 || pos >= len(runes) {
				continue
			}
			// The response may not substitute characters: a claimed
			// character that disagrees with the original rejects the
			// whole sub-entry.
			if claimed := firstString(sub, charValueKeys); claimed != "" && claimed != string(runes[pos]) {
				continue
			}
			// Only overwrite with non-empty values so a later entry for
			// the same position cannot blank a field set earlier.
			if p := firstString(sub, pinyinKeys); p != "" {
				line.Chars[pos].Pinyin = p
			}
			if g := firstString(sub, glossKeys); g != "" {
				line.Chars[pos].Gloss = g
			}
		}
	}

	if phraseArr, ok := firstArray(entry, phraseArrayKeys); ok {
		for _, el := range phraseArr {
			sub, ok := el.(map[string]any)
			if !ok {
				continue
			}
			start, okS := firstInt(sub, phraseStartKeys)
			end, okE := firstInt(sub, phraseEndKeys)
			if !okS || !okE {
				continue
			}
			if start > end {
				start, end = end, start
			}
			// Out-of-range phrases are discarded, not clamped.
			if start < 0 || end >= len(line.Chars) {
				continue
			}
			line.Phrases = append(line.Phrases, Phrase{
				Start:  start,
				End:    end,
				Pinyin: firstString(sub, pinyinKeys),
				Gloss:  firstString(sub, glossKeys),
			})
		}
	}
}
