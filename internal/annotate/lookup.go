package annotate

import (
	"math"
	"strconv"
	"strings"
)

// Synonym key lists for untrusted response fields. Extraction takes the first
// listed key present whose value has the expected type; everything else is
// ignored.
var (
	lineArrayKeys   = []string{"lines", "entries", "items", "segments", "rows", "sentences"}
	lineIndexKeys   = []string{"index", "line", "line_index", "idx", "i", "line_no", "line_number", "position"}
	charArrayKeys   = []string{"chars", "characters", "glosses", "tokens", "annotations"}
	charIndexKeys   = []string{"i", "index", "pos", "position", "idx", "char_index"}
	charValueKeys   = []string{"ch", "char", "character", "hanzi", "text", "word"}
	pinyinKeys      = []string{"p", "pinyin", "py", "reading", "pronunciation"}
	glossKeys       = []string{"g", "gloss", "meaning", "explanation", "definition", "note"}
	phraseArrayKeys = []string{"phrases", "words", "spans", "ranges", "groups"}
	phraseStartKeys = []string{"s", "start", "from", "begin", "start_index"}
	phraseEndKeys   = []string{"e", "end", "to", "stop", "end_index"}
	titleKeys       = []string{"title", "name", "work_title"}
	summaryKeys     = []string{"summary", "abstract", "introduction", "description", "overview"}
)

// firstString returns the first listed field holding a non-empty string,
// trimmed. Missing or non-string fields are skipped; "" means not found.
func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// firstInt returns the first listed field whose value coerces to a whole
// number.
func firstInt(m map[string]any, keys []string) (int, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if n, ok := intValue(v); ok {
			return n, true
		}
	}
	return 0, false
}

// firstArray returns the first listed field holding an array.
func firstArray(m map[string]any, keys []string) ([]any, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if arr, ok := v.([]any); ok {
			return arr, true
		}
	}
	return nil, false
}

// intValue coerces a decoded JSON value to a whole number.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.Trunc(n) != n || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
