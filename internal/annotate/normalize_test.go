package annotate

import (
	"encoding/json"
	"testing"

	"github.com/neicedai/translate/internal/document"
)

func testDoc(t *testing.T, raw string) *document.Document {
	t.Helper()
	doc := document.New("test.txt", "测试", raw)
	if doc.Empty() {
		t.Fatal("test document has no lines")
	}
	return doc
}

func normalizeString(t *testing.T, doc *document.Document, response string) *Annotation {
	t.Helper()
	return Normalize(doc, json.RawMessage(response))
}

func checkAligned(t *testing.T, doc *document.Document, ann *Annotation) {
	t.Helper()
	if len(ann.Lines) != len(doc.OriginalLines) {
		t.Fatalf("line count = %d, want %d", len(ann.Lines), len(doc.OriginalLines))
	}
	for i, line := range ann.Lines {
		if line.Text != doc.OriginalLines[i] {
			t.Errorf("line %d text = %q, want %q", i, line.Text, doc.OriginalLines[i])
		}
		runes := []rune(doc.OriginalLines[i])
		if len(line.Chars) != len(runes) {
			t.Fatalf("line %d char count = %d, want %d", i, len(line.Chars), len(runes))
		}
		for j, c := range line.Chars {
			if c.Char != string(runes[j]) {
				t.Errorf("line %d char %d = %q, want %q", i, j, c.Char, string(runes[j]))
			}
		}
		for _, p := range line.Phrases {
			if p.Start < 0 || p.Start > p.End || p.End >= len(line.Chars) {
				t.Errorf("line %d phrase out of bounds: %+v", i, p)
			}
		}
	}
}

func TestNormalize_CharGloss(t *testing.T) {
	doc := testDoc(t, "关关雎鸠")

	t.Run("applies gloss at supplied position", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":0,"chars":[{"i":1,"g":"鸣叫声"}]}]}`)
		checkAligned(t, doc, ann)

		if got := ann.Lines[0].Chars[1].Gloss; got != "鸣叫声" {
			t.Errorf("chars[1].gloss = %q, want 鸣叫声", got)
		}
		for _, j := range []int{0, 2, 3} {
			if c := ann.Lines[0].Chars[j]; c.Pinyin != "" || c.Gloss != "" {
				t.Errorf("chars[%d] should stay blank, got %+v", j, c)
			}
		}
	})

	t.Run("rejects entry claiming a different character", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":0,"chars":[{"i":0,"ch":"错","g":"x"}]}]}`)
		if got := ann.Lines[0].Chars[0].Gloss; got != "" {
			t.Errorf("gloss = %q, want empty after character mismatch", got)
		}
	})

	t.Run("accepts entry confirming the original character", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":0,"chars":[{"i":0,"ch":"关","p":"guān","g":"拟声"}]}]}`)
		c := ann.Lines[0].Chars[0]
		if c.Pinyin != "guān" || c.Gloss != "拟声" {
			t.Errorf("char = %+v", c)
		}
		if c.Char != "关" {
			t.Errorf("char value = %q, want 关", c.Char)
		}
	})

	t.Run("later entry merges without blanking", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":0,"chars":[{"i":2,"p":"jū"},{"i":2,"g":"水鸟"}]}]}`)
		c := ann.Lines[0].Chars[2]
		if c.Pinyin != "jū" || c.Gloss != "水鸟" {
			t.Errorf("expected both fields set, got %+v", c)
		}
	})

	t.Run("out-of-range position skipped", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":0,"chars":[{"i":4,"g":"x"},{"i":-1,"g":"y"}]}]}`)
		for j, c := range ann.Lines[0].Chars {
			if c.Gloss != "" {
				t.Errorf("chars[%d].gloss = %q, want empty", j, c.Gloss)
			}
		}
	})
}

func TestNormalize_Phrases(t *testing.T) {
	doc := testDoc(t, "关关雎鸠")

	t.Run("valid phrase retained", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":0,"phrases":[{"s":2,"e":3,"p":"jūjiū","g":"水鸟名"}]}]}`)
		if len(ann.Lines[0].Phrases) != 1 {
			t.Fatalf("phrase count = %d", len(ann.Lines[0].Phrases))
		}
		p := ann.Lines[0].Phrases[0]
		if p.Start != 2 || p.End != 3 || p.Gloss != "水鸟名" {
			t.Errorf("phrase = %+v", p)
		}
	})

	t.Run("out-of-range phrase discarded entirely", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":0,"phrases":[{"s":0,"e":5,"g":"x"}]}]}`)
		if len(ann.Lines[0].Phrases) != 0 {
			t.Errorf("expected no phrases, got %v", ann.Lines[0].Phrases)
		}
	})

	t.Run("reversed bounds swapped before check", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":0,"phrases":[{"s":3,"e":2,"g":"x"}]}]}`)
		if len(ann.Lines[0].Phrases) != 1 {
			t.Fatalf("expected phrase retained after swap")
		}
		p := ann.Lines[0].Phrases[0]
		if p.Start != 2 || p.End != 3 {
			t.Errorf("phrase = %+v, want start 2 end 3", p)
		}
	})

	t.Run("missing or non-integer bounds discarded", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":0,"phrases":[{"s":0},{"s":"a","e":1},{"s":0.5,"e":1}]}]}`)
		if len(ann.Lines[0].Phrases) != 0 {
			t.Errorf("expected no phrases, got %v", ann.Lines[0].Phrases)
		}
	})

	t.Run("overlapping phrases coexist, lookup picks first", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":0,"phrases":[{"s":0,"e":2,"g":"first"},{"s":1,"e":3,"g":"second"}]}]}`)
		if len(ann.Lines[0].Phrases) != 2 {
			t.Fatalf("phrase count = %d", len(ann.Lines[0].Phrases))
		}
		got := ann.Lines[0].PhraseAt(1)
		if got == nil || got.Gloss != "first" {
			t.Errorf("PhraseAt(1) = %+v, want first phrase", got)
		}
	})
}

func TestNormalize_LineIndexing(t *testing.T) {
	doc := testDoc(t, "关关雎鸠\n在河之洲")

	t.Run("aligns by index not array position", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":1,"chars":[{"i":0,"g":"介词"}]},{"index":0,"chars":[{"i":0,"g":"拟声"}]}]}`)
		checkAligned(t, doc, ann)
		if ann.Lines[0].Chars[0].Gloss != "拟声" {
			t.Errorf("line 0 gloss = %q", ann.Lines[0].Chars[0].Gloss)
		}
		if ann.Lines[1].Chars[0].Gloss != "介词" {
			t.Errorf("line 1 gloss = %q", ann.Lines[1].Chars[0].Gloss)
		}
	})

	t.Run("gap leaves missing line blank", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":1,"chars":[{"i":0,"g":"介词"}]}]}`)
		for j, c := range ann.Lines[0].Chars {
			if c.Gloss != "" {
				t.Errorf("line 0 chars[%d] should be blank, got %q", j, c.Gloss)
			}
		}
	})

	t.Run("duplicate index: last entry wins", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":0,"chars":[{"i":0,"g":"early"}]},{"index":0,"chars":[{"i":1,"g":"late"}]}]}`)
		if ann.Lines[0].Chars[0].Gloss != "" {
			t.Errorf("earlier duplicate should be replaced, got %q", ann.Lines[0].Chars[0].Gloss)
		}
		if ann.Lines[0].Chars[1].Gloss != "late" {
			t.Errorf("later duplicate should win, got %q", ann.Lines[0].Chars[1].Gloss)
		}
	})

	t.Run("out-of-range line index ignored", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":9,"chars":[{"i":0,"g":"x"}]}]}`)
		checkAligned(t, doc, ann)
	})

	t.Run("string-coerced index accepted", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":"1","chars":[{"i":"0","g":"介词"}]}]}`)
		if ann.Lines[1].Chars[0].Gloss != "介词" {
			t.Errorf("line 1 gloss = %q", ann.Lines[1].Chars[0].Gloss)
		}
	})
}

func TestNormalize_Discovery(t *testing.T) {
	doc := testDoc(t, "关关雎鸠")

	t.Run("entries nested under unrecognized keys", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"result":{"payload":{"rows":[{"line":0,"text":"关关雎鸠","chars":[{"i":1,"g":"鸣叫声"}]}]}}}`)
		if ann.Lines[0].Chars[1].Gloss != "鸣叫声" {
			t.Errorf("gloss = %q, want 鸣叫声", ann.Lines[0].Chars[1].Gloss)
		}
	})

	t.Run("entries inside a wrapper array", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"data":[{"output":{"lines":[{"index":0,"chars":[{"i":0,"p":"guān"}]}]}}]}`)
		if ann.Lines[0].Chars[0].Pinyin != "guān" {
			t.Errorf("pinyin = %q, want guān", ann.Lines[0].Chars[0].Pinyin)
		}
	})

	t.Run("no qualifying array anywhere", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"message":"ok","values":[1,2,3]}`)
		checkAligned(t, doc, ann)
		for _, c := range ann.Lines[0].Chars {
			if c.Pinyin != "" || c.Gloss != "" {
				t.Errorf("expected all blank, got %+v", c)
			}
		}
	})

	t.Run("response is a bare array", func(t *testing.T) {
		ann := normalizeString(t, doc, `[{"index":0,"chars":[{"i":0,"g":"拟声"}]}]`)
		if ann.Lines[0].Chars[0].Gloss != "拟声" {
			t.Errorf("gloss = %q", ann.Lines[0].Chars[0].Gloss)
		}
	})
}

func TestNormalize_SynonymTolerance(t *testing.T) {
	doc := testDoc(t, "关关雎鸠")

	short := `{"lines":[{"index":0,"chars":[{"i":1,"p":"guān","g":"鸣叫声"}],"phrases":[{"s":2,"e":3,"g":"水鸟"}]}]}`
	long := `{"entries":[{"line_index":0,"characters":[{"position":1,"pinyin":"guān","meaning":"鸣叫声"}],"spans":[{"start":2,"end":3,"meaning":"水鸟"}]}]}`

	a := normalizeString(t, doc, short)
	b := normalizeString(t, doc, long)

	aJSON, _ := json.Marshal(a)
	bJSON, _ := json.Marshal(b)
	if string(aJSON) != string(bJSON) {
		t.Errorf("synonym spellings should normalize identically:\n%s\n%s", aJSON, bJSON)
	}
}

func TestNormalize_DocumentFields(t *testing.T) {
	doc := testDoc(t, "关关雎鸠")

	t.Run("title and summary extracted from top level", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"title":"关雎","summary":"周南首篇。","lines":[]}`)
		if ann.Title != "关雎" {
			t.Errorf("title = %q", ann.Title)
		}
		if ann.Summary != "周南首篇。" {
			t.Errorf("summary = %q", ann.Summary)
		}
	})

	t.Run("synonym title key", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"name":"关雎","lines":[]}`)
		if ann.Title != "关雎" {
			t.Errorf("title = %q", ann.Title)
		}
	})
}

func TestNormalize_Degraded(t *testing.T) {
	doc := testDoc(t, "关关雎鸠\n在河之洲")

	t.Run("empty payload equals blank annotation", func(t *testing.T) {
		blank := NewBlank(doc)
		for _, raw := range []string{"", "{}", `{"lines":[]}`, "not json at all"} {
			ann := Normalize(doc, json.RawMessage(raw))
			checkAligned(t, doc, ann)

			blankJSON, _ := json.Marshal(blank)
			annJSON, _ := json.Marshal(ann)
			if string(blankJSON) != string(annJSON) {
				t.Errorf("payload %q should normalize to blank annotation", raw)
			}
		}
	})

	t.Run("non-map sub-entries skipped", func(t *testing.T) {
		ann := normalizeString(t, doc, `{"lines":[{"index":0,"chars":[42,"x",null,{"i":0,"g":"拟声"}]}]}`)
		if ann.Lines[0].Chars[0].Gloss != "拟声" {
			t.Errorf("gloss = %q", ann.Lines[0].Chars[0].Gloss)
		}
	})
}

func TestNewBlank(t *testing.T) {
	doc := testDoc(t, "关关雎鸠\n在河之洲")
	ann := NewBlank(doc)
	checkAligned(t, doc, ann)
	if ann.Title != "" || ann.Summary != "" {
		t.Error("blank annotation should have empty title and summary")
	}
	for _, line := range ann.Lines {
		if len(line.Phrases) != 0 {
			t.Error("blank annotation should have no phrases")
		}
	}
}
