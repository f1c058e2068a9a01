package annotate

import (
	"encoding/json"
	"fmt"

	"github.com/neicedai/translate/internal/document"
	"github.com/neicedai/translate/internal/providers"
)

// systemPrompt constrains the provider to the indexing contract. The
// normalizer still assumes nothing about compliance.
const systemPrompt = `You annotate classical Chinese texts for readers.

For every line you receive, produce pinyin and a short gloss for each
character, and group characters into phrases where several characters share
one reading or meaning.

Rules:
- Use ONLY the character positions supplied in the request. Position numbers
  are zero-based indices into the line's characters.
- NEVER alter, add, or substitute original characters.
- Return STRICTLY the documented JSON shape: an object with optional "title"
  and "summary" strings and a "lines" array. Each line entry has "index" (the
  supplied line index), "chars" (array of {"i": position, "p": pinyin,
  "g": gloss}), and "phrases" (array of {"s": start, "e": end, "p": pinyin,
  "g": gloss} with inclusive character positions).
- Respond with JSON only, no commentary.`

// ResponseSchema is the structured-output schema sent with every annotation
// request, in the {"name","strict","schema"} wrapper form providers accept.
const ResponseSchema = `{
  "name": "annotation",
  "strict": true,
  "schema": {
    "type": "object",
    "properties": {
      "title": {"type": "string"},
      "summary": {"type": "string"},
      "lines": {
        "type": "array",
        "items": {
          "type": "object",
          "properties": {
            "index": {"type": "integer"},
            "chars": {
              "type": "array",
              "items": {
                "type": "object",
                "properties": {
                  "i": {"type": "integer"},
                  "p": {"type": "string"},
                  "g": {"type": "string"}
                },
                "required": ["i"],
                "additionalProperties": false
              }
            },
            "phrases": {
              "type": "array",
              "items": {
                "type": "object",
                "properties": {
                  "s": {"type": "integer"},
                  "e": {"type": "integer"},
                  "p": {"type": "string"},
                  "g": {"type": "string"}
                },
                "required": ["s", "e"],
                "additionalProperties": false
              }
            }
          },
          "required": ["index"],
          "additionalProperties": false
        }
      }
    },
    "required": ["lines"],
    "additionalProperties": false
  }
}`

type charRef struct {
	Position  int    `json:"position"`
	Character string `json:"character"`
}

type lineRequest struct {
	Index int       `json:"index"`
	Text  string    `json:"text"`
	Chars []charRef `json:"chars"`
}

type annotationRequest struct {
	Title string        `json:"title,omitempty"`
	Lines []lineRequest `json:"lines"`
}

// BuildChatRequest builds the provider request for a document: the work
// title plus every original line with zero-based index, full text, and one
// {position, character} pair per Unicode character.
func BuildChatRequest(doc *document.Document, model string) (*providers.ChatRequest, error) {
	payload := annotationRequest{
		Title: doc.Title,
		Lines: make([]lineRequest, len(doc.OriginalLines)),
	}
	for i, text := range doc.OriginalLines {
		runes := []rune(text)
		chars := make([]charRef, len(runes))
		for j, r := range runes {
			chars[j] = charRef{Position: j, Character: string(r)}
		}
		payload.Lines[i] = lineRequest{Index: i, Text: text, Chars: chars}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal annotation request: %w", err)
	}

	return &providers.ChatRequest{
		Model: model,
		Messages: []providers.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(body)},
		},
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: json.RawMessage(ResponseSchema),
		},
	}, nil
}
