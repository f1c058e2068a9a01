package annotate

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/neicedai/translate/internal/document"
	"github.com/neicedai/translate/internal/providers"
)

func TestBuildChatRequest(t *testing.T) {
	doc := document.New("guanju.txt", "关雎", "关关雎鸠\n在河之洲")

	req, err := BuildChatRequest(doc, "test-model")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Model != "test-model" {
		t.Errorf("model = %q", req.Model)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected system + user message, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != "system" {
		t.Errorf("first message role = %q", req.Messages[0].Role)
	}

	t.Run("payload covers every character with stable indices", func(t *testing.T) {
		var payload annotationRequest
		if err := json.Unmarshal([]byte(req.Messages[1].Content), &payload); err != nil {
			t.Fatalf("user payload is not JSON: %v", err)
		}
		if payload.Title != "关雎" {
			t.Errorf("title = %q", payload.Title)
		}
		if len(payload.Lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(payload.Lines))
		}
		for i, line := range payload.Lines {
			if line.Index != i {
				t.Errorf("line %d has index %d", i, line.Index)
			}
			runes := []rune(line.Text)
			if len(line.Chars) != len(runes) {
				t.Fatalf("line %d: %d char refs for %d runes", i, len(line.Chars), len(runes))
			}
			for j, c := range line.Chars {
				if c.Position != j || c.Character != string(runes[j]) {
					t.Errorf("line %d char %d = %+v", i, j, c)
				}
			}
		}
	})

	t.Run("structured output schema attached and valid", func(t *testing.T) {
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
			t.Fatal("expected json_schema response format")
		}
		good := json.RawMessage(`{"lines":[{"index":0,"chars":[{"i":0,"p":"guān","g":"拟声"}],"phrases":[{"s":0,"e":1,"g":"叠词"}]}]}`)
		if err := providers.ValidateStructuredJSON(req.ResponseFormat.JSONSchema, good); err != nil {
			t.Errorf("conforming payload should validate: %v", err)
		}
		bad := json.RawMessage(`{"lines":[{"chars":[]}]}`)
		if err := providers.ValidateStructuredJSON(req.ResponseFormat.JSONSchema, bad); err == nil {
			t.Error("payload missing required index should fail validation")
		}
	})

	t.Run("system prompt states the contract", func(t *testing.T) {
		content := req.Messages[0].Content
		for _, fragment := range []string{"position", "NEVER alter", "JSON"} {
			if !strings.Contains(content, fragment) {
				t.Errorf("system prompt missing %q", fragment)
			}
		}
	})
}
