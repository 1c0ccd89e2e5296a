package prompt

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestRenderOutlinePrompt(t *testing.T) {
	r := NewRegistry()

	msgs, err := r.Render(context.Background(), PromptOutlineV1, map[string]any{
		"target_chapters": 12,
		"title":           "The Silent Echo",
		"category":        "Mystery",
		"tone_style":      "Suspenseful",
		"target_audience": "Adult",
		"pov":             "Third Person Limited",
		"language":        "English",
		"author_name":     "Eleanor Vance",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want system + user", len(msgs))
	}
	if msgs[0].Role != schema.System {
		t.Fatalf("first message role = %v, want system", msgs[0].Role)
	}
	if !strings.Contains(msgs[1].Content, "12-chapter outline") {
		t.Fatalf("chapter count not substituted:\n%s", msgs[1].Content)
	}
	if !strings.Contains(msgs[1].Content, `"The Silent Echo"`) {
		t.Fatalf("title not substituted:\n%s", msgs[1].Content)
	}
	if !strings.Contains(msgs[1].Content, "Eleanor Vance") {
		t.Fatalf("author not substituted:\n%s", msgs[1].Content)
	}
}

func TestRenderCompliancePromptKeepsJSONShape(t *testing.T) {
	r := NewRegistry()

	msgs, err := r.Render(context.Background(), PromptComplianceCheckV1, map[string]any{
		"content": "Chapter text goes here.",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	user := msgs[len(msgs)-1].Content
	// 模板中的字面大括号应保留为单层
	if !strings.Contains(user, `"isCompliant": true`) {
		t.Fatalf("JSON example lost from prompt:\n%s", user)
	}
	if strings.Contains(user, "{{") {
		t.Fatalf("unescaped braces left in prompt:\n%s", user)
	}
}

func TestRenderTextForImagePrompt(t *testing.T) {
	r := NewRegistry()

	text, err := r.RenderText(context.Background(), PromptCoverV1, map[string]any{
		"title":       "The Silent Echo",
		"author_name": "Eleanor Vance",
		"category":    "Mystery",
		"tone_style":  "Suspenseful",
		"outline":     "A compelling story",
	})
	if err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	if !strings.Contains(text, `"The Silent Echo"`) || !strings.Contains(text, "Eleanor Vance") {
		t.Fatalf("variables not substituted:\n%s", text)
	}
}

func TestUnknownPromptID(t *testing.T) {
	r := NewRegistry()
	if _, err := r.ChatTemplate(PromptID("nope")); err == nil {
		t.Fatal("expected error for unknown prompt id")
	}
}
