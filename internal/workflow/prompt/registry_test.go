package prompt

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestRegistry_ImageRefineTemplate(t *testing.T) {
	r := NewRegistry()
	tpl, err := r.ChatTemplate(PromptImageRefineV1)
	if err != nil {
		t.Fatalf("ChatTemplate: %v", err)
	}

	msgs, err := tpl.Format(context.Background(), map[string]any{"prompt": "a fox {in} the snow"})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Role != schema.System || msgs[1].Role != schema.User {
		t.Fatalf("messages: got=%+v", msgs)
	}
	if msgs[1].Content != "a fox {in} the snow" {
		t.Fatalf("user content: got=%q", msgs[1].Content)
	}

	again, _ := r.ChatTemplate(PromptImageRefineV1)
	if again != tpl {
		t.Fatalf("template should be cached")
	}
}

func TestRegistry_UnknownID(t *testing.T) {
	if _, err := NewRegistry().ChatTemplate("missing"); err == nil {
		t.Fatalf("want error for unknown prompt id")
	}
}
