package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeChatModel struct {
	reply string
	err   error
	got   []*schema.Message
}

func (m *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.got = input
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

type fakeFactory struct {
	model *fakeChatModel
	name  string
}

func (f *fakeFactory) Get(_ context.Context, name string) (model.BaseChatModel, error) {
	f.name = name
	return f.model, nil
}

func TestChatRefiner_Refine(t *testing.T) {
	cm := &fakeChatModel{reply: "  A watercolor fox in a forest.  "}
	f := &fakeFactory{model: cm}
	r := NewChatRefiner(f, "openai", nil)

	out, err := r.Refine(context.Background(), "context prompt")
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if out != "A watercolor fox in a forest." {
		t.Fatalf("output: got=%q", out)
	}
	if f.name != "openai" || len(cm.got) != 2 || cm.got[0].Role != schema.System || cm.got[1].Content != "context prompt" {
		t.Fatalf("request: provider=%q messages=%+v", f.name, cm.got)
	}
}

func TestChatRefiner_EmptyReplyFails(t *testing.T) {
	r := NewChatRefiner(&fakeFactory{model: &fakeChatModel{reply: "   "}}, "", nil)
	if _, err := r.Refine(context.Background(), "p"); err == nil {
		t.Fatalf("want error for empty reply")
	}
}

type countingRefiner struct {
	calls int
	out   string
	err   error
}

func (r *countingRefiner) Refine(context.Context, string) (string, error) {
	r.calls++
	return r.out, r.err
}

type memCache struct {
	data map[string][]byte
	err  error
}

func (c *memCache) GetOrLoadSafe(_ context.Context, key string, _ time.Duration, loader func() (interface{}, error)) ([]byte, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	if v, ok := c.data[key]; ok {
		return v, true, nil
	}
	v, err := loader()
	if err != nil {
		return nil, false, err
	}
	raw, _ := json.Marshal(v)
	c.data[key] = raw
	return raw, false, nil
}

func TestCachedRefiner_HitsCacheOnRepeat(t *testing.T) {
	next := &countingRefiner{out: "refined"}
	r := NewCachedRefiner(next, &memCache{data: map[string][]byte{}}, time.Hour)

	for i := 0; i < 3; i++ {
		out, err := r.Refine(context.Background(), "same prompt")
		if err != nil || out != "refined" {
			t.Fatalf("call %d: got=%q err=%v", i, out, err)
		}
	}
	if next.calls != 1 {
		t.Fatalf("downstream calls: want=1 got=%d", next.calls)
	}
}

func TestCachedRefiner_PropagatesRefineError(t *testing.T) {
	boom := errors.New("llm down")
	next := &countingRefiner{err: boom}
	r := NewCachedRefiner(next, &memCache{data: map[string][]byte{}}, time.Hour)

	if _, err := r.Refine(context.Background(), "p"); !errors.Is(err, boom) {
		t.Fatalf("want llm error got=%v", err)
	}
	if next.calls != 1 {
		t.Fatalf("downstream calls: want=1 got=%d", next.calls)
	}
}

func TestCachedRefiner_FallsBackWhenCacheUnavailable(t *testing.T) {
	next := &countingRefiner{out: "direct"}
	r := NewCachedRefiner(next, &memCache{err: errors.New("connection refused")}, time.Hour)

	out, err := r.Refine(context.Background(), "p")
	if err != nil || out != "direct" {
		t.Fatalf("fallback: got=%q err=%v", out, err)
	}
}

func TestPromptCacheKey_Stable(t *testing.T) {
	if PromptCacheKey("a") != PromptCacheKey("a") || PromptCacheKey("a") == PromptCacheKey("b") {
		t.Fatalf("cache key must be deterministic and input-sensitive")
	}
}
