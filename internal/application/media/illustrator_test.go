package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storybook-media-api/internal/domain/entity"
)

func TestGeneratePicture_EmptySlotCallsProviderOnce(t *testing.T) {
	gen := &fakeGenerator{}
	store := newMemStore()
	ill := NewIllustrator(gen, store, nil, "1024x1024")
	page := &entity.Page{ID: 7, Content: "A fox"}

	if got := ill.GeneratePicture(context.Background(), page, false, nil); got != OutcomeGenerated {
		t.Fatalf("outcome: want=generated got=%s", got)
	}
	if gen.imageCount() != 1 {
		t.Fatalf("provider calls: want=1 got=%d", gen.imageCount())
	}
	if !store.has(entity.PageImage(7)) {
		t.Fatalf("page should have an image")
	}
}

func TestGeneratePicture_AttachedSkipsWithoutCall(t *testing.T) {
	gen := &fakeGenerator{}
	store := newMemStore()
	store.seed(entity.PageImage(7), "old")
	refiner := &fakeRefiner{out: "refined"}
	ill := NewIllustrator(gen, store, refiner, "")

	if got := ill.GeneratePicture(context.Background(), &entity.Page{ID: 7}, false, nil); got != OutcomeSkipped {
		t.Fatalf("outcome: want=skipped got=%s", got)
	}
	if gen.imageCount() != 0 || len(refiner.got) != 0 {
		t.Fatalf("no prompt or provider call expected, provider=%d refiner=%d", gen.imageCount(), len(refiner.got))
	}
}

func TestGeneratePicture_ReplaceSwapsImage(t *testing.T) {
	gen := &fakeGenerator{}
	store := newMemStore()
	store.seed(entity.PageImage(7), "old")
	ill := NewIllustrator(gen, store, nil, "")

	if got := ill.GeneratePicture(context.Background(), &entity.Page{ID: 7, Content: "x"}, true, nil); got != OutcomeGenerated {
		t.Fatalf("outcome: want=generated got=%s", got)
	}
	if got := store.bytesAt(entity.PageImage(7)); got != "png-bytes" {
		t.Fatalf("content: want=png-bytes got=%q", got)
	}
}

func TestGeneratePicture_ReplaceFailureKeepsOldImage(t *testing.T) {
	gen := &fakeGenerator{failImage: true}
	store := newMemStore()
	store.seed(entity.PageImage(7), "old")
	ill := NewIllustrator(gen, store, nil, "")

	if got := ill.GeneratePicture(context.Background(), &entity.Page{ID: 7}, true, nil); got != OutcomeFailed {
		t.Fatalf("outcome: want=failed got=%s", got)
	}
	if got := store.bytesAt(entity.PageImage(7)); got != "old" {
		t.Fatalf("old image should survive, got=%q", got)
	}
}

func TestGeneratePicture_RefinerOutputIsImagePrompt(t *testing.T) {
	gen := &fakeGenerator{}
	refiner := &fakeRefiner{out: "  watercolor fox  "}
	ill := NewIllustrator(gen, newMemStore(), refiner, "")
	pc := &PromptContext{BookTitle: "My Book", ChapterTitle: "Intro"}

	if got := ill.GeneratePicture(context.Background(), &entity.Page{ID: 1, Content: "fox"}, false, pc); got != OutcomeGenerated {
		t.Fatalf("outcome: want=generated got=%s", got)
	}
	if len(refiner.got) != 1 || !strings.Contains(refiner.got[0], "<BOOK_TITLE> My Book </BOOK_TITLE>") {
		t.Fatalf("refiner input: got=%v", refiner.got)
	}
	if gen.imageCalls[0] != "watercolor fox" {
		t.Fatalf("image prompt: want=%q got=%q", "watercolor fox", gen.imageCalls[0])
	}
}

func TestGeneratePicture_RefinerFailureIsFailed(t *testing.T) {
	for name, refiner := range map[string]*fakeRefiner{
		"error": {err: errors.New("llm down")},
		"empty": {out: "   "},
	} {
		t.Run(name, func(t *testing.T) {
			gen := &fakeGenerator{}
			ill := NewIllustrator(gen, newMemStore(), refiner, "")
			if got := ill.GeneratePicture(context.Background(), &entity.Page{ID: 1}, false, nil); got != OutcomeFailed {
				t.Fatalf("outcome: want=failed got=%s", got)
			}
			if gen.imageCount() != 0 {
				t.Fatalf("provider should not be called, got=%d", gen.imageCount())
			}
		})
	}
}

func TestGeneratePicture_SlotCheckErrorIsFailed(t *testing.T) {
	gen := &fakeGenerator{}
	store := newMemStore()
	store.checkErr = errors.New("db down")
	ill := NewIllustrator(gen, store, nil, "")

	if got := ill.GeneratePicture(context.Background(), &entity.Page{ID: 1}, false, nil); got != OutcomeFailed {
		t.Fatalf("outcome: want=failed got=%s", got)
	}
	if gen.imageCount() != 0 {
		t.Fatalf("provider should not be called")
	}
}
