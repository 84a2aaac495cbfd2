package media

import (
	"strings"
	"testing"
)

func TestReadingOrder_SortsByID(t *testing.T) {
	order := NewReadingOrder(storyBook())

	ids := order.PageIDs()
	want := []int64{101, 102, 201}
	if len(ids) != len(want) {
		t.Fatalf("ids: want=%v got=%v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids: want=%v got=%v", want, ids)
		}
	}

	first, _ := order.Locate(101)
	if !first.FirstOfBook || !first.FirstInChapter {
		t.Fatalf("page 101: want first of book, got=%+v", first)
	}
	second, _ := order.Locate(102)
	if second.FirstInChapter || second.FirstOfBook {
		t.Fatalf("page 102: want non-first, got=%+v", second)
	}
	third, _ := order.Locate(201)
	if !third.FirstInChapter || third.FirstOfBook {
		t.Fatalf("page 201: want first in chapter only, got=%+v", third)
	}
	if _, ok := order.Locate(999); ok {
		t.Fatalf("unknown page should not be located")
	}
}

func TestReadingOrder_PriorTextSpansChapters(t *testing.T) {
	order := NewReadingOrder(storyBook())

	if got := order.PriorText(101); got != "" {
		t.Fatalf("prior(101): want empty got=%q", got)
	}
	if got := order.PriorText(201); got != "Hello\nWorld" {
		t.Fatalf("prior(201): want=%q got=%q", "Hello\nWorld", got)
	}
}

func TestReadingOrder_ContextFor(t *testing.T) {
	order := NewReadingOrder(storyBook())

	pc := order.ContextFor(201)
	if pc == nil {
		t.Fatalf("ContextFor: want context")
	}
	if pc.BookTitle != "My Book" || pc.ChapterTitle != "Middle" || pc.ReadingLevel != "Grade 1" ||
		pc.LearningObjective != "Greetings" || pc.PriorText != "Hello\nWorld" {
		t.Fatalf("context: got=%+v", pc)
	}
	if order.ContextFor(999) != nil {
		t.Fatalf("unknown page: want nil context")
	}
}

func TestBuildImagePrompt_Minimal(t *testing.T) {
	got := BuildImagePrompt("  A fox in the snow ", nil)
	if !strings.Contains(got, "<PAGE> A fox in the snow </PAGE>") {
		t.Fatalf("minimal prompt missing content: %q", got)
	}
	for _, tag := range []string{"BOOK_TITLE", "CHAPTER_TITLE", "PREVIOUS_PAGE_CONTENT"} {
		if strings.Contains(got, tag) {
			t.Fatalf("minimal prompt should not contain %s: %q", tag, got)
		}
	}
}

func TestBuildImagePrompt_Rich(t *testing.T) {
	got := BuildImagePrompt("Again", &PromptContext{
		BookTitle:         "My Book",
		ReadingLevel:      "Grade 1",
		LearningObjective: "Greetings",
		ChapterTitle:      "Middle",
		PriorText:         "Hello\nWorld",
	})

	for _, want := range []string{
		"<CHAPTER_TITLE> Middle </CHAPTER_TITLE>",
		"<BOOK_TITLE> My Book </BOOK_TITLE>",
		"<TARGET_LEVEL> Grade 1 </TARGET_LEVEL>",
		"<LEARNING_OBJECTIVE> Greetings </LEARNING_OBJECTIVE>",
		"<PREVIOUS_PAGE_CONTENT> Hello\nWorld </PREVIOUS_PAGE_CONTENT>",
		"<PAGE> Again </PAGE>",
		"historically and culturally accurate",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("rich prompt missing %q: %q", want, got)
		}
	}
}

func TestNarrationText(t *testing.T) {
	order := NewReadingOrder(storyBook())
	cases := []struct {
		pageID int64
		want   string
	}{
		{pageID: 101, want: "My Book. Intro. Hello."},
		{pageID: 102, want: "World"},
		{pageID: 201, want: "Middle. Again."},
	}
	for _, tc := range cases {
		pos, _ := order.Locate(tc.pageID)
		if got := NarrationText("My Book", pos); got != tc.want {
			t.Fatalf("page %d: want=%q got=%q", tc.pageID, tc.want, got)
		}
	}
}

func TestNarrationText_KeepsExistingPunctuation(t *testing.T) {
	book := storyBook()
	book.Title = "Wow!"
	order := NewReadingOrder(book)
	pos, _ := order.Locate(101)
	pos.Page.Content = "Hello?"

	if got := NarrationText(book.Title, pos); got != "Wow! Intro. Hello?" {
		t.Fatalf("narration: want=%q got=%q", "Wow! Intro. Hello?", got)
	}
}

func TestBookTranscript_OrderStable(t *testing.T) {
	got := BookTranscript(NewReadingOrder(storyBook()))
	want := "Opening.\nIntro.\nHello.\nIntro.\nWorld.\nMiddle.\nAgain."
	if got != want {
		t.Fatalf("transcript:\nwant=%q\ngot =%q", want, got)
	}
}

func TestBookTranscript_Empty(t *testing.T) {
	book := storyBook()
	for _, ch := range book.Chapters {
		ch.Title = ""
		for _, p := range ch.Pages {
			p.Title = ""
			p.Content = "   "
		}
	}
	if got := BookTranscript(NewReadingOrder(book)); got != "" {
		t.Fatalf("transcript: want empty got=%q", got)
	}
}

func TestBatchOutcome_Summary(t *testing.T) {
	var b BatchOutcome
	b.Total = 3
	b.Record(OutcomeGenerated)
	b.Record(OutcomeFailed)
	b.Record(OutcomeSkipped)
	if got := b.Summary(); got != "1 generated, 1 failed, 1 skipped of 3" {
		t.Fatalf("summary: got=%q", got)
	}
}
