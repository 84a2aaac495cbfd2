package media

import (
	"context"
	"io"
	"strings"
	"testing"

	"storybook-media-api/internal/domain/entity"
	"storybook-media-api/internal/domain/repository"
	apperrors "storybook-media-api/pkg/errors"
)

var _ repository.BookRepository = (*memBooks)(nil)

type mediaFixture struct {
	gen     *fakeGenerator
	store   *memStore
	books   *memBooks
	events  *recordedEvents
	service *Service
}

func newMediaFixture(book *entity.Book) *mediaFixture {
	f := &mediaFixture{
		gen:    &fakeGenerator{},
		store:  newMemStore(),
		books:  newMemBooks(book),
		events: &recordedEvents{},
	}
	pacer := &countingPacer{}
	illustrator := NewIllustrator(f.gen, f.store, nil, "1024x1024")
	narrator := NewNarrator(f.gen, f.store, pacer, "alloy", "mp3")
	batch := NewBatchOrchestrator(illustrator, f.store, pacer, f.events)
	publisher := NewPublisher(f.books, narrator, f.events)
	f.service = NewService(f.books, f.store, illustrator, narrator, batch, publisher)
	return f
}

func TestPublish_NarratesThenPublishes(t *testing.T) {
	f := newMediaFixture(storyBook())

	res, err := f.service.Publish(context.Background(), 1)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.Book.Status != entity.BookStatusPublished || f.books.status(1) != entity.BookStatusPublished {
		t.Fatalf("status: want=Published got=%s/%s", res.Book.Status, f.books.status(1))
	}
	if res.NarratedPages != 3 || res.Audio == nil {
		t.Fatalf("result: want 3 pages with audio got=%+v", res)
	}
	// 3 次逐页朗读 + 1 次整书朗读，整书在最后
	if len(f.gen.audioCalls) != 4 || f.gen.audioCalls[0] != "My Book. Intro. Hello." {
		t.Fatalf("audio calls: got=%q", f.gen.audioCalls)
	}
	if len(f.events.published) != 1 || !f.events.published[0].HasAudio || f.events.published[0].From != entity.BookStatusDraft {
		t.Fatalf("published event: got=%+v", f.events.published)
	}
}

func TestPublish_NarrationFailureStillPublishes(t *testing.T) {
	f := newMediaFixture(storyBook())
	f.gen.failAudio = true

	res, err := f.service.Publish(context.Background(), 1)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.Audio != nil || res.NarratedPages != 0 {
		t.Fatalf("result: want no audio got=%+v", res)
	}
	if f.books.status(1) != entity.BookStatusPublished {
		t.Fatalf("status: want=Published got=%s", f.books.status(1))
	}
}

func TestPublicationTransitions(t *testing.T) {
	book := storyBook()
	f := newMediaFixture(book)
	ctx := context.Background()

	if _, err := f.service.Archive(ctx, 1); !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("archive draft: want InvalidTransition got=%v", err)
	}
	if _, err := f.service.Publish(ctx, 1); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := f.service.Publish(ctx, 1); !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("publish published: want InvalidTransition got=%v", err)
	}
	if _, err := f.service.Unarchive(ctx, 1); !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("unarchive published: want InvalidTransition got=%v", err)
	}
	if b, err := f.service.Archive(ctx, 1); err != nil || b.Status != entity.BookStatusArchived {
		t.Fatalf("archive: got=%v err=%v", b, err)
	}
	if _, err := f.service.Publish(ctx, 1); err != nil {
		t.Fatalf("republish archived: %v", err)
	}
	if _, err := f.service.Archive(ctx, 1); err != nil {
		t.Fatalf("archive again: %v", err)
	}
	if b, err := f.service.Unarchive(ctx, 1); err != nil || b.Status != entity.BookStatusDraft {
		t.Fatalf("unarchive: got=%v err=%v", b, err)
	}

	want := []entity.BookStatus{
		entity.BookStatusPublished, entity.BookStatusArchived, entity.BookStatusPublished,
		entity.BookStatusArchived, entity.BookStatusDraft,
	}
	if len(f.books.updates) != len(want) {
		t.Fatalf("updates: want=%v got=%v", want, f.books.updates)
	}
	for i := range want {
		if f.books.updates[i] != want[i] {
			t.Fatalf("updates: want=%v got=%v", want, f.books.updates)
		}
	}
}

func TestPublish_UnknownBook(t *testing.T) {
	f := newMediaFixture(storyBook())
	if _, err := f.service.Publish(context.Background(), 404); !apperrors.HasCode(err, apperrors.CodeBookNotFound) {
		t.Fatalf("Publish: want BookNotFound got=%v", err)
	}
}

func TestService_GeneratePictureDerivesContext(t *testing.T) {
	f := newMediaFixture(storyBook())

	got, err := f.service.GeneratePicture(context.Background(), 201, false)
	if err != nil || got != OutcomeGenerated {
		t.Fatalf("GeneratePicture: want generated got=%s err=%v", got, err)
	}
	if len(f.gen.imageCalls) != 1 {
		t.Fatalf("provider calls: want=1 got=%d", len(f.gen.imageCalls))
	}
	prompt := f.gen.imageCalls[0]
	for _, want := range []string{"<BOOK_TITLE> My Book </BOOK_TITLE>", "<CHAPTER_TITLE> Middle </CHAPTER_TITLE>", "Hello\nWorld"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q: %q", want, prompt)
		}
	}

	if _, err := f.service.GeneratePicture(context.Background(), 999, false); !apperrors.HasCode(err, apperrors.CodePageNotFound) {
		t.Fatalf("unknown page: want PageNotFound got=%v", err)
	}
}

func TestService_GenerateAllPicturesUnknownBook(t *testing.T) {
	f := newMediaFixture(storyBook())
	if _, err := f.service.GenerateAllPictures(context.Background(), 404, false); !apperrors.HasCode(err, apperrors.CodeBookNotFound) {
		t.Fatalf("want BookNotFound got=%v", err)
	}
}

func TestService_ReaderFeaturesRequirePublished(t *testing.T) {
	f := newMediaFixture(storyBook())
	ctx := context.Background()

	if _, err := f.service.AudioPlaylist(ctx, 1); !apperrors.HasCode(err, apperrors.CodeNotPublished) {
		t.Fatalf("playlist draft: want NotPublished got=%v", err)
	}
	if _, _, err := f.service.OpenBookAudio(ctx, 1); !apperrors.HasCode(err, apperrors.CodeNotPublished) {
		t.Fatalf("book audio draft: want NotPublished got=%v", err)
	}

	f.gen.failAudioFor = map[string]bool{"World": true}
	if _, err := f.service.Publish(ctx, 1); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	playlist, err := f.service.AudioPlaylist(ctx, 1)
	if err != nil {
		t.Fatalf("AudioPlaylist: %v", err)
	}
	if len(playlist) != 2 || playlist[0].PageID != 101 || playlist[1].PageID != 201 {
		t.Fatalf("playlist: want pages [101 201] got=%+v", playlist)
	}
	if playlist[0].URL == "" || playlist[1].ChapterTitle != "Middle" {
		t.Fatalf("playlist entries: got=%+v", playlist)
	}

	rc, asset, err := f.service.OpenBookAudio(ctx, 1)
	if err != nil {
		t.Fatalf("OpenBookAudio: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if asset.ContentType != "audio/mpeg" || len(data) == 0 {
		t.Fatalf("book audio: got=%s/%d bytes", asset.ContentType, len(data))
	}

	rc, _, err = f.service.OpenPageAudio(ctx, 101)
	if err != nil {
		t.Fatalf("OpenPageAudio: %v", err)
	}
	rc.Close()
	if _, _, err := f.service.OpenPageAudio(ctx, 102); !apperrors.HasCode(err, apperrors.CodeAssetNotFound) {
		t.Fatalf("page without audio: want AssetNotFound got=%v", err)
	}
}
