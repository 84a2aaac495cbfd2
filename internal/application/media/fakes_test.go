package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"storybook-media-api/internal/domain/entity"
	"storybook-media-api/internal/workflow/port"
	apperrors "storybook-media-api/pkg/errors"
)

type fakeGenerator struct {
	mu         sync.Mutex
	imageCalls []string
	audioCalls []string
	failImage  bool
	failAudio  bool
	// failAudioFor 朗读文本命中时失败
	failAudioFor map[string]bool
}

func (g *fakeGenerator) GenerateImage(_ context.Context, prompt, _ string) (*port.GeneratedAsset, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.imageCalls = append(g.imageCalls, prompt)
	if g.failImage {
		return nil, port.NewGenerationFailed("fake", "image", 500, errors.New("provider down"))
	}
	return &port.GeneratedAsset{Content: []byte("png-bytes"), ContentType: "image/png"}, nil
}

func (g *fakeGenerator) GenerateAudio(_ context.Context, text, _, _ string) (*port.GeneratedAsset, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.audioCalls = append(g.audioCalls, text)
	if g.failAudio || g.failAudioFor[text] {
		return nil, port.NewGenerationFailed("fake", "audio", 429, errors.New("quota exceeded"))
	}
	return &port.GeneratedAsset{Content: []byte("mp3:" + text), ContentType: "audio/mpeg"}, nil
}

func (g *fakeGenerator) imageCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.imageCalls)
}

type memStore struct {
	mu       sync.Mutex
	slots    map[entity.SlotRef]*entity.Asset
	content  map[entity.SlotRef][]byte
	nextID   int64
	checkErr error
}

func newMemStore() *memStore {
	return &memStore{
		slots:   make(map[entity.SlotRef]*entity.Asset),
		content: make(map[entity.SlotRef][]byte),
	}
}

func (s *memStore) IsAttached(_ context.Context, ref entity.SlotRef) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkErr != nil {
		return false, s.checkErr
	}
	_, ok := s.slots[ref]
	return ok, nil
}

func (s *memStore) Lookup(_ context.Context, ref entity.SlotRef) (*entity.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[ref], nil
}

func (s *memStore) AttachedOwners(_ context.Context, owner entity.OwnerType, ids []int64, slot entity.Slot) (map[int64]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkErr != nil {
		return nil, s.checkErr
	}
	out := make(map[int64]bool)
	for _, id := range ids {
		if _, ok := s.slots[entity.SlotRef{Owner: owner, OwnerID: id, Slot: slot}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (s *memStore) put(ref entity.SlotRef, content []byte, contentType string) *entity.Asset {
	s.nextID++
	a := &entity.Asset{
		ID:          s.nextID,
		OwnerType:   ref.Owner,
		OwnerID:     ref.OwnerID,
		Slot:        ref.Slot,
		ContentType: contentType,
		StorageKey:  ref.String(),
		SizeBytes:   int64(len(content)),
	}
	s.slots[ref] = a
	s.content[ref] = append([]byte(nil), content...)
	return a
}

func (s *memStore) Attach(_ context.Context, ref entity.SlotRef, content []byte, contentType string) (*entity.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[ref]; ok {
		return nil, apperrors.ErrAssetConflict
	}
	return s.put(ref, content, contentType), nil
}

func (s *memStore) Release(_ context.Context, ref entity.SlotRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, ref)
	delete(s.content, ref)
	return nil
}

func (s *memStore) Replace(_ context.Context, ref entity.SlotRef, content []byte, contentType string) (*entity.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ref, content, contentType), nil
}

func (s *memStore) Open(_ context.Context, ref entity.SlotRef) (io.ReadCloser, *entity.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.slots[ref]
	if !ok {
		return nil, nil, apperrors.ErrAssetNotFound
	}
	return io.NopCloser(bytes.NewReader(s.content[ref])), a, nil
}

func (s *memStore) PublicURL(a *entity.Asset) string {
	return "https://cdn.test/" + a.StorageKey
}

func (s *memStore) seed(ref entity.SlotRef, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(ref, []byte(content), "image/png")
}

func (s *memStore) has(ref entity.SlotRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.slots[ref]
	return ok
}

func (s *memStore) bytesAt(ref entity.SlotRef) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.content[ref])
}

type countingPacer struct {
	waits int
	err   error
}

func (p *countingPacer) Wait(ctx context.Context) error {
	if p.err != nil {
		return p.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p.waits++
	return nil
}

type fakeRefiner struct {
	out string
	err error
	got []string
}

func (r *fakeRefiner) Refine(_ context.Context, prompt string) (string, error) {
	r.got = append(r.got, prompt)
	return r.out, r.err
}

type memBooks struct {
	mu      sync.Mutex
	books   map[int64]*entity.Book
	updates []entity.BookStatus
}

func newMemBooks(books ...*entity.Book) *memBooks {
	m := &memBooks{books: make(map[int64]*entity.Book)}
	for _, b := range books {
		m.books[b.ID] = b
	}
	return m
}

func (m *memBooks) Create(_ context.Context, b *entity.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[b.ID] = b
	return nil
}

func (m *memBooks) CreateChapter(context.Context, *entity.Chapter) error { return nil }
func (m *memBooks) CreatePage(context.Context, *entity.Page) error       { return nil }

func (m *memBooks) GetByID(_ context.Context, id int64) (*entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	cp.Chapters = nil
	return &cp, nil
}

func (m *memBooks) LoadTree(_ context.Context, id int64) (*entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (m *memBooks) FindPage(_ context.Context, pageID int64) (*entity.Book, *entity.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.books {
		for _, ch := range b.Chapters {
			for _, p := range ch.Pages {
				if p.ID == pageID {
					cp := *b
					return &cp, p, nil
				}
			}
		}
	}
	return nil, nil, nil
}

func (m *memBooks) UpdateStatus(_ context.Context, id int64, status entity.BookStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return errors.New("record not found")
	}
	b.Status = status
	m.updates = append(m.updates, status)
	return nil
}

func (m *memBooks) status(id int64) entity.BookStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.books[id].Status
}

type recordedEvents struct {
	mu        sync.Mutex
	batches   []*entity.BatchCompletedEvent
	published []*entity.BookPublishedEvent
	err       error
}

func (r *recordedEvents) PublishBatchCompleted(_ context.Context, evt *entity.BatchCompletedEvent) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, evt)
	return "1-0", r.err
}

func (r *recordedEvents) PublishBookPublished(_ context.Context, evt *entity.BookPublishedEvent) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, evt)
	return "1-0", r.err
}

// fakeClock After 立即推进时间并记录睡眠时长
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// storyBook 两章三页：Intro[Hello, World]、Middle[Again]
// 切片顺序故意打乱，阅读顺序只由 ID 决定
func storyBook() *entity.Book {
	return &entity.Book{
		ID:              1,
		Title:           "My Book",
		LearningOutcome: "Greetings",
		ReadingLevel:    "Grade 1",
		Status:          entity.BookStatusDraft,
		Chapters: []*entity.Chapter{
			{ID: 20, BookID: 1, Title: "Middle", Pages: []*entity.Page{
				{ID: 201, ChapterID: 20, Content: "Again"},
			}},
			{ID: 10, BookID: 1, Title: "Intro", Pages: []*entity.Page{
				{ID: 102, ChapterID: 10, Content: "World"},
				{ID: 101, ChapterID: 10, Title: "Opening", Content: "  Hello  "},
			}},
		},
	}
}
