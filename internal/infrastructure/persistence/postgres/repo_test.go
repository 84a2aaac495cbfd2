package postgres

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storybook-media-api/internal/domain/entity"
	apperrors "storybook-media-api/pkg/errors"
)

func newTestClient(tb testing.TB) *Client {
	tb.Helper()

	dsn := filepath.Join(tb.TempDir(), "storybook.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	client := NewClientFromDB(db)
	if err := client.AutoMigrate(context.Background()); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return client
}

func seedBook(tb testing.TB, repo *BookRepository) *entity.Book {
	tb.Helper()
	ctx := context.Background()

	book := entity.NewBook("My Book", "Count to ten", "Grade 1")
	book.Status = entity.BookStatusPublished // Create 会强制重置为草稿
	if err := repo.Create(ctx, book); err != nil {
		tb.Fatalf("create book: %v", err)
	}
	for _, title := range []string{"Intro", "Middle"} {
		ch := entity.NewChapter(book.ID, title, "")
		if err := repo.CreateChapter(ctx, ch); err != nil {
			tb.Fatalf("create chapter: %v", err)
		}
		for _, content := range []string{title + " one", title + " two"} {
			if err := repo.CreatePage(ctx, entity.NewPage(ch.ID, content)); err != nil {
				tb.Fatalf("create page: %v", err)
			}
		}
	}
	return book
}

func TestBookRepository_LoadTreeReadingOrder(t *testing.T) {
	client := newTestClient(t)
	repo := NewBookRepository(client)
	ctx := context.Background()
	book := seedBook(t, repo)

	tree, err := repo.LoadTree(ctx, book.ID)
	if err != nil {
		t.Fatalf("LoadTree: %v", err)
	}
	if tree.Status != entity.BookStatusDraft {
		t.Fatalf("status: want=%s got=%s", entity.BookStatusDraft, tree.Status)
	}

	var got []string
	for _, ch := range tree.Chapters {
		for _, p := range ch.Pages {
			got = append(got, p.Content)
		}
	}
	want := []string{"Intro one", "Intro two", "Middle one", "Middle two"}
	if len(got) != len(want) {
		t.Fatalf("pages: want=%v got=%v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("page %d: want=%q got=%q", i, want[i], got[i])
		}
	}

	missing, err := repo.LoadTree(ctx, book.ID+100)
	if err != nil || missing != nil {
		t.Fatalf("missing book: want=nil,nil got=%v,%v", missing, err)
	}
}

func TestBookRepository_FindPage(t *testing.T) {
	client := newTestClient(t)
	repo := NewBookRepository(client)
	ctx := context.Background()
	book := seedBook(t, repo)

	tree, _ := repo.LoadTree(ctx, book.ID)
	target := tree.Chapters[1].Pages[0]

	owner, page, err := repo.FindPage(ctx, target.ID)
	if err != nil {
		t.Fatalf("FindPage: %v", err)
	}
	if owner == nil || owner.ID != book.ID {
		t.Fatalf("owner: want=%d got=%+v", book.ID, owner)
	}
	if page == nil || page.Content != "Middle one" {
		t.Fatalf("page: want=Middle one got=%+v", page)
	}

	owner, page, err = repo.FindPage(ctx, 9999)
	if err != nil || owner != nil || page != nil {
		t.Fatalf("missing page: want=nil got=%v,%v,%v", owner, page, err)
	}
}

func TestBookRepository_UpdateStatus(t *testing.T) {
	client := newTestClient(t)
	repo := NewBookRepository(client)
	ctx := context.Background()
	book := seedBook(t, repo)

	if err := repo.UpdateStatus(ctx, book.ID, entity.BookStatusPublished); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, _ := repo.GetByID(ctx, book.ID)
	if got.Status != entity.BookStatusPublished {
		t.Fatalf("status: want=%s got=%s", entity.BookStatusPublished, got.Status)
	}
	if err := repo.UpdateStatus(ctx, 9999, entity.BookStatusArchived); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("missing book: want ErrRecordNotFound got=%v", err)
	}
}

func TestAssetRepository_OneAssetPerSlot(t *testing.T) {
	client := newTestClient(t)
	repo := NewAssetRepository(client)
	ctx := context.Background()
	ref := entity.PageImage(7)

	first := &entity.Asset{OwnerType: ref.Owner, OwnerID: ref.OwnerID, Slot: ref.Slot, ContentType: "image/png", StorageKey: "a"}
	if err := repo.Insert(ctx, first); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	second := &entity.Asset{OwnerType: ref.Owner, OwnerID: ref.OwnerID, Slot: ref.Slot, ContentType: "image/png", StorageKey: "b"}
	err := repo.Insert(ctx, second)
	if !apperrors.HasCode(err, apperrors.CodeAssetConflict) {
		t.Fatalf("second insert: want AssetConflict got=%v", err)
	}

	// 同一页面的音频槽位互不影响
	audio := entity.PageAudio(7)
	if err := repo.Insert(ctx, &entity.Asset{OwnerType: audio.Owner, OwnerID: audio.OwnerID, Slot: audio.Slot, ContentType: "audio/mpeg", StorageKey: "c"}); err != nil {
		t.Fatalf("audio insert: %v", err)
	}

	got, err := repo.Get(ctx, ref)
	if err != nil || got == nil || got.StorageKey != "a" {
		t.Fatalf("Get: want key=a got=%+v err=%v", got, err)
	}
}

func TestAssetRepository_DeleteIsIdempotent(t *testing.T) {
	client := newTestClient(t)
	repo := NewAssetRepository(client)
	ctx := context.Background()
	ref := entity.BookAudio(3)

	if err := repo.Insert(ctx, &entity.Asset{OwnerType: ref.Owner, OwnerID: ref.OwnerID, Slot: ref.Slot, ContentType: "audio/mpeg", StorageKey: "k"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	removed, err := repo.Delete(ctx, ref)
	if err != nil || removed == nil || removed.StorageKey != "k" {
		t.Fatalf("first delete: want key=k got=%+v err=%v", removed, err)
	}
	removed, err = repo.Delete(ctx, ref)
	if err != nil || removed != nil {
		t.Fatalf("second delete: want nil,nil got=%+v,%v", removed, err)
	}
	if got, _ := repo.Get(ctx, ref); got != nil {
		t.Fatalf("slot should be empty, got=%+v", got)
	}
}

func TestAssetRepository_ListByOwners(t *testing.T) {
	client := newTestClient(t)
	repo := NewAssetRepository(client)
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		ref := entity.PageImage(id)
		if err := repo.Insert(ctx, &entity.Asset{OwnerType: ref.Owner, OwnerID: ref.OwnerID, Slot: ref.Slot, ContentType: "image/png", StorageKey: ref.String()}); err != nil {
			t.Fatalf("insert %d: %v", id, err)
		}
	}

	assets, err := repo.ListByOwners(ctx, entity.OwnerTypePage, []int64{1, 3, 5}, entity.SlotImage)
	if err != nil {
		t.Fatalf("ListByOwners: %v", err)
	}
	if len(assets) != 2 || assets[0].OwnerID != 1 || assets[1].OwnerID != 3 {
		t.Fatalf("assets: want owners [1 3] got=%+v", assets)
	}
}

func TestTxManager_RollbackOnError(t *testing.T) {
	client := newTestClient(t)
	repo := NewAssetRepository(client)
	tx := NewTxManager(client)
	ctx := context.Background()
	ref := entity.PageImage(11)
	boom := errors.New("boom")

	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := repo.Insert(ctx, &entity.Asset{OwnerType: ref.Owner, OwnerID: ref.OwnerID, Slot: ref.Slot, ContentType: "image/png", StorageKey: "x"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTransaction: want boom got=%v", err)
	}
	if got, _ := repo.Get(ctx, ref); got != nil {
		t.Fatalf("insert should be rolled back, got=%+v", got)
	}
}
