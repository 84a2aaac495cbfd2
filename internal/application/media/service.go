package media

import (
	"context"
	"io"

	"storybook-media-api/internal/domain/entity"
	"storybook-media-api/internal/domain/repository"
	apperrors "storybook-media-api/pkg/errors"
)

// Service 按 ID 调用的媒体操作入口
type Service struct {
	books       repository.BookRepository
	assets      AssetStore
	illustrator *Illustrator
	narrator    *Narrator
	batch       *BatchOrchestrator
	publisher   *Publisher
}

// NewService 创建媒体服务
func NewService(
	books repository.BookRepository,
	assets AssetStore,
	illustrator *Illustrator,
	narrator *Narrator,
	batch *BatchOrchestrator,
	publisher *Publisher,
) *Service {
	return &Service{
		books:       books,
		assets:      assets,
		illustrator: illustrator,
		narrator:    narrator,
		batch:       batch,
		publisher:   publisher,
	}
}

// PlaylistEntry 朗读播放列表项
type PlaylistEntry struct {
	PageID       int64  `json:"page_id"`
	ChapterID    int64  `json:"chapter_id"`
	ChapterTitle string `json:"chapter_title"`
	ContentType  string `json:"content_type"`
	// URL 存储后端无公开地址时为空，改由 /v1/pages/:id/audio 下载
	URL string `json:"url,omitempty"`
}

func (s *Service) loadBook(ctx context.Context, bookID int64) (*entity.Book, error) {
	book, err := s.books.LoadTree(ctx, bookID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load book")
	}
	if book == nil {
		return nil, apperrors.ErrBookNotFound
	}
	return book, nil
}

// GenerateAllPictures 为整本书生成插图
func (s *Service) GenerateAllPictures(ctx context.Context, bookID int64, replaceExisting bool) (BatchOutcome, error) {
	book, err := s.loadBook(ctx, bookID)
	if err != nil {
		return BatchOutcome{}, err
	}
	return s.batch.GenerateAllPictures(ctx, book, replaceExisting), nil
}

// RetryFailedPictures 为没有插图的页面重新生成
func (s *Service) RetryFailedPictures(ctx context.Context, bookID int64) (BatchOutcome, error) {
	book, err := s.loadBook(ctx, bookID)
	if err != nil {
		return BatchOutcome{}, err
	}
	return s.batch.RetryFailedPictures(ctx, book), nil
}

// GeneratePicture 为单页生成插图，上下文取自所属书籍
func (s *Service) GeneratePicture(ctx context.Context, pageID int64, replaceExisting bool) (Outcome, error) {
	book, page, err := s.books.FindPage(ctx, pageID)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load page")
	}
	if page == nil {
		return 0, apperrors.ErrPageNotFound
	}
	return s.illustrator.GeneratePicture(ctx, page, replaceExisting, NewReadingOrder(book).ContextFor(pageID)), nil
}

// GenerateFullAudio 生成整书音频，没有产出时返回 nil
func (s *Service) GenerateFullAudio(ctx context.Context, bookID int64, voice, format string) (*entity.Asset, error) {
	book, err := s.loadBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return s.narrator.GenerateFullAudio(ctx, book, voice, format), nil
}

// Publish 发布书籍
func (s *Service) Publish(ctx context.Context, bookID int64) (*PublishResult, error) {
	return s.publisher.Publish(ctx, bookID)
}

// Archive 归档书籍
func (s *Service) Archive(ctx context.Context, bookID int64) (*entity.Book, error) {
	return s.publisher.Archive(ctx, bookID)
}

// Unarchive 取消归档
func (s *Service) Unarchive(ctx context.Context, bookID int64) (*entity.Book, error) {
	return s.publisher.Unarchive(ctx, bookID)
}

// AudioPlaylist 按阅读顺序列出已有朗读音频的页面，仅限已发布书籍
func (s *Service) AudioPlaylist(ctx context.Context, bookID int64) ([]PlaylistEntry, error) {
	book, err := s.loadBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsPublished() {
		return nil, apperrors.ErrNotPublished
	}

	order := NewReadingOrder(book)
	playlist := make([]PlaylistEntry, 0, order.Len())
	for _, pos := range order.Positions() {
		asset, err := s.assets.Lookup(ctx, entity.PageAudio(pos.Page.ID))
		if err != nil {
			return nil, err
		}
		if asset == nil {
			continue
		}
		playlist = append(playlist, PlaylistEntry{
			PageID:       pos.Page.ID,
			ChapterID:    pos.Chapter.ID,
			ChapterTitle: pos.Chapter.Title,
			ContentType:  asset.ContentType,
			URL:          s.assets.PublicURL(asset),
		})
	}
	return playlist, nil
}

// OpenBookAudio 打开整书音频，仅限已发布书籍
func (s *Service) OpenBookAudio(ctx context.Context, bookID int64) (io.ReadCloser, *entity.Asset, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load book")
	}
	if book == nil {
		return nil, nil, apperrors.ErrBookNotFound
	}
	if !book.IsPublished() {
		return nil, nil, apperrors.ErrNotPublished
	}
	return s.assets.Open(ctx, entity.BookAudio(bookID))
}

// OpenPageAudio 打开单页朗读音频，仅限已发布书籍
func (s *Service) OpenPageAudio(ctx context.Context, pageID int64) (io.ReadCloser, *entity.Asset, error) {
	book, page, err := s.books.FindPage(ctx, pageID)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load page")
	}
	if page == nil {
		return nil, nil, apperrors.ErrPageNotFound
	}
	if !book.IsPublished() {
		return nil, nil, apperrors.ErrNotPublished
	}
	return s.assets.Open(ctx, entity.PageAudio(pageID))
}

// OpenPageImage 打开页面插图
func (s *Service) OpenPageImage(ctx context.Context, pageID int64) (io.ReadCloser, *entity.Asset, error) {
	return s.assets.Open(ctx, entity.PageImage(pageID))
}

// AssetURL 资产公开地址，存储后端不支持时为空
func (s *Service) AssetURL(asset *entity.Asset) string {
	if asset == nil {
		return ""
	}
	return s.assets.PublicURL(asset)
}
