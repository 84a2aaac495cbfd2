package media

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storybook-media-api/internal/domain/entity"
	"storybook-media-api/internal/domain/repository"
	apperrors "storybook-media-api/pkg/errors"
	"storybook-media-api/pkg/logger"
	"storybook-media-api/pkg/metrics"
)

// PublishResult 发布结果
type PublishResult struct {
	Book *entity.Book
	// Audio 整书音频，朗读失败时为 nil
	Audio         *entity.Asset
	NarratedPages int
}

// Publisher 书籍发布状态机
//
//	Draft/Archived --publish--> Published
//	Published --archive--> Archived
//	Archived --unarchive--> Draft
type Publisher struct {
	books    repository.BookRepository
	narrator *Narrator
	events   EventPublisher
}

// NewPublisher 创建发布状态机，events 可为 nil
func NewPublisher(books repository.BookRepository, narrator *Narrator, events EventPublisher) *Publisher {
	return &Publisher{
		books:    books,
		narrator: narrator,
		events:   events,
	}
}

func (p *Publisher) load(ctx context.Context, bookID int64, to entity.BookStatus) (*entity.Book, error) {
	book, err := p.books.LoadTree(ctx, bookID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load book")
	}
	if book == nil {
		return nil, apperrors.ErrBookNotFound
	}
	if !book.Status.CanTransition(to) {
		return nil, apperrors.ErrInvalidTransition.WithDetail(string(book.Status) + " -> " + string(to))
	}
	return book, nil
}

func (p *Publisher) commit(ctx context.Context, book *entity.Book, to entity.BookStatus) error {
	if err := p.books.UpdateStatus(ctx, book.ID, to); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update book status")
	}
	logger.Info(ctx, "book status changed", "from", book.Status, "to", to)
	book.Status = to
	return nil
}

// Publish 发布书籍
// 先逐页朗读再生成整书音频，朗读失败不会阻止发布
func (p *Publisher) Publish(ctx context.Context, bookID int64) (*PublishResult, error) {
	ctx = logger.WithBook(ctx, bookID)
	ctx, span := tracer.Start(ctx, "media.Publish",
		trace.WithAttributes(attribute.Int64("book.id", bookID)))
	defer span.End()

	book, err := p.load(ctx, bookID, entity.BookStatusPublished)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	from := book.Status

	narrated := p.narrator.NarratePages(ctx, book)
	audio := p.narrator.GenerateFullAudio(ctx, book, "", "")

	if err := p.commit(ctx, book, entity.BookStatusPublished); err != nil {
		span.RecordError(err)
		return nil, err
	}

	label := "with_audio"
	if audio == nil {
		label = "without_audio"
		logger.Warn(ctx, "book published without audio")
	}
	metrics.PublishTotal.WithLabelValues(label).Inc()
	span.SetAttributes(attribute.Bool("has_audio", audio != nil), attribute.Int("pages.narrated", narrated))

	if p.events != nil {
		evt := &entity.BookPublishedEvent{
			BookID:        book.ID,
			From:          from,
			HasAudio:      audio != nil,
			NarratedPages: narrated,
			PublishedAt:   time.Now(),
		}
		if _, err := p.events.PublishBookPublished(context.WithoutCancel(ctx), evt); err != nil {
			logger.Warn(ctx, "failed to publish book event", "error", err.Error())
		}
	}

	return &PublishResult{Book: book, Audio: audio, NarratedPages: narrated}, nil
}

// Archive 归档已发布的书籍
func (p *Publisher) Archive(ctx context.Context, bookID int64) (*entity.Book, error) {
	return p.transition(logger.WithBook(ctx, bookID), bookID, entity.BookStatusArchived)
}

// Unarchive 将归档的书籍恢复为草稿
func (p *Publisher) Unarchive(ctx context.Context, bookID int64) (*entity.Book, error) {
	return p.transition(logger.WithBook(ctx, bookID), bookID, entity.BookStatusDraft)
}

func (p *Publisher) transition(ctx context.Context, bookID int64, to entity.BookStatus) (*entity.Book, error) {
	book, err := p.load(ctx, bookID, to)
	if err != nil {
		return nil, err
	}
	if err := p.commit(ctx, book, to); err != nil {
		return nil, err
	}
	return book, nil
}
