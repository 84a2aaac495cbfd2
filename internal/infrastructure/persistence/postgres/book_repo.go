// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storybook-media-api/internal/domain/entity"
)

// BookRepository 书籍仓储实现
type BookRepository struct {
	client *Client
}

// NewBookRepository 创建书籍仓储
func NewBookRepository(client *Client) *BookRepository {
	return &BookRepository{client: client}
}

// Create 创建书籍
func (r *BookRepository) Create(ctx context.Context, book *entity.Book) error {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.Create")
	defer span.End()

	book.Status = entity.BookStatusDraft
	db := getDB(ctx, r.client.db)
	if err := db.Omit("Chapters").Create(book).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// CreateChapter 创建章节
func (r *BookRepository) CreateChapter(ctx context.Context, chapter *entity.Chapter) error {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.CreateChapter")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Omit("Pages").Create(chapter).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	return nil
}

// CreatePage 创建页面
func (r *BookRepository) CreatePage(ctx context.Context, page *entity.Page) error {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.CreatePage")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(page).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create page: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取书籍
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*entity.Book, error) {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var book entity.Book
	if err := db.First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

// LoadTree 加载书籍、章节与页面，章节和页面均按 ID 升序
func (r *BookRepository) LoadTree(ctx context.Context, id int64) (*entity.Book, error) {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.LoadTree")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var book entity.Book
	err := db.
		Preload("Chapters", func(tx *gorm.DB) *gorm.DB { return tx.Order("chapters.id ASC") }).
		Preload("Chapters.Pages", func(tx *gorm.DB) *gorm.DB { return tx.Order("pages.id ASC") }).
		First(&book, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load book tree: %w", err)
	}
	return &book, nil
}

// FindPage 根据页面 ID 加载所属书籍，返回的 page 指向树中的节点
func (r *BookRepository) FindPage(ctx context.Context, pageID int64) (*entity.Book, *entity.Page, error) {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.FindPage")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var bookIDs []int64
	err := db.Model(&entity.Page{}).
		Joins("JOIN chapters ON chapters.id = pages.chapter_id").
		Where("pages.id = ?", pageID).
		Limit(1).
		Pluck("chapters.book_id", &bookIDs).Error
	if err != nil {
		span.RecordError(err)
		return nil, nil, fmt.Errorf("failed to resolve page owner: %w", err)
	}
	if len(bookIDs) == 0 {
		return nil, nil, nil
	}

	book, err := r.LoadTree(ctx, bookIDs[0])
	if err != nil || book == nil {
		return nil, nil, err
	}
	for _, ch := range book.Chapters {
		for _, p := range ch.Pages {
			if p.ID == pageID {
				return book, p, nil
			}
		}
	}
	return nil, nil, nil
}

// UpdateStatus 更新书籍状态
func (r *BookRepository) UpdateStatus(ctx context.Context, id int64, status entity.BookStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.UpdateStatus")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.Book{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update book status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update book status: book %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}
