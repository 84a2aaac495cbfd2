package repository

import (
	"context"

	"storybook-media-api/internal/domain/entity"
)

// BookRepository 书籍仓储接口
type BookRepository interface {
	// Create 创建书籍（状态强制为草稿）
	Create(ctx context.Context, book *entity.Book) error

	// CreateChapter 创建章节
	CreateChapter(ctx context.Context, chapter *entity.Chapter) error

	// CreatePage 创建页面
	CreatePage(ctx context.Context, page *entity.Page) error

	// GetByID 根据 ID 获取书籍（不含章节）
	GetByID(ctx context.Context, id int64) (*entity.Book, error)

	// LoadTree 加载书籍及其章节、页面，按阅读顺序排序
	LoadTree(ctx context.Context, id int64) (*entity.Book, error)

	// FindPage 根据页面 ID 加载所属书籍的完整树
	FindPage(ctx context.Context, pageID int64) (*entity.Book, *entity.Page, error)

	// UpdateStatus 更新书籍状态
	UpdateStatus(ctx context.Context, id int64, status entity.BookStatus) error
}
