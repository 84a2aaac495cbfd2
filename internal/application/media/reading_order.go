package media

import (
	"sort"
	"strings"

	"storybook-media-api/internal/domain/entity"
)

// PagePosition 页面在阅读顺序中的位置
type PagePosition struct {
	Chapter *entity.Chapter
	Page    *entity.Page
	Index   int
	// FirstInChapter 章节内第一页
	FirstInChapter bool
	// FirstOfBook 第一章的第一页
	FirstOfBook bool
}

// ReadingOrder 书籍按 章节ID → 页面ID 展开后的顺序
// 不修改传入的书籍树
type ReadingOrder struct {
	book      *entity.Book
	positions []PagePosition
	byID      map[int64]int
}

// NewReadingOrder 构建阅读顺序
func NewReadingOrder(book *entity.Book) *ReadingOrder {
	o := &ReadingOrder{book: book, byID: make(map[int64]int)}
	if book == nil {
		return o
	}

	chapters := make([]*entity.Chapter, 0, len(book.Chapters))
	for _, ch := range book.Chapters {
		if ch != nil {
			chapters = append(chapters, ch)
		}
	}
	sort.SliceStable(chapters, func(i, j int) bool { return chapters[i].ID < chapters[j].ID })

	for ci, ch := range chapters {
		pages := make([]*entity.Page, 0, len(ch.Pages))
		for _, p := range ch.Pages {
			if p != nil {
				pages = append(pages, p)
			}
		}
		sort.SliceStable(pages, func(i, j int) bool { return pages[i].ID < pages[j].ID })

		for pi, p := range pages {
			o.byID[p.ID] = len(o.positions)
			o.positions = append(o.positions, PagePosition{
				Chapter:        ch,
				Page:           p,
				Index:          len(o.positions),
				FirstInChapter: pi == 0,
				FirstOfBook:    ci == 0 && pi == 0,
			})
		}
	}
	return o
}

// Book 所属书籍
func (o *ReadingOrder) Book() *entity.Book {
	return o.book
}

// Positions 全部页面位置
func (o *ReadingOrder) Positions() []PagePosition {
	return o.positions
}

// Len 页数
func (o *ReadingOrder) Len() int {
	return len(o.positions)
}

// PageIDs 按阅读顺序的页面 ID
func (o *ReadingOrder) PageIDs() []int64 {
	ids := make([]int64, len(o.positions))
	for i, pos := range o.positions {
		ids[i] = pos.Page.ID
	}
	return ids
}

// Locate 查找页面位置
func (o *ReadingOrder) Locate(pageID int64) (PagePosition, bool) {
	i, ok := o.byID[pageID]
	if !ok {
		return PagePosition{}, false
	}
	return o.positions[i], true
}

// PriorText 目标页之前（跨章节）所有页面正文，以换行连接
func (o *ReadingOrder) PriorText(pageID int64) string {
	end, ok := o.byID[pageID]
	if !ok {
		return ""
	}
	parts := make([]string, 0, end)
	for _, pos := range o.positions[:end] {
		if c := strings.TrimSpace(pos.Page.Content); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "\n")
}

// ContextFor 生成页面的提示词上下文，页面不在本书中时返回 nil
func (o *ReadingOrder) ContextFor(pageID int64) *PromptContext {
	pos, ok := o.Locate(pageID)
	if !ok || o.book == nil {
		return nil
	}
	return &PromptContext{
		BookTitle:         strings.TrimSpace(o.book.Title),
		ReadingLevel:      strings.TrimSpace(o.book.ReadingLevel),
		LearningObjective: strings.TrimSpace(o.book.LearningOutcome),
		ChapterTitle:      strings.TrimSpace(pos.Chapter.Title),
		PriorText:         o.PriorText(pageID),
	}
}
