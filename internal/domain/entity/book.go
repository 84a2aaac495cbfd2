// Package entity 定义领域实体
package entity

import (
	"fmt"
	"time"
)

// BookStatus 书籍发布状态
type BookStatus string

const (
	BookStatusDraft     BookStatus = "Draft"
	BookStatusPublished BookStatus = "Published"
	BookStatusArchived  BookStatus = "Archived"
)

// ParseBookStatus 解析状态字符串
func ParseBookStatus(s string) (BookStatus, error) {
	switch BookStatus(s) {
	case BookStatusDraft, BookStatusPublished, BookStatusArchived:
		return BookStatus(s), nil
	default:
		return "", fmt.Errorf("unknown book status %q", s)
	}
}

// bookTransitions 合法的状态迁移
var bookTransitions = map[BookStatus][]BookStatus{
	BookStatusDraft:     {BookStatusPublished},
	BookStatusArchived:  {BookStatusPublished, BookStatusDraft},
	BookStatusPublished: {BookStatusArchived},
}

// CanTransition 检查状态迁移是否合法
func (s BookStatus) CanTransition(to BookStatus) bool {
	for _, next := range bookTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Book 书籍实体
type Book struct {
	ID              int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title           string     `json:"title" gorm:"type:varchar(255);not null"`
	LearningOutcome string     `json:"learning_outcome,omitempty" gorm:"type:text"`
	ReadingLevel    string     `json:"reading_level,omitempty" gorm:"type:varchar(100)"`
	Status          BookStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Chapters        []*Chapter `json:"chapters,omitempty" gorm:"foreignKey:BookID"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Book) TableName() string {
	return "books"
}

// NewBook 创建新书籍，状态始终为草稿
func NewBook(title, learningOutcome, readingLevel string) *Book {
	now := time.Now()
	return &Book{
		Title:           title,
		LearningOutcome: learningOutcome,
		ReadingLevel:    readingLevel,
		Status:          BookStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsPublished 是否已发布
func (b *Book) IsPublished() bool {
	return b.Status == BookStatusPublished
}

// PageCount 统计已加载的页数
func (b *Book) PageCount() int {
	n := 0
	for _, ch := range b.Chapters {
		n += len(ch.Pages)
	}
	return n
}
