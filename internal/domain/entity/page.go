package entity

import (
	"strings"
	"time"
)

// Page 页面实体
type Page struct {
	ID        int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ChapterID int64 `json:"chapter_id" gorm:"index;not null"`
	// Title 可选页标题，仅用于整书朗读稿
	Title     string    `json:"title,omitempty" gorm:"type:varchar(255)"`
	Content   string    `json:"content" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Page) TableName() string {
	return "pages"
}

// NewPage 创建新页面
func NewPage(chapterID int64, content string) *Page {
	now := time.Now()
	return &Page{
		ChapterID: chapterID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasContent 正文是否非空
func (p *Page) HasContent() bool {
	return strings.TrimSpace(p.Content) != ""
}
