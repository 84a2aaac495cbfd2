package entity

import (
	"time"
)

// Chapter 章节实体，书内顺序由自增 ID 决定
type Chapter struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	BookID      int64     `json:"book_id" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"type:varchar(255)"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Pages       []*Page   `json:"pages,omitempty" gorm:"foreignKey:ChapterID"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Chapter) TableName() string {
	return "chapters"
}

// NewChapter 创建新章节
func NewChapter(bookID int64, title, description string) *Chapter {
	now := time.Now()
	return &Chapter{
		BookID:      bookID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
