// Package entity 定义领域实体
package entity

import "time"

// MediaEventType 媒体事件类型
type MediaEventType string

const (
	MediaEventBatchCompleted MediaEventType = "media.batch_completed"
	MediaEventBookPublished  MediaEventType = "media.book_published"
)

// BatchCompletedEvent 批量生成结束事件
type BatchCompletedEvent struct {
	BookID      int64     `json:"book_id"`
	Operation   string    `json:"operation"`
	Total       int       `json:"total"`
	Generated   int       `json:"generated"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
	Interrupted bool      `json:"interrupted,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	FinishedAt  time.Time `json:"finished_at"`
}

// BookPublishedEvent 书籍发布事件
type BookPublishedEvent struct {
	BookID        int64      `json:"book_id"`
	From          BookStatus `json:"from"`
	HasAudio      bool       `json:"has_audio"`
	NarratedPages int        `json:"narrated_pages"`
	PublishedAt   time.Time  `json:"published_at"`
}
