package dto

import (
	"time"

	"storybook-media-api/internal/application/media"
	"storybook-media-api/internal/domain/entity"
)

// BatchOutcomeResponse 批量生成结果
type BatchOutcomeResponse struct {
	BookID      int64  `json:"book_id"`
	Total       int    `json:"total"`
	Generated   int    `json:"generated"`
	Failed      int    `json:"failed"`
	Skipped     int    `json:"skipped"`
	Interrupted bool   `json:"interrupted,omitempty"`
	Summary     string `json:"summary"`
}

// ToBatchOutcomeResponse 转换批量生成结果
func ToBatchOutcomeResponse(bookID int64, out media.BatchOutcome) *BatchOutcomeResponse {
	return &BatchOutcomeResponse{
		BookID:      bookID,
		Total:       out.Total,
		Generated:   out.Generated,
		Failed:      out.Failed,
		Skipped:     out.Skipped,
		Interrupted: out.Interrupted,
		Summary:     out.Summary(),
	}
}

// PictureResponse 单页插图结果
type PictureResponse struct {
	PageID  int64         `json:"page_id"`
	Outcome media.Outcome `json:"outcome"`
}

// BookResponse 书籍状态
type BookResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToBookResponse 转换书籍
func ToBookResponse(b *entity.Book) *BookResponse {
	if b == nil {
		return nil
	}
	return &BookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Status:    string(b.Status),
		UpdatedAt: b.UpdatedAt,
	}
}

// AssetResponse 资产元数据
type AssetResponse struct {
	ID          int64     `json:"id"`
	Slot        string    `json:"slot"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToAssetResponse 转换资产，nil 返回 nil
func ToAssetResponse(a *entity.Asset, url string) *AssetResponse {
	if a == nil {
		return nil
	}
	return &AssetResponse{
		ID:          a.ID,
		Slot:        a.Ref().String(),
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		URL:         url,
		CreatedAt:   a.CreatedAt,
	}
}

// FullAudioResponse 整书音频生成结果，Audio 为 nil 表示没有产出
type FullAudioResponse struct {
	BookID int64          `json:"book_id"`
	Audio  *AssetResponse `json:"audio"`
}

// PublishResponse 发布结果
type PublishResponse struct {
	Book          *BookResponse  `json:"book"`
	HasAudio      bool           `json:"has_audio"`
	NarratedPages int            `json:"narrated_pages"`
	Audio         *AssetResponse `json:"audio,omitempty"`
}

// PlaylistResponse 朗读播放列表
type PlaylistResponse struct {
	BookID int64                 `json:"book_id"`
	Audios []media.PlaylistEntry `json:"audios"`
}
