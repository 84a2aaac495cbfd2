// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"storybook-media-api/internal/application/media"
	"storybook-media-api/internal/domain/entity"
	"storybook-media-api/internal/interfaces/http/dto"
	apperrors "storybook-media-api/pkg/errors"
	"storybook-media-api/pkg/logger"
)

// MediaService 媒体操作，由 media.Service 实现
type MediaService interface {
	GenerateAllPictures(ctx context.Context, bookID int64, replaceExisting bool) (media.BatchOutcome, error)
	RetryFailedPictures(ctx context.Context, bookID int64) (media.BatchOutcome, error)
	GeneratePicture(ctx context.Context, pageID int64, replaceExisting bool) (media.Outcome, error)
	GenerateFullAudio(ctx context.Context, bookID int64, voice, format string) (*entity.Asset, error)
	Publish(ctx context.Context, bookID int64) (*media.PublishResult, error)
	Archive(ctx context.Context, bookID int64) (*entity.Book, error)
	Unarchive(ctx context.Context, bookID int64) (*entity.Book, error)
	AudioPlaylist(ctx context.Context, bookID int64) ([]media.PlaylistEntry, error)
	OpenBookAudio(ctx context.Context, bookID int64) (io.ReadCloser, *entity.Asset, error)
	OpenPageAudio(ctx context.Context, pageID int64) (io.ReadCloser, *entity.Asset, error)
	OpenPageImage(ctx context.Context, pageID int64) (io.ReadCloser, *entity.Asset, error)
	AssetURL(asset *entity.Asset) string
}

// MediaHandler 插图与朗读处理器
type MediaHandler struct {
	svc MediaService
}

// NewMediaHandler 创建媒体处理器
func NewMediaHandler(svc MediaService) *MediaHandler {
	return &MediaHandler{svc: svc}
}

// fail 写出错误响应，5xx 记录日志
func fail(c *gin.Context, msg string, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), msg, err)
	}
	dto.AppError(c, appErr)
}

func bindBookID(c *gin.Context) (int64, bool) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		dto.BadRequest(c, "invalid book id")
	}
	return id, ok
}

func bindPageID(c *gin.Context) (int64, bool) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		dto.BadRequest(c, "invalid page id")
	}
	return id, ok
}

// GenerateAllPictures 为整本书生成插图
// @Summary 批量生成插图
// @Tags Media
// @Produce json
// @Param id path int true "书籍 ID"
// @Param replace_existing query bool false "替换已有插图"
// @Success 200 {object} dto.Response[dto.BatchOutcomeResponse]
// @Router /v1/books/{id}/pictures [post]
func (h *MediaHandler) GenerateAllPictures(c *gin.Context) {
	bookID, ok := bindBookID(c)
	if !ok {
		return
	}
	replace, ok := dto.BindReplaceExisting(c, false)
	if !ok {
		dto.BadRequest(c, "invalid replace_existing")
		return
	}

	out, err := h.svc.GenerateAllPictures(c.Request.Context(), bookID, replace)
	if err != nil {
		fail(c, "failed to generate pictures", err)
		return
	}
	dto.Success(c, dto.ToBatchOutcomeResponse(bookID, out))
}

// RetryFailedPictures 为缺少插图的页面重新生成
// @Summary 重试失败插图
// @Tags Media
// @Produce json
// @Param id path int true "书籍 ID"
// @Success 200 {object} dto.Response[dto.BatchOutcomeResponse]
// @Router /v1/books/{id}/pictures/retry [post]
func (h *MediaHandler) RetryFailedPictures(c *gin.Context) {
	bookID, ok := bindBookID(c)
	if !ok {
		return
	}
	out, err := h.svc.RetryFailedPictures(c.Request.Context(), bookID)
	if err != nil {
		fail(c, "failed to retry pictures", err)
		return
	}
	dto.Success(c, dto.ToBatchOutcomeResponse(bookID, out))
}

// GeneratePicture 为单页生成插图
// @Summary 单页插图
// @Tags Media
// @Produce json
// @Param id path int true "页面 ID"
// @Param replace_existing query bool false "替换已有插图，默认 true"
// @Success 200 {object} dto.Response[dto.PictureResponse]
// @Router /v1/pages/{id}/picture [post]
func (h *MediaHandler) GeneratePicture(c *gin.Context) {
	pageID, ok := bindPageID(c)
	if !ok {
		return
	}
	replace, ok := dto.BindReplaceExisting(c, true)
	if !ok {
		dto.BadRequest(c, "invalid replace_existing")
		return
	}

	out, err := h.svc.GeneratePicture(c.Request.Context(), pageID, replace)
	if err != nil {
		fail(c, "failed to generate picture", err)
		return
	}
	dto.Success(c, &dto.PictureResponse{PageID: pageID, Outcome: out})
}

// GenerateFullAudio 生成整书音频
// @Summary 整书朗读
// @Tags Media
// @Accept json
// @Produce json
// @Param id path int true "书籍 ID"
// @Param body body dto.FullAudioRequest false "音色与格式"
// @Success 200 {object} dto.Response[dto.FullAudioResponse]
// @Router /v1/books/{id}/audio [post]
func (h *MediaHandler) GenerateFullAudio(c *gin.Context) {
	bookID, ok := bindBookID(c)
	if !ok {
		return
	}
	var req dto.FullAudioRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.BadRequest(c, "invalid request body")
			return
		}
	}

	asset, err := h.svc.GenerateFullAudio(c.Request.Context(), bookID, req.Voice, req.Format)
	if err != nil {
		fail(c, "failed to generate book audio", err)
		return
	}
	dto.Success(c, &dto.FullAudioResponse{BookID: bookID, Audio: dto.ToAssetResponse(asset, h.svc.AssetURL(asset))})
}

// Publish 发布书籍
// @Summary 发布
// @Tags Books
// @Produce json
// @Param id path int true "书籍 ID"
// @Success 200 {object} dto.Response[dto.PublishResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/books/{id}/publish [post]
func (h *MediaHandler) Publish(c *gin.Context) {
	bookID, ok := bindBookID(c)
	if !ok {
		return
	}
	res, err := h.svc.Publish(c.Request.Context(), bookID)
	if err != nil {
		fail(c, "failed to publish book", err)
		return
	}
	dto.Success(c, &dto.PublishResponse{
		Book:          dto.ToBookResponse(res.Book),
		HasAudio:      res.Audio != nil,
		NarratedPages: res.NarratedPages,
		Audio:         dto.ToAssetResponse(res.Audio, h.svc.AssetURL(res.Audio)),
	})
}

// Archive 归档书籍
// @Summary 归档
// @Tags Books
// @Produce json
// @Param id path int true "书籍 ID"
// @Success 200 {object} dto.Response[dto.BookResponse]
// @Router /v1/books/{id}/archive [post]
func (h *MediaHandler) Archive(c *gin.Context) {
	bookID, ok := bindBookID(c)
	if !ok {
		return
	}
	book, err := h.svc.Archive(c.Request.Context(), bookID)
	if err != nil {
		fail(c, "failed to archive book", err)
		return
	}
	dto.Success(c, dto.ToBookResponse(book))
}

// Unarchive 取消归档
// @Summary 取消归档
// @Tags Books
// @Produce json
// @Param id path int true "书籍 ID"
// @Success 200 {object} dto.Response[dto.BookResponse]
// @Router /v1/books/{id}/unarchive [post]
func (h *MediaHandler) Unarchive(c *gin.Context) {
	bookID, ok := bindBookID(c)
	if !ok {
		return
	}
	book, err := h.svc.Unarchive(c.Request.Context(), bookID)
	if err != nil {
		fail(c, "failed to unarchive book", err)
		return
	}
	dto.Success(c, dto.ToBookResponse(book))
}

// AudioPlaylist 页面朗读播放列表
// @Summary 播放列表
// @Tags Reader
// @Produce json
// @Param id path int true "书籍 ID"
// @Success 200 {object} dto.Response[dto.PlaylistResponse]
// @Failure 403 {object} dto.ErrorResponse
// @Router /v1/books/{id}/audio/playlist [get]
func (h *MediaHandler) AudioPlaylist(c *gin.Context) {
	bookID, ok := bindBookID(c)
	if !ok {
		return
	}
	entries, err := h.svc.AudioPlaylist(c.Request.Context(), bookID)
	if err != nil {
		fail(c, "failed to build audio playlist", err)
		return
	}
	for i := range entries {
		if entries[i].URL == "" {
			entries[i].URL = fmt.Sprintf("/v1/pages/%d/audio", entries[i].PageID)
		}
	}
	dto.Success(c, &dto.PlaylistResponse{BookID: bookID, Audios: entries})
}

// DownloadBookAudio 下载整书音频
// @Summary 整书音频
// @Tags Reader
// @Produce octet-stream
// @Param id path int true "书籍 ID"
// @Router /v1/books/{id}/audio [get]
func (h *MediaHandler) DownloadBookAudio(c *gin.Context) {
	bookID, ok := bindBookID(c)
	if !ok {
		return
	}
	rc, asset, err := h.svc.OpenBookAudio(c.Request.Context(), bookID)
	if err != nil {
		fail(c, "failed to open book audio", err)
		return
	}
	serveAsset(c, rc, asset, fmt.Sprintf("book-%d", bookID))
}

// DownloadPageAudio 下载单页朗读
// @Router /v1/pages/{id}/audio [get]
func (h *MediaHandler) DownloadPageAudio(c *gin.Context) {
	pageID, ok := bindPageID(c)
	if !ok {
		return
	}
	rc, asset, err := h.svc.OpenPageAudio(c.Request.Context(), pageID)
	if err != nil {
		fail(c, "failed to open page audio", err)
		return
	}
	serveAsset(c, rc, asset, fmt.Sprintf("page-%d", pageID))
}

// DownloadPageImage 下载页面插图
// @Router /v1/pages/{id}/picture [get]
func (h *MediaHandler) DownloadPageImage(c *gin.Context) {
	pageID, ok := bindPageID(c)
	if !ok {
		return
	}
	rc, asset, err := h.svc.OpenPageImage(c.Request.Context(), pageID)
	if err != nil {
		fail(c, "failed to open page image", err)
		return
	}
	serveAsset(c, rc, asset, fmt.Sprintf("page-%d", pageID))
}

func serveAsset(c *gin.Context, rc io.ReadCloser, asset *entity.Asset, name string) {
	defer rc.Close()
	c.DataFromReader(http.StatusOK, asset.SizeBytes, asset.ContentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`inline; filename="%s"`, name),
	})
}
