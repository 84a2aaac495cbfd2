// Package storage 提供资产二进制内容的存储后端
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"storybook-media-api/internal/config"
)

// ErrObjectNotFound 对象不存在
var ErrObjectNotFound = errors.New("object not found")

// BlobStore 二进制对象存储
type BlobStore interface {
	// Put 写入对象，同名对象被覆盖
	Put(ctx context.Context, key, contentType string, data []byte) error
	// Get 读取对象，不存在时返回 ErrObjectNotFound
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete 删除对象，不存在时为 no-op
	Delete(ctx context.Context, key string) error
	// PublicURL 对外访问地址，无公开地址时返回空串
	PublicURL(key string) string
}

// New 根据配置创建存储后端
func New(ctx context.Context, cfg *config.StorageConfig) (BlobStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "local":
		return NewLocalStore(cfg.Local.Root)
	case "gcs":
		return NewGCSStore(ctx, &cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// ExtensionForType 根据媒体类型推断文件扩展名
func ExtensionForType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/ogg", "audio/opus":
		return ".ogg"
	case "audio/aac":
		return ".aac"
	case "audio/flac":
		return ".flac"
	default:
		return ".bin"
	}
}
