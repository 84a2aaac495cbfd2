// Package imaging 对生成的图像做尺寸约束与统一编码
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"storybook-media-api/internal/config"
	"storybook-media-api/internal/workflow/port"
	"storybook-media-api/pkg/logger"
)

// Normalizer 将图像缩放到最大尺寸内并统一输出格式
type Normalizer struct {
	maxWidth  int
	maxHeight int
	format    string
	quality   int
}

// NewNormalizer 创建图像规范化器
func NewNormalizer(cfg *config.ImagingConfig) *Normalizer {
	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if format != "webp" {
		format = "png"
	}
	quality := cfg.Quality
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Normalizer{
		maxWidth:  cfg.MaxWidth,
		maxHeight: cfg.MaxHeight,
		format:    format,
		quality:   quality,
	}
}

// Normalize 解码、缩放并重新编码
func (n *Normalizer) Normalize(data []byte) ([]byte, string, error) {
	img, err := decode(data)
	if err != nil {
		return nil, "", err
	}

	b := img.Bounds()
	if (n.maxWidth > 0 && b.Dx() > n.maxWidth) || (n.maxHeight > 0 && b.Dy() > n.maxHeight) {
		w, h := n.maxWidth, n.maxHeight
		if w <= 0 {
			w = b.Dx()
		}
		if h <= 0 {
			h = b.Dy()
		}
		img = imaging.Fit(img, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	switch n.format {
	case "webp":
		if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(n.quality)}); err != nil {
			return nil, "", fmt.Errorf("encode webp: %w", err)
		}
		return buf.Bytes(), "image/webp", nil
	default:
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	}
}

// decode 按内容嗅探格式解码 jpeg/png/webp
func decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	ct := http.DetectContentType(data)
	r := bytes.NewReader(data)
	switch {
	case strings.Contains(ct, "jpeg"):
		return jpeg.Decode(r)
	case strings.Contains(ct, "png"):
		return png.Decode(r)
	case strings.Contains(ct, "webp"):
		return webp.Decode(r)
	default:
		return nil, fmt.Errorf("unsupported image format: %s", ct)
	}
}

// Generator 对图像生成结果做规范化，语音直接透传
// 规范化失败时保留原始内容
type Generator struct {
	next       port.AssetGenerator
	normalizer *Normalizer
}

// WrapGenerator 包装生成器
func WrapGenerator(next port.AssetGenerator, normalizer *Normalizer) *Generator {
	return &Generator{next: next, normalizer: normalizer}
}

// GenerateImage 生成并规范化图像
func (g *Generator) GenerateImage(ctx context.Context, prompt, size string) (*port.GeneratedAsset, error) {
	out, err := g.next.GenerateImage(ctx, prompt, size)
	if err != nil {
		return nil, err
	}
	data, ct, err := g.normalizer.Normalize(out.Content)
	if err != nil {
		logger.Warn(ctx, "image normalization skipped", "content_type", out.ContentType, "error", err.Error())
		return out, nil
	}
	return &port.GeneratedAsset{Content: data, ContentType: ct}, nil
}

// GenerateAudio 透传
func (g *Generator) GenerateAudio(ctx context.Context, text, voice, format string) (*port.GeneratedAsset, error) {
	return g.next.GenerateAudio(ctx, text, voice, format)
}
