package media

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storybook-media-api/internal/domain/entity"
	"storybook-media-api/internal/workflow/port"
	"storybook-media-api/pkg/logger"
	"storybook-media-api/pkg/metrics"
)

// Narrator 书籍朗读音频生成
type Narrator struct {
	generator port.AssetGenerator
	assets    AssetStore
	pacer     Pacer
	voice     string
	format    string
}

// NewNarrator 创建朗读生成器，pacer 可为 nil
func NewNarrator(generator port.AssetGenerator, assets AssetStore, pacer Pacer, voice, format string) *Narrator {
	return &Narrator{
		generator: generator,
		assets:    assets,
		pacer:     pacer,
		voice:     voice,
		format:    format,
	}
}

func (n *Narrator) params(voice, format string) (string, string) {
	if voice == "" {
		voice = n.voice
	}
	if format == "" {
		format = n.format
	}
	return voice, format
}

// GenerateFullAudio 为整本书生成一条朗读音频并替换书籍音频槽位
// 朗读稿为空或生成失败时返回 nil，不返回错误
func (n *Narrator) GenerateFullAudio(ctx context.Context, book *entity.Book, voice, format string) *entity.Asset {
	ctx = logger.WithBook(ctx, book.ID)
	ctx, span := tracer.Start(ctx, "media.GenerateFullAudio",
		trace.WithAttributes(attribute.Int64("book.id", book.ID)))
	defer span.End()

	transcript := BookTranscript(NewReadingOrder(book))
	if transcript == "" {
		logger.Info(ctx, "book transcript empty, skipping full audio")
		return nil
	}
	span.SetAttributes(attribute.Int("transcript.length", len(transcript)))

	voice, format = n.params(voice, format)
	out, err := n.generator.GenerateAudio(ctx, transcript, voice, format)
	if err != nil {
		span.RecordError(err)
		logger.Error(ctx, "book audio generation failed", err)
		return nil
	}
	asset, err := n.assets.Replace(ctx, entity.BookAudio(book.ID), out.Content, out.ContentType)
	if err != nil {
		span.RecordError(err)
		logger.Error(ctx, "failed to attach book audio", err)
		return nil
	}

	logger.Info(ctx, "book audio generated", "bytes", len(out.Content), "content_type", out.ContentType)
	return asset
}

// NarratePages 为每个有正文的页面生成朗读音频
// 单页失败只记录日志，返回成功页数
func (n *Narrator) NarratePages(ctx context.Context, book *entity.Book) int {
	ctx = logger.WithBook(ctx, book.ID)
	ctx, span := tracer.Start(ctx, "media.NarratePages",
		trace.WithAttributes(attribute.Int64("book.id", book.ID)))
	defer span.End()

	voice, format := n.params("", "")
	narrated := 0
	for _, pos := range NewReadingOrder(book).Positions() {
		text := NarrationText(book.Title, pos)
		if text == "" {
			continue
		}
		if n.pacer != nil {
			if err := n.pacer.Wait(ctx); err != nil {
				logger.Warn(ctx, "page narration interrupted", "error", err.Error())
				break
			}
		}

		pctx := logger.WithPage(ctx, pos.Page.ID)
		out, err := n.generator.GenerateAudio(pctx, text, voice, format)
		if err == nil {
			_, err = n.assets.Replace(pctx, entity.PageAudio(pos.Page.ID), out.Content, out.ContentType)
		}
		if err != nil {
			metrics.NarratedPagesTotal.WithLabelValues("failed").Inc()
			logger.Error(pctx, "page narration failed", err)
			continue
		}
		metrics.NarratedPagesTotal.WithLabelValues("generated").Inc()
		narrated++
	}

	span.SetAttributes(attribute.Int("pages.narrated", narrated))
	return narrated
}
