package media

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storybook-media-api/internal/domain/entity"
	"storybook-media-api/pkg/logger"
	"storybook-media-api/pkg/metrics"
)

const (
	OperationGenerateAll = "generate_all"
	OperationRetryFailed = "retry_failed"
)

// BatchOrchestrator 按阅读顺序逐页生成插图
// 逐页串行，每次尝试前经过 pacer；单页失败不会中断批次
type BatchOrchestrator struct {
	illustrator *Illustrator
	assets      AssetStore
	pacer       Pacer
	events      EventPublisher
}

// NewBatchOrchestrator 创建批量编排器，events 可为 nil
func NewBatchOrchestrator(illustrator *Illustrator, assets AssetStore, pacer Pacer, events EventPublisher) *BatchOrchestrator {
	return &BatchOrchestrator{
		illustrator: illustrator,
		assets:      assets,
		pacer:       pacer,
		events:      events,
	}
}

// GenerateAllPictures 为整本书生成插图
// 未要求替换时，已有插图的页面直接计为 skipped，不计入 total，也不经过 pacer
func (o *BatchOrchestrator) GenerateAllPictures(ctx context.Context, book *entity.Book, replaceExisting bool) BatchOutcome {
	return o.run(ctx, OperationGenerateAll, book, replaceExisting)
}

// RetryFailedPictures 只处理当前没有插图的页面
func (o *BatchOrchestrator) RetryFailedPictures(ctx context.Context, book *entity.Book) BatchOutcome {
	return o.run(ctx, OperationRetryFailed, book, false)
}

func (o *BatchOrchestrator) run(ctx context.Context, operation string, book *entity.Book, replaceExisting bool) BatchOutcome {
	ctx = logger.WithBook(ctx, book.ID)
	ctx = logger.WithContext(ctx, logger.OperationKey, operation)
	ctx, span := tracer.Start(ctx, "media.Batch",
		trace.WithAttributes(
			attribute.Int64("book.id", book.ID),
			attribute.String("operation", operation),
			attribute.Bool("replace_existing", replaceExisting),
		))
	defer span.End()

	start := time.Now()
	order := NewReadingOrder(book)

	// 批次开始时的快照只用于确定候选页；并发挂载由 Illustrator 再次检查
	var imaged map[int64]bool
	if !replaceExisting {
		var err error
		imaged, err = o.assets.AttachedOwners(ctx, entity.OwnerTypePage, order.PageIDs(), entity.SlotImage)
		if err != nil {
			logger.Warn(ctx, "image snapshot unavailable, checking per page", "error", err.Error())
			imaged = nil
		}
	}

	var out BatchOutcome
	for _, pos := range order.Positions() {
		if ctx.Err() != nil {
			out.Interrupted = true
			break
		}
		if !replaceExisting && o.hasImage(ctx, imaged, pos.Page.ID) {
			out.Skipped++
			metrics.BatchPagesTotal.WithLabelValues(operation, OutcomeSkipped.String()).Inc()
			continue
		}
		if o.pacer != nil {
			if err := o.pacer.Wait(ctx); err != nil {
				out.Interrupted = true
				break
			}
		}

		out.Total++
		result := o.illustrator.GeneratePicture(ctx, pos.Page, replaceExisting, order.ContextFor(pos.Page.ID))
		out.Record(result)
		metrics.BatchPagesTotal.WithLabelValues(operation, result.String()).Inc()
	}

	elapsed := time.Since(start)
	metrics.BatchDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	span.SetAttributes(
		attribute.Int("total", out.Total),
		attribute.Int("generated", out.Generated),
		attribute.Int("failed", out.Failed),
		attribute.Int("skipped", out.Skipped),
		attribute.Bool("interrupted", out.Interrupted),
	)
	logger.Info(ctx, "picture batch finished",
		"total", out.Total,
		"generated", out.Generated,
		"failed", out.Failed,
		"skipped", out.Skipped,
		"interrupted", out.Interrupted,
		"duration_ms", elapsed.Milliseconds(),
	)

	o.publish(ctx, &entity.BatchCompletedEvent{
		BookID:      book.ID,
		Operation:   operation,
		Total:       out.Total,
		Generated:   out.Generated,
		Failed:      out.Failed,
		Skipped:     out.Skipped,
		Interrupted: out.Interrupted,
		DurationMs:  elapsed.Milliseconds(),
		FinishedAt:  time.Now(),
	})
	return out
}

// hasImage 优先使用快照，快照不可用时逐页查询
// 查询失败视为没有插图，交由 Illustrator 判定
func (o *BatchOrchestrator) hasImage(ctx context.Context, imaged map[int64]bool, pageID int64) bool {
	if imaged != nil {
		return imaged[pageID]
	}
	attached, err := o.assets.IsAttached(ctx, entity.PageImage(pageID))
	if err != nil {
		return false
	}
	return attached
}

func (o *BatchOrchestrator) publish(ctx context.Context, evt *entity.BatchCompletedEvent) {
	if o.events == nil {
		return
	}
	if _, err := o.events.PublishBatchCompleted(context.WithoutCancel(ctx), evt); err != nil {
		logger.Warn(ctx, "failed to publish batch event", "error", err.Error())
	}
}
