package media

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storybook-media-api/internal/domain/entity"
	"storybook-media-api/internal/workflow/port"
	apperrors "storybook-media-api/pkg/errors"
	"storybook-media-api/pkg/logger"
)

var tracer = otel.Tracer("media")

// Illustrator 单页插图生成
type Illustrator struct {
	generator port.AssetGenerator
	assets    AssetStore
	refiner   port.PromptRefiner
	imageSize string
}

// NewIllustrator 创建插图生成器，refiner 可为 nil
func NewIllustrator(generator port.AssetGenerator, assets AssetStore, refiner port.PromptRefiner, imageSize string) *Illustrator {
	return &Illustrator{
		generator: generator,
		assets:    assets,
		refiner:   refiner,
		imageSize: imageSize,
	}
}

// GeneratePicture 为页面生成插图
// 已有插图且未要求替换时直接跳过；pc 为 nil 时使用仅含正文的提示词。
// 替换时旧插图保留到新插图写入成功为止。
func (i *Illustrator) GeneratePicture(ctx context.Context, page *entity.Page, replaceExisting bool, pc *PromptContext) Outcome {
	ctx = logger.WithPage(ctx, page.ID)
	ctx, span := tracer.Start(ctx, "media.GeneratePicture",
		trace.WithAttributes(
			attribute.Int64("page.id", page.ID),
			attribute.Bool("replace_existing", replaceExisting),
			attribute.Bool("rich_prompt", pc != nil),
		))
	defer span.End()

	ref := entity.PageImage(page.ID)
	attached, err := i.assets.IsAttached(ctx, ref)
	if err != nil {
		span.RecordError(err)
		logger.Error(ctx, "failed to check page image", err)
		return OutcomeFailed
	}
	if attached && !replaceExisting {
		span.SetAttributes(attribute.String("outcome", OutcomeSkipped.String()))
		return OutcomeSkipped
	}

	prompt, err := i.prompt(ctx, page, pc)
	if err != nil {
		span.RecordError(err)
		logger.Error(ctx, "image prompt refinement failed", err)
		return OutcomeFailed
	}

	out, err := i.generator.GenerateImage(ctx, prompt, i.imageSize)
	if err != nil {
		span.RecordError(err)
		logger.Error(ctx, "image generation failed", err)
		return OutcomeFailed
	}

	if attached {
		_, err = i.assets.Replace(ctx, ref, out.Content, out.ContentType)
	} else {
		_, err = i.assets.Attach(ctx, ref, out.Content, out.ContentType)
	}
	if err != nil {
		span.RecordError(err)
		if apperrors.HasCode(err, apperrors.CodeAssetConflict) {
			logger.Warn(ctx, "page image attached concurrently, discarding result")
		} else {
			logger.Error(ctx, "failed to attach page image", err)
		}
		return OutcomeFailed
	}

	logger.Info(ctx, "page image generated", "bytes", len(out.Content), "content_type", out.ContentType)
	span.SetAttributes(attribute.String("outcome", OutcomeGenerated.String()))
	return OutcomeGenerated
}

func (i *Illustrator) prompt(ctx context.Context, page *entity.Page, pc *PromptContext) (string, error) {
	prompt := BuildImagePrompt(page.Content, pc)
	if i.refiner == nil {
		return prompt, nil
	}
	refined, err := i.refiner.Refine(ctx, prompt)
	if err != nil {
		return "", err
	}
	refined = strings.TrimSpace(refined)
	if refined == "" {
		return "", port.NewGenerationFailed("refiner", "prompt", 0, fmt.Errorf("empty refined prompt"))
	}
	return refined, nil
}
