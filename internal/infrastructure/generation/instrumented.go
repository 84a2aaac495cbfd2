package generation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"storybook-media-api/internal/workflow/port"
	"storybook-media-api/pkg/logger"
	"storybook-media-api/pkg/metrics"
)

var tracer = otel.Tracer("generation")

// Instrumented 为生成调用记录指标、链路与日志
type Instrumented struct {
	provider string
	next     port.AssetGenerator
}

// Instrument 包装一个适配器
func Instrument(provider string, next port.AssetGenerator) *Instrumented {
	return &Instrumented{provider: provider, next: next}
}

// GenerateImage 生成图像
func (g *Instrumented) GenerateImage(ctx context.Context, prompt, size string) (*port.GeneratedAsset, error) {
	ctx, span := tracer.Start(ctx, "generation."+g.provider+".GenerateImage")
	defer span.End()
	span.SetAttributes(attribute.String("image.size", size), attribute.Int("prompt.length", len(prompt)))

	start := time.Now()
	out, err := g.next.GenerateImage(ctx, prompt, size)
	g.observe(ctx, "image", start, out, err)
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}

// GenerateAudio 生成语音
func (g *Instrumented) GenerateAudio(ctx context.Context, text, voice, format string) (*port.GeneratedAsset, error) {
	ctx, span := tracer.Start(ctx, "generation."+g.provider+".GenerateAudio")
	defer span.End()
	span.SetAttributes(attribute.String("audio.voice", voice), attribute.String("audio.format", format), attribute.Int("text.length", len(text)))

	start := time.Now()
	out, err := g.next.GenerateAudio(ctx, text, voice, format)
	g.observe(ctx, "audio", start, out, err)
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}

func (g *Instrumented) observe(ctx context.Context, kind string, start time.Time, out *port.GeneratedAsset, err error) {
	elapsed := time.Since(start)
	metrics.GenerationCallDuration.WithLabelValues(kind, g.provider).Observe(elapsed.Seconds())
	if err != nil {
		metrics.GenerationCallTotal.WithLabelValues(kind, g.provider, "failed").Inc()
		logger.Warn(ctx, "generation call failed",
			"provider", g.provider,
			"kind", kind,
			"duration_ms", elapsed.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	metrics.GenerationCallTotal.WithLabelValues(kind, g.provider, "success").Inc()
	metrics.GeneratedBytes.WithLabelValues(kind).Observe(float64(len(out.Content)))
	logger.Debug(ctx, "generation call succeeded",
		"provider", g.provider,
		"kind", kind,
		"content_type", out.ContentType,
		"bytes", len(out.Content),
		"duration_ms", elapsed.Milliseconds(),
	)
}
