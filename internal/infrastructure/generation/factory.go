package generation

import (
	"context"
	"fmt"
	"strings"

	"storybook-media-api/internal/config"
	"storybook-media-api/internal/workflow/port"
)

// Router 图像与语音可由不同服务商提供
type Router struct {
	Image port.AssetGenerator
	Audio port.AssetGenerator
}

// GenerateImage 转发到图像服务商
func (r *Router) GenerateImage(ctx context.Context, prompt, size string) (*port.GeneratedAsset, error) {
	return r.Image.GenerateImage(ctx, prompt, size)
}

// GenerateAudio 转发到语音服务商
func (r *Router) GenerateAudio(ctx context.Context, text, voice, format string) (*port.GeneratedAsset, error) {
	return r.Audio.GenerateAudio(ctx, text, voice, format)
}

// NewFromConfig 根据配置组装生成器
func NewFromConfig(cfg *config.GenerationConfig) (*Router, error) {
	image, err := buildProvider(cfg, cfg.ImageProvider)
	if err != nil {
		return nil, fmt.Errorf("image provider: %w", err)
	}
	audio, err := buildProvider(cfg, cfg.AudioProvider)
	if err != nil {
		return nil, fmt.Errorf("audio provider: %w", err)
	}
	return &Router{Image: image, Audio: audio}, nil
}

func buildProvider(cfg *config.GenerationConfig, name string) (port.AssetGenerator, error) {
	pc, ok := cfg.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	kind := strings.ToLower(strings.TrimSpace(pc.Kind))
	if kind == "" {
		kind = strings.ToLower(name)
	}

	var g port.AssetGenerator
	switch kind {
	case ProviderOpenAI:
		g = NewOpenAIGenerator(OpenAIConfig{
			APIKey:     pc.APIKey,
			BaseURL:    pc.BaseURL,
			ImageModel: pc.ImageModel,
			AudioModel: pc.AudioModel,
			Timeout:    pc.Timeout,
		})
	case ProviderRunware:
		g = NewRunwareGenerator(pc.APIKey, pc.BaseURL, pc.ImageModel, pc.Timeout)
	default:
		return nil, fmt.Errorf("unsupported provider kind %q", kind)
	}
	return Instrument(name, g), nil
}
