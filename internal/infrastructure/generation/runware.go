package generation

import (
	"context"
	"errors"
	"strings"
	"time"

	"storybook-media-api/internal/workflow/port"
)

const ProviderRunware = "runware"

// RunwareGenerator Runware 图像适配器，不支持语音
type RunwareGenerator struct {
	http       httpDoer
	imageModel string
}

// NewRunwareGenerator 创建 Runware 适配器
func NewRunwareGenerator(apiKey, baseURL, imageModel string, timeout time.Duration) *RunwareGenerator {
	if baseURL == "" {
		baseURL = "https://api.runware.com"
	}
	if imageModel == "" {
		imageModel = "gpt-image-1"
	}
	return &RunwareGenerator{
		http:       newHTTPDoer(baseURL, apiKey, timeout),
		imageModel: imageModel,
	}
}

// GenerateImage 生成图像
func (g *RunwareGenerator) GenerateImage(ctx context.Context, prompt, size string) (*port.GeneratedAsset, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, port.NewGenerationFailed(ProviderRunware, "image", 0, errors.New("image prompt required"))
	}
	if size == "" {
		size = "1024x1024"
	}
	img, ct, err := g.http.generateImage(ctx, imagesRequest{
		Model:          g.imageModel,
		Prompt:         prompt,
		Size:           size,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		return nil, port.NewGenerationFailed(ProviderRunware, "image", statusOf(err), err)
	}
	return &port.GeneratedAsset{Content: img, ContentType: ct}, nil
}

// GenerateAudio Runware 不提供语音合成
func (g *RunwareGenerator) GenerateAudio(context.Context, string, string, string) (*port.GeneratedAsset, error) {
	return nil, port.NewGenerationFailed(ProviderRunware, "audio", 0, errors.New("speech synthesis not supported"))
}
