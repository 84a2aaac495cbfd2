package generation

import (
	"context"
	"errors"
	"strings"
	"time"

	"storybook-media-api/internal/workflow/port"
)

const ProviderOpenAI = "openai"

// OpenAIGenerator OpenAI 图像与语音适配器
type OpenAIGenerator struct {
	http       httpDoer
	imageModel string
	audioModel string
}

// OpenAIConfig OpenAI 适配器配置
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	ImageModel string
	AudioModel string
	Timeout    time.Duration
}

// NewOpenAIGenerator 创建 OpenAI 适配器
func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "gpt-image-1"
	}
	if cfg.AudioModel == "" {
		cfg.AudioModel = "gpt-4o-mini-tts"
	}
	return &OpenAIGenerator{
		http:       newHTTPDoer(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
		imageModel: cfg.ImageModel,
		audioModel: cfg.AudioModel,
	}
}

// GenerateImage 生成图像
func (g *OpenAIGenerator) GenerateImage(ctx context.Context, prompt, size string) (*port.GeneratedAsset, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, port.NewGenerationFailed(ProviderOpenAI, "image", 0, errors.New("image prompt required"))
	}

	// gpt-image-* 只返回 b64_json，不接受 response_format
	format := "b64_json"
	if strings.HasPrefix(strings.ToLower(g.imageModel), "gpt-image-") {
		format = ""
	}
	img, ct, err := g.http.generateImage(ctx, imagesRequest{
		Model:          g.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           strings.TrimSpace(size),
		ResponseFormat: format,
	})
	if err != nil {
		return nil, port.NewGenerationFailed(ProviderOpenAI, "image", statusOf(err), err)
	}
	return &port.GeneratedAsset{Content: img, ContentType: ct}, nil
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// GenerateAudio 文本转语音
func (g *OpenAIGenerator) GenerateAudio(ctx context.Context, text, voice, format string) (*port.GeneratedAsset, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, port.NewGenerationFailed(ProviderOpenAI, "audio", 0, errors.New("speech input required"))
	}
	raw, ct, err := g.http.postJSON(ctx, "/v1/audio/speech", speechRequest{
		Model:          g.audioModel,
		Input:          text,
		Voice:          voice,
		ResponseFormat: format,
	})
	if err != nil {
		return nil, port.NewGenerationFailed(ProviderOpenAI, "audio", statusOf(err), err)
	}
	if len(raw) == 0 {
		return nil, port.NewGenerationFailed(ProviderOpenAI, "audio", 0, errors.New("empty audio payload"))
	}
	if !strings.HasPrefix(ct, "audio/") {
		ct = audioTypeForFormat(format)
	}
	return &port.GeneratedAsset{Content: raw, ContentType: ct}, nil
}

// audioTypeForFormat 语音格式对应的媒体类型
func audioTypeForFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "wav":
		return "audio/wav"
	case "opus":
		return "audio/opus"
	case "aac":
		return "audio/aac"
	case "flac":
		return "audio/flac"
	case "pcm":
		return "audio/pcm"
	default:
		return "audio/mpeg"
	}
}
