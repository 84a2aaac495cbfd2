package port

import (
	"context"
	"errors"
	"fmt"
)

// GeneratedAsset 生成结果：二进制内容及媒体类型
type GeneratedAsset struct {
	Content     []byte
	ContentType string
}

// AssetGenerator 图像与语音生成能力（port）
// 实现方不做重试与限流，所有失败统一为 *GenerationFailedError
type AssetGenerator interface {
	GenerateImage(ctx context.Context, prompt, size string) (*GeneratedAsset, error)
	GenerateAudio(ctx context.Context, text, voice, format string) (*GeneratedAsset, error)
}

// PromptRefiner 将上下文提示词精炼为最终图像提示词
type PromptRefiner interface {
	Refine(ctx context.Context, prompt string) (string, error)
}

// GenerationFailedError 生成失败
type GenerationFailedError struct {
	Provider   string
	Operation  string
	StatusCode int
	Cause      error
}

func (e *GenerationFailedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed (http %d): %v", e.Provider, e.Operation, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Operation, e.Cause)
}

func (e *GenerationFailedError) Unwrap() error {
	return e.Cause
}

// NewGenerationFailed 构造生成失败错误
func NewGenerationFailed(provider, operation string, statusCode int, cause error) *GenerationFailedError {
	return &GenerationFailedError{
		Provider:   provider,
		Operation:  operation,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// IsGenerationFailed 判断错误链中是否包含生成失败
func IsGenerationFailed(err error) bool {
	var gf *GenerationFailedError
	return errors.As(err, &gf)
}
