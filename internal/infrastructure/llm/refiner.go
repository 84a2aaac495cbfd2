package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storybook-media-api/internal/domain/service"
	"storybook-media-api/internal/workflow/port"
	"storybook-media-api/internal/workflow/prompt"
	"storybook-media-api/pkg/logger"
	"storybook-media-api/pkg/metrics"
)

// ChatRefiner 通过 ChatModel 将上下文提示词改写为最终图像提示词
type ChatRefiner struct {
	models    port.ChatModelFactory
	provider  string
	templates *prompt.Registry
}

// NewChatRefiner 创建精炼器，provider 为空时使用默认提供商
func NewChatRefiner(models port.ChatModelFactory, provider string, templates *prompt.Registry) *ChatRefiner {
	if templates == nil {
		templates = prompt.NewRegistry()
	}
	return &ChatRefiner{models: models, provider: provider, templates: templates}
}

// Refine 精炼提示词
func (r *ChatRefiner) Refine(ctx context.Context, contextPrompt string) (string, error) {
	tpl, err := r.templates.ChatTemplate(prompt.PromptImageRefineV1)
	if err != nil {
		return "", err
	}
	messages, err := tpl.Format(ctx, map[string]any{"prompt": contextPrompt})
	if err != nil {
		return "", fmt.Errorf("failed to format refine prompt: %w", err)
	}

	ctx = service.WithWorkflowProvider(ctx, "image_refine", r.provider)
	chatModel, err := r.models.Get(ctx, r.provider)
	if err != nil {
		return "", fmt.Errorf("failed to get chat model: %w", err)
	}
	msg, err := chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("prompt refinement failed: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", errors.New("prompt refinement returned empty content")
	}
	return strings.TrimSpace(msg.Content), nil
}

// promptCache 缓存接口，由 redis.Cache 实现
type promptCache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, bool, error)
}

// CachedRefiner 相同输入的精炼结果走缓存
// 缓存不可用时直接调用下游
type CachedRefiner struct {
	next  port.PromptRefiner
	cache promptCache
	ttl   time.Duration
}

// NewCachedRefiner 创建带缓存的精炼器
func NewCachedRefiner(next port.PromptRefiner, cache promptCache, ttl time.Duration) *CachedRefiner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedRefiner{next: next, cache: cache, ttl: ttl}
}

// PromptCacheKey 提示词缓存键
func PromptCacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "prompt:refine:" + hex.EncodeToString(sum[:])
}

// Refine 精炼提示词
func (r *CachedRefiner) Refine(ctx context.Context, prompt string) (string, error) {
	var refineErr error
	raw, hit, err := r.cache.GetOrLoadSafe(ctx, PromptCacheKey(prompt), r.ttl, func() (interface{}, error) {
		out, err := r.next.Refine(ctx, prompt)
		if err != nil {
			refineErr = err
		}
		return out, err
	})
	if err != nil {
		if refineErr != nil {
			metrics.PromptCacheTotal.WithLabelValues("error").Inc()
			return "", refineErr
		}
		metrics.PromptCacheTotal.WithLabelValues("unavailable").Inc()
		logger.Warn(ctx, "prompt cache unavailable, refining directly", "error", err.Error())
		return r.next.Refine(ctx, prompt)
	}

	var out string
	if err := json.Unmarshal(raw, &out); err != nil || out == "" {
		metrics.PromptCacheTotal.WithLabelValues("corrupt").Inc()
		return r.next.Refine(ctx, prompt)
	}
	if hit {
		metrics.PromptCacheTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.PromptCacheTotal.WithLabelValues("miss").Inc()
	}
	return out, nil
}
