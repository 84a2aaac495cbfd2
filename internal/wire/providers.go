// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"io"
	"strings"

	"storybook-media-api/internal/application/media"
	"storybook-media-api/internal/config"
	"storybook-media-api/internal/infrastructure/generation"
	"storybook-media-api/internal/infrastructure/imaging"
	"storybook-media-api/internal/infrastructure/llm"
	"storybook-media-api/internal/infrastructure/messaging"
	"storybook-media-api/internal/infrastructure/persistence/postgres"
	"storybook-media-api/internal/infrastructure/persistence/redis"
	"storybook-media-api/internal/infrastructure/storage"
	"storybook-media-api/internal/interfaces/http/handler"
	"storybook-media-api/internal/workflow/port"
	"storybook-media-api/internal/workflow/prompt"
	"storybook-media-api/pkg/logger"
)

// ProvidePostgresClient 提供 PostgreSQL 客户端，按配置同步表结构
func ProvidePostgresClient(ctx context.Context, cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	if cfg.Database.Postgres.AutoMigrate {
		if err := client.AutoMigrate(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideBlobStore 提供资产二进制存储
func ProvideBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, func(), error) {
	blobs, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if c, ok := blobs.(io.Closer); ok {
			_ = c.Close()
		}
	}
	return blobs, cleanup, nil
}

// ProvideAssetGenerator 提供生成服务客户端，启用时对图像做归一化
func ProvideAssetGenerator(cfg *config.Config) (port.AssetGenerator, error) {
	router, err := generation.NewFromConfig(&cfg.Generation)
	if err != nil {
		return nil, err
	}
	if !cfg.Imaging.Enabled {
		return router, nil
	}
	return imaging.WrapGenerator(router, imaging.NewNormalizer(&cfg.Imaging)), nil
}

// ProvidePromptRefiner 提示词精炼器，未启用时返回 nil
func ProvidePromptRefiner(ctx context.Context, cfg *config.Config, cache *redis.Cache) port.PromptRefiner {
	if !cfg.LLM.RefinePrompts {
		return nil
	}
	refiner := llm.NewChatRefiner(llm.NewEinoFactory(&cfg.LLM), cfg.LLM.DefaultProvider, prompt.NewRegistry())
	logger.Info(ctx, "prompt refinement enabled", "provider", cfg.LLM.DefaultProvider)
	return llm.NewCachedRefiner(refiner, cache, cfg.LLM.CacheTTL)
}

// ProvidePacer 批处理节流器，redis 后端在多实例间共享节奏
func ProvidePacer(cfg *config.Config, limiter *redis.RateLimiter) media.Pacer {
	if strings.EqualFold(cfg.Pacing.Backend, "redis") {
		key := cfg.Pacing.RedisKey
		if key == "" {
			key = "pacing:generation"
		}
		return media.NewRedisPacer(limiter, key, cfg.Pacing.Interval, nil)
	}
	return media.NewFixedIntervalPacer(cfg.Pacing.Interval, nil)
}

// ProvideEventPublisher 领域事件发布，未启用时返回 nil
func ProvideEventPublisher(cfg *config.Config, client *redis.Client) media.EventPublisher {
	if !cfg.Messaging.RedisStream.Enabled {
		return nil
	}
	return messaging.NewProducer(client.Redis(), cfg.Messaging.RedisStream.MaxLen)
}

// ProvideIllustrator 提供插图生成器
func ProvideIllustrator(cfg *config.Config, generator port.AssetGenerator, assets media.AssetStore, refiner port.PromptRefiner) *media.Illustrator {
	return media.NewIllustrator(generator, assets, refiner, cfg.Generation.ImageSize)
}

// ProvideNarrator 提供朗读生成器
func ProvideNarrator(cfg *config.Config, generator port.AssetGenerator, assets media.AssetStore, pacer media.Pacer) *media.Narrator {
	return media.NewNarrator(generator, assets, pacer, cfg.Generation.Voice, cfg.Generation.AudioFormat)
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(cfg *config.Config, pg *postgres.Client, redisClient *redis.Client) *handler.HealthHandler {
	return handler.NewHealthHandler(cfg.App.Version, map[string]handler.HealthChecker{
		"postgres": pg,
		"redis":    redisClient,
	})
}
