//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"storybook-media-api/internal/application/media"
	"storybook-media-api/internal/config"
	"storybook-media-api/internal/domain/repository"
	"storybook-media-api/internal/infrastructure/assetstore"
	"storybook-media-api/internal/infrastructure/persistence/postgres"
	"storybook-media-api/internal/infrastructure/persistence/redis"
	"storybook-media-api/internal/interfaces/http/handler"
	"storybook-media-api/internal/interfaces/http/middleware"
	"storybook-media-api/internal/interfaces/http/router"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MediaSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeMediaService 初始化媒体服务（用于 mediactl）
func InitializeMediaService(ctx context.Context, cfg *config.Config) (*media.Service, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MediaSet,
	)
	return nil, nil, nil
}

// RepoSet PostgreSQL 仓储与接口绑定
var RepoSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewBookRepository,
	postgres.NewAssetRepository,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.BookRepository), new(*postgres.BookRepository)),
	wire.Bind(new(repository.AssetRepository), new(*postgres.AssetRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
)

// MediaSet 资产存储、生成与编排
var MediaSet = wire.NewSet(
	ProvideBlobStore,
	assetstore.New,
	wire.Bind(new(media.AssetStore), new(*assetstore.Store)),
	ProvideAssetGenerator,
	ProvidePromptRefiner,
	ProvidePacer,
	ProvideEventPublisher,
	ProvideIllustrator,
	ProvideNarrator,
	media.NewBatchOrchestrator,
	media.NewPublisher,
	media.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
	wire.Bind(new(handler.MediaService), new(*media.Service)),
	ProvideHealthHandler,
	handler.NewMediaHandler,
	router.New,
)
