package media

import (
	"context"
	"io"

	"storybook-media-api/internal/domain/entity"
)

// AssetStore 资产槽位操作，由 assetstore.Store 实现
type AssetStore interface {
	IsAttached(ctx context.Context, ref entity.SlotRef) (bool, error)
	Lookup(ctx context.Context, ref entity.SlotRef) (*entity.Asset, error)
	AttachedOwners(ctx context.Context, owner entity.OwnerType, ids []int64, slot entity.Slot) (map[int64]bool, error)
	Attach(ctx context.Context, ref entity.SlotRef, content []byte, contentType string) (*entity.Asset, error)
	Release(ctx context.Context, ref entity.SlotRef) error
	Replace(ctx context.Context, ref entity.SlotRef, content []byte, contentType string) (*entity.Asset, error)
	Open(ctx context.Context, ref entity.SlotRef) (io.ReadCloser, *entity.Asset, error)
	PublicURL(asset *entity.Asset) string
}

// EventPublisher 媒体事件发布，由 messaging.Producer 实现
type EventPublisher interface {
	PublishBatchCompleted(ctx context.Context, evt *entity.BatchCompletedEvent) (string, error)
	PublishBookPublished(ctx context.Context, evt *entity.BookPublishedEvent) (string, error)
}
