package repository

import (
	"context"

	"storybook-media-api/internal/domain/entity"
)

// AssetRepository 资产槽位仓储接口
type AssetRepository interface {
	// Get 获取槽位上的资产，空槽位返回 nil
	Get(ctx context.Context, ref entity.SlotRef) (*entity.Asset, error)

	// Insert 占用槽位，槽位已被占用时返回 CodeAssetConflict
	Insert(ctx context.Context, asset *entity.Asset) error

	// Delete 释放槽位，空槽位为 no-op；返回被删除的资产
	Delete(ctx context.Context, ref entity.SlotRef) (*entity.Asset, error)

	// ListByOwners 批量查询一组实体在某槽位上的资产
	ListByOwners(ctx context.Context, owner entity.OwnerType, ownerIDs []int64, slot entity.Slot) ([]*entity.Asset, error)
}
