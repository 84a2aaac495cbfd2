// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storybook-media-api/internal/domain/entity"
	apperrors "storybook-media-api/pkg/errors"
)

// AssetRepository 资产槽位仓储实现
// (owner_type, owner_id, slot) 唯一索引保证每个槽位至多一条记录
type AssetRepository struct {
	client *Client
}

// NewAssetRepository 创建资产仓储
func NewAssetRepository(client *Client) *AssetRepository {
	return &AssetRepository{client: client}
}

func slotScope(ref entity.SlotRef) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_type = ? AND owner_id = ? AND slot = ?", ref.Owner, ref.OwnerID, ref.Slot)
	}
}

// Get 获取槽位上的资产
func (r *AssetRepository) Get(ctx context.Context, ref entity.SlotRef) (*entity.Asset, error) {
	ctx, span := tracer.Start(ctx, "postgres.AssetRepository.Get")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var asset entity.Asset
	if err := db.Scopes(slotScope(ref)).Take(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &asset, nil
}

// Insert 占用槽位
func (r *AssetRepository) Insert(ctx context.Context, asset *entity.Asset) error {
	ctx, span := tracer.Start(ctx, "postgres.AssetRepository.Insert")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(asset)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to insert asset: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrAssetConflict.WithDetail(asset.Ref().String())
	}
	return nil
}

// Delete 释放槽位
func (r *AssetRepository) Delete(ctx context.Context, ref entity.SlotRef) (*entity.Asset, error) {
	ctx, span := tracer.Start(ctx, "postgres.AssetRepository.Delete")
	defer span.End()

	var removed *entity.Asset
	err := getDB(ctx, r.client.db).Transaction(func(tx *gorm.DB) error {
		var asset entity.Asset
		if err := tx.Scopes(slotScope(ref)).Take(&asset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Delete(&entity.Asset{}, asset.ID).Error; err != nil {
			return err
		}
		removed = &asset
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to delete asset: %w", err)
	}
	return removed, nil
}

// ListByOwners 批量查询
func (r *AssetRepository) ListByOwners(ctx context.Context, owner entity.OwnerType, ownerIDs []int64, slot entity.Slot) ([]*entity.Asset, error) {
	ctx, span := tracer.Start(ctx, "postgres.AssetRepository.ListByOwners")
	defer span.End()

	if len(ownerIDs) == 0 {
		return nil, nil
	}

	db := getDB(ctx, r.client.db)
	var assets []*entity.Asset
	if err := db.
		Where("owner_type = ? AND slot = ? AND owner_id IN ?", owner, slot, ownerIDs).
		Order("owner_id ASC").
		Find(&assets).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}
