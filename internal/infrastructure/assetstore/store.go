// Package assetstore 将生成的二进制资产绑定到 (实体, 槽位)
package assetstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"storybook-media-api/internal/domain/entity"
	"storybook-media-api/internal/domain/repository"
	"storybook-media-api/internal/infrastructure/storage"
	apperrors "storybook-media-api/pkg/errors"
	"storybook-media-api/pkg/logger"
)

var tracer = otel.Tracer("assetstore")

// Store 资产仓库
// 进程内按槽位串行化，跨进程依赖 assets 表的唯一索引
type Store struct {
	assets repository.AssetRepository
	blobs  storage.BlobStore
	tx     repository.Transactor
	locks  *slotLocks
}

// New 创建资产仓库，tx 可为 nil
func New(assets repository.AssetRepository, blobs storage.BlobStore, tx repository.Transactor) *Store {
	return &Store{
		assets: assets,
		blobs:  blobs,
		tx:     tx,
		locks:  newSlotLocks(),
	}
}

// objectKey 每次写入使用新对象名，替换时新旧对象可以并存
func objectKey(ref entity.SlotRef, contentType string) string {
	return fmt.Sprintf("%s/%s%s", ref.String(), uuid.NewString(), storage.ExtensionForType(contentType))
}

// IsAttached 槽位是否已占用
func (s *Store) IsAttached(ctx context.Context, ref entity.SlotRef) (bool, error) {
	asset, err := s.assets.Get(ctx, ref)
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check asset slot")
	}
	return asset != nil, nil
}

// Lookup 获取槽位上的资产，空槽位返回 nil
func (s *Store) Lookup(ctx context.Context, ref entity.SlotRef) (*entity.Asset, error) {
	asset, err := s.assets.Get(ctx, ref)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load asset")
	}
	return asset, nil
}

// AttachedOwners 返回一组实体中槽位已占用的 ID 集合
func (s *Store) AttachedOwners(ctx context.Context, owner entity.OwnerType, ids []int64, slot entity.Slot) (map[int64]bool, error) {
	assets, err := s.assets.ListByOwners(ctx, owner, ids, slot)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list assets")
	}
	out := make(map[int64]bool, len(assets))
	for _, a := range assets {
		out[a.OwnerID] = true
	}
	return out, nil
}

// Attach 挂载资产，槽位已占用时返回 ErrAssetConflict
func (s *Store) Attach(ctx context.Context, ref entity.SlotRef, content []byte, contentType string) (*entity.Asset, error) {
	ctx, span := tracer.Start(ctx, "assetstore.Attach")
	defer span.End()

	unlock := s.locks.lock(ref.String())
	defer unlock()

	existing, err := s.assets.Get(ctx, ref)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check asset slot")
	}
	if existing != nil {
		return nil, apperrors.ErrAssetConflict.WithDetail(ref.String())
	}

	asset, err := s.write(ctx, ref, content, contentType)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.assets.Insert(ctx, asset); err != nil {
		span.RecordError(err)
		s.discard(ctx, asset.StorageKey)
		if apperrors.HasCode(err, apperrors.CodeAssetConflict) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to record asset")
	}
	return asset, nil
}

// Release 释放槽位，空槽位为 no-op
func (s *Store) Release(ctx context.Context, ref entity.SlotRef) error {
	ctx, span := tracer.Start(ctx, "assetstore.Release")
	defer span.End()

	unlock := s.locks.lock(ref.String())
	defer unlock()

	removed, err := s.assets.Delete(ctx, ref)
	if err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to release asset")
	}
	if removed != nil {
		s.discard(ctx, removed.StorageKey)
	}
	return nil
}

// Replace 以新内容替换槽位（空槽位等同 Attach）
// 新对象写入成功后才在同一把锁内交换记录，失败时旧资产保持不变
func (s *Store) Replace(ctx context.Context, ref entity.SlotRef, content []byte, contentType string) (*entity.Asset, error) {
	ctx, span := tracer.Start(ctx, "assetstore.Replace")
	defer span.End()

	unlock := s.locks.lock(ref.String())
	defer unlock()

	asset, err := s.write(ctx, ref, content, contentType)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var removed *entity.Asset
	swap := func(ctx context.Context) error {
		old, err := s.assets.Delete(ctx, ref)
		if err != nil {
			return err
		}
		if err := s.assets.Insert(ctx, asset); err != nil {
			return err
		}
		removed = old
		return nil
	}
	if s.tx != nil {
		err = s.tx.WithTransaction(ctx, swap)
	} else {
		err = swap(ctx)
	}
	if err != nil {
		span.RecordError(err)
		s.discard(ctx, asset.StorageKey)
		if apperrors.HasCode(err, apperrors.CodeAssetConflict) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to swap asset")
	}
	if removed != nil {
		s.discard(ctx, removed.StorageKey)
	}
	return asset, nil
}

// Open 打开槽位内容用于下载
func (s *Store) Open(ctx context.Context, ref entity.SlotRef) (io.ReadCloser, *entity.Asset, error) {
	asset, err := s.Lookup(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	if asset == nil {
		return nil, nil, apperrors.ErrAssetNotFound.WithDetail(ref.String())
	}
	rc, err := s.blobs.Get(ctx, asset.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, apperrors.ErrAssetNotFound.WithDetail(asset.StorageKey)
		}
		return nil, nil, apperrors.Wrap(err, apperrors.CodeStorageError, "failed to open asset")
	}
	return rc, asset, nil
}

// PublicURL 资产的公开访问地址
func (s *Store) PublicURL(asset *entity.Asset) string {
	if asset == nil {
		return ""
	}
	return s.blobs.PublicURL(asset.StorageKey)
}

func (s *Store) write(ctx context.Context, ref entity.SlotRef, content []byte, contentType string) (*entity.Asset, error) {
	key := objectKey(ref, contentType)
	if err := s.blobs.Put(ctx, key, contentType, content); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "failed to store asset content")
	}
	return &entity.Asset{
		OwnerType:   ref.Owner,
		OwnerID:     ref.OwnerID,
		Slot:        ref.Slot,
		ContentType: contentType,
		StorageKey:  key,
		SizeBytes:   int64(len(content)),
	}, nil
}

// discard 清理不再被引用的对象，失败只记录日志
func (s *Store) discard(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		logger.Warn(ctx, "failed to delete orphaned asset object", "storage_key", key, "error", err.Error())
	}
}
