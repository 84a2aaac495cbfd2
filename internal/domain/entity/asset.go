package entity

import (
	"fmt"
	"time"
)

// OwnerType 资产归属实体类型
type OwnerType string

const (
	OwnerTypePage OwnerType = "page"
	OwnerTypeBook OwnerType = "book"
)

// Slot 资产槽位
type Slot string

const (
	SlotImage Slot = "image"
	SlotAudio Slot = "audio"
)

// SlotRef 定位一个 (实体, 槽位)
type SlotRef struct {
	Owner   OwnerType `json:"owner"`
	OwnerID int64     `json:"owner_id"`
	Slot    Slot      `json:"slot"`
}

// PageImage 页面插图槽位
func PageImage(pageID int64) SlotRef {
	return SlotRef{Owner: OwnerTypePage, OwnerID: pageID, Slot: SlotImage}
}

// PageAudio 页面朗读槽位
func PageAudio(pageID int64) SlotRef {
	return SlotRef{Owner: OwnerTypePage, OwnerID: pageID, Slot: SlotAudio}
}

// BookAudio 整书朗读槽位
func BookAudio(bookID int64) SlotRef {
	return SlotRef{Owner: OwnerTypeBook, OwnerID: bookID, Slot: SlotAudio}
}

// String 返回 page/12/image 形式的键
func (r SlotRef) String() string {
	return fmt.Sprintf("%s/%d/%s", r.Owner, r.OwnerID, r.Slot)
}

// Asset 已挂载的生成资产，每个槽位至多一条
type Asset struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	OwnerType   OwnerType `json:"owner_type" gorm:"type:varchar(16);not null;uniqueIndex:idx_assets_slot"`
	OwnerID     int64     `json:"owner_id" gorm:"not null;uniqueIndex:idx_assets_slot"`
	Slot        Slot      `json:"slot" gorm:"type:varchar(16);not null;uniqueIndex:idx_assets_slot"`
	ContentType string    `json:"content_type" gorm:"type:varchar(100);not null"`
	StorageKey  string    `json:"storage_key" gorm:"type:varchar(512);not null"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Asset) TableName() string {
	return "assets"
}

// Ref 返回资产所在槽位
func (a *Asset) Ref() SlotRef {
	return SlotRef{Owner: a.OwnerType, OwnerID: a.OwnerID, Slot: a.Slot}
}
