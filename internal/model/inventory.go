package model

import "time"

// InventoryEntry 背包条目
// 以 (用户, 物品) 为唯一键，重复抽中时数量 +1。
// "谢谢惠顾"不入背包；背包物品不会被消耗。
type InventoryEntry struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string `gorm:"size:128;not null;uniqueIndex:idx_inventory_user_item" json:"user_id"`
	ItemID     int64  `gorm:"not null;uniqueIndex:idx_inventory_user_item" json:"item_id"`
	Quantity   int    `gorm:"not null;default:1" json:"quantity"`
	ObtainedAt time.Time `json:"obtained_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (InventoryEntry) TableName() string {
	return "inventory"
}
