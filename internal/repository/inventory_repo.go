package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"christmas_shop_v1/internal/model"
)

// ==================== InventoryRepository 背包仓库 ====================

// InventoryRow 背包条目 + 物品展示字段
type InventoryRow struct {
	ID         int64     `json:"id"`
	ItemID     int64     `json:"item_id"`
	Quantity   int       `json:"quantity"`
	ObtainedAt time.Time `json:"obtained_at"`
	ItemName   string    `json:"item_name"`
	VideoName  *string   `json:"video_name"`
	IsCustom   bool      `json:"is_custom"`
}

// InventoryRepository 背包仓库接口
type InventoryRepository interface {
	// Upsert 记录一次抽中：已有条目数量 +1，否则以数量 1 新建。
	// 单条 INSERT ... ON CONFLICT，并发下不会产生重复行。
	Upsert(ctx context.Context, userID string, itemID int64) error
	ListWithItems(ctx context.Context, userID string) ([]InventoryRow, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建背包仓库
func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

// Upsert 新增或累加背包条目
func (r *inventoryRepository) Upsert(ctx context.Context, userID string, itemID int64) error {
	now := time.Now()
	entry := &model.InventoryEntry{
		UserID:     userID,
		ItemID:     itemID,
		Quantity:   1,
		ObtainedAt: now,
		UpdatedAt:  now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("quantity + 1"),
				"updated_at": now,
			}),
		}).
		Create(entry).Error
}

// ListWithItems 返回用户背包，连同物品展示字段，按获得时间倒序
func (r *inventoryRepository) ListWithItems(ctx context.Context, userID string) ([]InventoryRow, error) {
	var rows []InventoryRow
	err := r.db.WithContext(ctx).
		Table("inventory").
		Select("inventory.id, inventory.item_id, inventory.quantity, inventory.obtained_at, "+
			"blindbox_items.item_name, blindbox_items.video_name, blindbox_items.is_custom").
		Joins("LEFT JOIN blindbox_items ON blindbox_items.id = inventory.item_id").
		Where("inventory.user_id = ?", userID).
		Order("inventory.obtained_at DESC").
		Scan(&rows).Error
	return rows, err
}
