package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"christmas_shop_v1/internal/model"
)

// ==================== BlindboxItemRepository 盲盒物品仓库 ====================

// BlindboxItemRepository 盲盒物品仓库接口
type BlindboxItemRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]model.BlindboxItem, error)
	GetByID(ctx context.Context, id int64) (*model.BlindboxItem, error)
	CreateBatch(ctx context.Context, items []*model.BlindboxItem) error
	ReplaceAll(ctx context.Context, ownerID string, items []*model.BlindboxItem) error
}

type blindboxItemRepository struct {
	db *gorm.DB
}

// NewBlindboxItemRepository 创建盲盒物品仓库
func NewBlindboxItemRepository(db *gorm.DB) BlindboxItemRepository {
	return &blindboxItemRepository{db: db}
}

// ListByOwner 按展示顺序返回店主的全部物品
func (r *blindboxItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.BlindboxItem, error) {
	var items []model.BlindboxItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("order_index ASC").
		Find(&items).Error
	return items, err
}

// GetByID 根据 ID 获取物品，不存在时返回 (nil, nil)
func (r *blindboxItemRepository) GetByID(ctx context.Context, id int64) (*model.BlindboxItem, error) {
	var item model.BlindboxItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateBatch 批量插入物品，单条 INSERT，整体成功或整体失败
func (r *blindboxItemRepository) CreateBatch(ctx context.Context, items []*model.BlindboxItem) error {
	return r.db.WithContext(ctx).Create(items).Error
}

// ReplaceAll 整体替换店主的目录：删旧插新在同一事务内完成，
// 失败时不留下半套目录
func (r *blindboxItemRepository) ReplaceAll(ctx context.Context, ownerID string, items []*model.BlindboxItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", ownerID).Delete(&model.BlindboxItem{}).Error; err != nil {
			return err
		}
		return tx.Create(items).Error
	})
}
