package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"christmas_shop_v1/internal/model"
)

// ==================== ShareRepository 分享码仓库 ====================

// ShareRepository 分享码仓库接口
type ShareRepository interface {
	Create(ctx context.Context, share *model.Share) error
	// GetActive 按码查找未使用且未过期的分享；过期、已用、不存在
	// 统一返回 (nil, nil)，对调用方不可区分
	GetActive(ctx context.Context, code string, now time.Time) (*model.Share, error)
	// MarkUsed 把未使用的分享置为已使用；返回是否真的翻转了状态
	MarkUsed(ctx context.Context, id int64, usedBy string, now time.Time) (bool, error)
	// DeleteExpired 清理已过期的分享码，返回删除行数
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type shareRepository struct {
	db *gorm.DB
}

// NewShareRepository 创建分享码仓库
func NewShareRepository(db *gorm.DB) ShareRepository {
	return &shareRepository{db: db}
}

// Create 创建分享记录
func (r *shareRepository) Create(ctx context.Context, share *model.Share) error {
	return r.db.WithContext(ctx).Create(share).Error
}

// GetActive 查找可用的分享
func (r *shareRepository) GetActive(ctx context.Context, code string, now time.Time) (*model.Share, error) {
	var share model.Share
	err := r.db.WithContext(ctx).
		Where("share_code = ? AND used = ? AND expires_at > ?", code, false, now).
		First(&share).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// MarkUsed 单向翻转 unused -> used
// WHERE used = false 保证并发兑换同一个码时只有一个成功
func (r *shareRepository) MarkUsed(ctx context.Context, id int64, usedBy string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Share{}).
		Where("id = ? AND used = ?", id, false).
		Updates(map[string]interface{}{
			"used":    true,
			"used_by": usedBy,
			"used_at": now,
		})
	return res.RowsAffected > 0, res.Error
}

// DeleteExpired 删除过期分享码
// 过期未用的码对所有读取路径等同于不存在，删掉只是回收存储
func (r *shareRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.Share{})
	return res.RowsAffected, res.Error
}
