package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"christmas_shop_v1/internal/model"
)

// ==================== DrawRecordRepository 抽取记录仓库 ====================

// DrawRecordRepository 抽取记录仓库接口
type DrawRecordRepository interface {
	Get(ctx context.Context, drawerID, sharerID string) (*model.DrawRecord, error)
	// IncrementWithCeiling 带上限的原子自增：draw_count < max 时 +1 并更新
	// 最近抽中物品；返回更新后的记录。已达上限时 ok 为 false。
	IncrementWithCeiling(ctx context.Context, drawerID, sharerID string, max int, lastItemID int64, isThanks bool) (rec *model.DrawRecord, ok bool, err error)
}

type drawRecordRepository struct {
	db *gorm.DB
}

// NewDrawRecordRepository 创建抽取记录仓库
func NewDrawRecordRepository(db *gorm.DB) DrawRecordRepository {
	return &drawRecordRepository{db: db}
}

// Get 获取 (抽取者, 店主) 的抽取记录，不存在时返回 (nil, nil)
func (r *drawRecordRepository) Get(ctx context.Context, drawerID, sharerID string) (*model.DrawRecord, error) {
	var rec model.DrawRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND sharer_id = ?", drawerID, sharerID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// IncrementWithCeiling 带上限的原子自增
// 计数检查和自增由同一条条件 UPDATE 完成，并发请求不会把计数推过上限；
// 记录不存在时走唯一索引保护的插入，插入撞车则退回条件 UPDATE 重试一次。
func (r *drawRecordRepository) IncrementWithCeiling(ctx context.Context, drawerID, sharerID string, max int, lastItemID int64, isThanks bool) (*model.DrawRecord, bool, error) {
	thanksInc := 0
	if isThanks {
		thanksInc = 1
	}
	now := time.Now()

	update := func() (int64, error) {
		res := r.db.WithContext(ctx).
			Model(&model.DrawRecord{}).
			Where("user_id = ? AND sharer_id = ? AND draw_count < ?", drawerID, sharerID, max).
			Updates(map[string]interface{}{
				"draw_count":   gorm.Expr("draw_count + 1"),
				"thanks_count": gorm.Expr("thanks_count + ?", thanksInc),
				"last_item_id": lastItemID,
				"last_draw":    now,
			})
		return res.RowsAffected, res.Error
	}

	affected, err := update()
	if err != nil {
		return nil, false, err
	}

	if affected == 0 {
		existing, err := r.Get(ctx, drawerID, sharerID)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			// 记录在但没更新到，说明已达上限
			return nil, false, nil
		}

		rec := &model.DrawRecord{
			UserID:      drawerID,
			SharerID:    sharerID,
			DrawCount:   1,
			ThanksCount: thanksInc,
			LastItemID:  lastItemID,
			LastDraw:    now,
		}
		res := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "sharer_id"}},
				DoNothing: true,
			}).
			Create(rec)
		if res.Error != nil {
			return nil, false, res.Error
		}
		if res.RowsAffected > 0 {
			return rec, true, nil
		}

		// 并发请求抢先建了记录，重试一次条件自增
		affected, err = update()
		if err != nil {
			return nil, false, err
		}
		if affected == 0 {
			return nil, false, nil
		}
	}

	rec, err := r.Get(ctx, drawerID, sharerID)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}
