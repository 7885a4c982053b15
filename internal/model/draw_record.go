package model

import "time"

// DrawRecord 抽取记录
// 以 (抽取者, 店主) 为唯一键，累计抽取次数；正常业务下只增不删。
// 自己抽自己的店时 sharer_id == user_id。
type DrawRecord struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string `gorm:"size:128;not null;uniqueIndex:idx_draw_user_sharer" json:"user_id"`   // 抽取者
	SharerID    string `gorm:"size:128;not null;uniqueIndex:idx_draw_user_sharer" json:"sharer_id"` // 店主
	DrawCount   int    `gorm:"not null;default:0" json:"draw_count"`
	ThanksCount int    `gorm:"not null;default:0" json:"thanks_count"` // "谢谢惠顾"次数
	LastItemID  int64  `json:"last_item_id"`
	LastDraw    time.Time `json:"last_draw"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (DrawRecord) TableName() string {
	return "draw_records"
}
