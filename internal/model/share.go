package model

import (
	"time"

	"gorm.io/datatypes"
)

// Share 分享码
// 8 位易读字符码，指向一个店主，带店名快照；7 天过期，一次性使用。
// 除 unused -> used 的单向翻转外不可变；过期是读取时派生的状态，不落库。
type Share struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	FromUserID string         `gorm:"size:128;index;not null" json:"from_user_id"` // 分享者（店主）
	ShareCode  string         `gorm:"size:16;uniqueIndex;not null" json:"share_code"`
	ShareType  string         `gorm:"size:20;default:'shop'" json:"share_type"`
	Data       datatypes.JSON `json:"data"` // 店主名称快照 {username, shop_name, timestamp}
	ExpiresAt  time.Time      `gorm:"index;not null" json:"expires_at"`
	Used       bool           `gorm:"default:false" json:"used"`
	UsedBy     string         `gorm:"size:128" json:"used_by"`
	UsedAt     *time.Time     `json:"used_at"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (Share) TableName() string {
	return "shares"
}
