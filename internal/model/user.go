package model

import "time"

// User 用户/店主
// 用户即店铺：每个设备 ID 对应一个用户，同时拥有一个自己的盲盒小店。
// 首次访问时创建，之后只刷新 last_active。
type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID    string `gorm:"size:128;uniqueIndex;not null" json:"user_id"` // 客户端设备 ID（不透明字符串）
	Username  string `gorm:"size:100;not null" json:"username"`
	ShopName  string `gorm:"size:100;not null" json:"shop_name"`
	CreatedAt time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

func (User) TableName() string {
	return "users"
}
