package model

import "time"

// BlindboxItem 盲盒物品
// 属于唯一店主，整套目录的概率之和必须为 100。
// order_index 从 0 开始，决定抽取时的遍历顺序；其中一条是保留的"谢谢惠顾"未中奖项。
type BlindboxItem struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string  `gorm:"size:128;index;not null" json:"user_id"` // 店主设备 ID
	ItemName   string  `gorm:"size:100;not null" json:"item_name"`
	VideoName  *string `gorm:"size:100" json:"video_name"` // 素材文件名，未中奖项为 NULL
	Probability int    `gorm:"not null" json:"probability"` // 0-100 的整数权重
	IsCustom   bool    `gorm:"default:false" json:"is_custom"` // 店主自定义 / 系统默认
	OrderIndex int     `gorm:"not null" json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

func (BlindboxItem) TableName() string {
	return "blindbox_items"
}
