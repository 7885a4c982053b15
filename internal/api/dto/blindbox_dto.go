package dto

import "christmas_shop_v1/internal/model"

// ================== Blindbox DTO ==================

// BlindboxItemInput 整体替换目录时的单个物品
type BlindboxItemInput struct {
	Name        string `json:"name"`
	VideoName   string `json:"video_name"`
	Probability int    `json:"probability"`
	IsCustom    bool   `json:"is_custom"`
}

// BlindboxItemView 分享访问下的物品视图：隐藏概率等店主私有字段
type BlindboxItemView struct {
	ID         int64   `json:"id"`
	UserID     string  `json:"user_id"`
	ItemName   string  `json:"item_name"`
	VideoName  *string `json:"video_name"`
	OrderIndex int     `json:"order_index"`
	IsCustom   bool    `json:"is_custom"`
}

// DrawnItemView 分享访问下的抽中物品视图
type DrawnItemView struct {
	ID        int64   `json:"id"`
	ItemName  string  `json:"item_name"`
	VideoName *string `json:"video_name"`
	IsCustom  bool    `json:"is_custom"`
}

// NewBlindboxItemView 从模型构造分享视图
func NewBlindboxItemView(item *model.BlindboxItem) BlindboxItemView {
	return BlindboxItemView{
		ID:         item.ID,
		UserID:     item.UserID,
		ItemName:   item.ItemName,
		VideoName:  item.VideoName,
		OrderIndex: item.OrderIndex,
		IsCustom:   item.IsCustom,
	}
}

// NewDrawnItemView 从模型构造抽中物品的分享视图
func NewDrawnItemView(item *model.BlindboxItem) DrawnItemView {
	return DrawnItemView{
		ID:        item.ID,
		ItemName:  item.ItemName,
		VideoName: item.VideoName,
		IsCustom:  item.IsCustom,
	}
}
