package service

import (
	"context"

	"christmas_shop_v1/internal/repository"
)

// ==================== InventoryService 背包服务 ====================

// InventoryService 背包服务
// 只记录和查询，没有消耗物品的操作。
type InventoryService struct {
	invRepo repository.InventoryRepository
}

// NewInventoryService 创建背包服务
func NewInventoryService(invRepo repository.InventoryRepository) *InventoryService {
	return &InventoryService{invRepo: invRepo}
}

// Record 记录一次抽中：同一 (用户, 物品) 重复抽中时数量 +1
func (s *InventoryService) Record(ctx context.Context, userID string, itemID int64) error {
	return s.invRepo.Upsert(ctx, userID, itemID)
}

// List 返回用户背包，连同物品展示字段，按获得时间倒序
func (s *InventoryService) List(ctx context.Context, userID string) ([]repository.InventoryRow, error) {
	return s.invRepo.ListWithItems(ctx, userID)
}
