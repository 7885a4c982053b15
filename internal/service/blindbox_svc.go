package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"christmas_shop_v1/internal/api/dto"
	"christmas_shop_v1/internal/config"
	"christmas_shop_v1/internal/model"
	"christmas_shop_v1/internal/repository"
)

// ==================== BlindboxService 盲盒服务 ====================

// 默认目录的生成参数：5 个礼盒各 16%，加一个"谢谢惠顾" 20%，总和 100
const (
	defaultPrizeCount   = 5
	defaultAssetPool    = 15 // 素材编号取自 1..15
	defaultPrizeWeight  = 16
	defaultThanksWeight = 20
)

// BlindboxService 盲盒服务：目录维护、默认目录生成、加权抽取、次数限制
type BlindboxService struct {
	itemRepo repository.BlindboxItemRepository
	drawRepo repository.DrawRecordRepository
	invSvc   *InventoryService
	cfg      *config.Config
}

// NewBlindboxService 创建盲盒服务
func NewBlindboxService(
	itemRepo repository.BlindboxItemRepository,
	drawRepo repository.DrawRecordRepository,
	invSvc *InventoryService,
	cfg *config.Config,
) *BlindboxService {
	return &BlindboxService{
		itemRepo: itemRepo,
		drawRepo: drawRepo,
		invSvc:   invSvc,
		cfg:      cfg,
	}
}

// ==================== 目录 ====================

// GetItems 返回店主目录，空目录时惰性生成默认目录
// isDefault 表示本次返回的是刚生成的默认目录
func (s *BlindboxService) GetItems(ctx context.Context, ownerID string) (items []model.BlindboxItem, isDefault bool, err error) {
	items, err = s.itemRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}
	if len(items) > 0 {
		return items, false, nil
	}

	items, err = s.SeedDefaults(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}
	return items, true, nil
}

// SeedDefaults 为空目录的店主生成默认目录
// 固定结构：5 个礼盒引用 1..15 中互不重复的随机素材编号、各占 16%，
// 外加 1 个"谢谢惠顾"占 20%；order_index 依次 0..5。
// 6 条记录走单条批量 INSERT，失败时不留下半套目录。
func (s *BlindboxService) SeedDefaults(ctx context.Context, ownerID string) ([]model.BlindboxItem, error) {
	nums := rand.Perm(defaultAssetPool)[:defaultPrizeCount]

	items := make([]*model.BlindboxItem, 0, defaultPrizeCount+1)
	for i, n := range nums {
		video := fmt.Sprintf("%d.mp4", n+1)
		items = append(items, &model.BlindboxItem{
			UserID:      ownerID,
			ItemName:    fmt.Sprintf("圣诞惊喜礼盒%d", n+1),
			VideoName:   &video,
			Probability: defaultPrizeWeight,
			IsCustom:    false,
			OrderIndex:  i,
		})
	}
	items = append(items, &model.BlindboxItem{
		UserID:      ownerID,
		ItemName:    s.cfg.ThanksItemName,
		VideoName:   nil,
		Probability: defaultThanksWeight,
		IsCustom:    false,
		OrderIndex:  defaultPrizeCount,
	})

	if err := s.itemRepo.CreateBatch(ctx, items); err != nil {
		return nil, err
	}

	result := make([]model.BlindboxItem, 0, len(items))
	for _, item := range items {
		result = append(result, *item)
	}
	return result, nil
}

// ReplaceItems 整体替换店主目录
// 概率总和不为 100 时拒绝且不改动存量数据；替换本身在一个事务内完成。
func (s *BlindboxService) ReplaceItems(ctx context.Context, ownerID string, inputs []dto.BlindboxItemInput) ([]model.BlindboxItem, error) {
	sum := 0
	for _, in := range inputs {
		sum += in.Probability
	}
	if sum != 100 {
		return nil, &ProbabilitySumError{Sum: sum}
	}

	items := make([]*model.BlindboxItem, 0, len(inputs))
	for i, in := range inputs {
		name := in.Name
		if name == "" {
			name = fmt.Sprintf("物品%d", i+1)
		}
		var video *string
		if in.VideoName != "" {
			v := in.VideoName
			video = &v
		} else if name != s.cfg.ThanksItemName {
			v := fmt.Sprintf("%d.mp4", rand.Intn(defaultAssetPool)+1)
			video = &v
		}
		items = append(items, &model.BlindboxItem{
			UserID:      ownerID,
			ItemName:    name,
			VideoName:   video,
			Probability: in.Probability,
			IsCustom:    in.IsCustom,
			OrderIndex:  i,
		})
	}

	if err := s.itemRepo.ReplaceAll(ctx, ownerID, items); err != nil {
		return nil, err
	}

	result := make([]model.BlindboxItem, 0, len(items))
	for _, item := range items {
		result = append(result, *item)
	}
	return result, nil
}

// ==================== 抽取 ====================

// DrawResult 一次抽取的结果
type DrawResult struct {
	Item      model.BlindboxItem
	IsThanks  bool
	DrawCount int
	Remaining int
}

// Draw 执行一次抽取
// sharerID 为空表示抽自己的店。限制检查先做一次只读预判便于尽早拒绝，
// 真正的上限由记录仓库的条件自增保证，并发抽取不会把计数推过上限。
func (s *BlindboxService) Draw(ctx context.Context, drawerID, sharerID string) (*DrawResult, error) {
	ownerID := drawerID
	if sharerID != "" {
		ownerID = sharerID
	}

	_, _, allowed, err := s.CheckLimit(ctx, drawerID, sharerID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrDrawLimitReached
	}

	items, _, err := s.GetItems(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCatalogMissing
	}

	total := 0
	for _, item := range items {
		total += item.Probability
	}
	if total <= 0 {
		return nil, ErrBadProbability
	}

	item := items[pickIndex(items, rand.Float64()*float64(total))]
	isThanks := item.ItemName == s.cfg.ThanksItemName

	rec, ok, err := s.drawRepo.IncrementWithCeiling(ctx, drawerID, ownerID, s.cfg.MaxDraws, item.ID, isThanks)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDrawLimitReached
	}

	// "谢谢惠顾"不入背包
	if !isThanks {
		if err := s.invSvc.Record(ctx, drawerID, item.ID); err != nil {
			return nil, err
		}
	}

	remaining := s.cfg.MaxDraws - rec.DrawCount
	if remaining < 0 {
		remaining = 0
	}
	return &DrawResult{
		Item:      item,
		IsThanks:  isThanks,
		DrawCount: rec.DrawCount,
		Remaining: remaining,
	}, nil
}

// CheckLimit 只读查询某 (抽取者, 店主) 的剩余抽取次数
func (s *BlindboxService) CheckLimit(ctx context.Context, drawerID, sharerID string) (count, remaining int, allowed bool, err error) {
	ownerID := drawerID
	if sharerID != "" {
		ownerID = sharerID
	}

	rec, err := s.drawRepo.Get(ctx, drawerID, ownerID)
	if err != nil {
		return 0, 0, false, err
	}
	if rec != nil {
		count = rec.DrawCount
	}
	remaining = s.cfg.MaxDraws - count
	if remaining < 0 {
		remaining = 0
	}
	return count, remaining, remaining > 0, nil
}

// pickIndex 加权随机选择
// roll 取自 [0, totalWeight)，按存储顺序依次减去各项权重，余量首次降到
// 0 及以下时命中该项。权重之和正确时不会遍历出界，仍保底返回最后一项。
func pickIndex(items []model.BlindboxItem, roll float64) int {
	for i := range items {
		roll -= float64(items[i].Probability)
		if roll <= 0 {
			return i
		}
	}
	return len(items) - 1
}

// ==================== 错误定义 ====================

var (
	ErrDrawLimitReached = errors.New("抽取次数已达上限")
	ErrCatalogMissing   = errors.New("盲盒设置不存在")
	ErrBadProbability   = errors.New("概率设置错误")
)

// ProbabilitySumError 概率总和校验失败
type ProbabilitySumError struct {
	Sum int
}

func (e *ProbabilitySumError) Error() string {
	return fmt.Sprintf("概率总和必须为100%%，当前为%d%%", e.Sum)
}
