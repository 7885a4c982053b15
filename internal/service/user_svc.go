package service

import (
	"context"
	"errors"
	"time"

	"christmas_shop_v1/internal/model"
	"christmas_shop_v1/internal/repository"
)

// ==================== UserService 用户服务 ====================

// UserService 用户服务
// 用户以设备 ID 标识，首次访问时创建并附带一套默认盲盒目录。
type UserService struct {
	userRepo    repository.UserRepository
	blindboxSvc *BlindboxService
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository, blindboxSvc *BlindboxService) *UserService {
	return &UserService{userRepo: userRepo, blindboxSvc: blindboxSvc}
}

// GetOrCreate 获取或创建用户
// 已存在时刷新 last_active；新建时生成默认用户名/店名并播种默认目录。
// 播种失败会原样上抛：默认目录是整体插入的，不会留下半套，
// 下次访问目录时会重新惰性生成。
func (s *UserService) GetOrCreate(ctx context.Context, deviceID, username string) (user *model.User, isNew bool, err error) {
	existing, err := s.userRepo.GetByUserID(ctx, deviceID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		_ = s.userRepo.UpdateLastActive(ctx, deviceID)
		return existing, false, nil
	}

	name := username
	shopName := "我的圣诞小店"
	if name == "" {
		name = "用户_" + shortDeviceID(deviceID)
	} else {
		shopName = name + "的圣诞小店"
	}

	now := time.Now()
	user = &model.User{
		UserID:     deviceID,
		Username:   name,
		ShopName:   shopName,
		LastActive: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, err
	}

	if _, err := s.blindboxSvc.SeedDefaults(ctx, deviceID); err != nil {
		return nil, false, err
	}

	return user, true, nil
}

// GetShopInfo 获取店铺公开信息
func (s *UserService) GetShopInfo(ctx context.Context, sharerID string) (*model.User, error) {
	user, err := s.userRepo.GetByUserID(ctx, sharerID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrShopNotFound
	}
	return user, nil
}

func shortDeviceID(deviceID string) string {
	runes := []rune(deviceID)
	if len(runes) > 8 {
		runes = runes[:8]
	}
	return string(runes)
}

// ==================== 错误定义 ====================

var (
	ErrShopNotFound = errors.New("店铺不存在")
)
