package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/datatypes"

	"christmas_shop_v1/internal/config"
	"christmas_shop_v1/internal/model"
	"christmas_shop_v1/internal/repository"
)

// ==================== ShareService 分享服务 ====================

const shareCodeLength = 8

// ShareSnapshot 分享创建时的店主名称快照，落库后不再随店铺改名变化
type ShareSnapshot struct {
	Username  string `json:"username"`
	ShopName  string `json:"shop_name"`
	Timestamp int64  `json:"timestamp"`
}

// ShareService 分享服务：签发、解析、兑换分享码
type ShareService struct {
	shareRepo repository.ShareRepository
	userRepo  repository.UserRepository
	cfg       *config.Config
}

// NewShareService 创建分享服务
func NewShareService(shareRepo repository.ShareRepository, userRepo repository.UserRepository, cfg *config.Config) *ShareService {
	return &ShareService{shareRepo: shareRepo, userRepo: userRepo, cfg: cfg}
}

// Create 签发分享码
// 码空间为 31^8，不做查重；有效期从当前时刻起按配置天数计算。
func (s *ShareService) Create(ctx context.Context, userID, shareType string) (*model.Share, *ShareSnapshot, error) {
	user, err := s.userRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrShopNotFound
	}

	if shareType == "" {
		shareType = "shop"
	}

	now := time.Now()
	snap := &ShareSnapshot{
		Username:  user.Username,
		ShopName:  user.ShopName,
		Timestamp: now.UnixMilli(),
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, nil, err
	}

	share := &model.Share{
		FromUserID: userID,
		ShareCode:  s.generateCode(),
		ShareType:  shareType,
		Data:       datatypes.JSON(raw),
		ExpiresAt:  now.Add(time.Duration(s.cfg.ShareExpiryDays) * 24 * time.Hour),
		Used:       false,
	}
	if err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, nil, err
	}
	return share, snap, nil
}

// ShareURL 拼出分享落地页链接
func (s *ShareService) ShareURL(code string) string {
	return fmt.Sprintf("%s?code=%s", s.cfg.ShareBaseURL, code)
}

// GetInfo 解析分享码
// 只认未使用且未过期的记录；过期、已用、不存在统一报"分享不存在或已过期"。
func (s *ShareService) GetInfo(ctx context.Context, code string) (*model.Share, *ShareSnapshot, error) {
	share, err := s.shareRepo.GetActive(ctx, code, time.Now())
	if err != nil {
		return nil, nil, err
	}
	if share == nil {
		return nil, nil, ErrShareNotFound
	}
	return share, decodeSnapshot(share), nil
}

// Process 兑换分享码
// 不允许兑换自己的分享；成功后 used 单向置位并记录兑换者和时间。
// 兑换本身不发放任何物品，只返回店主引用供前端展示店铺。
func (s *ShareService) Process(ctx context.Context, code, userID string) (*model.Share, *ShareSnapshot, error) {
	share, err := s.shareRepo.GetActive(ctx, code, time.Now())
	if err != nil {
		return nil, nil, err
	}
	if share == nil {
		return nil, nil, ErrShareNotFound
	}
	if share.FromUserID == userID {
		return nil, nil, ErrSelfShare
	}

	flipped, err := s.shareRepo.MarkUsed(ctx, share.ID, userID, time.Now())
	if err != nil {
		return nil, nil, err
	}
	if !flipped {
		// 并发兑换被别人抢先
		return nil, nil, ErrShareNotFound
	}
	return share, decodeSnapshot(share), nil
}

func (s *ShareService) generateCode() string {
	alphabet := s.cfg.CodeAlphabet
	b := make([]byte, shareCodeLength)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

func decodeSnapshot(share *model.Share) *ShareSnapshot {
	var snap ShareSnapshot
	if len(share.Data) > 0 {
		_ = json.Unmarshal(share.Data, &snap)
	}
	return &snap
}

// ==================== 错误定义 ====================

var (
	ErrShareNotFound = errors.New("分享不存在或已过期")
	ErrSelfShare     = errors.New("不能接受自己的分享")
)
