package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"christmas_shop_v1/internal/api/dto"
	"christmas_shop_v1/internal/service"
)

// ==================== APIController 统一入口控制器 ====================

// APIController /api 统一入口
// 前端通过 action 字段选择操作，POST 带 JSON 体，GET 用查询串。
type APIController struct {
	userSvc      *service.UserService
	blindboxSvc  *service.BlindboxService
	inventorySvc *service.InventoryService
	shareSvc     *service.ShareService
	db           *gorm.DB
	log          *zap.Logger
}

// NewAPIController 创建统一入口控制器
func NewAPIController(
	userSvc *service.UserService,
	blindboxSvc *service.BlindboxService,
	inventorySvc *service.InventoryService,
	shareSvc *service.ShareService,
	db *gorm.DB,
	log *zap.Logger,
) *APIController {
	return &APIController{
		userSvc:      userSvc,
		blindboxSvc:  blindboxSvc,
		inventorySvc: inventorySvc,
		shareSvc:     shareSvc,
		db:           db,
		log:          log,
	}
}

// Handle 解析 action 并分发
func (c *APIController) Handle(ctx *gin.Context) {
	var req dto.APIRequest
	if ctx.Request.Method == http.MethodGet {
		if err := ctx.ShouldBindQuery(&req.ActionPayload); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
			return
		}
		req.Action = ctx.Query("action")
	} else {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的JSON数据"})
			return
		}
	}

	if req.Action == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少action参数"})
		return
	}

	payload := req.Payload()
	c.log.Debug("API请求",
		zap.String("method", ctx.Request.Method),
		zap.String("action", req.Action),
	)

	switch req.Action {
	case "test":
		c.handleTest(ctx)
	case "get_or_create_user":
		c.handleGetOrCreateUser(ctx, payload)
	case "get_shop_info":
		c.handleGetShopInfo(ctx, payload)
	case "get_blindbox_items":
		c.handleGetBlindboxItems(ctx, payload)
	case "update_blindbox_items":
		c.handleUpdateBlindboxItems(ctx, payload)
	case "draw_blindbox":
		c.handleDrawBlindbox(ctx, payload)
	case "check_draw_limit":
		c.handleCheckDrawLimit(ctx, payload)
	case "get_inventory":
		c.handleGetInventory(ctx, payload)
	case "create_share":
		c.handleCreateShare(ctx, payload)
	case "get_share_info":
		c.handleGetShareInfo(ctx, payload)
	case "process_share":
		c.handleProcessShare(ctx, payload)
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "未知操作"})
	}
}

// ==================== 基础 ====================

// handleTest 健康检查
func (c *APIController) handleTest(ctx *gin.Context) {
	connected := false
	if sqlDB, err := c.db.DB(); err == nil {
		connected = sqlDB.PingContext(ctx.Request.Context()) == nil
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "圣诞小店API运行正常",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
		"database": gin.H{
			"connected": connected,
		},
	})
}

// handleGetOrCreateUser 获取或创建用户
func (c *APIController) handleGetOrCreateUser(ctx *gin.Context, p *dto.ActionPayload) {
	if p.DeviceID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少设备ID"})
		return
	}

	user, isNew, err := c.userSvc.GetOrCreate(ctx.Request.Context(), p.DeviceID, p.Username)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "用户操作失败", "details": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"isNew":   isNew,
	})
}

// handleGetShopInfo 获取店铺公开信息
func (c *APIController) handleGetShopInfo(ctx *gin.Context, p *dto.ActionPayload) {
	if p.SharerID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少分享者ID"})
		return
	}

	user, err := c.userSvc.GetShopInfo(ctx.Request.Context(), p.SharerID)
	if err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "店铺不存在"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "获取店铺信息失败", "details": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"shop": gin.H{
			"user_id":    user.UserID,
			"username":   user.Username,
			"shop_name":  user.ShopName,
			"created_at": user.CreatedAt,
		},
	})
}

// ==================== 盲盒 ====================

// handleGetBlindboxItems 获取盲盒目录
// 分享访问（带 sharer_id）时隐藏概率等店主私有字段
func (c *APIController) handleGetBlindboxItems(ctx *gin.Context, p *dto.ActionPayload) {
	targetID := p.SharerID
	sharing := targetID != ""
	if targetID == "" {
		targetID = p.UserID
	}
	if targetID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户ID"})
		return
	}

	items, isDefault, err := c.blindboxSvc.GetItems(ctx.Request.Context(), targetID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "获取盲盒失败", "details": err.Error()})
		return
	}

	var itemsToReturn interface{} = items
	if sharing {
		views := make([]dto.BlindboxItemView, 0, len(items))
		for i := range items {
			views = append(views, dto.NewBlindboxItemView(&items[i]))
		}
		itemsToReturn = views
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"items":     itemsToReturn,
		"isDefault": isDefault,
	})
}

// handleUpdateBlindboxItems 整体替换盲盒目录
func (c *APIController) handleUpdateBlindboxItems(ctx *gin.Context, p *dto.ActionPayload) {
	if p.UserID == "" || len(p.Items) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少参数或参数格式错误"})
		return
	}

	items, err := c.blindboxSvc.ReplaceItems(ctx.Request.Context(), p.UserID, p.Items)
	if err != nil {
		var sumErr *service.ProbabilitySumError
		if errors.As(err, &sumErr) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": sumErr.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "更新盲盒失败", "details": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"items":   items,
		"message": "盲盒设置更新成功",
	})
}

// handleDrawBlindbox 抽一次盲盒
func (c *APIController) handleDrawBlindbox(ctx *gin.Context, p *dto.ActionPayload) {
	if p.UserID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户ID"})
		return
	}

	result, err := c.blindboxSvc.Draw(ctx.Request.Context(), p.UserID, p.SharerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDrawLimitReached):
			count, _, _, _ := c.blindboxSvc.CheckLimit(ctx.Request.Context(), p.UserID, p.SharerID)
			ctx.JSON(http.StatusBadRequest, gin.H{
				"success":   false,
				"error":     "抽取次数已达上限",
				"remaining": 0,
				"drawCount": count,
			})
		case errors.Is(err, service.ErrCatalogMissing):
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "盲盒设置不存在"})
		case errors.Is(err, service.ErrBadProbability):
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "概率设置错误"})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "抽取失败", "details": err.Error()})
		}
		return
	}

	// 分享访问时不返回概率信息
	var itemResp interface{} = result.Item
	if p.SharerID != "" {
		itemResp = dto.NewDrawnItemView(&result.Item)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"item":      itemResp,
		"isThanks":  result.IsThanks,
		"remaining": result.Remaining,
		"drawCount": result.DrawCount,
	})
}

// handleCheckDrawLimit 查询剩余抽取次数
func (c *APIController) handleCheckDrawLimit(ctx *gin.Context, p *dto.ActionPayload) {
	if p.UserID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户ID"})
		return
	}

	count, remaining, allowed, err := c.blindboxSvc.CheckLimit(ctx.Request.Context(), p.UserID, p.SharerID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "检查失败", "details": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"allowed":   allowed,
		"remaining": remaining,
		"drawCount": count,
	})
}

// handleGetInventory 获取背包
func (c *APIController) handleGetInventory(ctx *gin.Context, p *dto.ActionPayload) {
	if p.UserID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户ID"})
		return
	}

	rows, err := c.inventorySvc.List(ctx.Request.Context(), p.UserID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "获取背包失败", "details": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"inventory": rows,
	})
}

// ==================== 分享 ====================

// handleCreateShare 创建分享
func (c *APIController) handleCreateShare(ctx *gin.Context, p *dto.ActionPayload) {
	if p.UserID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少用户ID"})
		return
	}

	share, snap, err := c.shareSvc.Create(ctx.Request.Context(), p.UserID, p.ShareType)
	if err != nil {
		if errors.Is(err, service.ErrShopNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "店铺不存在"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "创建分享失败", "details": err.Error()})
		return
	}

	shareURL := c.shareSvc.ShareURL(share.ShareCode)
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"share": gin.H{
			"code":       share.ShareCode,
			"url":        shareURL,
			"short_url":  shareURL,
			"expires_at": share.ExpiresAt,
			"username":   snap.Username,
			"shop_name":  snap.ShopName,
		},
	})
}

// handleGetShareInfo 解析分享码
func (c *APIController) handleGetShareInfo(ctx *gin.Context, p *dto.ActionPayload) {
	if p.ShareCode == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少分享码"})
		return
	}

	share, snap, err := c.shareSvc.GetInfo(ctx.Request.Context(), p.ShareCode)
	if err != nil {
		if errors.Is(err, service.ErrShareNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "分享不存在或已过期"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "获取分享信息失败", "details": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"share": gin.H{
			"share_code":   share.ShareCode,
			"share_type":   share.ShareType,
			"from_user_id": share.FromUserID,
			"username":     snap.Username,
			"shop_name":    snap.ShopName,
			"data":         share.Data,
			"expires_at":   share.ExpiresAt,
			"created_at":   share.CreatedAt,
		},
	})
}

// handleProcessShare 兑换分享码
func (c *APIController) handleProcessShare(ctx *gin.Context, p *dto.ActionPayload) {
	if p.ShareCode == "" || p.UserID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少参数"})
		return
	}

	share, snap, err := c.shareSvc.Process(ctx.Request.Context(), p.ShareCode, p.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShareNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "分享不存在或已过期"})
		case errors.Is(err, service.ErrSelfShare):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "不能接受自己的分享"})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "处理分享失败", "details": err.Error()})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "店铺分享处理成功",
		"share_type":   share.ShareType,
		"from_user_id": share.FromUserID,
		"data":         snap,
	})
}
