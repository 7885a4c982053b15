package tests

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"christmas_shop_v1/internal/config"
	"christmas_shop_v1/internal/controller"
	"christmas_shop_v1/internal/model"
	"christmas_shop_v1/internal/repository"
	"christmas_shop_v1/internal/router"
	"christmas_shop_v1/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 集成测试套件 ====================

// IntegrationSuite 起一个完整服务（内存数据库 + 真实路由），
// 用 HTTP 客户端按前端的方式调用。
type IntegrationSuite struct {
	DB     *gorm.DB
	Server *httptest.Server
	Client *resty.Client
}

func NewIntegrationSuite(t *testing.T) *IntegrationSuite {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "连接数据库失败")

	// :memory: 下每个新连接都是一个独立的空库，必须钉死在单连接上
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.User{},
		&model.BlindboxItem{},
		&model.DrawRecord{},
		&model.InventoryEntry{},
		&model.Share{},
	)
	require.NoError(t, err, "数据库迁移失败")

	cfg := config.Default()
	log := zap.NewNop()

	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewBlindboxItemRepository(db)
	drawRepo := repository.NewDrawRecordRepository(db)
	invRepo := repository.NewInventoryRepository(db)
	shareRepo := repository.NewShareRepository(db)

	invSvc := service.NewInventoryService(invRepo)
	blindboxSvc := service.NewBlindboxService(itemRepo, drawRepo, invSvc, cfg)
	userSvc := service.NewUserService(userRepo, blindboxSvc)
	shareSvc := service.NewShareService(shareRepo, userRepo, cfg)

	api := controller.NewAPIController(userSvc, blindboxSvc, invSvc, shareSvc, db, log)
	engine := router.SetupRouter(&router.Controllers{API: api}, log)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	client := resty.New().SetBaseURL(server.URL)
	return &IntegrationSuite{DB: db, Server: server, Client: client}
}

// call 发一个 action 请求，响应解析进 map
func (s *IntegrationSuite) call(t *testing.T, body map[string]interface{}) (*resty.Response, map[string]interface{}) {
	var result map[string]interface{}
	resp, err := s.Client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		Post("/api")
	require.NoError(t, err, "请求失败")
	return resp, result
}

func action(name string, data map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"action": name, "data": data}
}

// ==================== 健康检查 ====================

func TestIntegration_HealthCheck(t *testing.T) {
	suite := NewIntegrationSuite(t)

	resp, result := suite.call(t, action("test", nil))
	require.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "圣诞小店API运行正常", result["message"])

	db, ok := result["database"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, db["connected"])
}

// ==================== 用户流程 ====================

func TestIntegration_UserFlow(t *testing.T) {
	suite := NewIntegrationSuite(t)

	t.Run("FirstVisitCreatesUserAndCatalog", func(t *testing.T) {
		resp, result := suite.call(t, action("get_or_create_user", map[string]interface{}{
			"device_id": "device-alice",
			"username":  "Alice",
		}))
		require.Equal(t, 200, resp.StatusCode())
		assert.Equal(t, true, result["isNew"])

		user := result["user"].(map[string]interface{})
		assert.Equal(t, "Alice", user["username"])
		assert.Equal(t, "Alice的圣诞小店", user["shop_name"])

		// 附带一套 6 项默认目录
		_, items := suite.call(t, action("get_blindbox_items", map[string]interface{}{
			"user_id": "device-alice",
		}))
		assert.Equal(t, true, items["isDefault"])
		assert.Len(t, items["items"], 6)
	})

	t.Run("SecondVisitReturnsExisting", func(t *testing.T) {
		resp, result := suite.call(t, action("get_or_create_user", map[string]interface{}{
			"device_id": "device-alice",
		}))
		require.Equal(t, 200, resp.StatusCode())
		assert.Equal(t, false, result["isNew"])
		user := result["user"].(map[string]interface{})
		assert.Equal(t, "Alice", user["username"])
	})

	t.Run("ShopInfoPublicView", func(t *testing.T) {
		resp, result := suite.call(t, action("get_shop_info", map[string]interface{}{
			"sharer_id": "device-alice",
		}))
		require.Equal(t, 200, resp.StatusCode())
		shop := result["shop"].(map[string]interface{})
		assert.Equal(t, "Alice的圣诞小店", shop["shop_name"])

		resp, _ = suite.call(t, action("get_shop_info", map[string]interface{}{
			"sharer_id": "nobody",
		}))
		assert.Equal(t, 404, resp.StatusCode())
	})
}

// ==================== 抽取流程 ====================

func TestIntegration_DrawFlow(t *testing.T) {
	suite := NewIntegrationSuite(t)

	suite.call(t, action("get_or_create_user", map[string]interface{}{
		"device_id": "device-alice", "username": "Alice",
	}))

	// 换成必中单项的目录，断言才是确定性的
	resp, result := suite.call(t, action("update_blindbox_items", map[string]interface{}{
		"user_id": "device-alice",
		"items": []map[string]interface{}{
			{"name": "圣诞袜", "video_name": "5.mp4", "probability": 100, "is_custom": true},
		},
	}))
	require.Equal(t, 200, resp.StatusCode(), "替换目录失败: %v", result)

	t.Run("ThreeDrawsThenRejected", func(t *testing.T) {
		for i, wantRemaining := range []float64{2, 1, 0} {
			resp, result := suite.call(t, action("draw_blindbox", map[string]interface{}{
				"user_id": "device-alice",
			}))
			require.Equal(t, 200, resp.StatusCode(), "第 %d 次抽取失败", i+1)
			assert.Equal(t, wantRemaining, result["remaining"])
			item := result["item"].(map[string]interface{})
			assert.Equal(t, "圣诞袜", item["item_name"])
			assert.Equal(t, false, result["isThanks"])
		}

		resp, result := suite.call(t, action("draw_blindbox", map[string]interface{}{
			"user_id": "device-alice",
		}))
		assert.Equal(t, 400, resp.StatusCode())
		assert.Equal(t, false, result["success"])
		assert.Equal(t, "抽取次数已达上限", result["error"])
		assert.Equal(t, float64(0), result["remaining"])
		assert.Equal(t, float64(3), result["drawCount"])
	})

	t.Run("InventoryRecordsWins", func(t *testing.T) {
		resp, result := suite.call(t, action("get_inventory", map[string]interface{}{
			"user_id": "device-alice",
		}))
		require.Equal(t, 200, resp.StatusCode())

		inventory := result["inventory"].([]interface{})
		require.Len(t, inventory, 1, "必中同一物品应合并成一条")
		row := inventory[0].(map[string]interface{})
		assert.Equal(t, "圣诞袜", row["item_name"])
		assert.Equal(t, float64(3), row["quantity"])
	})

	t.Run("LimitIsPerOwner", func(t *testing.T) {
		// 自家额度用完后，抽别人的店不受影响
		suite.call(t, action("get_or_create_user", map[string]interface{}{
			"device_id": "device-bob", "username": "Bob",
		}))

		resp, result := suite.call(t, action("draw_blindbox", map[string]interface{}{
			"user_id":   "device-alice",
			"sharer_id": "device-bob",
		}))
		require.Equal(t, 200, resp.StatusCode(), "跨店抽取失败: %v", result)
		assert.Equal(t, float64(2), result["remaining"])

		// 分享视角的返回不带概率
		if item, ok := result["item"].(map[string]interface{}); ok {
			_, has := item["probability"]
			assert.False(t, has, "分享视角不应返回 probability")
		}
	})

	t.Run("CheckLimitMatchesState", func(t *testing.T) {
		_, result := suite.call(t, action("check_draw_limit", map[string]interface{}{
			"user_id": "device-alice",
		}))
		assert.Equal(t, false, result["allowed"])
		assert.Equal(t, float64(0), result["remaining"])
		assert.Equal(t, float64(3), result["drawCount"])
	})
}

// ==================== 分享流程 ====================

func TestIntegration_ShareFlow(t *testing.T) {
	suite := NewIntegrationSuite(t)

	suite.call(t, action("get_or_create_user", map[string]interface{}{
		"device_id": "device-alice", "username": "Alice",
	}))
	suite.call(t, action("get_or_create_user", map[string]interface{}{
		"device_id": "device-bob", "username": "Bob",
	}))

	var code string

	t.Run("CreateShare", func(t *testing.T) {
		resp, result := suite.call(t, action("create_share", map[string]interface{}{
			"user_id": "device-alice",
		}))
		require.Equal(t, 200, resp.StatusCode())

		share := result["share"].(map[string]interface{})
		code = share["code"].(string)
		require.Len(t, code, 8)
		assert.Equal(t, "Alice的圣诞小店", share["shop_name"])
		assert.Contains(t, share["url"], code)
	})

	t.Run("ResolveShare", func(t *testing.T) {
		resp, result := suite.call(t, action("get_share_info", map[string]interface{}{
			"share_code": code,
		}))
		require.Equal(t, 200, resp.StatusCode())
		share := result["share"].(map[string]interface{})
		assert.Equal(t, "device-alice", share["from_user_id"])
		assert.Equal(t, "shop", share["share_type"])
		assert.Equal(t, "Alice", share["username"])
	})

	t.Run("SelfRedeemRejected", func(t *testing.T) {
		resp, result := suite.call(t, action("process_share", map[string]interface{}{
			"share_code": code,
			"user_id":    "device-alice",
		}))
		assert.Equal(t, 400, resp.StatusCode())
		assert.Equal(t, "不能接受自己的分享", result["error"])
	})

	t.Run("RedeemOnce", func(t *testing.T) {
		resp, result := suite.call(t, action("process_share", map[string]interface{}{
			"share_code": code,
			"user_id":    "device-bob",
		}))
		require.Equal(t, 200, resp.StatusCode())
		assert.Equal(t, "device-alice", result["from_user_id"])

		// 用过即失效：解析与再次兑换都 404
		resp, _ = suite.call(t, action("get_share_info", map[string]interface{}{
			"share_code": code,
		}))
		assert.Equal(t, 404, resp.StatusCode())

		resp, _ = suite.call(t, action("process_share", map[string]interface{}{
			"share_code": code,
			"user_id":    "device-carol",
		}))
		assert.Equal(t, 404, resp.StatusCode())
	})

	t.Run("UnknownCode", func(t *testing.T) {
		resp, result := suite.call(t, action("get_share_info", map[string]interface{}{
			"share_code": "ZZZZ2222",
		}))
		assert.Equal(t, 404, resp.StatusCode())
		assert.Equal(t, "分享不存在或已过期", result["error"])
	})
}

// ==================== 路由边界 ====================

func TestIntegration_RoutingEdges(t *testing.T) {
	suite := NewIntegrationSuite(t)

	t.Run("MethodNotAllowed", func(t *testing.T) {
		resp, err := suite.Client.R().Put("/api")
		require.NoError(t, err)
		assert.Equal(t, 405, resp.StatusCode())
	})

	t.Run("UnknownPath", func(t *testing.T) {
		resp, err := suite.Client.R().Get("/nope")
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode())
	})

	t.Run("GetWithQueryString", func(t *testing.T) {
		suite.call(t, action("get_or_create_user", map[string]interface{}{
			"device_id": "device-alice", "username": "Alice",
		}))

		var result map[string]interface{}
		resp, err := suite.Client.R().
			SetQueryParams(map[string]string{
				"action":    "check_draw_limit",
				"user_id":   "device-alice",
				"sharer_id": "",
			}).
			SetResult(&result).
			Get("/api")
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode())
		assert.Equal(t, true, result["allowed"])
	})

	t.Run("UnknownAction", func(t *testing.T) {
		resp, result := suite.call(t, map[string]interface{}{"action": "explode"})
		assert.Equal(t, 400, resp.StatusCode())
		assert.Equal(t, "未知操作", result["error"])
	})
}

// ==================== 并发抽取 ====================

// 限次在数据库层做条件自增，并发下总数不会超额
func TestIntegration_ConcurrentDraws(t *testing.T) {
	suite := NewIntegrationSuite(t)

	suite.call(t, action("get_or_create_user", map[string]interface{}{
		"device_id": "device-alice", "username": "Alice",
	}))

	done := make(chan int, 10)
	for i := 0; i < 10; i++ {
		go func() {
			resp, _ := suite.Client.R().
				SetHeader("Content-Type", "application/json").
				SetBody(action("draw_blindbox", map[string]interface{}{
					"user_id": "device-alice",
				})).
				Post("/api")
			done <- resp.StatusCode()
		}()
	}

	success := 0
	for i := 0; i < 10; i++ {
		if <-done == 200 {
			success++
		}
	}
	assert.LessOrEqual(t, success, 3, "并发下抽取成功次数不应超过上限")

	var rec model.DrawRecord
	err := suite.DB.Where("user_id = ? AND sharer_id = ?", "device-alice", "device-alice").
		First(&rec).Error
	require.NoError(t, err)
	assert.LessOrEqual(t, rec.DrawCount, 3, fmt.Sprintf("draw_count = %d 超过上限", rec.DrawCount))
}
