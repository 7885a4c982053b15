package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"christmas_shop_v1/internal/controller"
	"christmas_shop_v1/internal/middleware"
)

// Controllers 控制器集合
type Controllers struct {
	API *controller.APIController
}

// SetupRouter 注册所有路由
// 对外只有一个 /api 入口，action 在请求体/查询串里区分；
// 其余方法一律 405，未知路径 404。
func SetupRouter(ctls *Controllers, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS())

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "方法不允许"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "接口不存在"})
	})

	api := r.Group("/api")
	{
		api.GET("", ctls.API.Handle)
		api.POST("", ctls.API.Handle)
	}

	return r
}
