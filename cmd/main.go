package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"christmas_shop_v1/internal/config"
	"christmas_shop_v1/internal/controller"
	"christmas_shop_v1/internal/model"
	"christmas_shop_v1/internal/repository"
	"christmas_shop_v1/internal/router"
	"christmas_shop_v1/internal/service"
	"christmas_shop_v1/internal/task"
	"christmas_shop_v1/pkg/database"
	"christmas_shop_v1/pkg/logger"
)

func main() {
	// 1. 配置与日志
	cfg := config.Load()

	zapLog, err := logger.New()
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer zapLog.Sync()

	// 2. 初始化数据库
	db := initDatabase(cfg, zapLog)

	// 3. 初始化依赖
	deps := initDependencies(db, cfg, zapLog)

	// 4. 启动定时任务
	initTasks(deps)

	// 5. 初始化路由并启动服务
	r := router.SetupRouter(deps.Controllers, zapLog)
	startServer(r, cfg, zapLog)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
	Tasks       *Tasks
}

// Repositories 仓库集合
type Repositories struct {
	User       repository.UserRepository
	Item       repository.BlindboxItemRepository
	DrawRecord repository.DrawRecordRepository
	Inventory  repository.InventoryRepository
	Share      repository.ShareRepository
}

// Services 服务集合
type Services struct {
	User      *service.UserService
	Blindbox  *service.BlindboxService
	Inventory *service.InventoryService
	Share     *service.ShareService
}

// Tasks 定时任务集合
type Tasks struct {
	ShareCleanup *task.ShareCleanupTask
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config, zapLog *zap.Logger) *gorm.DB {
	db, err := database.InitDB(cfg.DatabaseDSN,
		&model.User{},
		&model.BlindboxItem{},
		&model.DrawRecord{},
		&model.InventoryEntry{},
		&model.Share{},
	)
	if err != nil {
		zapLog.Fatal("数据库初始化失败", zap.Error(err))
	}
	zapLog.Info("数据库连接成功")
	return db
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB, cfg *config.Config, zapLog *zap.Logger) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		User:       repository.NewUserRepository(db),
		Item:       repository.NewBlindboxItemRepository(db),
		DrawRecord: repository.NewDrawRecordRepository(db),
		Inventory:  repository.NewInventoryRepository(db),
		Share:      repository.NewShareRepository(db),
	}

	// -------- 业务服务 --------
	inventorySvc := service.NewInventoryService(repos.Inventory)
	blindboxSvc := service.NewBlindboxService(repos.Item, repos.DrawRecord, inventorySvc, cfg)
	services := &Services{
		User:      service.NewUserService(repos.User, blindboxSvc),
		Blindbox:  blindboxSvc,
		Inventory: inventorySvc,
		Share:     service.NewShareService(repos.Share, repos.User, cfg),
	}

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		API: controller.NewAPIController(
			services.User, services.Blindbox, services.Inventory, services.Share,
			db, zapLog,
		),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		Tasks: &Tasks{
			ShareCleanup: task.NewShareCleanupTask(repos.Share, zapLog),
		},
	}
}

// initTasks 启动定时任务
func initTasks(deps *Dependencies) {
	deps.Tasks.ShareCleanup.Start()
}

// ==================== 服务启动 ====================

// startServer 启动服务并等待退出信号
func startServer(r *gin.Engine, cfg *config.Config, zapLog *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		zapLog.Info("服务启动", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("正在关闭服务...")

	// 优雅关闭，最多等待 10 秒
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLog.Fatal("服务强制关闭", zap.Error(err))
	}

	zapLog.Info("服务已退出")
}
