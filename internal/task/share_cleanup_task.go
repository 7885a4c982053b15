package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"christmas_shop_v1/internal/repository"
)

// ==================== 分享码清理任务 ====================

// ShareCleanupTask 定时清理过期分享码
// 过期未用的码对所有读取路径等同于不存在，删除只是回收存储，
// 不影响任何请求路径的语义。
type ShareCleanupTask struct {
	ShareRepo repository.ShareRepository
	Cron      *cron.Cron
	log       *zap.Logger
}

// NewShareCleanupTask 创建清理任务
func NewShareCleanupTask(shareRepo repository.ShareRepository, log *zap.Logger) *ShareCleanupTask {
	return &ShareCleanupTask{
		ShareRepo: shareRepo,
		Cron:      cron.New(cron.WithSeconds()),
		log:       log,
	}
}

// Start 启动定时任务，每天凌晨 4 点清理一次
func (t *ShareCleanupTask) Start() {
	_, err := t.Cron.AddFunc("0 0 4 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		t.cleanup(ctx)
	})
	if err != nil {
		t.log.Fatal("无法启动分享码清理任务", zap.Error(err))
	}

	t.Cron.Start()
	t.log.Info("分享码清理任务已启动 (每天 04:00)")
}

// Stop 停止定时任务
func (t *ShareCleanupTask) Stop() {
	t.Cron.Stop()
}

func (t *ShareCleanupTask) cleanup(ctx context.Context) {
	n, err := t.ShareRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		t.log.Error("分享码清理失败", zap.Error(err))
		return
	}
	t.log.Info("分享码清理完成", zap.Int64("deleted", n))
}
