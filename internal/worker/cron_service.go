package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/realty-promo/internal/config"
	"github.com/realty-promo/internal/logger"
	"github.com/realty-promo/internal/queue"

	"github.com/robfig/cron/v3"
)

// CronService 队列未启用时的进程内调度器
type CronService struct {
	name     string
	cron     *cron.Cron
	consumer *Consumer
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCronService 创建进程内调度服务
func NewCronService(cfg *config.Config, consumer *Consumer) (*CronService, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	cronLog := cron.PrintfLogger(logger.StdLogger())
	scheduler := cron.New(
		cron.WithLocation(cfg.Promotion.Location()),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	s := &CronService{
		name:     "scheduler",
		cron:     scheduler,
		consumer: consumer,
		ctx:      ctx,
		cancel:   cancel,
	}

	jobs := []struct {
		spec     string
		taskType string
	}{
		{spec: cfg.Promotion.ScanCron, taskType: queue.TaskPromotionScanExpiring},
		{spec: cfg.Promotion.RenewCron, taskType: queue.TaskPromotionAutoRenew},
	}
	for _, job := range jobs {
		spec := strings.TrimSpace(job.spec)
		if spec == "" {
			continue
		}
		taskType := job.taskType
		entryID, err := scheduler.AddFunc(spec, func() {
			_ = s.consumer.RunPromotionJob(s.ctx, taskType, queue.PromotionJobPayload{Trigger: jobTriggerSchedule})
		})
		if err != nil {
			cancel()
			return nil, fmt.Errorf("register cron job %s failed: %w", taskType, err)
		}
		logger.Infow("scheduler_job_registered", "task", taskType, "cron", spec, "entry_id", int(entryID))
	}
	return s, nil
}

// Name 服务名称
func (s *CronService) Name() string {
	if s == nil || s.name == "" {
		return "scheduler"
	}
	return s.name
}

// Entries 已注册的任务数
func (s *CronService) Entries() int {
	if s == nil || s.cron == nil {
		return 0
	}
	return len(s.cron.Entries())
}

// Start 启动调度并阻塞到 ctx 结束
func (s *CronService) Start(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return errors.New("scheduler not initialized")
	}
	s.cron.Start()
	<-ctx.Done()
	return nil
}

// Stop 停止调度并等待运行中的任务结束
func (s *CronService) Stop(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return nil
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}
