package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/realty-promo/internal/config"
	"github.com/realty-promo/internal/logger"
	"github.com/realty-promo/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务，同时负责注册推广周期任务
type Service struct {
	name      string
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	consumer  *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: cfg.Promotion.Location(),
	})
	if err := registerPeriodicTasks(scheduler, cfg.Promotion); err != nil {
		return nil, err
	}
	return &Service{
		name:      "worker",
		server:    server,
		scheduler: scheduler,
		mux:       mux,
		consumer:  consumer,
	}, nil
}

func registerPeriodicTasks(scheduler *asynq.Scheduler, cfg config.PromotionConfig) error {
	periodic := []struct {
		spec string
		task func(queue.PromotionJobPayload) (*asynq.Task, error)
	}{
		{spec: cfg.ScanCron, task: queue.NewPromotionScanExpiringTask},
		{spec: cfg.RenewCron, task: queue.NewPromotionAutoRenewTask},
	}
	for _, item := range periodic {
		spec := strings.TrimSpace(item.spec)
		if spec == "" {
			continue
		}
		task, err := item.task(queue.PromotionJobPayload{Trigger: jobTriggerSchedule})
		if err != nil {
			return err
		}
		entryID, err := scheduler.Register(spec, task, asynq.Queue(queue.CriticalQueue), asynq.MaxRetry(0))
		if err != nil {
			return fmt.Errorf("register periodic task %s failed: %w", task.Type(), err)
		}
		logger.Infow("worker_periodic_task_registered", "task", task.Type(), "cron", spec, "entry_id", entryID)
	}
	return nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.scheduler != nil {
		if err := s.scheduler.Start(); err != nil {
			return fmt.Errorf("start scheduler failed: %w", err)
		}
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	if s.scheduler != nil {
		s.scheduler.Shutdown()
	}
	s.server.Shutdown()
	return nil
}
