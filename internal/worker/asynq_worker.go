package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/realty-promo/internal/logger"
	"github.com/realty-promo/internal/provider"
	"github.com/realty-promo/internal/queue"
	"github.com/realty-promo/internal/service"

	"github.com/hibiken/asynq"
)

const jobTriggerSchedule = "schedule"

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotificationEmail, c.handleNotificationEmail)
	mux.HandleFunc(queue.TaskPromotionScanExpiring, c.handlePromotionScanExpiring)
	mux.HandleFunc(queue.TaskPromotionAutoRenew, c.handlePromotionAutoRenew)
}

func (c *Consumer) handleNotificationEmail(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notification_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotificationEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notification_email_unmarshal_failed", "error", err)
		return err
	}
	if strings.TrimSpace(payload.UserID) == "" && strings.TrimSpace(payload.To) == "" {
		logger.Debugw("worker_notification_email_skip_invalid_payload", "notification_id", payload.NotificationID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_notification_email_skip_service_nil", "notification_id", payload.NotificationID)
		return nil
	}
	ctx = logger.WithContext(ctx, "notification_id", payload.NotificationID, "user_id", payload.UserID)
	if err := c.NotificationService.SendEmail(ctx, payload); err != nil {
		logger.FromContext(ctx).Warnw("worker_notification_email_send_failed", "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handlePromotionScanExpiring(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_scan_expiring_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParsePromotionJobPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_scan_expiring_unmarshal_failed", "error", err)
		return err
	}
	return c.RunPromotionJob(ctx, queue.TaskPromotionScanExpiring, payload)
}

func (c *Consumer) handlePromotionAutoRenew(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_auto_renew_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParsePromotionJobPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_auto_renew_unmarshal_failed", "error", err)
		return err
	}
	return c.RunPromotionJob(ctx, queue.TaskPromotionAutoRenew, payload)
}

// RunPromotionJob 执行一次推广周期任务；其他实例正在执行时视为成功跳过
func (c *Consumer) RunPromotionJob(ctx context.Context, taskType string, payload queue.PromotionJobPayload) error {
	if c == nil || c.JobRunner == nil {
		logger.Warnw("worker_promotion_job_skip_runner_nil", "task", taskType)
		return nil
	}
	trigger := strings.TrimSpace(payload.Trigger)
	if trigger == "" {
		trigger = jobTriggerSchedule
	}

	var (
		result interface{}
		err    error
	)
	switch taskType {
	case queue.TaskPromotionScanExpiring:
		result, err = c.JobRunner.RunScanExpiring(ctx, payload.Now, trigger)
	case queue.TaskPromotionAutoRenew:
		result, err = c.JobRunner.RunAutoRenew(ctx, payload.Now, trigger)
	default:
		logger.Warnw("worker_promotion_job_unknown_task", "task", taskType)
		return nil
	}
	if err != nil {
		if errors.Is(err, service.ErrJobAlreadyRunning) {
			logger.Debugw("worker_promotion_job_skip_running", "task", taskType, "trigger", trigger)
			return nil
		}
		logger.Warnw("worker_promotion_job_failed", "task", taskType, "trigger", trigger, "error", err)
		return err
	}
	logger.Infow("worker_promotion_job_finished", "task", taskType, "trigger", trigger, "result", result)
	return nil
}
