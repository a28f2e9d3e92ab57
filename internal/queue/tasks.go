package queue

import (
	"encoding/json"
	"time"

	"github.com/realty-promo/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPromotionScanExpiring 推广到期提醒扫描任务
	TaskPromotionScanExpiring = constants.TaskPromotionScanExpiring
	// TaskPromotionAutoRenew 推广自动续期任务
	TaskPromotionAutoRenew = constants.TaskPromotionAutoRenew
	// TaskNotificationEmail 通知邮件任务
	TaskNotificationEmail = constants.TaskNotificationEmail
)

// NotificationEmailPayload 通知邮件任务载荷
type NotificationEmailPayload struct {
	UserID         string `json:"user_id"`
	To             string `json:"to,omitempty"`
	Subject        string `json:"subject"`
	HTML           string `json:"html"`
	NotificationID string `json:"notification_id,omitempty"`
}

// PromotionJobPayload 周期任务载荷，Now 为空时以执行时刻为准
type PromotionJobPayload struct {
	Now     *time.Time `json:"now,omitempty"`
	Trigger string     `json:"trigger,omitempty"`
}

// NewNotificationEmailTask 创建通知邮件任务
func NewNotificationEmailTask(payload NotificationEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationEmail, body), nil
}

// NewPromotionScanExpiringTask 创建到期提醒扫描任务
func NewPromotionScanExpiringTask(payload PromotionJobPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPromotionScanExpiring, body), nil
}

// NewPromotionAutoRenewTask 创建自动续期任务
func NewPromotionAutoRenewTask(payload PromotionJobPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPromotionAutoRenew, body), nil
}

// ParsePromotionJobPayload 解析周期任务载荷，空载荷视为默认值
func ParsePromotionJobPayload(body []byte) (PromotionJobPayload, error) {
	var payload PromotionJobPayload
	if len(body) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
