package admin

import (
	"errors"
	"time"

	"github.com/realty-promo/internal/http/response"
	"github.com/realty-promo/internal/queue"
	"github.com/realty-promo/internal/service"

	"github.com/gin-gonic/gin"
)

const jobTriggerManual = "manual"

// RunJobRequest 手动触发任务请求
type RunJobRequest struct {
	Now   string `json:"now"`   // RFC3339，留空为当前时间
	Async bool   `json:"async"` // 队列启用时改为入队执行
}

type jobQueuedResult struct {
	Queued bool   `json:"queued"`
	Task   string `json:"task"`
}

// RunScanExpiring 手动触发到期提醒扫描
func (h *Handler) RunScanExpiring(c *gin.Context) {
	h.runPromotionJob(c, queue.TaskPromotionScanExpiring, func(now *time.Time) (interface{}, error) {
		return h.JobRunner.RunScanExpiring(c.Request.Context(), now, jobTriggerManual)
	})
}

// RunAutoRenew 手动触发自动续期
func (h *Handler) RunAutoRenew(c *gin.Context) {
	h.runPromotionJob(c, queue.TaskPromotionAutoRenew, func(now *time.Time) (interface{}, error) {
		return h.JobRunner.RunAutoRenew(c.Request.Context(), now, jobTriggerManual)
	})
}

func (h *Handler) runPromotionJob(c *gin.Context, taskType string, run func(now *time.Time) (interface{}, error)) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		respondServiceError(c, service.ErrAdminRequired)
		return
	}
	var req RunJobRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "bad request", err)
			return
		}
	}
	now, err := parseTimeNullable(req.Now)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid now", err)
		return
	}

	if req.Async && h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueuePromotionJob(taskType, queue.PromotionJobPayload{Now: now, Trigger: jobTriggerManual}); err != nil {
			if errors.Is(err, queue.ErrDuplicateJob) {
				respondServiceError(c, service.ErrJobAlreadyRunning)
				return
			}
			requestLog(c).Warnw("admin_job_enqueue_failed", "task", taskType, "error", err)
			respondServiceError(c, service.ErrQueueUnavailable)
			return
		}
		response.Success(c, jobQueuedResult{Queued: true, Task: taskType})
		return
	}

	result, err := run(now)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("admin_job_finished", "task", taskType, "operator", actor.UserID)
	response.Success(c, result)
}
