package service

import (
	"context"
	"errors"
	"strings"

	"github.com/realty-promo/internal/logger"
	"github.com/realty-promo/internal/models"
	"github.com/realty-promo/internal/queue"
	"github.com/realty-promo/internal/repository"

	"github.com/hibiken/asynq"
)

// NotifyInput 通知发送参数
type NotifyInput struct {
	UserID       string
	Type         string
	Title        string
	Message      string
	Link         string
	DedupKey     string // 非空时同键只写入一次
	EmailSubject string // 为空时不发邮件
	EmailHTML    string
}

func notifyInputFromContent(userID, dedupKey string, content notificationContent) NotifyInput {
	return NotifyInput{
		UserID:       userID,
		Type:         content.Type,
		Title:        content.Title,
		Message:      content.Message,
		Link:         content.Link,
		DedupKey:     dedupKey,
		EmailSubject: content.EmailSubject,
		EmailHTML:    content.EmailHTML,
	}
}

// NotificationService 站内通知 + 事务邮件分发
type NotificationService struct {
	repo        repository.NotificationRepository
	userRepo    repository.UserRepository
	email       EmailSender
	queueClient *queue.Client
}

// NewNotificationService 创建通知服务
func NewNotificationService(
	repo repository.NotificationRepository,
	userRepo repository.UserRepository,
	email EmailSender,
	queueClient *queue.Client,
) *NotificationService {
	return &NotificationService{
		repo:        repo,
		userRepo:    userRepo,
		email:       email,
		queueClient: queueClient,
	}
}

// Notify 写入站内通知，并尽力发送邮件；返回通知是否实际写入（去重命中时为 false）
func (s *NotificationService) Notify(ctx context.Context, input NotifyInput) (*models.Notification, bool, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, false, validationError("notification recipient required")
	}
	notification := &models.Notification{
		UserID:  userID,
		Title:   strings.TrimSpace(input.Title),
		Message: input.Message,
		Type:    input.Type,
		Link:    strings.TrimSpace(input.Link),
	}
	if key := strings.TrimSpace(input.DedupKey); key != "" {
		notification.DedupKey = &key
	}
	created, err := s.repo.Insert(ctx, notification)
	if err != nil {
		return nil, false, storeError(err)
	}
	if !created {
		return nil, false, nil
	}
	if strings.TrimSpace(input.EmailSubject) != "" {
		s.dispatchEmail(ctx, notification, input.EmailSubject, input.EmailHTML)
	}
	return notification, true, nil
}

// dispatchEmail 邮件尽力发送：启用队列时入队，否则直接发送；失败只记录日志
func (s *NotificationService) dispatchEmail(ctx context.Context, notification *models.Notification, subject, html string) {
	log := logger.FromContext(ctx).With("user_id", notification.UserID, "notification_id", notification.ID)
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueNotificationEmail(queue.NotificationEmailPayload{
			UserID:         notification.UserID,
			Subject:        subject,
			HTML:           html,
			NotificationID: notification.ID,
		}, asynq.MaxRetry(5))
		if err != nil {
			log.Warnw("notification_email_enqueue_failed", "error", err)
		}
		return
	}
	if err := s.SendEmail(ctx, queue.NotificationEmailPayload{
		UserID:         notification.UserID,
		Subject:        subject,
		HTML:           html,
		NotificationID: notification.ID,
	}); err != nil {
		log.Warnw("notification_email_send_failed", "error", err)
	}
}

// SendEmail 解析收件人并发送通知邮件；邮件未配置或收件人缺失时静默跳过
func (s *NotificationService) SendEmail(ctx context.Context, payload queue.NotificationEmailPayload) error {
	if s.email == nil {
		return nil
	}
	to := strings.TrimSpace(payload.To)
	if to == "" && s.userRepo != nil && payload.UserID != "" {
		user, err := s.userRepo.GetByID(ctx, payload.UserID)
		if err != nil {
			return storeError(err)
		}
		if user != nil {
			to = strings.TrimSpace(user.Email)
		}
	}
	if to == "" {
		logger.FromContext(ctx).Debugw("notification_email_skip_no_recipient", "user_id", payload.UserID)
		return nil
	}
	err := s.email.SendHTMLEmail(to, payload.Subject, payload.HTML)
	switch {
	case err == nil:
		return nil
	case isEmailNotConfigured(err):
		logger.FromContext(ctx).Debugw("notification_email_skip_not_configured", "user_id", payload.UserID, "reason", err.Error())
		return nil
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrEmailRecipientRejected):
		logger.FromContext(ctx).Warnw("notification_email_recipient_invalid", "user_id", payload.UserID, "error", err)
		return nil
	default:
		return err
	}
}

// ListForUser 获取用户通知列表
func (s *NotificationService) ListForUser(ctx context.Context, actor Actor, page, pageSize int, unreadOnly bool) ([]models.Notification, int64, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return nil, 0, ErrActorRequired
	}
	page, pageSize = normalizePage(page, pageSize)
	rows, total, err := s.repo.ListByUser(ctx, repository.NotificationListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     actor.UserID,
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		return nil, 0, storeError(err)
	}
	return rows, total, nil
}

// MarkRead 标记本人通知为已读
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id string) error {
	if strings.TrimSpace(actor.UserID) == "" {
		return ErrActorRequired
	}
	found, err := s.repo.MarkRead(ctx, actor.UserID, strings.TrimSpace(id))
	if err != nil {
		return storeError(err)
	}
	if !found {
		return ErrNotificationNotFound
	}
	return nil
}

// CountUnread 统计未读数
func (s *NotificationService) CountUnread(ctx context.Context, actor Actor) (int64, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return 0, ErrActorRequired
	}
	count, err := s.repo.CountUnread(ctx, actor.UserID)
	if err != nil {
		return 0, storeError(err)
	}
	return count, nil
}
