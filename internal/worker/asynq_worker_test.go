package worker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/realty-promo/internal/config"
	"github.com/realty-promo/internal/constants"
	"github.com/realty-promo/internal/models"
	"github.com/realty-promo/internal/provider"
	"github.com/realty-promo/internal/queue"
	"github.com/realty-promo/internal/repository"
	"github.com/realty-promo/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type recordingEmailSender struct {
	mu sync.Mutex
	to []string
}

func (s *recordingEmailSender) SendHTMLEmail(toEmail, subject, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.to = append(s.to, toEmail)
	return nil
}

type workerFixture struct {
	db       *gorm.DB
	consumer *Consumer
	email    *recordingEmailSender
	owner    *models.User
	property *models.Property
}

func setupWorkerTest(t *testing.T) *workerFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	owner := &models.User{Email: "owner@example.com", Role: constants.UserRoleOwner}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("create owner failed: %v", err)
	}
	property := &models.Property{OwnerID: owner.ID, Title: "Garden flat"}
	if err := db.Create(property).Error; err != nil {
		t.Fatalf("create property failed: %v", err)
	}

	promotionRepo := repository.NewPromotionRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	email := &recordingEmailSender{}
	notifier := service.NewNotificationService(notificationRepo, userRepo, email, nil)
	opts := service.JobOptions{PoolSize: 1, Location: time.UTC}
	scanner := service.NewExpirationScanner(promotionRepo, propertyRepo, notificationRepo, notifier, opts)
	renewal := service.NewRenewalService(promotionRepo, propertyRepo, notifier, opts)

	consumer := NewConsumer(&provider.Container{
		UserRepo:            userRepo,
		PropertyRepo:        propertyRepo,
		PromotionRepo:       promotionRepo,
		NotificationRepo:    notificationRepo,
		NotificationService: notifier,
		ExpirationScanner:   scanner,
		RenewalService:      renewal,
		JobRunner:           service.NewPromotionJobRunner(scanner, renewal, time.Minute, time.Minute),
	})
	return &workerFixture{db: db, consumer: consumer, email: email, owner: owner, property: property}
}

func (f *workerFixture) seedPromotion(t *testing.T, end time.Time, durationDays int, autoRenew bool) *models.Promotion {
	t.Helper()
	promotion := &models.Promotion{
		PropertyID:    f.property.ID,
		OwnerID:       f.owner.ID,
		PromotionType: constants.PromotionTypeFeatured,
		StartDate:     end.AddDate(0, 0, -durationDays),
		EndDate:       end,
		DurationDays:  durationDays,
		AmountPaid:    models.NewMoneyFromInt(60),
		IsActive:      true,
		AutoRenew:     autoRenew,
	}
	if err := f.db.Create(promotion).Error; err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
	return promotion
}

func TestHandlePromotionAutoRenewTask(t *testing.T) {
	f := setupWorkerTest(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	renewing := f.seedPromotion(t, now.Add(-time.Hour), 7, true)
	expiring := f.seedPromotion(t, now.Add(-time.Minute), 7, false)

	task, err := queue.NewPromotionAutoRenewTask(queue.PromotionJobPayload{Now: &now})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := f.consumer.handlePromotionAutoRenew(t.Context(), task); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}

	var renewed, expired models.Promotion
	if err := f.db.First(&renewed, "id = ?", renewing.ID).Error; err != nil {
		t.Fatalf("reload renewed failed: %v", err)
	}
	if err := f.db.First(&expired, "id = ?", expiring.ID).Error; err != nil {
		t.Fatalf("reload expired failed: %v", err)
	}
	wantEnd := renewing.EndDate.Add(7 * 24 * time.Hour)
	if !renewed.IsActive || renewed.RenewalCount != 1 || !renewed.EndDate.Equal(wantEnd) {
		t.Fatalf("unexpected renewed promotion: active=%v count=%d end=%s", renewed.IsActive, renewed.RenewalCount, renewed.EndDate)
	}
	if expired.IsActive || expired.DeactivationReason != constants.PromotionDeactivateReasonExpired {
		t.Fatalf("unexpected expired promotion: active=%v reason=%s", expired.IsActive, expired.DeactivationReason)
	}
}

func TestHandlePromotionScanExpiringTask(t *testing.T) {
	f := setupWorkerTest(t)
	now := time.Now().UTC()
	f.seedPromotion(t, now.Add(24*time.Hour), 7, false)

	task, err := queue.NewPromotionScanExpiringTask(queue.PromotionJobPayload{Now: &now, Trigger: "test"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := f.consumer.handlePromotionScanExpiring(t.Context(), task); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}

	var count int64
	if err := f.db.Model(&models.Notification{}).Where("user_id = ?", f.owner.ID).Count(&count).Error; err != nil {
		t.Fatalf("count notifications failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("notifications want 1 got %d", count)
	}
}

func TestHandlePromotionJobBadPayload(t *testing.T) {
	f := setupWorkerTest(t)
	task := asynq.NewTask(queue.TaskPromotionAutoRenew, []byte("{not-json"))
	if err := f.consumer.handlePromotionAutoRenew(t.Context(), task); err == nil {
		t.Fatalf("expected unmarshal error")
	}
	if err := f.consumer.RunPromotionJob(context.Background(), "unknown", queue.PromotionJobPayload{}); err != nil {
		t.Fatalf("unknown task should be skipped, got %v", err)
	}
}

func TestHandleNotificationEmailTask(t *testing.T) {
	f := setupWorkerTest(t)

	task, err := queue.NewNotificationEmailTask(queue.NotificationEmailPayload{
		UserID:  f.owner.ID,
		Subject: "Promotion renewed",
		HTML:    "<p>renewed</p>",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := f.consumer.handleNotificationEmail(t.Context(), task); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}
	if len(f.email.to) != 1 || f.email.to[0] != "owner@example.com" {
		t.Fatalf("unexpected recipients: %+v", f.email.to)
	}

	empty, _ := queue.NewNotificationEmailTask(queue.NotificationEmailPayload{Subject: "x"})
	if err := f.consumer.handleNotificationEmail(t.Context(), empty); err != nil {
		t.Fatalf("payload without recipient should be skipped, got %v", err)
	}
	if len(f.email.to) != 1 {
		t.Fatalf("no extra email expected, got %d", len(f.email.to))
	}
}

func TestNewCronServiceRegistersJobs(t *testing.T) {
	f := setupWorkerTest(t)
	cfg := &config.Config{Promotion: config.PromotionConfig{
		ScanCron:  "0 9 * * *",
		RenewCron: "*/30 * * * *",
	}}
	svc, err := NewCronService(cfg, f.consumer)
	if err != nil {
		t.Fatalf("new cron service failed: %v", err)
	}
	if svc.Entries() != 2 {
		t.Fatalf("entries want 2 got %d", svc.Entries())
	}

	cfg.Promotion.RenewCron = "not a cron"
	if _, err := NewCronService(cfg, f.consumer); err == nil {
		t.Fatalf("expected invalid cron error")
	}
}
