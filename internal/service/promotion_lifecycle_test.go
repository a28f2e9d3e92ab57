package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/realty-promo/internal/constants"
	"github.com/realty-promo/internal/models"
	"github.com/realty-promo/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type sentEmail struct {
	To      string
	Subject string
	HTML    string
}

type stubEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (s *stubEmailSender) SendHTMLEmail(toEmail, subject, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentEmail{To: toEmail, Subject: subject, HTML: html})
	return nil
}

func (s *stubEmailSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type lifecycleFixture struct {
	db            *gorm.DB
	promotions    *repository.GormPromotionRepository
	notifications *repository.GormNotificationRepository
	email         *stubEmailSender
	notifier      *NotificationService
	promotionSvc  *PromotionService
	scanner       *ExpirationScanner
	renewal       *RenewalService
	transactions  *TransactionService
	owner         *models.User
	property      *models.Property
}

var testAdmin = Actor{UserID: "admin-1", Role: constants.UserRoleAdmin}

func setupLifecycle(t *testing.T) *lifecycleFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:service_lifecycle_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	owner := &models.User{Email: "owner@example.com", DisplayName: "Owner", Role: constants.UserRoleOwner}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("create owner failed: %v", err)
	}
	property := &models.Property{
		OwnerID: owner.ID,
		Title:   "Sunny loft",
		Area:    decimal.NewNullDecimal(decimal.NewFromInt(250)),
	}
	if err := db.Create(property).Error; err != nil {
		t.Fatalf("create property failed: %v", err)
	}

	promotionRepo := repository.NewPromotionRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	email := &stubEmailSender{}
	notifier := NewNotificationService(notificationRepo, userRepo, email, nil)
	opts := JobOptions{PoolSize: 1, CandidateTimeout: 5 * time.Second, Location: time.UTC, SiteBaseURL: "https://realty.example.com"}

	return &lifecycleFixture{
		db:            db,
		promotions:    promotionRepo,
		notifications: notificationRepo,
		email:         email,
		notifier:      notifier,
		promotionSvc:  NewPromotionService(promotionRepo, propertyRepo, notifier, time.UTC, opts.SiteBaseURL),
		scanner:       NewExpirationScanner(promotionRepo, propertyRepo, notificationRepo, notifier, opts),
		renewal:       NewRenewalService(promotionRepo, propertyRepo, notifier, opts),
		transactions:  NewTransactionService(repository.NewTransactionRepository(db), propertyRepo, notifier, opts.SiteBaseURL),
		owner:         owner,
		property:      property,
	}
}

func (f *lifecycleFixture) seedPromotion(t *testing.T, end time.Time, durationDays int, autoRenew bool) *models.Promotion {
	t.Helper()
	promotion := &models.Promotion{
		PropertyID:    f.property.ID,
		OwnerID:       f.owner.ID,
		PromotionType: constants.PromotionTypeFeatured,
		StartDate:     end.AddDate(0, 0, -durationDays),
		EndDate:       end,
		DurationDays:  durationDays,
		AmountPaid:    models.NewMoneyFromInt(120),
		IsActive:      true,
		AutoRenew:     autoRenew,
	}
	if err := f.db.Create(promotion).Error; err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
	return promotion
}

func (f *lifecycleFixture) notificationsOf(t *testing.T, notificationType string) []models.Notification {
	t.Helper()
	var rows []models.Notification
	if err := f.db.Where("user_id = ? AND type = ?", f.owner.ID, notificationType).Order("created_at asc").Find(&rows).Error; err != nil {
		t.Fatalf("query notifications failed: %v", err)
	}
	return rows
}

func (f *lifecycleFixture) reload(t *testing.T, id string) *models.Promotion {
	t.Helper()
	var promotion models.Promotion
	if err := f.db.First(&promotion, "id = ?", id).Error; err != nil {
		t.Fatalf("reload promotion failed: %v", err)
	}
	return &promotion
}

func TestScanExpiringNotifiesOncePerDay(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	target := f.seedPromotion(t, now.Add(36*time.Hour), 7, false)
	f.seedPromotion(t, now.Add(5*24*time.Hour), 7, false)
	f.seedPromotion(t, now, 7, false)

	first, err := f.scanner.ScanExpiring(ctx, now)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if first.Checked != 1 || first.Notified != 1 || first.Failed != 0 {
		t.Fatalf("unexpected first result: %+v", first)
	}

	second, err := f.scanner.ScanExpiring(ctx, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}
	if second.Checked != 1 || second.Notified != 0 || second.Skipped != 1 {
		t.Fatalf("second scan should skip, got %+v", second)
	}

	rows := f.notificationsOf(t, constants.NotificationTypePromotionExpiring)
	if len(rows) != 1 {
		t.Fatalf("want 1 expiring notification, got %d", len(rows))
	}
	if !strings.Contains(rows[0].Message, target.ID) {
		t.Fatalf("message should reference promotion id: %s", rows[0].Message)
	}
	if strings.Contains(rows[0].Title, "Urgent") {
		t.Fatalf("2 days remaining should use the standard tier: %s", rows[0].Title)
	}
	if f.email.count() != 1 {
		t.Fatalf("want 1 email, got %d", f.email.count())
	}
	if f.reload(t, target.ID).IsActive != true {
		t.Fatalf("scan must not change promotion state")
	}

	nextDay, err := f.scanner.ScanExpiring(ctx, now.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("next day scan failed: %v", err)
	}
	if nextDay.Notified != 1 {
		t.Fatalf("next calendar day should notify again, got %+v", nextDay)
	}
	rows = f.notificationsOf(t, constants.NotificationTypePromotionExpiring)
	urgent := 0
	for _, row := range rows {
		if strings.Contains(row.Title, "Urgent") {
			urgent++
		}
	}
	if len(rows) != 2 || urgent != 1 {
		t.Fatalf("expected urgent reminder on the last day, got %+v", rows)
	}
}

func TestScanExpiringSkipsLegacyNotification(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()
	now := time.Now().UTC()
	target := f.seedPromotion(t, now.Add(48*time.Hour), 7, false)

	legacy := &models.Notification{
		UserID:  f.owner.ID,
		Title:   "Your promotion is ending soon",
		Message: "Promotion " + target.ID + " ends soon",
		Type:    constants.NotificationTypePromotionExpiring,
	}
	if err := f.db.Create(legacy).Error; err != nil {
		t.Fatalf("create legacy notification failed: %v", err)
	}

	result, err := f.scanner.ScanExpiring(ctx, now)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.Skipped != 1 || result.Notified != 0 {
		t.Fatalf("legacy notification should suppress reminder, got %+v", result)
	}
}

func TestScanExpiringUsesPropertyFallbackTitle(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	promotion := f.seedPromotion(t, now.Add(12*time.Hour), 3, false)
	if err := f.db.Model(&models.Promotion{}).Where("id = ?", promotion.ID).Update("property_id", "missing-property").Error; err != nil {
		t.Fatalf("update property id failed: %v", err)
	}

	result, err := f.scanner.ScanExpiring(ctx, now)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.Notified != 1 {
		t.Fatalf("missing property must not block reminder, got %+v", result)
	}
	rows := f.notificationsOf(t, constants.NotificationTypePromotionExpiring)
	if len(rows) != 1 || !strings.Contains(rows[0].Message, propertyTitleFallback) {
		t.Fatalf("expected fallback title in message, got %+v", rows)
	}
}

func TestAutoRenewExtendsByOriginalDuration(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 30, 0, 0, time.UTC)
	oldEnd := now.Add(-time.Hour)

	renewable := f.seedPromotion(t, oldEnd, 30, true)
	expiring := f.seedPromotion(t, now, 7, false)
	future := f.seedPromotion(t, now.Add(time.Hour), 7, false)

	result, err := f.renewal.AutoRenew(ctx, now)
	if err != nil {
		t.Fatalf("auto renew failed: %v", err)
	}
	if result.Checked != 2 || result.Renewed != 1 || result.Deactivated != 1 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	renewed := f.reload(t, renewable.ID)
	if !renewed.IsActive || renewed.RenewalCount != 1 {
		t.Fatalf("renewed promotion state wrong: %+v", renewed)
	}
	if want := oldEnd.AddDate(0, 0, 30); !renewed.EndDate.Equal(want) {
		t.Fatalf("want end %v got %v", want, renewed.EndDate)
	}
	if !renewed.AmountPaid.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("renewal must not change amount paid, got %s", renewed.AmountPaid)
	}
	if renewed.LastRenewedAt == nil || !renewed.LastRenewedAt.Equal(now) {
		t.Fatalf("last renewed at not recorded: %v", renewed.LastRenewedAt)
	}

	expired := f.reload(t, expiring.ID)
	if expired.IsActive || expired.DeactivationReason != constants.PromotionDeactivateReasonExpired || expired.DeactivatedAt == nil {
		t.Fatalf("end == now should deactivate: %+v", expired)
	}
	if !f.reload(t, future.ID).IsActive {
		t.Fatalf("future promotion must stay active")
	}

	if got := len(f.notificationsOf(t, constants.NotificationTypePromotionRenewed)); got != 1 {
		t.Fatalf("want 1 renewed notification, got %d", got)
	}
	if got := len(f.notificationsOf(t, constants.NotificationTypePromotionExpired)); got != 1 {
		t.Fatalf("want 1 expired notification, got %d", got)
	}

	again, err := f.renewal.AutoRenew(ctx, now)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if again.Checked != 0 {
		t.Fatalf("second run should find nothing, got %+v", again)
	}
}

func TestActivateValidatesMedia(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		actor Actor
		input ActivateInput
		want  error
	}{
		{
			name:  "non_admin",
			actor: Actor{UserID: f.owner.ID, Role: constants.UserRoleOwner},
			input: ActivateInput{PropertyID: f.property.ID, PromotionType: constants.PromotionTypeFeatured, DurationDays: 7},
			want:  ErrAdminRequired,
		},
		{
			name:  "video_without_url",
			actor: testAdmin,
			input: ActivateInput{PropertyID: f.property.ID, PromotionType: constants.PromotionTypeVideoAd, DurationDays: 7},
			want:  ErrPromotionMediaRequired,
		},
		{
			name:  "homepage_without_banner",
			actor: testAdmin,
			input: ActivateInput{PropertyID: f.property.ID, PromotionType: constants.PromotionTypeHomepage, VideoURL: "https://cdn.example.com/v.mp4", DurationDays: 7},
			want:  ErrPromotionMediaRequired,
		},
		{
			name:  "bad_media_scheme",
			actor: testAdmin,
			input: ActivateInput{PropertyID: f.property.ID, PromotionType: constants.PromotionTypeBanner, BannerURL: "javascript:alert(1)", DurationDays: 7},
			want:  ErrPromotionMediaInvalid,
		},
		{
			name:  "zero_duration",
			actor: testAdmin,
			input: ActivateInput{PropertyID: f.property.ID, PromotionType: constants.PromotionTypeFeatured},
			want:  ErrPromotionInvalid,
		},
		{
			name:  "unknown_type",
			actor: testAdmin,
			input: ActivateInput{PropertyID: f.property.ID, PromotionType: "billboard", DurationDays: 7},
			want:  ErrPromotionInvalid,
		},
		{
			name:  "missing_property",
			actor: testAdmin,
			input: ActivateInput{PropertyID: "nope", PromotionType: constants.PromotionTypeFeatured, DurationDays: 7},
			want:  ErrPropertyNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.promotionSvc.Activate(ctx, tt.actor, tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v got %v", tt.want, err)
			}
		})
	}
	if !errors.Is(ErrPropertyNotFound, ErrNotFound) || !errors.Is(ErrPromotionMediaRequired, ErrValidation) {
		t.Fatalf("error classes not wired")
	}

	video, err := f.promotionSvc.Activate(ctx, testAdmin, ActivateInput{
		PropertyID:    f.property.ID,
		PromotionType: constants.PromotionTypeVideoAd,
		VideoURL:      "/uploads/videos/tour.mp4",
		DurationDays:  14,
		AmountPaid:    models.NewMoneyFromInt(80),
	})
	if err != nil {
		t.Fatalf("activate video ad failed: %v", err)
	}
	if video.OwnerID != f.owner.ID || !video.IsActive || video.DurationDays != 14 {
		t.Fatalf("unexpected promotion: %+v", video)
	}
}

func TestBannerPromotionLifecycle(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()
	start := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	clock := start
	f.promotionSvc.SetClock(func() time.Time { return clock })

	promotion, err := f.promotionSvc.Activate(ctx, testAdmin, ActivateInput{
		PropertyID:    f.property.ID,
		PromotionType: constants.PromotionTypeBanner,
		BannerURL:     "https://cdn.example.com/banner.png",
		DurationDays:  30,
		AmountPaid:    models.NewMoneyFromInt(300),
	})
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if want := start.AddDate(0, 0, 30); !promotion.EndDate.Equal(want) {
		t.Fatalf("want end %v got %v", want, promotion.EndDate)
	}
	if got := len(f.notificationsOf(t, constants.NotificationTypePromotionActivated)); got != 1 {
		t.Fatalf("want activation notification, got %d", got)
	}

	result, err := f.scanner.ScanExpiring(ctx, start)
	if err != nil {
		t.Fatalf("scan at start failed: %v", err)
	}
	if result.Checked != 0 || result.Notified != 0 {
		t.Fatalf("fresh promotion should not be a candidate: %+v", result)
	}

	live, err := f.promotionSvc.ListLive(ctx, constants.PromotionTypeBanner, 10)
	if err != nil {
		t.Fatalf("list live failed: %v", err)
	}
	if len(live) != 1 || live[0].ID != promotion.ID {
		t.Fatalf("expected banner to be live, got %+v", live)
	}

	dayBefore := promotion.EndDate.Add(-24 * time.Hour)
	result, err = f.scanner.ScanExpiring(ctx, dayBefore)
	if err != nil {
		t.Fatalf("scan day before failed: %v", err)
	}
	if result.Notified != 1 {
		t.Fatalf("want 1 reminder, got %+v", result)
	}
	rows := f.notificationsOf(t, constants.NotificationTypePromotionExpiring)
	if len(rows) != 1 {
		t.Fatalf("want 1 expiring notification, got %d", len(rows))
	}
	if !strings.Contains(rows[0].Title, "Urgent") || !strings.Contains(rows[0].Message, promotion.ID) {
		t.Fatalf("reminder should be urgent and reference the id: %+v", rows[0])
	}

	renew, err := f.renewal.AutoRenew(ctx, promotion.EndDate)
	if err != nil {
		t.Fatalf("auto renew failed: %v", err)
	}
	if renew.Deactivated != 1 {
		t.Fatalf("banner without auto renew should expire, got %+v", renew)
	}
	if f.reload(t, promotion.ID).IsActive {
		t.Fatalf("promotion should be inactive after end date")
	}
}

func TestDeactivateAndSetAutoRenew(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()
	promotion := f.seedPromotion(t, time.Now().UTC().Add(10*24*time.Hour), 30, false)

	updated, err := f.promotionSvc.SetAutoRenew(ctx, testAdmin, promotion.ID, true)
	if err != nil || !updated.AutoRenew {
		t.Fatalf("set auto renew failed: %v %+v", err, updated)
	}
	if !f.reload(t, promotion.ID).AutoRenew {
		t.Fatalf("auto renew not persisted")
	}

	deactivated, err := f.promotionSvc.Deactivate(ctx, testAdmin, promotion.ID, "")
	if err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if deactivated.IsActive || deactivated.DeactivationReason != constants.PromotionDeactivateReasonAdmin {
		t.Fatalf("unexpected deactivate result: %+v", deactivated)
	}
	if _, err := f.promotionSvc.Deactivate(ctx, testAdmin, promotion.ID, ""); err != nil {
		t.Fatalf("second deactivate should be a no-op: %v", err)
	}
	if _, err := f.promotionSvc.Deactivate(ctx, testAdmin, "missing", ""); !errors.Is(err, ErrPromotionNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestTransactionCommission(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()

	sale, err := f.transactions.Create(ctx, testAdmin, CreateTransactionInput{
		PropertyID:        f.property.ID,
		TransactionType:   constants.TransactionTypeSale,
		TransactionAmount: models.NewMoneyFromInt(450000),
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	if !sale.CommissionAmount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("250 sqm sale should earn 100, got %s", sale.CommissionAmount)
	}
	if !sale.PropertyArea.Valid || !sale.PropertyArea.Decimal.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("area snapshot missing: %+v", sale.PropertyArea)
	}
	if got := len(f.notificationsOf(t, constants.NotificationTypeCommissionDue)); got != 1 {
		t.Fatalf("want commission due notification, got %d", got)
	}

	rent, err := f.transactions.Create(ctx, testAdmin, CreateTransactionInput{
		PropertyID:        f.property.ID,
		TransactionType:   "Monthly_Rent",
		TransactionAmount: models.NewMoneyFromInt(1500),
	})
	if err != nil {
		t.Fatalf("create rent failed: %v", err)
	}
	if !rent.CommissionAmount.Equal(decimal.NewFromInt(5)) || rent.TransactionType != constants.TransactionTypeMonthlyRent {
		t.Fatalf("unexpected rent transaction: %+v", rent)
	}

	invalid := []CreateTransactionInput{
		{PropertyID: f.property.ID, TransactionType: constants.TransactionTypeSale},
		{PropertyID: f.property.ID, TransactionType: "lease", TransactionAmount: models.NewMoneyFromInt(10)},
		{TransactionType: constants.TransactionTypeSale, TransactionAmount: models.NewMoneyFromInt(10)},
	}
	for i, input := range invalid {
		if _, err := f.transactions.Create(ctx, testAdmin, input); !errors.Is(err, ErrTransactionInvalid) {
			t.Fatalf("case %d: want invalid, got %v", i, err)
		}
	}

	paid, err := f.transactions.MarkCommissionPaid(ctx, testAdmin, sale.ID)
	if err != nil || !paid.CommissionPaid || paid.CommissionPaidAt == nil {
		t.Fatalf("mark paid failed: %v %+v", err, paid)
	}
	again, err := f.transactions.MarkCommissionPaid(ctx, testAdmin, sale.ID)
	if err != nil || !again.CommissionPaid {
		t.Fatalf("mark paid should be idempotent: %v %+v", err, again)
	}

	rows, total, err := f.transactions.ListForOwner(ctx, Actor{UserID: f.owner.ID, Role: constants.UserRoleOwner}, 1, 10)
	if err != nil || total != 2 || len(rows) != 2 {
		t.Fatalf("owner list failed: %v total=%d", err, total)
	}
}

func TestPromotionJobRunnerWithoutRedis(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	f.seedPromotion(t, now.Add(12*time.Hour), 7, false)
	f.seedPromotion(t, now.Add(-time.Minute), 7, true)

	runner := NewPromotionJobRunner(f.scanner, f.renewal, time.Minute, 0)
	runner.SetClock(func() time.Time { return now })

	scan, err := runner.RunScanExpiring(ctx, nil, "test")
	if err != nil || scan.Notified != 1 {
		t.Fatalf("run scan failed: %v %+v", err, scan)
	}
	renew, err := runner.RunAutoRenew(ctx, &now, "test")
	if err != nil || renew.Renewed != 1 {
		t.Fatalf("run renew failed: %v %+v", err, renew)
	}
}

func TestNotificationReadFlow(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()
	actor := Actor{UserID: f.owner.ID, Role: constants.UserRoleOwner}

	notification, created, err := f.notifier.Notify(ctx, NotifyInput{
		UserID:   f.owner.ID,
		Type:     constants.NotificationTypePromotionExpiring,
		Title:    "t",
		Message:  "m",
		DedupKey: "k-1",
	})
	if err != nil || !created {
		t.Fatalf("notify failed: %v created=%v", err, created)
	}
	if _, created, err := f.notifier.Notify(ctx, NotifyInput{UserID: f.owner.ID, Type: "x", Title: "t", DedupKey: "k-1"}); err != nil || created {
		t.Fatalf("duplicate key should not create: %v created=%v", err, created)
	}
	if f.email.count() != 0 {
		t.Fatalf("no subject means no email")
	}

	unread, err := f.notifier.CountUnread(ctx, actor)
	if err != nil || unread != 1 {
		t.Fatalf("want 1 unread, got %d %v", unread, err)
	}
	if err := f.notifier.MarkRead(ctx, Actor{UserID: "someone-else"}, notification.ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("other user must not mark read: %v", err)
	}
	if err := f.notifier.MarkRead(ctx, actor, notification.ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	rows, _, err := f.notifier.ListForUser(ctx, actor, 1, 20, true)
	if err != nil || len(rows) != 0 {
		t.Fatalf("unread list should be empty: %v %d", err, len(rows))
	}
}

func TestNotifyEmailFailureIsNotFatal(t *testing.T) {
	f := setupLifecycle(t)
	f.email.err = errors.New("smtp down")
	_, created, err := f.notifier.Notify(context.Background(), NotifyInput{
		UserID:       f.owner.ID,
		Type:         constants.NotificationTypePromotionRenewed,
		Title:        "renewed",
		Message:      "m",
		EmailSubject: "renewed",
		EmailHTML:    "<p>renewed</p>",
	})
	if err != nil || !created {
		t.Fatalf("email failure must not fail notify: %v", err)
	}
}
