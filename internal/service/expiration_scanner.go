package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/realty-promo/internal/constants"
	"github.com/realty-promo/internal/logger"
	"github.com/realty-promo/internal/metrics"
	"github.com/realty-promo/internal/models"
	"github.com/realty-promo/internal/repository"
	"github.com/realty-promo/internal/tracing"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// 任务名称（日志、指标与锁使用）
const (
	JobScanExpiring = "scan_expiring"
	JobAutoRenew    = "auto_renew"
)

const expiryLookahead = constants.PromotionExpiryLookaheadDays * 24 * time.Hour

// JobOptions 批处理任务参数
type JobOptions struct {
	PoolSize         int
	CandidateTimeout time.Duration
	Location         *time.Location
	SiteBaseURL      string
}

func (o JobOptions) normalized() JobOptions {
	if o.PoolSize <= 0 {
		o.PoolSize = 4
	}
	if o.CandidateTimeout <= 0 {
		o.CandidateTimeout = 10 * time.Second
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// ScanResult 到期提醒扫描结果
type ScanResult struct {
	Checked  int `json:"checked"`
	Notified int `json:"notified"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

type candidateOutcome int

const (
	outcomeNotified candidateOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// ExpirationScanner 到期提醒扫描：只发通知，不改推广状态
type ExpirationScanner struct {
	promotions    repository.PromotionRepository
	properties    repository.PropertyRepository
	notifications repository.NotificationRepository
	notifier      *NotificationService
	opts          JobOptions
}

// NewExpirationScanner 创建到期提醒扫描器
func NewExpirationScanner(
	promotions repository.PromotionRepository,
	properties repository.PropertyRepository,
	notifications repository.NotificationRepository,
	notifier *NotificationService,
	opts JobOptions,
) *ExpirationScanner {
	return &ExpirationScanner{
		promotions:    promotions,
		properties:    properties,
		notifications: notifications,
		notifier:      notifier,
		opts:          opts.normalized(),
	}
}

// ScanExpiring 查找 now < end_date <= now+3d 的启用推广并提醒房东；
// 候选列表读取失败时整体返回错误，单条失败只计数并继续
func (s *ExpirationScanner) ScanExpiring(ctx context.Context, now time.Time) (result ScanResult, err error) {
	started := time.Now()
	now = now.UTC()
	ctx = logger.WithContext(ctx, "job", JobScanExpiring)
	ctx, span := tracing.StartSpan(ctx, "promotion.scan_expiring", attribute.String("job.now", now.Format(time.RFC3339)))
	defer func() {
		span.SetAttributes(
			attribute.Int("scan.checked", result.Checked),
			attribute.Int("scan.notified", result.Notified),
			attribute.Int("scan.failed", result.Failed),
		)
		tracing.EndSpan(span, err)
		metrics.ObserveJob(JobScanExpiring, started, err)
	}()

	candidates, err := s.promotions.Find(ctx, repository.PromotionFilter{
		IsActive:      repository.BoolPtr(true),
		EndAfter:      repository.TimePtr(now),
		EndAtOrBefore: repository.TimePtr(now.Add(expiryLookahead)),
	})
	if err != nil {
		logger.FromContext(ctx).Errorw("promotion_scan_candidates_failed", "error", err)
		return ScanResult{}, storeError(err)
	}

	var notified, skipped, failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.opts.PoolSize)
	for i := range candidates {
		promotion := candidates[i]
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.opts.CandidateTimeout)
			defer cancel()
			switch s.processCandidate(cctx, &promotion, now) {
			case outcomeNotified:
				notified.Add(1)
			case outcomeSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result = ScanResult{
		Checked:  len(candidates),
		Notified: int(notified.Load()),
		Skipped:  int(skipped.Load()),
		Failed:   int(failed.Load()),
	}
	metrics.AddCandidates(JobScanExpiring, metrics.OutcomeNotified, result.Notified)
	metrics.AddCandidates(JobScanExpiring, metrics.OutcomeSkipped, result.Skipped)
	metrics.AddCandidates(JobScanExpiring, metrics.OutcomeFailed, result.Failed)
	logger.FromContext(ctx).Infow("promotion_scan_finished",
		"checked", result.Checked,
		"notified", result.Notified,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration", time.Since(started),
	)
	return result, nil
}

func (s *ExpirationScanner) processCandidate(ctx context.Context, promotion *models.Promotion, now time.Time) candidateOutcome {
	ctx, span := tracing.StartSpan(ctx, "promotion.scan_expiring.candidate", attribute.String("promotion.id", promotion.ID))
	var spanErr error
	defer func() { tracing.EndSpan(span, spanErr) }()
	log := logger.FromContext(ctx).With("promotion_id", promotion.ID, "owner_id", promotion.OwnerID)

	daysRemaining := DaysRemaining(promotion.EndDate, now)
	dedupKey := ExpiringDedupKey(promotion.ID, now, s.opts.Location)

	sent, err := s.alreadyNotifiedToday(ctx, promotion.ID, dedupKey, now)
	if err != nil {
		spanErr = err
		log.Warnw("promotion_scan_dedup_check_failed", "error", err)
		return outcomeFailed
	}
	if sent {
		log.Debugw("promotion_scan_skip_already_notified", "dedup_key", dedupKey)
		return outcomeSkipped
	}

	propertyTitle := propertyTitleFallback
	property, err := s.properties.GetByID(ctx, promotion.PropertyID)
	if err != nil {
		log.Warnw("promotion_scan_property_lookup_failed", "property_id", promotion.PropertyID, "error", err)
	} else {
		propertyTitle = resolvePropertyTitle(property)
	}

	content := buildExpiringContent(promotion, propertyTitle, daysRemaining, s.opts.Location, s.opts.SiteBaseURL)
	_, created, err := s.notifier.Notify(ctx, notifyInputFromContent(promotion.OwnerID, dedupKey, content))
	if err != nil {
		spanErr = err
		log.Warnw("promotion_scan_notify_failed", "days_remaining", daysRemaining, "error", err)
		return outcomeFailed
	}
	if !created {
		log.Debugw("promotion_scan_skip_concurrent_duplicate", "dedup_key", dedupKey)
		return outcomeSkipped
	}
	log.Infow("promotion_scan_notified", "days_remaining", daysRemaining, "urgent", daysRemaining <= constants.PromotionUrgentDaysRemaining)
	return outcomeNotified
}

// alreadyNotifiedToday 先查去重键，再兼容查询旧数据（正文包含推广ID且当天创建）
func (s *ExpirationScanner) alreadyNotifiedToday(ctx context.Context, promotionID, dedupKey string, now time.Time) (bool, error) {
	exists, err := s.notifications.ExistsByDedupKey(ctx, dedupKey)
	if err != nil {
		return false, fmt.Errorf("check dedup key: %w", err)
	}
	if exists {
		return true, nil
	}
	dayStart, dayEnd := dayBounds(now, s.opts.Location)
	exists, err = s.notifications.ExistsForPromotionOnDay(ctx, promotionID, constants.NotificationTypePromotionExpiring, dayStart, dayEnd)
	if err != nil {
		return false, fmt.Errorf("check legacy notification: %w", err)
	}
	return exists, nil
}
