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
	"gorm.io/gorm"
)

// RenewResult 自动续期结果
type RenewResult struct {
	Checked     int `json:"checked"`
	Renewed     int `json:"renewed"`
	Deactivated int `json:"deactivated"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
}

type renewOutcome int

const (
	renewOutcomeRenewed renewOutcome = iota
	renewOutcomeDeactivated
	renewOutcomeSkipped
	renewOutcomeFailed
)

// RenewalService 到期推广处理：开启自动续期的按原时长顺延，否则停用
type RenewalService struct {
	promotions repository.PromotionRepository
	properties repository.PropertyRepository
	notifier   *NotificationService
	opts       JobOptions
}

// NewRenewalService 创建自动续期服务
func NewRenewalService(
	promotions repository.PromotionRepository,
	properties repository.PropertyRepository,
	notifier *NotificationService,
	opts JobOptions,
) *RenewalService {
	return &RenewalService{
		promotions: promotions,
		properties: properties,
		notifier:   notifier,
		opts:       opts.normalized(),
	}
}

// AutoRenew 处理 is_active 且 end_date <= now 的推广（end_date == now 视为已到期）
func (s *RenewalService) AutoRenew(ctx context.Context, now time.Time) (result RenewResult, err error) {
	started := time.Now()
	now = now.UTC()
	ctx = logger.WithContext(ctx, "job", JobAutoRenew)
	ctx, span := tracing.StartSpan(ctx, "promotion.auto_renew", attribute.String("job.now", now.Format(time.RFC3339)))
	defer func() {
		span.SetAttributes(
			attribute.Int("renew.checked", result.Checked),
			attribute.Int("renew.renewed", result.Renewed),
			attribute.Int("renew.deactivated", result.Deactivated),
			attribute.Int("renew.skipped", result.Skipped),
			attribute.Int("renew.failed", result.Failed),
		)
		tracing.EndSpan(span, err)
		metrics.ObserveJob(JobAutoRenew, started, err)
	}()

	candidates, err := s.promotions.Find(ctx, repository.PromotionFilter{
		IsActive:      repository.BoolPtr(true),
		EndAtOrBefore: repository.TimePtr(now),
	})
	if err != nil {
		logger.FromContext(ctx).Errorw("promotion_renew_candidates_failed", "error", err)
		return RenewResult{}, storeError(err)
	}

	var renewed, deactivated, skipped, failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.opts.PoolSize)
	for i := range candidates {
		promotion := candidates[i]
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.opts.CandidateTimeout)
			defer cancel()
			switch s.processCandidate(cctx, &promotion, now) {
			case renewOutcomeRenewed:
				renewed.Add(1)
			case renewOutcomeDeactivated:
				deactivated.Add(1)
			case renewOutcomeSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result = RenewResult{
		Checked:     len(candidates),
		Renewed:     int(renewed.Load()),
		Deactivated: int(deactivated.Load()),
		Skipped:     int(skipped.Load()),
		Failed:      int(failed.Load()),
	}
	metrics.AddCandidates(JobAutoRenew, metrics.OutcomeRenewed, result.Renewed)
	metrics.AddCandidates(JobAutoRenew, metrics.OutcomeDeactivated, result.Deactivated)
	metrics.AddCandidates(JobAutoRenew, metrics.OutcomeSkipped, result.Skipped)
	metrics.AddCandidates(JobAutoRenew, metrics.OutcomeFailed, result.Failed)
	logger.FromContext(ctx).Infow("promotion_renew_finished",
		"checked", result.Checked,
		"renewed", result.Renewed,
		"deactivated", result.Deactivated,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration", time.Since(started),
	)
	return result, nil
}

func (s *RenewalService) processCandidate(ctx context.Context, promotion *models.Promotion, now time.Time) renewOutcome {
	ctx, span := tracing.StartSpan(ctx, "promotion.auto_renew.candidate",
		attribute.String("promotion.id", promotion.ID),
		attribute.Bool("promotion.auto_renew", promotion.AutoRenew),
	)
	var spanErr error
	defer func() { tracing.EndSpan(span, spanErr) }()
	log := logger.FromContext(ctx).With("promotion_id", promotion.ID, "owner_id", promotion.OwnerID)

	// 并发运行或管理员停用改变了记录时，条件更新不命中
	snapshot := repository.PromotionSnapshot{IsActive: promotion.IsActive, EndDate: promotion.EndDate}
	duration := promotion.OriginalDuration()
	if promotion.AutoRenew && duration > 0 {
		newEnd := promotion.EndDate.Add(duration)
		updated, err := s.promotions.UpdateIfUnchanged(ctx, promotion.ID, snapshot, map[string]interface{}{
			"end_date":            newEnd,
			"is_active":           true,
			"renewal_count":       gorm.Expr("renewal_count + ?", 1),
			"last_renewed_at":     now,
			"deactivated_at":      nil,
			"deactivation_reason": "",
		})
		if err != nil {
			spanErr = storeError(err)
			log.Warnw("promotion_renew_update_failed", "error", spanErr)
			return renewOutcomeFailed
		}
		if !updated {
			log.Infow("promotion_renew_skip_changed", "end_date", promotion.EndDate)
			return renewOutcomeSkipped
		}
		log.Infow("promotion_renewed", "old_end_date", promotion.EndDate, "new_end_date", newEnd)
		s.notifyOwner(ctx, promotion, func(title string) notificationContent {
			return buildRenewedContent(promotion, title, newEnd, s.opts.Location, s.opts.SiteBaseURL)
		}, fmt.Sprintf("%s:%s:%s", constants.NotificationTypePromotionRenewed, promotion.ID, newEnd.Format(time.RFC3339)))
		return renewOutcomeRenewed
	}

	if promotion.AutoRenew {
		log.Warnw("promotion_renew_missing_duration", "start_date", promotion.StartDate, "end_date", promotion.EndDate)
	}
	updated, err := s.promotions.UpdateIfUnchanged(ctx, promotion.ID, snapshot, map[string]interface{}{
		"is_active":           false,
		"deactivated_at":      now,
		"deactivation_reason": constants.PromotionDeactivateReasonExpired,
	})
	if err != nil {
		spanErr = storeError(err)
		log.Warnw("promotion_expire_update_failed", "error", spanErr)
		return renewOutcomeFailed
	}
	if !updated {
		log.Infow("promotion_expire_skip_changed", "end_date", promotion.EndDate)
		return renewOutcomeSkipped
	}
	log.Infow("promotion_expired", "end_date", promotion.EndDate)
	s.notifyOwner(ctx, promotion, func(title string) notificationContent {
		return buildExpiredContent(promotion, title, s.opts.Location, s.opts.SiteBaseURL)
	}, fmt.Sprintf("%s:%s:%s", constants.NotificationTypePromotionExpired, promotion.ID, promotion.EndDate.Format(time.RFC3339)))
	return renewOutcomeDeactivated
}

// notifyOwner 结果通知尽力发送，失败不影响已完成的状态变更
func (s *RenewalService) notifyOwner(ctx context.Context, promotion *models.Promotion, build func(propertyTitle string) notificationContent, dedupKey string) {
	if s.notifier == nil {
		return
	}
	propertyTitle := propertyTitleFallback
	if s.properties != nil {
		property, err := s.properties.GetByID(ctx, promotion.PropertyID)
		if err != nil {
			logger.FromContext(ctx).Warnw("promotion_renew_property_lookup_failed", "promotion_id", promotion.ID, "error", err)
		} else {
			propertyTitle = resolvePropertyTitle(property)
		}
	}
	if _, _, err := s.notifier.Notify(ctx, notifyInputFromContent(promotion.OwnerID, dedupKey, build(propertyTitle))); err != nil {
		logger.FromContext(ctx).Warnw("promotion_renew_notify_failed", "promotion_id", promotion.ID, "error", err)
	}
}
