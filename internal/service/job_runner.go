package service

import (
	"context"
	"fmt"
	"time"

	"github.com/realty-promo/internal/cache"
	"github.com/realty-promo/internal/constants"
	"github.com/realty-promo/internal/logger"
)

// PromotionJobRunner 串行化推广批处理任务：同一任务在多实例间同一时刻只运行一个
type PromotionJobRunner struct {
	scanner    *ExpirationScanner
	renewal    *RenewalService
	jobTimeout time.Duration
	lockTTL    time.Duration
	now        Clock
}

// NewPromotionJobRunner 创建任务执行器
func NewPromotionJobRunner(scanner *ExpirationScanner, renewal *RenewalService, jobTimeout, lockTTL time.Duration) *PromotionJobRunner {
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Minute
	}
	if lockTTL <= 0 {
		lockTTL = jobTimeout
	}
	return &PromotionJobRunner{
		scanner:    scanner,
		renewal:    renewal,
		jobTimeout: jobTimeout,
		lockTTL:    lockTTL,
		now:        systemClock,
	}
}

// SetClock 替换时钟
func (r *PromotionJobRunner) SetClock(clock Clock) {
	if clock != nil {
		r.now = clock
	}
}

// RunScanExpiring 执行到期提醒扫描，now 为空时取当前时间
func (r *PromotionJobRunner) RunScanExpiring(ctx context.Context, now *time.Time, trigger string) (ScanResult, error) {
	var result ScanResult
	err := r.withLock(ctx, constants.JobLockScanExpiring, JobScanExpiring, trigger, func(jobCtx context.Context) error {
		var err error
		result, err = r.scanner.ScanExpiring(jobCtx, r.resolveNow(now))
		return err
	})
	return result, err
}

// RunAutoRenew 执行自动续期，now 为空时取当前时间
func (r *PromotionJobRunner) RunAutoRenew(ctx context.Context, now *time.Time, trigger string) (RenewResult, error) {
	var result RenewResult
	err := r.withLock(ctx, constants.JobLockAutoRenew, JobAutoRenew, trigger, func(jobCtx context.Context) error {
		var err error
		result, err = r.renewal.AutoRenew(jobCtx, r.resolveNow(now))
		return err
	})
	return result, err
}

func (r *PromotionJobRunner) resolveNow(now *time.Time) time.Time {
	if now != nil && !now.IsZero() {
		return now.UTC()
	}
	return r.now().UTC()
}

func (r *PromotionJobRunner) withLock(ctx context.Context, lockName, job, trigger string, fn func(context.Context) error) error {
	log := logger.FromContext(ctx).With("job", job, "trigger", trigger)
	lock, acquired, err := cache.TryLock(ctx, lockName, r.lockTTL)
	if err != nil {
		log.Errorw("promotion_job_lock_failed", "error", err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !acquired {
		log.Infow("promotion_job_skip_locked")
		return ErrJobAlreadyRunning
	}
	defer func() {
		// 任务超时后仍需释放锁
		if err := lock.Unlock(context.Background()); err != nil {
			log.Warnw("promotion_job_unlock_failed", "error", err)
		}
	}()

	jobCtx, cancel := context.WithTimeout(ctx, r.jobTimeout)
	defer cancel()
	log.Infow("promotion_job_started")
	return fn(jobCtx)
}
