package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/realty-promo/internal/constants"
	"github.com/realty-promo/internal/models"
	"github.com/realty-promo/internal/repository"
)

var errStoreDown = errors.New("store down")

type flakyPromotionRepo struct {
	repository.PromotionRepository
	findErr      error
	failUpdateID string
}

func (r *flakyPromotionRepo) Find(ctx context.Context, filter repository.PromotionFilter) ([]models.Promotion, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.PromotionRepository.Find(ctx, filter)
}

func (r *flakyPromotionRepo) UpdateIfUnchanged(ctx context.Context, id string, snapshot repository.PromotionSnapshot, fields map[string]interface{}) (bool, error) {
	if r.failUpdateID != "" && id == r.failUpdateID {
		return false, errStoreDown
	}
	return r.PromotionRepository.UpdateIfUnchanged(ctx, id, snapshot, fields)
}

type flakyNotificationRepo struct {
	repository.NotificationRepository
	failPromotionID  string
	stallPromotionID string
}

func (r *flakyNotificationRepo) ExistsByDedupKey(ctx context.Context, dedupKey string) (bool, error) {
	if r.failPromotionID != "" && strings.Contains(dedupKey, r.failPromotionID) {
		return false, errStoreDown
	}
	if r.stallPromotionID != "" && strings.Contains(dedupKey, r.stallPromotionID) {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return r.NotificationRepository.ExistsByDedupKey(ctx, dedupKey)
}

func TestScanExpiringCandidateFailures(t *testing.T) {
	cases := []struct {
		name  string
		setup func(repo *flakyNotificationRepo, broken string)
	}{
		{
			name:  "store error",
			setup: func(repo *flakyNotificationRepo, broken string) { repo.failPromotionID = broken },
		},
		{
			name:  "candidate timeout",
			setup: func(repo *flakyNotificationRepo, broken string) { repo.stallPromotionID = broken },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupLifecycle(t)
			ctx := context.Background()
			now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
			broken := f.seedPromotion(t, now.Add(20*time.Hour), 7, false)
			healthy := f.seedPromotion(t, now.Add(40*time.Hour), 7, false)

			notifications := &flakyNotificationRepo{NotificationRepository: f.notifications}
			tc.setup(notifications, broken.ID)
			scanner := NewExpirationScanner(f.promotions, repository.NewPropertyRepository(f.db), notifications, f.notifier,
				JobOptions{PoolSize: 1, CandidateTimeout: 300 * time.Millisecond, Location: time.UTC})

			started := time.Now()
			result, err := scanner.ScanExpiring(ctx, now)
			if err != nil {
				t.Fatalf("single candidate failure must not abort the scan: %v", err)
			}
			if want := (ScanResult{Checked: 2, Notified: 1, Failed: 1}); result != want {
				t.Fatalf("want %+v got %+v", want, result)
			}
			if elapsed := time.Since(started); elapsed > 5*time.Second {
				t.Fatalf("scan took too long: %s", elapsed)
			}

			rows := f.notificationsOf(t, constants.NotificationTypePromotionExpiring)
			if len(rows) != 1 || rows[0].DedupKey == nil || !strings.Contains(*rows[0].DedupKey, healthy.ID) {
				t.Fatalf("only the healthy candidate should be notified, got %+v", rows)
			}
		})
	}
}

func TestPromotionJobsAbortWhenCandidateReadFails(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	f.seedPromotion(t, now.Add(time.Hour), 7, false)

	promotions := &flakyPromotionRepo{PromotionRepository: f.promotions, findErr: errStoreDown}
	properties := repository.NewPropertyRepository(f.db)
	opts := JobOptions{PoolSize: 1, Location: time.UTC}
	scanner := NewExpirationScanner(promotions, properties, f.notifications, f.notifier, opts)
	renewal := NewRenewalService(promotions, properties, f.notifier, opts)

	scan, err := scanner.ScanExpiring(ctx, now)
	if !errors.Is(err, ErrStoreUnavailable) || !errors.Is(err, ErrDependency) {
		t.Fatalf("scan want store unavailable, got %v", err)
	}
	if scan != (ScanResult{}) {
		t.Fatalf("aborted scan should report nothing, got %+v", scan)
	}

	renew, err := renewal.AutoRenew(ctx, now)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("renew want store unavailable, got %v", err)
	}
	if renew != (RenewResult{}) {
		t.Fatalf("aborted renewal should report nothing, got %+v", renew)
	}
	if got := len(f.notificationsOf(t, constants.NotificationTypePromotionExpiring)); got != 0 {
		t.Fatalf("aborted scan must not notify, got %d", got)
	}
}

func TestAutoRenewCandidateStoreFailure(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	broken := f.seedPromotion(t, now.Add(-time.Hour), 30, true)
	healthy := f.seedPromotion(t, now.Add(-2*time.Hour), 30, true)

	promotions := &flakyPromotionRepo{PromotionRepository: f.promotions, failUpdateID: broken.ID}
	renewal := NewRenewalService(promotions, repository.NewPropertyRepository(f.db), f.notifier,
		JobOptions{PoolSize: 1, Location: time.UTC})

	result, err := renewal.AutoRenew(ctx, now)
	if err != nil {
		t.Fatalf("single candidate failure must not abort renewal: %v", err)
	}
	if want := (RenewResult{Checked: 2, Renewed: 1, Failed: 1}); result != want {
		t.Fatalf("want %+v got %+v", want, result)
	}
	if got := f.reload(t, broken.ID); got.RenewalCount != 0 || !got.EndDate.Equal(broken.EndDate) {
		t.Fatalf("failed candidate must stay untouched: %+v", got)
	}
	if got := f.reload(t, healthy.ID); got.RenewalCount != 1 || !got.EndDate.Equal(healthy.EndDate.AddDate(0, 0, 30)) {
		t.Fatalf("healthy candidate should be renewed: %+v", got)
	}
}

func TestAutoRenewSkipsChangedCandidate(t *testing.T) {
	f := setupLifecycle(t)
	ctx := context.Background()
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	renewable := f.seedPromotion(t, now.Add(-time.Hour), 30, true)
	stopped := f.seedPromotion(t, now.Add(-2*time.Hour), 30, true)

	candidates, err := f.promotions.Find(ctx, repository.PromotionFilter{
		IsActive:      repository.BoolPtr(true),
		EndAtOrBefore: repository.TimePtr(now),
	})
	if err != nil || len(candidates) != 2 {
		t.Fatalf("load candidates failed: %v %d", err, len(candidates))
	}
	snapshots := make(map[string]models.Promotion, len(candidates))
	for _, candidate := range candidates {
		snapshots[candidate.ID] = candidate
	}

	first := snapshots[renewable.ID]
	if got := f.renewal.processCandidate(ctx, &first, now); got != renewOutcomeRenewed {
		t.Fatalf("first run want renewed got %v", got)
	}
	second := snapshots[renewable.ID]
	if got := f.renewal.processCandidate(ctx, &second, now); got != renewOutcomeSkipped {
		t.Fatalf("overlapping run want skipped got %v", got)
	}
	if got := f.reload(t, renewable.ID); got.RenewalCount != 1 || !got.EndDate.Equal(renewable.EndDate.AddDate(0, 0, 30)) {
		t.Fatalf("promotion should be renewed exactly once: %+v", got)
	}

	if _, err := f.promotionSvc.Deactivate(ctx, testAdmin, stopped.ID, ""); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	stale := snapshots[stopped.ID]
	if got := f.renewal.processCandidate(ctx, &stale, now); got != renewOutcomeSkipped {
		t.Fatalf("deactivated promotion want skipped got %v", got)
	}
	got := f.reload(t, stopped.ID)
	if got.IsActive || got.RenewalCount != 0 || got.DeactivationReason != constants.PromotionDeactivateReasonAdmin {
		t.Fatalf("admin deactivation must survive renewal: %+v", got)
	}
	if rows := f.notificationsOf(t, constants.NotificationTypePromotionRenewed); len(rows) != 1 {
		t.Fatalf("want 1 renewed notification, got %d", len(rows))
	}
}
