package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/realty-promo/internal/cache"
	"github.com/realty-promo/internal/constants"
	"github.com/realty-promo/internal/logger"
	"github.com/realty-promo/internal/models"
	"github.com/realty-promo/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	livePromotionsCacheTTL    = time.Minute
	livePromotionsCachePrefix = "promotions:live"
	maxPromotionDurationDays  = 365
)

// PromotionService 推广开通与管理服务
type PromotionService struct {
	repo         repository.PromotionRepository
	propertyRepo repository.PropertyRepository
	notifier     *NotificationService
	location     *time.Location
	siteBaseURL  string
	now          Clock
}

// NewPromotionService 创建推广服务
func NewPromotionService(
	repo repository.PromotionRepository,
	propertyRepo repository.PropertyRepository,
	notifier *NotificationService,
	location *time.Location,
	siteBaseURL string,
) *PromotionService {
	if location == nil {
		location = time.UTC
	}
	return &PromotionService{
		repo:         repo,
		propertyRepo: propertyRepo,
		notifier:     notifier,
		location:     location,
		siteBaseURL:  siteBaseURL,
		now:          systemClock,
	}
}

// SetClock 替换时钟
func (s *PromotionService) SetClock(clock Clock) {
	if clock != nil {
		s.now = clock
	}
}

// ActivateInput 开通推广输入
type ActivateInput struct {
	PropertyID    string
	PromotionType string
	VideoURL      string
	BannerURL     string
	DurationDays  int
	AmountPaid    models.Money
	AutoRenew     bool
}

// Activate 开通推广：校验类型与素材，写入记录后通知房东
func (s *PromotionService) Activate(ctx context.Context, actor Actor, input ActivateInput) (*models.Promotion, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	propertyID := strings.TrimSpace(input.PropertyID)
	promotionType := strings.ToLower(strings.TrimSpace(input.PromotionType))
	if propertyID == "" || !IsPromotionTypeValid(promotionType) {
		return nil, ErrPromotionInvalid
	}
	if input.DurationDays <= 0 || input.DurationDays > maxPromotionDurationDays {
		return nil, ErrPromotionInvalid
	}
	if input.AmountPaid.Decimal.LessThan(decimal.Zero) {
		return nil, ErrPromotionInvalid
	}
	videoURL := strings.TrimSpace(input.VideoURL)
	bannerURL := strings.TrimSpace(input.BannerURL)
	if err := validatePromotionMedia(promotionType, videoURL, bannerURL); err != nil {
		return nil, err
	}

	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, storeError(err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}

	now := s.now().UTC()
	promotion := &models.Promotion{
		PropertyID:    property.ID,
		OwnerID:       property.OwnerID,
		PromotionType: promotionType,
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, input.DurationDays),
		DurationDays:  input.DurationDays,
		AmountPaid:    models.NewMoneyFromDecimal(input.AmountPaid.Decimal),
		IsActive:      true,
		VideoURL:      videoURL,
		BannerURL:     bannerURL,
		AutoRenew:     input.AutoRenew,
		CreatedBy:     actor.UserID,
	}
	if err := s.repo.Create(ctx, promotion); err != nil {
		return nil, storeError(err)
	}
	s.invalidateLiveCache(ctx)

	logger.FromContext(ctx).Infow("promotion_activated",
		"promotion_id", promotion.ID,
		"property_id", promotion.PropertyID,
		"promotion_type", promotion.PromotionType,
		"duration_days", promotion.DurationDays,
	)

	if s.notifier != nil {
		content := buildActivatedContent(promotion, resolvePropertyTitle(property), s.location, s.siteBaseURL)
		if _, _, err := s.notifier.Notify(ctx, notifyInputFromContent(promotion.OwnerID, "", content)); err != nil {
			logger.FromContext(ctx).Warnw("promotion_activated_notify_failed", "promotion_id", promotion.ID, "error", err)
		}
	}
	return promotion, nil
}

// Deactivate 管理员停用推广，已停用时直接返回
func (s *PromotionService) Deactivate(ctx context.Context, actor Actor, id string, reason string) (*models.Promotion, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	promotion, err := s.getPromotion(ctx, id)
	if err != nil {
		return nil, err
	}
	if !promotion.IsActive {
		return promotion, nil
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = constants.PromotionDeactivateReasonAdmin
	}
	if len(reason) > 40 {
		reason = reason[:40]
	}
	now := s.now().UTC()
	found, err := s.repo.Update(ctx, promotion.ID, map[string]interface{}{
		"is_active":           false,
		"deactivated_at":      now,
		"deactivation_reason": reason,
	})
	if err != nil {
		return nil, storeError(err)
	}
	if !found {
		return nil, ErrPromotionNotFound
	}
	s.invalidateLiveCache(ctx)
	logger.FromContext(ctx).Infow("promotion_deactivated", "promotion_id", promotion.ID, "reason", reason, "operator", actor.UserID)

	promotion.IsActive = false
	promotion.DeactivatedAt = &now
	promotion.DeactivationReason = reason
	return promotion, nil
}

// SetAutoRenew 设置自动续期开关
func (s *PromotionService) SetAutoRenew(ctx context.Context, actor Actor, id string, enabled bool) (*models.Promotion, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	promotion, err := s.getPromotion(ctx, id)
	if err != nil {
		return nil, err
	}
	if promotion.AutoRenew == enabled {
		return promotion, nil
	}
	found, err := s.repo.Update(ctx, promotion.ID, map[string]interface{}{"auto_renew": enabled})
	if err != nil {
		return nil, storeError(err)
	}
	if !found {
		return nil, ErrPromotionNotFound
	}
	promotion.AutoRenew = enabled
	return promotion, nil
}

// Get 获取推广详情
func (s *PromotionService) Get(ctx context.Context, id string) (*models.Promotion, error) {
	return s.getPromotion(ctx, id)
}

// List 管理端推广列表
func (s *PromotionService) List(ctx context.Context, filter repository.PromotionListFilter) ([]models.Promotion, int64, error) {
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, storeError(err)
	}
	return rows, total, nil
}

// ListForOwner 房东本人推广列表
func (s *PromotionService) ListForOwner(ctx context.Context, actor Actor, page, pageSize int) ([]models.Promotion, int64, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return nil, 0, ErrActorRequired
	}
	return s.List(ctx, repository.PromotionListFilter{
		Page:     page,
		PageSize: pageSize,
		OwnerID:  actor.UserID,
	})
}

// ListLive 当前生效中的推广（公开展示位读取），结果短暂缓存
func (s *PromotionService) ListLive(ctx context.Context, promotionType string, limit int) ([]models.Promotion, error) {
	promotionType = strings.ToLower(strings.TrimSpace(promotionType))
	if promotionType != "" && !IsPromotionTypeValid(promotionType) {
		return nil, ErrPromotionInvalid
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	cacheKey := fmt.Sprintf("%s:%s:%d", livePromotionsCachePrefix, promotionType, limit)
	now := s.now().UTC()

	var cached []models.Promotion
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		live := cached[:0]
		for _, p := range cached {
			if p.IsLive(now) {
				live = append(live, p)
			}
		}
		return live, nil
	} else if err != nil {
		logger.FromContext(ctx).Debugw("promotion_live_cache_get_failed", "error", err)
	}

	rows, err := s.repo.ListLive(ctx, promotionType, now, limit)
	if err != nil {
		return nil, storeError(err)
	}
	if err := cache.SetJSON(ctx, cacheKey, rows, livePromotionsCacheTTL); err != nil {
		logger.FromContext(ctx).Debugw("promotion_live_cache_set_failed", "error", err)
	}
	return rows, nil
}

func (s *PromotionService) getPromotion(ctx context.Context, id string) (*models.Promotion, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrPromotionNotFound
	}
	promotion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if promotion == nil {
		return nil, ErrPromotionNotFound
	}
	return promotion, nil
}

func (s *PromotionService) invalidateLiveCache(ctx context.Context) {
	if err := cache.DelByPattern(ctx, livePromotionsCachePrefix+":*"); err != nil {
		logger.FromContext(ctx).Debugw("promotion_live_cache_invalidate_failed", "error", err)
	}
}

// IsPromotionTypeValid 判断推广类型是否受支持
func IsPromotionTypeValid(promotionType string) bool {
	switch promotionType {
	case constants.PromotionTypeFeatured,
		constants.PromotionTypeVideoAd,
		constants.PromotionTypeBanner,
		constants.PromotionTypeHomepage:
		return true
	}
	return false
}

// validatePromotionMedia 视频类与首页需视频，横幅与首页需横幅图
func validatePromotionMedia(promotionType, videoURL, bannerURL string) error {
	needVideo := promotionType == constants.PromotionTypeVideoAd || promotionType == constants.PromotionTypeHomepage
	needBanner := promotionType == constants.PromotionTypeBanner || promotionType == constants.PromotionTypeHomepage
	if needVideo && videoURL == "" {
		return ErrPromotionMediaRequired
	}
	if needBanner && bannerURL == "" {
		return ErrPromotionMediaRequired
	}
	for _, raw := range []string{videoURL, bannerURL} {
		if raw != "" && !isMediaURLValid(raw) {
			return ErrPromotionMediaInvalid
		}
	}
	return nil
}

// isMediaURLValid 允许 http(s) 外链或站内上传路径
func isMediaURLValid(raw string) bool {
	if strings.HasPrefix(raw, "/uploads/") && !strings.Contains(raw, "..") {
		return true
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(parsed.Scheme)
	return (scheme == "http" || scheme == "https") && parsed.Host != ""
}
