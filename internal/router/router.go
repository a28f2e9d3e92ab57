package router

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/realty-promo/internal/authz"
	"github.com/realty-promo/internal/cache"
	"github.com/realty-promo/internal/config"
	adminhandlers "github.com/realty-promo/internal/http/handlers/admin"
	publichandlers "github.com/realty-promo/internal/http/handlers/public"
	"github.com/realty-promo/internal/http/response"
	"github.com/realty-promo/internal/logger"
	"github.com/realty-promo/internal/metrics"
	"github.com/realty-promo/internal/models"
	"github.com/realty-promo/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "rp"
	}
	adminRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin", redisPrefix),
		WindowSeconds: cfg.Security.AdminRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.AdminRateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(TracingMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(MetricsMiddleware())
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/promotions/live", publicHandler.GetLivePromotions)
		}

		// 房东接口（需鉴权）
		me := apiV1.Group("/me")
		me.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, cfg.JWT.Issuer), RBACMiddleware(c.AuthzService))
		{
			me.GET("/promotions", publicHandler.GetMyPromotions)
			me.GET("/transactions", publicHandler.GetMyTransactions)
			me.GET("/notifications", publicHandler.GetMyNotifications)
			me.GET("/notifications/unread-count", publicHandler.GetMyUnreadCount)
			me.POST("/notifications/:id/read", publicHandler.MarkMyNotificationRead)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		admin.Use(
			JWTAuthMiddleware(cfg.JWT.SecretKey, cfg.JWT.Issuer),
			RBACMiddleware(c.AuthzService),
			RateLimitMiddleware(cache.Client(), adminRule, KeyByUser),
		)
		{
			// 推广管理
			admin.POST("/promotions", adminHandler.CreatePromotion)
			admin.GET("/promotions", adminHandler.GetAdminPromotions)
			admin.GET("/promotions/:id", adminHandler.GetAdminPromotion)
			admin.POST("/promotions/:id/deactivate", adminHandler.DeactivatePromotion)
			admin.PUT("/promotions/:id/auto-renew", adminHandler.UpdatePromotionAutoRenew)

			// 成交与佣金
			admin.POST("/transactions", adminHandler.CreateTransaction)
			admin.GET("/transactions", adminHandler.GetAdminTransactions)
			admin.GET("/transactions/:id", adminHandler.GetAdminTransaction)
			admin.POST("/transactions/:id/mark-paid", adminHandler.MarkTransactionCommissionPaid)

			// 生命周期任务手动触发
			admin.POST("/jobs/scan-expiring", adminHandler.RunScanExpiring)
			admin.POST("/jobs/auto-renew", adminHandler.RunAutoRenew)

			// 用户
			admin.GET("/users", adminHandler.GetAdminUsers)

			// 权限管理
			admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
			admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
			admin.POST("/authz/roles", adminHandler.CreateAuthzRole)
			admin.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
			admin.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
			admin.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
			admin.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
			admin.GET("/authz/users/:id/roles", adminHandler.GetAuthzUserRoles)
			admin.PUT("/authz/users/:id/roles", adminHandler.SetAuthzUserRoles)
		}
	}

	// 健康检查
	r.GET("/healthz", healthHandler)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}

func healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok", "redis": "ok"}
	healthy := true
	if err := pingDB(ctx); err != nil {
		logger.FromContext(ctx).Warnw("health_database_failed", "error", err)
		checks["database"] = err.Error()
		healthy = false
	}
	if err := cache.Ping(ctx); err != nil {
		logger.FromContext(ctx).Warnw("health_redis_failed", "error", err)
		checks["redis"] = err.Error()
		healthy = false
	}
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}

func pingDB(ctx context.Context) error {
	if models.DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := models.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
