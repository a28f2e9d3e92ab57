package router

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/realty-promo/internal/authz"
	"github.com/realty-promo/internal/config"
	handlershared "github.com/realty-promo/internal/http/handlers/shared"
	"github.com/realty-promo/internal/http/response"
	"github.com/realty-promo/internal/logger"
	"github.com/realty-promo/internal/metrics"
	"github.com/realty-promo/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// AuthClaims 外部认证服务签发的令牌声明，sub 为用户 ID
type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var defaultCORSHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Authorization",
	"Cache-Control",
	"X-Requested-With",
	requestIDHeader,
}

// 浏览器端需要读取的响应头
var exposedHeaders = strings.Join([]string{requestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}, ", ")

// CORSMiddleware 跨域中间件，未配置来源时允许任意来源
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	methods := strings.Join(orDefault(cfg.AllowedMethods, []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}), ", ")
	headers := strings.Join(orDefault(cfg.AllowedHeaders, defaultCORSHeaders), ", ")

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if allowed := resolveAllowedOrigin(c.GetHeader("Origin"), origins, cfg.AllowCredentials); allowed != "" {
			h.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				h.Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Set("Access-Control-Allow-Headers", headers)
		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Expose-Headers", exposedHeaders)
		if cfg.MaxAge > 0 {
			h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}

// resolveAllowedOrigin 通配且允许携带凭证时回显请求来源，浏览器不接受 * 与凭证同时出现
func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if slices.Contains(allowedOrigins, "*") {
		if allowCredentials && origin != "" {
			return origin
		}
		return "*"
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 请求日志：5xx 记 error，4xx 记 warn，其余 info
func LoggerMiddleware(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.L()
	}
	sugar := base.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID := c.GetString(handlershared.ContextKeyUserID); userID != "" {
			kv = append(kv, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}
		switch {
		case status >= http.StatusInternalServerError || len(c.Errors) > 0:
			sugar.Errorw("http_request", kv...)
		case status >= http.StatusBadRequest:
			sugar.Warnw("http_request", kv...)
		default:
			sugar.Infow("http_request", kv...)
		}
	}
}

// TracingMiddleware 为每个请求开启 span，并把 request_id 写入请求 context 供业务日志使用
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx, span := tracing.StartSpan(ctx, c.Request.Method+" "+route,
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		)

		ctx = logger.WithContext(ctx, "request_id", getRequestID(c))
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		var spanErr error
		if status >= 500 {
			spanErr = fmt.Errorf("http status %d", status)
			if last := c.Errors.Last(); last != nil {
				spanErr = last.Err
			}
		}
		tracing.EndSpan(span, spanErr)
	}
}

// MetricsMiddleware 按路由模板统计请求数
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.IncHTTPRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()))
	}
}

func getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// JWTAuthMiddleware 校验外部签发的 HS256 令牌，写入 user_id 与 user_role
func JWTAuthMiddleware(secretKey, issuer string) gin.HandlerFunc {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer = strings.TrimSpace(issuer); issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(options...)

	return func(c *gin.Context) {
		if secretKey == "" {
			logger.Errorw("jwt_secret_missing")
			response.Unauthorized(c, "authentication unavailable")
			c.Abort()
			return
		}
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, "bearer token required")
			c.Abort()
			return
		}

		claims := &AuthClaims{}
		token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		})
		if err != nil || !token.Valid || strings.TrimSpace(claims.Subject) == "" {
			logger.FromContext(c.Request.Context()).Debugw("jwt_token_rejected", "error", err)
			response.Unauthorized(c, "token invalid")
			c.Abort()
			return
		}

		c.Set(handlershared.ContextKeyUserID, strings.TrimSpace(claims.Subject))
		c.Set(handlershared.ContextKeyUserRole, strings.ToLower(strings.TrimSpace(claims.Role)))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RBACMiddleware 按路由模板做 Casbin 授权，需在 JWTAuthMiddleware 之后使用
func RBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("rbac_service_unavailable")
			response.Unauthorized(c, "unauthorized")
			c.Abort()
			return
		}

		userID := c.GetString(handlershared.ContextKeyUserID)
		if strings.TrimSpace(userID) == "" {
			response.Unauthorized(c, "unauthorized")
			c.Abort()
			return
		}
		role := c.GetString(handlershared.ContextKeyUserRole)

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		log := logger.FromContext(c.Request.Context()).With(
			"user_id", userID,
			"role", role,
			"method", c.Request.Method,
			"resource", authz.NormalizeObject(resource),
		)
		allowed, err := authzService.EnforceActor(userID, role, resource, c.Request.Method)
		switch {
		case err != nil:
			log.Errorw("rbac_enforce_failed", "error", err)
		case !allowed:
			log.Warnw("rbac_permission_denied")
		default:
			c.Next()
			return
		}
		response.Forbidden(c, "forbidden")
		c.Abort()
	}
}
