package provider

import (
	"github.com/realty-promo/internal/authz"
	"github.com/realty-promo/internal/cache"
	"github.com/realty-promo/internal/config"
	"github.com/realty-promo/internal/logger"
	"github.com/realty-promo/internal/models"
	"github.com/realty-promo/internal/queue"
	"github.com/realty-promo/internal/repository"
	"github.com/realty-promo/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo         repository.UserRepository
	PropertyRepo     repository.PropertyRepository
	PromotionRepo    repository.PromotionRepository
	TransactionRepo  repository.TransactionRepository
	NotificationRepo repository.NotificationRepository

	// Services
	AuthzService        *authz.Service
	EmailService        *service.EmailService
	NotificationService *service.NotificationService
	PromotionService    *service.PromotionService
	TransactionService  *service.TransactionService
	ExpirationScanner   *service.ExpirationScanner
	RenewalService      *service.RenewalService
	JobRunner           *service.PromotionJobRunner
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories(models.DB)

	// 2. 初始化 Services
	c.initServices(models.DB)

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.UserRepo = repository.NewUserRepository(db)
	c.PropertyRepo = repository.NewPropertyRepository(db)
	c.PromotionRepo = repository.NewPromotionRepository(db)
	c.TransactionRepo = repository.NewTransactionRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
}

func (c *Container) initServices(db *gorm.DB) {
	authzService, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	promotionCfg := c.Config.Promotion
	location := promotionCfg.Location()
	jobOpts := service.JobOptions{
		PoolSize:         promotionCfg.WorkerPoolSize,
		CandidateTimeout: promotionCfg.CandidateTimeout(),
		Location:         location,
		SiteBaseURL:      promotionCfg.SiteBaseURL,
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.UserRepo, c.EmailService, c.QueueClient)
	c.PromotionService = service.NewPromotionService(c.PromotionRepo, c.PropertyRepo, c.NotificationService, location, promotionCfg.SiteBaseURL)
	c.TransactionService = service.NewTransactionService(c.TransactionRepo, c.PropertyRepo, c.NotificationService, promotionCfg.SiteBaseURL)
	c.ExpirationScanner = service.NewExpirationScanner(c.PromotionRepo, c.PropertyRepo, c.NotificationRepo, c.NotificationService, jobOpts)
	c.RenewalService = service.NewRenewalService(c.PromotionRepo, c.PropertyRepo, c.NotificationService, jobOpts)
	c.JobRunner = service.NewPromotionJobRunner(c.ExpirationScanner, c.RenewalService, promotionCfg.JobTimeout(), promotionCfg.JobLockTTL())
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
