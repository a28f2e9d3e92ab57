package queue

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/realty-promo/internal/config"
	"github.com/realty-promo/internal/constants"
	"github.com/realty-promo/internal/logger"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 通知邮件等普通任务
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 推广到期扫描与续期
	CriticalQueue = constants.QueueCritical

	defaultConcurrency = 10
	// 手动触发的同类任务在该时间内只入队一次
	manualJobUniqueTTL = 5 * time.Minute
)

// ErrDuplicateJob 同类任务已在队列中
var ErrDuplicateJob = errors.New("promotion job already queued")

// Client asynq 客户端封装，未启用时所有入队操作为空操作
type Client struct {
	client *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(BuildRedisOpt(cfg))}, nil
}

// Enabled 是否可以入队
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func (c *Client) enqueue(task *asynq.Task, queueName string, opts []asynq.Option) error {
	options := append([]asynq.Option{asynq.Queue(queueName)}, opts...)
	info, err := c.client.Enqueue(task, options...)
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) || errors.Is(err, asynq.ErrTaskIDConflict) {
			return fmt.Errorf("%w: %s", ErrDuplicateJob, task.Type())
		}
		return fmt.Errorf("enqueue %s failed: %w", task.Type(), err)
	}
	logger.Debugw("queue_task_enqueued", "task", task.Type(), "task_id", info.ID, "queue", info.Queue)
	return nil
}

// EnqueueNotificationEmail 推送通知邮件任务
func (c *Client) EnqueueNotificationEmail(payload NotificationEmailPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewNotificationEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, DefaultQueue, opts)
}

// EnqueuePromotionJob 手动触发推广任务入队，短时间内重复触发返回 ErrDuplicateJob
func (c *Client) EnqueuePromotionJob(taskType string, payload PromotionJobPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	build, ok := promotionTaskBuilders[taskType]
	if !ok {
		return fmt.Errorf("unsupported promotion job: %s", taskType)
	}
	task, err := build(payload)
	if err != nil {
		return err
	}
	opts = append([]asynq.Option{asynq.Unique(manualJobUniqueTTL), asynq.MaxRetry(0)}, opts...)
	return c.enqueue(task, CriticalQueue, opts)
}

var promotionTaskBuilders = map[string]func(PromotionJobPayload) (*asynq.Task, error){
	TaskPromotionScanExpiring: NewPromotionScanExpiringTask,
	TaskPromotionAutoRenew:    NewPromotionAutoRenewTask,
}

// BuildServerConfig 生成消费端配置，推广任务队列权重更高
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{CriticalQueue: 3, DefaultQueue: 1},
		Logger:      logger.S(),
	}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			serverCfg.Concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			serverCfg.Queues = cfg.Queues
		}
	}
	return BuildRedisOpt(cfg), serverCfg
}

// BuildRedisOpt 生成 asynq 的 Redis 连接参数
func BuildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host, port := strings.TrimSpace(cfg.Host), cfg.Port
	if host == "" {
		host = "127.0.0.1"
	}
	if port <= 0 {
		port = 6379
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
