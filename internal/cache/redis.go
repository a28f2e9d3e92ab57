package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/realty-promo/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "rp"

// state 当前 Redis 连接与 key 前缀，client 为 nil 表示缓存关闭
type state struct {
	client *redis.Client
	prefix string
}

var current atomic.Pointer[state]

func init() {
	current.Store(&state{prefix: defaultPrefix})
}

func normalizePrefix(prefix string) string {
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		return prefix
	}
	return defaultPrefix
}

// InitRedis 初始化 Redis 客户端，未启用时缓存与任务锁均为直通
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		SetClient(nil, "")
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	SetClient(redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(host, strconv.Itoa(port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	}), cfg.Prefix)
	return nil
}

// SetClient 替换当前客户端（测试或复用连接时使用），nil 表示关闭缓存
func SetClient(client *redis.Client, prefix string) {
	current.Store(&state{client: client, prefix: normalizePrefix(prefix)})
}

// Close 关闭 Redis 客户端
func Close() error {
	old := current.Swap(&state{prefix: current.Load().prefix})
	if old == nil || old.client == nil {
		return nil
	}
	return old.client.Close()
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	return current.Load().client != nil
}

// Client 获取 Redis 客户端，未启用时返回 nil
func Client() *redis.Client {
	return current.Load().client
}

// Ping 检查 Redis 连通性，未启用时视为正常
func Ping(ctx context.Context) error {
	client := Client()
	if client == nil {
		return nil
	}
	return client.Ping(ctx).Err()
}

// GetJSON 读取 JSON 缓存，未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	s := current.Load()
	if s.client == nil {
		return false, nil
	}
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s := current.Load()
	if s.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), payload, ttl).Err()
}

// DelByPattern 按模式删除缓存（SCAN 分批，不阻塞 Redis）
func DelByPattern(ctx context.Context, pattern string) error {
	s := current.Load()
	if s.client == nil {
		return nil
	}
	iter := s.client.Scan(ctx, 0, s.key(pattern), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *state) key(key string) string {
	if key = strings.TrimSpace(key); key == "" {
		return s.prefix
	}
	return s.prefix + ":" + key
}

func buildKey(key string) string {
	return current.Load().key(key)
}
