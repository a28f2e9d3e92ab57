package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotHeld 锁已过期或被其他实例持有
var ErrLockNotHeld = errors.New("job lock not held")

var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// JobLock 分布式任务互斥锁
// Redis 未启用时退化为本地直通（总能获取）
type JobLock struct {
	key     string
	fullKey string
	token   string
	held    bool
	client  *redis.Client
}

// TryLock 尝试获取任务锁，acquired=false 表示已有其他实例在执行
func TryLock(ctx context.Context, name string, ttl time.Duration) (*JobLock, bool, error) {
	lock := &JobLock{key: "lock:" + name, token: uuid.NewString()}
	s := current.Load()
	if s.client == nil {
		return lock, true, nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	lock.client = s.client
	lock.fullKey = s.key(lock.key)
	ok, err := s.client.SetNX(ctx, lock.fullKey, lock.token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	lock.held = true
	return lock, true, nil
}

// Unlock 释放任务锁，仅删除自己持有的锁
func (l *JobLock) Unlock(ctx context.Context) error {
	if l == nil || !l.held || l.client == nil {
		return nil
	}
	l.held = false
	res, err := releaseLockScript.Run(ctx, l.client, []string{l.fullKey}, l.token).Int64()
	if err != nil {
		return err
	}
	if res == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Key 锁名称
func (l *JobLock) Key() string {
	if l == nil {
		return ""
	}
	return l.key
}
