package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ============================================================================
// 分布式锁实现
// ============================================================================
//
// 【为什么需要分布式锁？】
//
// 场景：用户A快速点击两次投资按钮（或网络抖动导致重复提交）
//
// 如果没有分布式锁：
//   goroutine1: 查询余额=100 -> 投资100 -> 余额=0   OK
//   goroutine2: 查询余额=100 -> 投资100 -> 余额=-100 超扣了！
//
// 加了分布式锁：
//   goroutine1: 获取锁 -> 查询余额=100 -> 投资100 -> 余额=0 -> 释放锁
//   goroutine2: 获取锁失败，等待... -> 获取锁 -> 查询余额=0 -> 余额不足，拒绝
//
// 【Redis 分布式锁原理】
//
// 加锁：SET key value NX EX timeout
//   - NX: 只有 key 不存在时才设置（保证互斥）
//   - EX: 设置过期时间（防止死锁）
//   - value: 锁持有者标识（释放时验证，防止误删别人的锁）
//
// 释放锁：使用 Lua 脚本保证原子性
//   - 先检查 value 是否是自己的
//   - 再删除 key
//
// ============================================================================

var (
	ErrLockFailed  = errors.New("获取分布式锁失败")
	ErrLockExpired = errors.New("锁已过期")
)

// DistributedLock 分布式锁
type DistributedLock struct {
	client     *redis.Client
	key        string        // 锁的 key
	value      string        // 锁的 value（用于验证锁的持有者）
	expiration time.Duration // 锁的过期时间
}

// NewDistributedLock 创建分布式锁
func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock 尝试获取锁（非阻塞）
//
// 【关键点】使用 SetNX 命令，只有当 key 不存在时才能设置成功
// 这保证了同一时刻只有一个客户端能获取到锁
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
	if err != nil {
		return false, err
	}
	return success, nil
}

// Lock 阻塞式获取锁（带重试）
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		// 等待一段时间后重试
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
			// 继续重试
		}
	}
	return ErrLockFailed
}

// Unlock 释放锁
//
// 【关键点】使用 Lua 脚本保证"检查+删除"操作的原子性
//
// 为什么要检查 value？
//
//	场景：A 获取锁 -> A 处理超时，锁自动过期 -> B 获取锁 -> A 执行完毕，调用 Unlock
//	如果不检查 value，A 会把 B 的锁删掉！
func (l *DistributedLock) Unlock(ctx context.Context) error {
	// Lua 脚本：检查 value 是否匹配，匹配则删除
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	return err
}

// ============================================================================
// 便捷函数：按用户维度的业务锁
// ============================================================================

// NewInvestLock 创建投资锁（按用户维度）
//
// 【设计思考】为什么按用户维度加锁？
//
// 同一用户的两笔并发投资会对同一余额做 read-check-write，必须串行；
// 不同用户之间没有共享数据，可以并发投资，不应互相等待。
// 锁的 value 使用本次流水号，便于追踪是哪个请求持有锁。
func NewInvestLock(client *redis.Client, userID int64, holder string) *DistributedLock {
	key := fmt.Sprintf("invest:lock:user:%d", userID)
	return NewDistributedLock(client, key, holder, 30*time.Second)
}

// NewGrantLock 创建发放锁（注册奖励等一次性发放场景）
// 保护"查询是否已发放 -> 发放"这段检查窗口
func NewGrantLock(client *redis.Client, userID int64, holder string) *DistributedLock {
	key := fmt.Sprintf("token:grant:lock:user:%d", userID)
	return NewDistributedLock(client, key, holder, 30*time.Second)
}
