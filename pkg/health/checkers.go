// Package health provides health check functionality for monitoring service status
// Package health 提供健康检查功能，用于监控服务状态
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisChecker checks Redis health
// RedisChecker 检查 Redis 健康状态
type RedisChecker struct {
	name   string                // Checker name | 检查器名称
	client redis.UniversalClient // Redis client | Redis 客户端
}

// NewRedisChecker creates a Redis checker
// NewRedisChecker 创建 Redis 检查器
func NewRedisChecker(name string, client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{name: name, client: client}
}

// Name returns the checker name
// Name 返回检查器名称
func (r *RedisChecker) Name() string {
	return r.name
}

// Check executes Redis health check
// Check 执行 Redis 健康检查
func (r *RedisChecker) Check(ctx context.Context) CheckResult {
	if r.client == nil {
		return CheckResult{
			Status:  StatusDown,
			Message: "redis client is nil",
		}
	}

	start := time.Now()
	if err := r.client.Ping(ctx).Err(); err != nil {
		return CheckResult{
			Status:  StatusDown,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}

	return CheckResult{
		Status: StatusUp,
		Details: map[string]any{
			"latency_ms": time.Since(start).Milliseconds(),
		},
	}
}

// CustomChecker is a custom checker
// CustomChecker 是自定义检查器
type CustomChecker struct {
	name    string                          // Checker name | 检查器名称
	checkFn func(ctx context.Context) error // Check function | 检查函数
}

// NewCustomChecker creates a custom checker
// NewCustomChecker 创建自定义检查器
func NewCustomChecker(name string, checkFn func(ctx context.Context) error) *CustomChecker {
	return &CustomChecker{name: name, checkFn: checkFn}
}

// Name returns the checker name
// Name 返回检查器名称
func (c *CustomChecker) Name() string {
	return c.name
}

// Check executes custom health check
// Check 执行自定义健康检查
func (c *CustomChecker) Check(ctx context.Context) CheckResult {
	if c.checkFn == nil {
		return CheckResult{Status: StatusUp}
	}

	if err := c.checkFn(ctx); err != nil {
		return CheckResult{
			Status:  StatusDown,
			Message: err.Error(),
		}
	}

	return CheckResult{Status: StatusUp}
}
