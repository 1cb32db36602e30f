// Package redis 缓存层：会话摘要缓存与验证码重发节流
// 未配置 Redis 时使用 NopCache，所有读取都视为未命中
package redis

import (
	"context"
	"time"
)

// CacheService 键值缓存；Get 未命中返回 ""，不是错误
type CacheService interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	// Incr 计数加一并刷新过期时间，返回新值
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// AsyncCacheService 在 CacheService 之上提供后台任务，用于发消息、删账号后的缓存失效
type AsyncCacheService interface {
	CacheService
	// SubmitTask 交给后台 worker 执行；队列满时在调用方协程执行
	SubmitTask(action func())
	// Close 等待已提交的任务完成并关闭连接
	Close() error
}
