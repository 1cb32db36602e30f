package redis

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"campus_lostfound/internal/config"
	"campus_lostfound/pkg/errorx"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Init 按配置创建缓存服务；Host 为空时返回 NopCache
func Init(conf *config.RedisConfig) (AsyncCacheService, error) {
	if conf.Host == "" {
		zap.L().Info("redis not configured, conversation cache disabled")
		return NopCache{}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Host + ":" + strconv.Itoa(conf.Port),
		Password: conf.Password,
		DB:       conf.Db,
		// 连接池配置
		PoolSize:     20,
		MinIdleConns: 4, // 与 Worker 数量匹配
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errorx.Wrap(err, errorx.CodeCacheError, "redis ping")
	}
	return NewRedisCache(client, 4, 500), nil
}

// RedisCache Redis 缓存实现，同时实现 CacheService 与 AsyncCacheService
type RedisCache struct {
	client   *redis.Client
	taskChan chan func()
	wg       sync.WaitGroup
	once     sync.Once
}

// NewRedisCache 创建 Redis 缓存实例并启动 Worker Pool
func NewRedisCache(client *redis.Client, workerNum, taskChanSize int) *RedisCache {
	rc := &RedisCache{
		client:   client,
		taskChan: make(chan func(), taskChanSize),
	}
	for i := 0; i < workerNum; i++ {
		rc.wg.Add(1)
		go rc.startWorker()
	}
	zap.L().Info("Redis Cache Workers started", zap.Int("workers", workerNum), zap.Int("buffer", taskChanSize))
	return rc
}

// startWorker 启动单个 Worker 消费循环
func (r *RedisCache) startWorker() {
	defer r.wg.Done()
	for task := range r.taskChan {
		r.run(task)
	}
}

func (r *RedisCache) run(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("Redis Worker panic", zap.Any("recover", rec))
		}
	}()
	if task != nil {
		task()
	}
}

// Set 设置键值对并指定过期时间
func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set key %s", key)
	}
	return nil
}

// Get 获取键对应的值（键不存在返回空字符串和 nil）
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return value, nil
}

// Delete 删除键
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Unlink(ctx, keys...).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlink keys %v", keys)
	}
	return nil
}

// Incr 计数加一并刷新过期时间
func (r *RedisCache) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, errorx.Wrapf(err, errorx.CodeCacheError, "redis incr key %s", key)
	}
	return incr.Val(), nil
}

// SubmitTask 提交异步缓存任务，通道满时同步执行
func (r *RedisCache) SubmitTask(action func()) {
	select {
	case r.taskChan <- action:
	default:
		zap.L().Warn("Redis cache task channel full, executing synchronously")
		r.run(action)
	}
}

// Close 等待已提交的任务执行完毕后关闭连接
func (r *RedisCache) Close() error {
	var err error
	r.once.Do(func() {
		close(r.taskChan)
		r.wg.Wait()
		err = r.client.Close()
	})
	return err
}

// NopCache 不缓存任何内容，异步任务直接同步执行
type NopCache struct{}

func (NopCache) Set(context.Context, string, string, time.Duration) error   { return nil }
func (NopCache) Get(context.Context, string) (string, error)                { return "", nil }
func (NopCache) Delete(context.Context, ...string) error                    { return nil }
func (NopCache) Incr(context.Context, string, time.Duration) (int64, error) { return 0, nil }
func (NopCache) SubmitTask(action func())                                   { action() }
func (NopCache) Close() error                                               { return nil }

var (
	_ AsyncCacheService = (*RedisCache)(nil)
	_ AsyncCacheService = NopCache{}
)
