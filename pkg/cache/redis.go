// Package cache 提供 Redis 客户端封装。定价结果不做缓存，客户端仅供分布式限流共享。
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/optionsurface/pkg/config"
	"github.com/wyfcoding/optionsurface/pkg/logger"
)

// RedisClient Redis 连接
type RedisClient struct {
	client *redis.Client
	addr   string
}

// New 创建 Redis 连接并探活
func New(ctx context.Context, cfg config.RedisConfig) (*RedisClient, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.MaxPoolSize,
		DialTimeout:  time.Duration(cfg.ConnTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	// 测试连接
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info(ctx, "Redis connected successfully", "addr", addr)
	return &RedisClient{client: client, addr: addr}, nil
}

// Ping 健康检查
func (rc *RedisClient) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Close 关闭连接
func (rc *RedisClient) Close() error {
	return rc.client.Close()
}

// GetClient 获取底层客户端
func (rc *RedisClient) GetClient() *redis.Client {
	return rc.client
}
