package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"walletgate-backend/internal/config"
	wg_logger "walletgate-backend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// NewRedisConnection 创建Redis连接
func NewRedisConnection(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 连接探活
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		wg_logger.Error("NewRedisConnection Error: ", errors.New("failed to connect to redis"), "error: ", err)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	wg_logger.Info("NewRedisConnection: ", "host: ", cfg.Host, "port: ", cfg.Port, "db: ", cfg.DB)
	return client, nil
}
