package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/referral-checker/app/models"
	"go.uber.org/zap"
)

const redisKeyPrefix = "referral_checker:"

// RedisCacheService cache service sử dụng Redis
type RedisCacheService struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCacheService tạo mới Redis cache service
func NewRedisCacheService(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("lỗi parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("không thể kết nối Redis: %w", err)
	}

	return NewRedisCacheServiceWithClient(client, ttl, logger), nil
}

// NewRedisCacheServiceWithClient dùng client có sẵn
func NewRedisCacheServiceWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCacheService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCacheService{
		client: client,
		logger: logger,
		prefix: redisKeyPrefix,
		ttl:    ttl,
	}
}

// Get lấy kết quả phân tích từ cache
func (rcs *RedisCacheService) Get(ctx context.Context, key string) (*models.AnalysisResult, bool, error) {
	cacheKey := rcs.prefix + key

	val, err := rcs.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		rcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		rcs.logger.Error("Lỗi get từ Redis", zap.Error(err), zap.String("key", cacheKey))
		return nil, false, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(val, &result); err != nil {
		rcs.logger.Error("Lỗi unmarshal cache data", zap.Error(err))
		return nil, false, err
	}

	rcs.hits.Add(1)
	rcs.logger.Debug("Redis cache hit", zap.String("key", key))
	return &result, true, nil
}

// Set lưu kết quả phân tích vào cache
func (rcs *RedisCacheService) Set(ctx context.Context, key string, result *models.AnalysisResult) error {
	cacheKey := rcs.prefix + key

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("lỗi marshal cache data: %w", err)
	}

	if err := rcs.client.Set(ctx, cacheKey, data, rcs.ttl).Err(); err != nil {
		rcs.logger.Error("Lỗi set vào Redis", zap.Error(err), zap.String("key", cacheKey))
		return err
	}

	rcs.logger.Debug("Đã lưu vào Redis cache", zap.String("key", key))
	return nil
}

// Delete xóa key khỏi cache
func (rcs *RedisCacheService) Delete(ctx context.Context, key string) error {
	cacheKey := rcs.prefix + key

	if err := rcs.client.Del(ctx, cacheKey).Err(); err != nil {
		rcs.logger.Error("Lỗi delete từ Redis", zap.Error(err), zap.String("key", cacheKey))
		return err
	}

	return nil
}

// Clear xóa toàn bộ cache có prefix của service
func (rcs *RedisCacheService) Clear(ctx context.Context) error {
	keys, err := rcs.keys(ctx)
	if err != nil {
		return fmt.Errorf("lỗi lấy danh sách keys: %w", err)
	}

	if len(keys) > 0 {
		if err := rcs.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("lỗi xóa keys: %w", err)
		}
	}

	rcs.hits.Store(0)
	rcs.misses.Store(0)

	rcs.logger.Info("Đã clear Redis cache", zap.Int("keys_deleted", len(keys)))
	return nil
}

// GetStats lấy thống kê cache
func (rcs *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits := rcs.hits.Load()
	misses := rcs.misses.Load()

	hitRate := float64(0)
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	totalItems := int64(0)
	if keys, err := rcs.keys(ctx); err == nil {
		totalItems = int64(len(keys))
	} else {
		rcs.logger.Warn("Không thể đếm keys Redis", zap.Error(err))
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: totalItems,
	}, nil
}

// Exists kiểm tra key có tồn tại không
func (rcs *RedisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := rcs.client.Exists(ctx, rcs.prefix+key).Result()
	if err != nil {
		return false, err
	}

	return exists > 0, nil
}

// GetTTL lấy TTL của key
func (rcs *RedisCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return rcs.client.TTL(ctx, rcs.prefix+key).Result()
}

// Close đóng kết nối Redis
func (rcs *RedisCacheService) Close() error {
	return rcs.client.Close()
}

// keys duyệt keys bằng SCAN thay vì KEYS để không block Redis
func (rcs *RedisCacheService) keys(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := rcs.client.Scan(ctx, cursor, rcs.prefix+"*", 500).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}
