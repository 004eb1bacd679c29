package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/referral-checker/app/models"
	"go.uber.org/zap"
)

// HybridCacheService cache service kết hợp Redis (L1) + MongoDB (L2)
type HybridCacheService struct {
	redisCache *RedisCacheService // L1 cache - nhanh
	mongoCache *MongoCacheService // L2 cache - persistent
	logger     *zap.Logger
}

// NewHybridCacheService tạo mới hybrid cache service
func NewHybridCacheService(redisCache *RedisCacheService, mongoCache *MongoCacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{
		redisCache: redisCache,
		mongoCache: mongoCache,
		logger:     logger,
	}
}

// Get lấy kết quả từ cache (Redis trước, MongoDB sau)
func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.AnalysisResult, bool, error) {
	result, found, err := hcs.redisCache.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi Redis cache, fallback MongoDB", zap.Error(err))
	} else if found {
		return result, true, nil
	}

	result, found, err = hcs.mongoCache.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		hcs.logger.Debug("Cache miss (both Redis & MongoDB)", zap.String("key", key))
		return nil, false, nil
	}

	// Có trong MongoDB, đồng bộ lên Redis
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := hcs.redisCache.Set(bgCtx, key, result); err != nil {
			hcs.logger.Warn("Lỗi sync MongoDB->Redis", zap.Error(err), zap.String("key", key))
		}
	}()

	hcs.logger.Debug("L2 cache hit (MongoDB)", zap.String("key", key))
	return result, true, nil
}

// Set lưu kết quả vào cả Redis và MongoDB
func (hcs *HybridCacheService) Set(ctx context.Context, key string, result *models.AnalysisResult) error {
	err := hcs.both(
		func() error { return hcs.redisCache.Set(ctx, key, result) },
		func() error { return hcs.mongoCache.Set(ctx, key, result) },
	)
	if err != nil {
		return fmt.Errorf("cache errors: %w", err)
	}
	return nil
}

// Delete xóa key khỏi cả Redis và MongoDB
func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	err := hcs.both(
		func() error { return hcs.redisCache.Delete(ctx, key) },
		func() error { return hcs.mongoCache.Delete(ctx, key) },
	)
	if err != nil {
		return fmt.Errorf("delete errors: %w", err)
	}
	return nil
}

// Clear xóa toàn bộ cache (cả Redis và MongoDB)
func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	err := hcs.both(
		func() error { return hcs.redisCache.Clear(ctx) },
		func() error { return hcs.mongoCache.Clear(ctx) },
	)
	if err != nil {
		return fmt.Errorf("clear errors: %w", err)
	}

	hcs.logger.Info("Cleared hybrid cache (Redis + MongoDB)")
	return nil
}

// GetStats lấy thống kê cache (kết hợp từ cả 2)
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	redisStats, redisErr := hcs.redisCache.GetStats(ctx)
	mongoStats, mongoErr := hcs.mongoCache.GetStats(ctx)

	switch {
	case redisErr != nil && mongoErr != nil:
		return nil, fmt.Errorf("cả Redis và MongoDB đều lỗi: %w", errors.Join(redisErr, mongoErr))
	case redisErr != nil:
		return mongoStats, nil
	case mongoErr != nil:
		return redisStats, nil
	}

	// Miss ở Redis được MongoDB xử lý tiếp, nên miss thực sự là miss của MongoDB
	combined := &CacheStats{
		TotalHits:  redisStats.TotalHits + mongoStats.TotalHits,
		TotalMiss:  mongoStats.TotalMiss,
		TotalItems: mongoStats.TotalItems,
	}
	if total := combined.TotalHits + combined.TotalMiss; total > 0 {
		combined.HitRate = float64(combined.TotalHits) / float64(total)
	}

	return combined, nil
}

// Exists kiểm tra key có tồn tại không (Redis trước, MongoDB sau)
func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := hcs.redisCache.Exists(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi check Redis exists, fallback MongoDB", zap.Error(err))
	} else if exists {
		return true, nil
	}

	return hcs.mongoCache.Exists(ctx, key)
}

// GetTTL lấy TTL của key (từ Redis)
func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.redisCache.GetTTL(ctx, key)
}

// Close đóng kết nối cả 2 cache
func (hcs *HybridCacheService) Close() error {
	return hcs.both(hcs.redisCache.Close, hcs.mongoCache.Close)
}

// WarmUpFromMongoDB làm nóng L1 của MongoDB cache
func (hcs *HybridCacheService) WarmUpFromMongoDB(ctx context.Context, limit int) error {
	return hcs.mongoCache.WarmUp(ctx, limit)
}

// both chạy song song 2 thao tác và gộp lỗi
func (hcs *HybridCacheService) both(redisOp, mongoOp func() error) error {
	errCh := make(chan error, 2)

	go func() {
		err := redisOp()
		if err != nil {
			hcs.logger.Warn("Lỗi thao tác Redis", zap.Error(err))
		}
		errCh <- err
	}()

	go func() {
		err := mongoOp()
		if err != nil {
			hcs.logger.Warn("Lỗi thao tác MongoDB", zap.Error(err))
		}
		errCh <- err
	}()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
