package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/referral-checker/app/models"
)

// CacheService service quản lý cache in-memory
type CacheService struct {
	cache      map[string]*models.AnalysisResult
	timestamps map[string]time.Time
	mu         sync.RWMutex
	ttl        time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCacheService tạo mới CacheService
func NewCacheService(ttl time.Duration) *CacheService {
	return &CacheService{
		cache:      make(map[string]*models.AnalysisResult),
		timestamps: make(map[string]time.Time),
		ttl:        ttl,
	}
}

// Get lấy kết quả từ cache
func (cs *CacheService) Get(ctx context.Context, key string) (*models.AnalysisResult, bool, error) {
	cs.mu.RLock()
	result, exists := cs.cache[key]
	expired := exists && cs.isExpired(key)
	cs.mu.RUnlock()

	if !exists || expired {
		if expired {
			// Xóa item hết hạn
			go cs.deleteExpired(key)
		}
		cs.misses.Add(1)
		return nil, false, nil
	}

	cs.hits.Add(1)
	return result, true, nil
}

// Set lưu kết quả vào cache
func (cs *CacheService) Set(ctx context.Context, key string, result *models.AnalysisResult) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.timestamps[key] = time.Now()
	cs.cache[key] = result

	return nil
}

// Delete xóa item khỏi cache
func (cs *CacheService) Delete(ctx context.Context, key string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.cache, key)
	delete(cs.timestamps, key)

	return nil
}

// Clear xóa toàn bộ cache
func (cs *CacheService) Clear(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache = make(map[string]*models.AnalysisResult)
	cs.timestamps = make(map[string]time.Time)
	cs.hits.Store(0)
	cs.misses.Store(0)

	return nil
}

// Size lấy kích thước cache
func (cs *CacheService) Size() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return len(cs.cache)
}

// GetStats lấy thống kê cache
func (cs *CacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits := cs.hits.Load()
	misses := cs.misses.Load()

	hitRate := float64(0)
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: int64(cs.Size()),
	}, nil
}

// CleanupExpired xóa các item hết hạn
func (cs *CacheService) CleanupExpired() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key := range cs.cache {
		if cs.isExpired(key) {
			delete(cs.cache, key)
			delete(cs.timestamps, key)
		}
	}
}

// isExpired kiểm tra item có hết hạn không, caller giữ lock
func (cs *CacheService) isExpired(key string) bool {
	timestamp, exists := cs.timestamps[key]
	if !exists {
		return true
	}
	return time.Since(timestamp) > cs.ttl
}

// deleteExpired xóa item hết hạn (async)
func (cs *CacheService) deleteExpired(key string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.isExpired(key) {
		delete(cs.cache, key)
		delete(cs.timestamps, key)
	}
}

// Exists kiểm tra key có tồn tại không
func (cs *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	_, exists := cs.cache[key]
	return exists && !cs.isExpired(key), nil
}

// GetTTL lấy TTL còn lại của key
func (cs *CacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	timestamp, exists := cs.timestamps[key]
	if !exists {
		return 0, nil
	}

	remaining := cs.ttl - time.Since(timestamp)
	if remaining < 0 {
		return 0, nil
	}

	return remaining, nil
}

// StartCleanupWorker khởi động worker dọn dẹp cache, dừng khi ctx bị hủy
func (cs *CacheService) StartCleanupWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.CleanupExpired()
			}
		}
	}()
}

// Close đóng kết nối (không cần thiết cho in-memory cache)
func (cs *CacheService) Close() error {
	return nil
}
