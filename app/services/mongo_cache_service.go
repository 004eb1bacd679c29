package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/referral-checker/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const analysisCacheCollection = "analysis_cache"

// l1Entry giữ created_at của document để L1 không trả kết quả quá TTL
type l1Entry struct {
	result    *models.AnalysisResult
	createdAt time.Time
}

// MongoCacheService persistent cache service sử dụng MongoDB + LRU in-memory
type MongoCacheService struct {
	collection *mongo.Collection
	l1Cache    *lru.Cache[string, l1Entry] // LRU in-memory cache
	ttl        time.Duration
	logger     *zap.Logger

	// Metrics
	l1Hits    atomic.Int64
	l1Miss    atomic.Int64
	mongoHits atomic.Int64
	mongoMiss atomic.Int64
}

// NewMongoCacheService tạo mới MongoCacheService
func NewMongoCacheService(db *mongo.Database, l1Size int, ttl time.Duration, logger *zap.Logger) (*MongoCacheService, error) {
	l1Cache, err := lru.New[string, l1Entry](l1Size)
	if err != nil {
		return nil, fmt.Errorf("không thể tạo LRU cache: %w", err)
	}

	collection := db.Collection(analysisCacheCollection)

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "input_hash", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{bson.E{Key: "created_at", Value: 1}},
		},
		{
			Keys: bson.D{bson.E{Key: "access_count", Value: -1}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("Không thể tạo indexes cho analysis_cache", zap.Error(err))
	}

	return &MongoCacheService{
		collection: collection,
		l1Cache:    l1Cache,
		ttl:        ttl,
		logger:     logger,
	}, nil
}

// Get lấy kết quả từ cache (L1 → MongoDB)
func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.AnalysisResult, bool, error) {
	if result, found := mcs.l1Get(key); found {
		mcs.l1Hits.Add(1)
		mcs.logger.Debug("L1 cache hit", zap.String("key", key))
		return result, true, nil
	}
	mcs.l1Miss.Add(1)

	var entry models.AnalysisCache
	err := mcs.collection.FindOne(ctx, bson.M{"input_hash": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		mcs.mongoMiss.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lỗi query MongoDB cache: %w", err)
	}

	if mcs.ttl > 0 && entry.IsExpired(mcs.ttl) {
		mcs.mongoMiss.Add(1)
		if err := mcs.Delete(ctx, key); err != nil {
			mcs.logger.Warn("Không thể xóa cache hết hạn", zap.Error(err), zap.String("key", key))
		}
		return nil, false, nil
	}

	mcs.mongoHits.Add(1)
	entry.UpdateAccess()
	go mcs.updateAccessStats(entry)

	mcs.l1Cache.Add(key, l1Entry{result: &entry.Result, createdAt: entry.CreatedAt})

	mcs.logger.Debug("MongoDB cache hit",
		zap.String("key", key),
		zap.Int("access_count", entry.AccessCount))

	return &entry.Result, true, nil
}

// Set lưu kết quả vào cache (L1 + MongoDB)
func (mcs *MongoCacheService) Set(ctx context.Context, key string, result *models.AnalysisResult) error {
	entry := models.NewAnalysisCache(key, *result)
	mcs.l1Cache.Add(key, l1Entry{result: result, createdAt: entry.CreatedAt})

	opts := options.Replace().SetUpsert(true)
	if _, err := mcs.collection.ReplaceOne(ctx, bson.M{"input_hash": key}, entry, opts); err != nil {
		mcs.logger.Error("Lỗi lưu vào MongoDB cache", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("lỗi lưu vào MongoDB cache: %w", err)
	}

	mcs.logger.Debug("Đã lưu vào cache",
		zap.String("key", key),
		zap.Int("referrers", entry.Referrers),
		zap.Int("matches", entry.Matches))

	return nil
}

// Delete xóa kết quả khỏi cache
func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1Cache.Remove(key)

	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"input_hash": key}); err != nil {
		return fmt.Errorf("lỗi xóa khỏi MongoDB cache: %w", err)
	}

	return nil
}

// Clear xóa tất cả cache
func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1Cache.Purge()

	if _, err := mcs.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("lỗi clear MongoDB cache: %w", err)
	}

	mcs.l1Hits.Store(0)
	mcs.l1Miss.Store(0)
	mcs.mongoHits.Store(0)
	mcs.mongoMiss.Store(0)

	return nil
}

// GetStats lấy thống kê cache
func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	mongoCount, err := mcs.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("lỗi đếm documents trong MongoDB cache: %w", err)
	}

	// Miss ở L1 mà hit ở Mongo vẫn tính là hit
	totalHits := mcs.l1Hits.Load() + mcs.mongoHits.Load()
	totalMiss := mcs.mongoMiss.Load()

	hitRate := float64(0)
	if total := totalHits + totalMiss; total > 0 {
		hitRate = float64(totalHits) / float64(total)
	}

	mcs.logger.Debug("Cache stats",
		zap.Float64("hit_rate", hitRate),
		zap.Int("l1_size", mcs.l1Cache.Len()),
		zap.Int64("mongo_count", mongoCount))

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  totalHits,
		TotalMiss:  totalMiss,
		TotalItems: mongoCount,
	}, nil
}

// Exists kiểm tra key có tồn tại không
func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if _, found := mcs.l1Get(key); found {
		return true, nil
	}

	count, err := mcs.collection.CountDocuments(ctx, bson.M{"input_hash": key})
	if err != nil {
		return false, fmt.Errorf("lỗi check exists trong MongoDB: %w", err)
	}

	return count > 0, nil
}

// GetTTL lấy TTL còn lại của key, tính từ created_at
func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	if mcs.ttl <= 0 {
		return 0, nil
	}

	var entry models.AnalysisCache
	err := mcs.collection.FindOne(ctx, bson.M{"input_hash": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	remaining := mcs.ttl - time.Since(entry.CreatedAt)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// Close đóng kết nối. MongoDB client được quản lý bởi caller.
func (mcs *MongoCacheService) Close() error {
	return nil
}

// l1Get đọc L1, entry quá TTL bị xóa và tính là miss
func (mcs *MongoCacheService) l1Get(key string) (*models.AnalysisResult, bool) {
	entry, found := mcs.l1Cache.Get(key)
	if !found {
		return nil, false
	}
	if mcs.ttl > 0 && time.Since(entry.createdAt) > mcs.ttl {
		mcs.l1Cache.Remove(key)
		return nil, false
	}
	return entry.result, true
}

// updateAccessStats cập nhật thống kê truy cập (async)
func (mcs *MongoCacheService) updateAccessStats(entry models.AnalysisCache) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"last_accessed": entry.LastAccessed},
		"$inc": bson.M{"access_count": 1},
	}

	if _, err := mcs.collection.UpdateOne(ctx, bson.M{"_id": entry.ID}, update); err != nil {
		mcs.logger.Warn("Lỗi update access stats", zap.Error(err))
	}
}

// PurgeExpired xóa các document tạo trước now - ttl, trả về số document bị xóa
func (mcs *MongoCacheService) PurgeExpired(ctx context.Context) (int64, error) {
	if mcs.ttl <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-mcs.ttl)
	result, err := mcs.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("lỗi xóa cache hết hạn: %w", err)
	}

	if result.DeletedCount > 0 {
		// L1 có thể còn giữ bản đã bị xóa
		mcs.l1Cache.Purge()
	}

	mcs.logger.Info("Đã xóa cache hết hạn",
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted_count", result.DeletedCount))

	return result.DeletedCount, nil
}

// WarmUp làm nóng L1 từ các kết quả được truy cập nhiều nhất
func (mcs *MongoCacheService) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := mcs.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("lỗi warm up cache: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var entry models.AnalysisCache
		if err := cursor.Decode(&entry); err != nil {
			mcs.logger.Warn("Lỗi decode cache entry trong warm up", zap.Error(err))
			continue
		}
		if mcs.ttl > 0 && entry.IsExpired(mcs.ttl) {
			continue
		}

		result := entry.Result
		mcs.l1Cache.Add(entry.InputHash, l1Entry{result: &result, createdAt: entry.CreatedAt})
		count++
	}

	mcs.logger.Info("Cache warm up hoàn thành",
		zap.Int("loaded_items", count),
		zap.Int("l1_size", mcs.l1Cache.Len()))

	return cursor.Err()
}
