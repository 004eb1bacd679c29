package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnalysisCache document lưu kết quả phân tích trong MongoDB
type AnalysisCache struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	InputHash    string             `bson:"input_hash" json:"input_hash"`       // Khóa cache
	Result       AnalysisResult     `bson:"result" json:"result"`               // Kết quả phân tích
	Referrers    int                `bson:"referrers" json:"referrers"`         // Tổng số referrer
	Matches      int                `bson:"matches" json:"matches"`             // Số referrer khớp
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`       // Thời gian tạo
	LastAccessed time.Time          `bson:"last_accessed" json:"last_accessed"` // Lần truy cập cuối
	AccessCount  int                `bson:"access_count" json:"access_count"`   // Số lần truy cập
}

// NewAnalysisCache tạo mới một AnalysisCache
func NewAnalysisCache(key string, result AnalysisResult) *AnalysisCache {
	now := time.Now()
	entry := &AnalysisCache{
		InputHash:    key,
		Result:       result,
		CreatedAt:    now,
		LastAccessed: now,
		AccessCount:  1,
	}
	if result.Report != nil {
		entry.Referrers = result.Report.TotalReferrers
		entry.Matches = result.Report.MatchCount
	}
	return entry
}

// UpdateAccess cập nhật thông tin truy cập
func (ac *AnalysisCache) UpdateAccess() {
	ac.LastAccessed = time.Now()
	ac.AccessCount++
}

// IsExpired kiểm tra cache có hết hạn không (dựa trên thời gian tạo)
func (ac *AnalysisCache) IsExpired(ttl time.Duration) bool {
	return time.Since(ac.CreatedAt) > ttl
}
