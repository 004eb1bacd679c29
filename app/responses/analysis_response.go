package responses

import (
	"time"

	"github.com/referral-checker/app/models"
)

// AnalyzeResponse response phân tích đồng bộ
type AnalyzeResponse struct {
	Result   *models.AnalysisResult `json:"result"`    // Kết quả phân tích
	CacheHit bool                   `json:"cache_hit"` // Có hit cache không
}

// CreateJobResponse response tạo job phân tích
type CreateJobResponse struct {
	JobID          string `json:"job_id"`          // ID của job
	TotalReferrers int    `json:"total_referrers"` // Số dòng referrer
	Message        string `json:"message"`         // Thông báo
}

// JobStatusResponse response trạng thái job
type JobStatusResponse struct {
	JobID     string    `json:"job_id"`     // ID của job
	Status    string    `json:"status"`     // pending | running | done | failed
	Message   string    `json:"message"`    // Thông báo
	CreatedAt time.Time `json:"created_at"` // Thời gian tạo
	UpdatedAt time.Time `json:"updated_at"` // Thời gian cập nhật
}

// CacheStatsResponse response thống kê cache
type CacheStatsResponse struct {
	Backend    string  `json:"backend"`
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ErrorResponse response lỗi
type ErrorResponse struct {
	Error     string      `json:"error"`                // Mã lỗi
	Message   string      `json:"message"`              // Thông báo lỗi
	Details   interface{} `json:"details,omitempty"`    // Chi tiết lỗi
	Timestamp string      `json:"timestamp"`            // Thời gian xảy ra lỗi
	RequestID string      `json:"request_id,omitempty"` // ID của request
}

// NewErrorResponse tạo ErrorResponse với timestamp hiện tại
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// SuccessResponse response thành công
type SuccessResponse struct {
	Success   bool        `json:"success"`        // Có thành công không
	Message   string      `json:"message"`        // Thông báo
	Data      interface{} `json:"data,omitempty"` // Dữ liệu
	Timestamp string      `json:"timestamp"`      // Thời gian
}

// HealthCheckResponse response kiểm tra sức khỏe
type HealthCheckResponse struct {
	Status    string            `json:"status"`    // Trạng thái sức khỏe
	Timestamp string            `json:"timestamp"` // Thời gian kiểm tra
	Uptime    string            `json:"uptime"`    // Thời gian hoạt động
	Version   string            `json:"version"`   // Phiên bản
	Services  map[string]string `json:"services"`  // Trạng thái các service
}
