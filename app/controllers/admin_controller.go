package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/referral-checker/app/responses"
	"github.com/referral-checker/app/services"
	"go.uber.org/zap"
)

// AdminController controller xử lý các request admin
type AdminController struct {
	analysisService *services.AnalysisService
	cacheService    services.ICacheService
	cacheBackend    string
	logger          *zap.Logger
}

// NewAdminController tạo mới AdminController
func NewAdminController(analysisService *services.AnalysisService, cacheService services.ICacheService, cacheBackend string, logger *zap.Logger) *AdminController {
	return &AdminController{
		analysisService: analysisService,
		cacheService:    cacheService,
		cacheBackend:    cacheBackend,
		logger:          logger,
	}
}

// GetCacheStats lấy thống kê cache kết quả
func (ac *AdminController) GetCacheStats(c *gin.Context) {
	stats, err := ac.cacheService.GetStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("Lỗi lấy cache stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("CACHE_ERROR", "Lỗi lấy thống kê cache: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.CacheStatsResponse{
		Backend:    ac.cacheBackend,
		HitRate:    stats.HitRate,
		TotalHits:  stats.TotalHits,
		TotalMiss:  stats.TotalMiss,
		TotalItems: stats.TotalItems,
	})
}

// ClearCache xóa toàn bộ cache kết quả
func (ac *AdminController) ClearCache(c *gin.Context) {
	if err := ac.cacheService.Clear(c.Request.Context()); err != nil {
		ac.logger.Error("Lỗi clear cache", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("CACHE_ERROR", "Lỗi xóa cache: "+err.Error()))
		return
	}

	ac.logger.Info("Đã clear cache", zap.String("backend", ac.cacheBackend))
	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "Đã xóa cache",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// CleanupJobs dọn các job đã hết hạn
func (ac *AdminController) CleanupJobs(c *gin.Context) {
	removed := ac.analysisService.CleanupJobs()

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "Đã dọn job hết hạn",
		Data:      gin.H{"removed": removed},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// GetConfig trả về cấu hình engine đang dùng
func (ac *AdminController) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, ac.analysisService.Config())
}
