package controllers

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/referral-checker/app/config"
	"github.com/referral-checker/app/models"
	"github.com/referral-checker/app/requests"
	"github.com/referral-checker/app/responses"
	"github.com/referral-checker/app/services"
	"github.com/referral-checker/helpers/utils"
	"go.uber.org/zap"
)

// AnalysisController controller xử lý các request phân tích referral
type AnalysisController struct {
	analysisService *services.AnalysisService
	exportService   *services.ExportService
	cacheService    services.ICacheService
	logger          *zap.Logger
}

// NewAnalysisController tạo mới AnalysisController
func NewAnalysisController(analysisService *services.AnalysisService, exportService *services.ExportService, cacheService services.ICacheService, logger *zap.Logger) *AnalysisController {
	return &AnalysisController{
		analysisService: analysisService,
		exportService:   exportService,
		cacheService:    cacheService,
		logger:          logger,
	}
}

// Analyze phân tích đồng bộ, trả về report JSON
func (ac *AnalysisController) Analyze(c *gin.Context) {
	var req requests.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("INVALID_REQUEST", "Request không hợp lệ: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.RequestTimeout())
	defer cancel()

	result, cacheHit, err := ac.analysisService.Analyze(ctx, req)
	if err != nil {
		ac.abortWithAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.AnalyzeResponse{
		Result:   result,
		CacheHit: cacheHit,
	})
}

// Export phân tích rồi trả file csv|xlsx|text
func (ac *AnalysisController) Export(c *gin.Context) {
	format := c.DefaultQuery("format", services.FormatCSV)
	contentType, err := services.ContentType(format)
	if err != nil || format == services.FormatJSON {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("INVALID_REQUEST", "Định dạng không hỗ trợ: "+format))
		return
	}

	var req requests.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("INVALID_REQUEST", "Request không hợp lệ: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.RequestTimeout())
	defer cancel()

	result, _, err := ac.analysisService.Analyze(ctx, req)
	if err != nil {
		ac.abortWithAnalysisError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := ac.exportService.Write(&buf, result, format); err != nil {
		ac.logger.Error("Lỗi export", zap.Error(err), zap.String("format", format))
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("EXPORT_ERROR", "Lỗi export: "+err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportFilename(format)+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// CreateJob tạo job phân tích chạy nền
func (ac *AnalysisController) CreateJob(c *gin.Context) {
	var req requests.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("INVALID_REQUEST", "Request không hợp lệ: "+err.Error()))
		return
	}

	job, err := ac.analysisService.CreateJob(req)
	if err != nil {
		ac.abortWithAnalysisError(c, err)
		return
	}

	// Khởi chạy job trong background, không gắn với context của request
	go ac.analysisService.ProcessJob(context.Background(), job.JobID, req)

	c.JSON(http.StatusAccepted, responses.CreateJobResponse{
		JobID:          job.JobID,
		TotalReferrers: job.TotalReferrers,
		Message:        "Job đã được tạo và đang xử lý",
	})
}

// GetJobStatus lấy trạng thái job
func (ac *AnalysisController) GetJobStatus(c *gin.Context) {
	jobID := c.Param("jobID")
	if !utils.IsValidUUID(jobID) {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("JOB_NOT_FOUND", "Job ID không hợp lệ"))
		return
	}

	status, err := ac.analysisService.GetJobStatus(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("JOB_NOT_FOUND", "Không tìm thấy job: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.JobStatusResponse{
		JobID:     status.JobID,
		Status:    status.Status,
		Message:   status.Message,
		CreatedAt: status.CreatedAt,
		UpdatedAt: status.UpdatedAt,
	})
}

// GetJobResults lấy kết quả job, hỗ trợ NDJSON + gzip streaming
func (ac *AnalysisController) GetJobResults(c *gin.Context) {
	jobID := c.Param("jobID")
	if !utils.IsValidUUID(jobID) {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("JOB_NOT_FOUND", "Job ID không hợp lệ"))
		return
	}

	result, err := ac.analysisService.GetJobResult(jobID)
	switch {
	case errors.Is(err, services.ErrJobNotReady):
		c.JSON(http.StatusConflict, responses.NewErrorResponse("JOB_NOT_READY", err.Error()))
		return
	case err != nil:
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("JOB_NOT_FOUND", "Không tìm thấy job: "+err.Error()))
		return
	}

	if c.Query("format") == "ndjson" {
		ac.streamNDJSONRows(c, result, c.Query("gzip") == "1")
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "Lấy kết quả thành công",
		Data:      result,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// HealthCheck kiểm tra sức khỏe service
func (ac *AnalysisController) HealthCheck(c *gin.Context) {
	uptime := time.Since(ac.analysisService.GetStartTime())

	cacheStatus := "healthy"
	if ac.cacheService != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if _, err := ac.cacheService.GetStats(ctx); err != nil {
			ac.logger.Warn("Cache không phản hồi", zap.Error(err))
			cacheStatus = "unhealthy"
		}
	}

	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    uptime.String(),
		Version:   "1.0.0",
		Services: map[string]string{
			"analysis": "healthy",
			"cache":    cacheStatus,
		},
	})
}

// abortWithAnalysisError map lỗi service sang ErrorResponse
func (ac *AnalysisController) abortWithAnalysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTooManyLines):
		c.JSON(http.StatusRequestEntityTooLarge, responses.NewErrorResponse("TOO_MANY_LINES", err.Error()))
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, responses.NewErrorResponse("ANALYSIS_ERROR", "Hết thời gian xử lý, hãy dùng job"))
	default:
		ac.logger.Error("Lỗi phân tích", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("ANALYSIS_ERROR", "Lỗi phân tích: "+err.Error()))
	}
}

// streamNDJSONRows stream từng dòng report theo format NDJSON
func (ac *AnalysisController) streamNDJSONRows(c *gin.Context, result *models.AnalysisResult, gzipEnabled bool) {
	c.Header("Content-Type", "application/x-ndjson")

	var writer gin.ResponseWriter = c.Writer
	if gzipEnabled {
		c.Header("Content-Encoding", "gzip")
		gzWriter := gzip.NewWriter(c.Writer)
		defer gzWriter.Close()
		writer = &gzipResponseWriter{
			ResponseWriter: c.Writer,
			gzWriter:       gzWriter,
		}
	}
	c.Status(http.StatusOK)

	encoder := json.NewEncoder(writer)
	for _, row := range ac.exportService.Rows(result) {
		if err := encoder.Encode(row); err != nil {
			ac.logger.Error("Lỗi encode NDJSON", zap.Error(err))
			return
		}
		writer.Flush()
	}
}

func exportFilename(format string) string {
	ext := format
	if format == services.FormatText {
		ext = "txt"
	}
	return "referral-report." + ext
}

// gzipResponseWriter wrapper cho gzip writer
type gzipResponseWriter struct {
	gin.ResponseWriter
	gzWriter *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzWriter.Write(data)
}

func (w *gzipResponseWriter) Flush() {
	w.gzWriter.Flush()
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
