package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/referral-checker/app/config"
	"github.com/referral-checker/app/models"
	"github.com/referral-checker/app/requests"
	"github.com/referral-checker/helpers/utils"
	"github.com/referral-checker/internal/matcher"
	"github.com/referral-checker/internal/metrics"
	"github.com/referral-checker/internal/parser"
	"go.uber.org/zap"
)

var (
	ErrTooManyLines = errors.New("vượt quá số dòng cho phép")
	ErrJobNotFound  = errors.New("job không tồn tại")
	ErrJobNotReady  = errors.New("job chưa hoàn thành")
)

// Trạng thái job
const (
	JobPending = "pending"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

// JobStatus trạng thái của job phân tích
type JobStatus struct {
	JobID          string
	Status         string
	TotalReferrers int
	Message        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (j *JobStatus) finished() bool {
	return j.Status == JobDone || j.Status == JobFailed
}

// AnalysisService service chạy phân tích invite/referrer
type AnalysisService struct {
	cfg       config.CheckerCfg
	parser    *parser.InputParser
	engine    *matcher.Engine // theo cfg.StrictNormalize
	alternate *matcher.Engine // chế độ còn lại, dùng khi request ghi đè
	cache     ICacheService
	logger    *zap.Logger
	startTime time.Time
	mu        sync.RWMutex

	// Job management
	jobs       map[string]*JobStatus
	jobResults map[string]*models.AnalysisResult
}

// NewAnalysisService tạo mới AnalysisService. cache có thể nil.
func NewAnalysisService(cfg config.CheckerCfg, cache ICacheService, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}

	alt := cfg
	alt.StrictNormalize = !cfg.StrictNormalize

	return &AnalysisService{
		cfg:        cfg,
		parser:     parser.NewInputParser(cfg.FoldUnicode, logger),
		engine:     matcher.New(cfg.EngineOptions()),
		alternate:  matcher.New(alt.EngineOptions()),
		cache:      cache,
		logger:     logger,
		startTime:  time.Now(),
		jobs:       make(map[string]*JobStatus),
		jobResults: make(map[string]*models.AnalysisResult),
	}
}

// Analyze phân tích đồng bộ. Trả về cờ cache hit.
func (as *AnalysisService) Analyze(ctx context.Context, req requests.AnalyzeRequest) (*models.AnalysisResult, bool, error) {
	return as.AnalyzeFrom(ctx, req, metrics.SourceSync)
}

// AnalyzeFrom giống Analyze, source dùng làm label metrics (sync|job|cli)
func (as *AnalysisService) AnalyzeFrom(ctx context.Context, req requests.AnalyzeRequest, source string) (*models.AnalysisResult, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	strict := as.cfg.StrictNormalize
	if req.Options.StrictNormalize != nil {
		strict = *req.Options.StrictNormalize
	}
	suggest := as.cfg.Suggestions.Enabled
	if req.Options.Suggestions != nil {
		suggest = *req.Options.Suggestions
	}

	key := as.InputHash(req.InviteText, req.ReferrerText, strict, suggest)

	if req.Options.UseCache && as.cache != nil {
		cached, found, err := as.cache.Get(ctx, key)
		switch {
		case err != nil:
			as.logger.Warn("Lỗi đọc cache, phân tích lại", zap.Error(err), zap.String("key", key))
		case found:
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			as.logger.Debug("Cache hit", zap.String("key", key))
			return cached, true, nil
		default:
			metrics.CacheRequests.WithLabelValues("miss").Inc()
		}
	}

	start := time.Now()

	entries, inviteStats := as.parser.ParseInviteText(req.InviteText)
	referrers, referStats := as.parser.ParseReferrerText(req.ReferrerText)

	if limit := as.cfg.Limits.MaxLines; limit > 0 && (inviteStats.Lines > limit || referStats.Lines > limit) {
		return nil, false, fmt.Errorf("%w: invite=%d, referrer=%d, tối đa %d",
			ErrTooManyLines, inviteStats.Lines, referStats.Lines, limit)
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	engine := as.engine
	if strict != as.cfg.StrictNormalize {
		engine = as.alternate
	}

	report := engine.Analyze(entries, referrers)

	var nearMisses []matcher.NearMiss
	if suggest {
		nearMisses = engine.SuggestNearMisses(entries, report, as.cfg.Suggestions.MaxDistance)
	}
	// Engine không nhận ctx, kiểm tra lại sau khi chạy xong
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	elapsed := time.Since(start)
	result := &models.AnalysisResult{
		InputHash:    key,
		Report:       report,
		NearMisses:   nearMisses,
		InviteStats:  inviteStats,
		ReferStats:   referStats,
		TokenLabel:   as.cfg.TokenLabel,
		StrictMode:   strict,
		ProcessingMs: elapsed.Milliseconds(),
		CreatedAt:    time.Now(),
	}

	as.observe(source, report, elapsed)

	as.logger.Info("Analysis completed",
		zap.String("source", source),
		zap.Int("entries", len(entries)),
		zap.Int("referrers", report.TotalReferrers),
		zap.Int("matched", report.MatchCount),
		zap.Int("mismatched", report.MismatchCount),
		zap.Int("duplicate_groups", len(report.DuplicateGroups)),
		zap.Duration("elapsed", elapsed))

	if req.Options.UseCache && as.cache != nil {
		if err := as.cache.Set(ctx, key, result); err != nil {
			as.logger.Warn("Không thể lưu cache", zap.Error(err), zap.String("key", key))
		}
	}

	return result, false, nil
}

// InputHash khóa cache: sha256 của 2 text và các tùy chọn ảnh hưởng tới kết quả
func (as *AnalysisService) InputHash(inviteText, referrerText string, strict, suggest bool) string {
	h := sha256.New()
	for _, part := range []string{
		inviteText,
		referrerText,
		strconv.FormatBool(strict),
		strconv.FormatBool(suggest),
		strconv.FormatBool(as.cfg.FoldUnicode),
		strconv.Itoa(as.cfg.Fingerprint.PrefixLen),
		strconv.Itoa(as.cfg.Fingerprint.SuffixLen),
		strconv.Itoa(as.cfg.Suggestions.MaxDistance),
		fmt.Sprint(as.engine.Tiers()),
		as.cfg.TokenLabel,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (as *AnalysisService) observe(source string, report *matcher.Report, elapsed time.Duration) {
	metrics.AnalysesTotal.WithLabelValues(source).Inc()
	metrics.AnalysisLatency.WithLabelValues(source).Observe(elapsed.Seconds())
	metrics.ReferrersProcessed.Add(float64(report.TotalReferrers))
	metrics.ReferrersMatched.Add(float64(report.MatchCount))
	for _, g := range report.DuplicateGroups {
		metrics.DuplicateGroups.WithLabelValues(string(g.Kind())).Inc()
	}
}

// CreateJob đăng ký job phân tích, trả về job id. Caller chạy ProcessJob (thường trong goroutine).
func (as *AnalysisService) CreateJob(req requests.AnalyzeRequest) (*JobStatus, error) {
	_, stats := as.parser.ParseReferrerText(req.ReferrerText)
	if limit := as.cfg.Limits.MaxLines; limit > 0 && stats.Lines > limit {
		return nil, fmt.Errorf("%w: referrer=%d, tối đa %d", ErrTooManyLines, stats.Lines, limit)
	}

	now := time.Now()
	job := &JobStatus{
		JobID:          utils.GenerateUUID(),
		Status:         JobPending,
		TotalReferrers: stats.Parsed,
		Message:        "Đang chờ xử lý",
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	as.mu.Lock()
	as.jobs[job.JobID] = job
	as.mu.Unlock()

	snapshot := *job
	return &snapshot, nil
}

// ProcessJob chạy job đã đăng ký
func (as *AnalysisService) ProcessJob(ctx context.Context, jobID string, req requests.AnalyzeRequest) {
	if !as.setJobStatus(jobID, JobRunning, "Đang xử lý...") {
		as.logger.Warn("ProcessJob với job không tồn tại", zap.String("job_id", jobID))
		return
	}

	result, _, err := as.AnalyzeFrom(ctx, req, metrics.SourceJob)
	if err != nil {
		as.setJobStatus(jobID, JobFailed, err.Error())
		as.logger.Error("Job thất bại", zap.String("job_id", jobID), zap.Error(err))
		return
	}

	as.mu.Lock()
	as.jobResults[jobID] = result
	as.mu.Unlock()
	as.setJobStatus(jobID, JobDone, "Hoàn thành xử lý")

	as.logger.Info("Job completed",
		zap.String("job_id", jobID),
		zap.Int("referrers", result.Report.TotalReferrers))
}

func (as *AnalysisService) setJobStatus(jobID, status, message string) bool {
	as.mu.Lock()
	defer as.mu.Unlock()

	job, exists := as.jobs[jobID]
	if !exists {
		return false
	}
	job.Status = status
	job.Message = message
	job.UpdatedAt = time.Now()
	return true
}

// GetJobStatus lấy trạng thái job
func (as *AnalysisService) GetJobStatus(jobID string) (*JobStatus, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	job, exists := as.jobs[jobID]
	if !exists {
		return nil, ErrJobNotFound
	}

	snapshot := *job
	return &snapshot, nil
}

// GetJobResult lấy kết quả job đã hoàn thành
func (as *AnalysisService) GetJobResult(jobID string) (*models.AnalysisResult, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	job, exists := as.jobs[jobID]
	if !exists {
		return nil, ErrJobNotFound
	}
	if job.Status != JobDone {
		return nil, fmt.Errorf("%w: %s", ErrJobNotReady, job.Status)
	}

	return as.jobResults[jobID], nil
}

// CleanupJobs xóa các job đã kết thúc quá jobs.ttl, trả về số job bị xóa
func (as *AnalysisService) CleanupJobs() int {
	ttl := as.cfg.Jobs.TTL
	if ttl <= 0 {
		return 0
	}

	as.mu.Lock()
	defer as.mu.Unlock()

	removed := 0
	for id, job := range as.jobs {
		if job.finished() && time.Since(job.UpdatedAt) > ttl {
			delete(as.jobs, id)
			delete(as.jobResults, id)
			removed++
		}
	}
	return removed
}

// StartJobJanitor dọn job hết hạn định kỳ, dừng khi ctx bị hủy
func (as *AnalysisService) StartJobJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := as.CleanupJobs(); n > 0 {
					as.logger.Debug("Đã dọn job hết hạn", zap.Int("removed", n))
				}
			}
		}
	}()
}

// Config cấu hình engine đang dùng
func (as *AnalysisService) Config() config.CheckerCfg {
	return as.cfg
}

// GetStartTime lấy thời gian khởi động service
func (as *AnalysisService) GetStartTime() time.Time {
	return as.startTime
}
