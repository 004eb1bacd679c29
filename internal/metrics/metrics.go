package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Nguồn gọi phân tích
const (
	SourceSync = "sync"
	SourceJob  = "job"
	SourceCLI  = "cli"
)

var (
	// AnalysesTotal số lần phân tích theo nguồn
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_checker_analyses_total",
			Help: "Total number of analyses run",
		},
		[]string{"source"},
	)

	// ReferrersProcessed tổng số referrer đã xử lý
	ReferrersProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "referral_checker_referrers_processed_total",
			Help: "Total number of referrer addresses processed",
		},
	)

	// ReferrersMatched tổng số referrer khớp một mức thưởng
	ReferrersMatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "referral_checker_referrers_matched_total",
			Help: "Total number of referrer addresses matched to a reward tier",
		},
	)

	// DuplicateGroups số nhóm trùng theo loại
	DuplicateGroups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_checker_duplicate_groups_total",
			Help: "Total number of duplicate groups found",
		},
		[]string{"kind"},
	)

	// AnalysisLatency thời gian một lần phân tích
	AnalysisLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "referral_checker_analysis_latency_seconds",
			Help:    "Analysis latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// CacheRequests cache hit/miss
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_checker_cache_requests_total",
			Help: "Total number of result cache lookups",
		},
		[]string{"result"},
	)
)
