package models

import (
	"time"

	"github.com/referral-checker/internal/matcher"
	"github.com/referral-checker/internal/parser"
)

// AnalysisResult kết quả một lần phân tích invite/referrer
type AnalysisResult struct {
	InputHash    string             `json:"input_hash" bson:"input_hash"`         // sha256 của input + options
	Report       *matcher.Report    `json:"report" bson:"report"`                 // Kết quả engine
	NearMisses   []matcher.NearMiss `json:"near_misses" bson:"near_misses"`       // Gợi ý gõ nhầm
	InviteStats  parser.ParseStats  `json:"invite_stats" bson:"invite_stats"`     // Thống kê dòng invite
	ReferStats   parser.ParseStats  `json:"referrer_stats" bson:"referrer_stats"` // Thống kê dòng referrer
	TokenLabel   string             `json:"token_label" bson:"token_label"`
	StrictMode   bool               `json:"strict_mode" bson:"strict_mode"`
	ProcessingMs int64              `json:"processing_time_ms" bson:"processing_time_ms"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// Row status cho export
const (
	RowStatusMatched   = "matched"
	RowStatusUnmatched = "unmatched"
	RowStatusInvalid   = "invalid"
)

// ExportRow một dòng phẳng cho CSV/XLSX
type ExportRow struct {
	Address   string `json:"address"`
	Masked    string `json:"masked"`
	Value     int    `json:"value"`
	Token     string `json:"token"`
	Status    string `json:"status"`
	Duplicate string `json:"duplicate"`
}

// RowStatus trạng thái của một placement
func RowStatus(p matcher.Placement) string {
	switch {
	case !p.Valid:
		return RowStatusInvalid
	case p.Matched:
		return RowStatusMatched
	default:
		return RowStatusUnmatched
	}
}
