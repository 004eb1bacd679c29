package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/referral-checker/app/config"
	"github.com/referral-checker/app/models"
	"github.com/referral-checker/internal/matcher"
	"github.com/referral-checker/internal/normalizer"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Định dạng export
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatText = "text"
	FormatJSON = "json"
)

const (
	sheetReport     = "Report"
	sheetDuplicates = "Duplicates"
)

var ErrUnsupportedFormat = errors.New("định dạng export không hỗ trợ")

var (
	reportHeader    = []string{"address", "masked", "value", "token", "status", "duplicate"}
	duplicateHeader = []string{"pattern", "kind", "count", "members"}
)

// ExportService chuyển kết quả phân tích sang CSV/XLSX/text
type ExportService struct {
	normalizer *normalizer.AddressNormalizer
	logger     *zap.Logger
}

// NewExportService tạo mới ExportService
func NewExportService(cfg config.CheckerCfg, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		normalizer: normalizer.NewAddressNormalizer(cfg.EngineOptions().Normalizer),
		logger:     logger,
	}
}

// ContentType content type theo định dạng
func ContentType(format string) (string, error) {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8", nil
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatText:
		return "text/plain; charset=utf-8", nil
	case FormatJSON:
		return "application/json; charset=utf-8", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Rows làm phẳng Report.Rows, mỗi referrer một dòng theo thứ tự input
func (es *ExportService) Rows(result *models.AnalysisResult) []models.ExportRow {
	if result == nil || result.Report == nil {
		return nil
	}

	rows := make([]models.ExportRow, 0, len(result.Report.Rows))
	for _, p := range result.Report.Rows {
		row := models.ExportRow{
			Address:   p.Address,
			Value:     p.Amount,
			Token:     result.TokenLabel,
			Status:    models.RowStatus(p),
			Duplicate: string(p.Duplicate),
		}
		if p.Valid {
			row.Masked = es.normalizer.MaskFingerprint(p.Fingerprint)
		}
		rows = append(rows, row)
	}
	return rows
}

// Write ghi kết quả theo định dạng (csv|xlsx|text)
func (es *ExportService) Write(w io.Writer, result *models.AnalysisResult, format string) error {
	switch format {
	case FormatCSV:
		return es.WriteCSV(w, result)
	case FormatXLSX:
		return es.WriteXLSX(w, result)
	case FormatText:
		_, err := io.WriteString(w, es.Summary(result))
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteCSV ghi bảng report dạng CSV
func (es *ExportService) WriteCSV(w io.Writer, result *models.AnalysisResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return fmt.Errorf("lỗi ghi CSV header: %w", err)
	}
	for _, row := range es.Rows(result) {
		if err := cw.Write(rowRecord(row)); err != nil {
			return fmt.Errorf("lỗi ghi CSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX ghi workbook 2 sheet: Report và Duplicates
func (es *ExportService) WriteXLSX(w io.Writer, result *models.AnalysisResult) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			es.logger.Warn("Lỗi đóng workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetReport); err != nil {
		return fmt.Errorf("lỗi tạo sheet %s: %w", sheetReport, err)
	}

	reportRows := [][]interface{}{toCells(reportHeader)}
	for _, row := range es.Rows(result) {
		reportRows = append(reportRows, []interface{}{
			row.Address, row.Masked, row.Value, row.Token, row.Status, row.Duplicate,
		})
	}
	if err := writeSheet(f, sheetReport, reportRows); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetDuplicates); err != nil {
		return fmt.Errorf("lỗi tạo sheet %s: %w", sheetDuplicates, err)
	}

	dupRows := [][]interface{}{toCells(duplicateHeader)}
	if result != nil && result.Report != nil {
		for _, g := range result.Report.DuplicateGroups {
			dupRows = append(dupRows, []interface{}{
				g.Pattern, string(g.Kind()), g.Count, strings.Join(g.Members, "\n"),
			})
		}
	}
	if err := writeSheet(f, sheetDuplicates, dupRows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("lỗi ghi XLSX: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("lỗi ghi sheet %s dòng %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toCells(header []string) []interface{} {
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	return cells
}

func rowRecord(row models.ExportRow) []string {
	return []string{
		row.Address,
		row.Masked,
		strconv.Itoa(row.Value),
		row.Token,
		row.Status,
		row.Duplicate,
	}
}

// Summary văn bản tóm tắt để copy: địa chỉ đã che theo từng mức, nhóm trùng, tổng
func (es *ExportService) Summary(result *models.AnalysisResult) string {
	if result == nil || result.Report == nil {
		return ""
	}
	report := result.Report
	token := result.TokenLabel

	var sb strings.Builder
	fmt.Fprintf(&sb, "Referrers: %d | matched: %d | mismatched: %d | invalid: %d\n",
		report.TotalReferrers, report.MatchCount, report.MismatchCount, report.InvalidCount)

	for _, bucket := range report.Buckets {
		if len(bucket.Addresses) == 0 {
			continue
		}
		sb.WriteString("\n")
		if bucket.Amount == matcher.UnmatchedAmount {
			fmt.Fprintf(&sb, "[unmatched] %d\n", bucket.Placements)
		} else {
			line := fmt.Sprintf("[%d %s] %d", bucket.Amount, token, bucket.Placements)
			if tier, ok := report.Tier(bucket.Amount); ok {
				line += fmt.Sprintf(" (final %d)", tier.FinalAddressCount)
			}
			sb.WriteString(line + "\n")
		}
		for _, addr := range bucket.Addresses {
			sb.WriteString("  " + es.displayAddress(addr) + "\n")
		}
	}

	if len(report.DuplicateGroups) > 0 {
		sb.WriteString("\nDuplicates:\n")
		for _, g := range report.DuplicateGroups {
			fmt.Fprintf(&sb, "  %s x%d (%s)\n", g.Pattern, g.Count, g.Kind())
		}
	}

	if len(result.NearMisses) > 0 {
		sb.WriteString("\nPossible typos:\n")
		for _, nm := range result.NearMisses {
			fmt.Fprintf(&sb, "  %s -> %s (%d %s)\n",
				es.displayAddress(nm.Referrer), es.displayAddress(nm.Candidate), nm.Amount, token)
		}
	}

	return sb.String()
}

// displayAddress che địa chỉ hợp lệ, giữ nguyên địa chỉ quá ngắn
func (es *ExportService) displayAddress(raw string) string {
	if fp, ok := es.normalizer.Fingerprint(raw); ok {
		return es.normalizer.MaskFingerprint(fp)
	}
	return strings.TrimSpace(raw)
}
