package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/referral-checker/app/config"
	"github.com/referral-checker/app/models"
	"github.com/referral-checker/app/requests"
	"github.com/referral-checker/app/services"
	"github.com/referral-checker/internal/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type analyzeFlags struct {
	invite    string
	referrers string
	format    string
	out       string
	strict    bool
	noSuggest bool
}

var analyzeOpts analyzeFlags

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Đối chiếu file referrer với file invite",
	RunE:  runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeOpts.invite, "invite", "", "invite file, mỗi dòng <address> <amount>[UXUY]")
	f.StringVar(&analyzeOpts.referrers, "referrers", "", "referrer file, mỗi dòng một địa chỉ")
	f.StringVar(&analyzeOpts.format, "format", services.FormatText, "text|json|csv|xlsx")
	f.StringVar(&analyzeOpts.out, "out", "", "output file (mặc định stdout)")
	f.BoolVar(&analyzeOpts.strict, "strict", false, "bỏ ký tự không phải hex trước khi so khớp")
	f.BoolVar(&analyzeOpts.noSuggest, "no-suggest", false, "tắt gợi ý gõ nhầm")
	_ = analyzeCmd.MarkFlagRequired("invite")
	_ = analyzeCmd.MarkFlagRequired("referrers")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	if _, err := services.ContentType(analyzeOpts.format); err != nil {
		return err
	}

	inviteText, err := os.ReadFile(analyzeOpts.invite)
	if err != nil {
		return fmt.Errorf("đọc invite file: %w", err)
	}
	referrerText, err := os.ReadFile(analyzeOpts.referrers)
	if err != nil {
		return fmt.Errorf("đọc referrer file: %w", err)
	}

	req := requests.AnalyzeRequest{
		InviteText:   string(inviteText),
		ReferrerText: string(referrerText),
	}
	if cmd.Flags().Changed("strict") {
		req.Options.StrictNormalize = &analyzeOpts.strict
	}
	if analyzeOpts.noSuggest {
		off := false
		req.Options.Suggestions = &off
	}

	svc := services.NewAnalysisService(config.C, nil, logger)
	result, _, err := svc.AnalyzeFrom(context.Background(), req, metrics.SourceCLI)
	if err != nil {
		return err
	}

	export := services.NewExportService(config.C, logger)
	if analyzeOpts.out == "" {
		err = writeResult(cmd.OutOrStdout(), result, analyzeOpts.format, export)
	} else {
		var file *os.File
		file, err = os.Create(analyzeOpts.out)
		if err != nil {
			return fmt.Errorf("tạo output file: %w", err)
		}
		err = writeAndClose(file, result, analyzeOpts.format, export)
	}
	if err != nil {
		return err
	}

	logger.Debug("CLI analysis written",
		zap.String("format", analyzeOpts.format),
		zap.String("out", analyzeOpts.out),
		zap.Int("referrers", result.Report.TotalReferrers))
	return nil
}

// writeAndClose ghi kết quả rồi đóng wc, lỗi Close được trả về nếu ghi thành công
func writeAndClose(wc io.WriteCloser, result *models.AnalysisResult, format string, export *services.ExportService) (err error) {
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("đóng output file: %w", cerr)
		}
	}()
	return writeResult(wc, result, format, export)
}

func writeResult(w io.Writer, result *models.AnalysisResult, format string, export *services.ExportService) error {
	if format == services.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return export.Write(w, result, format)
}
