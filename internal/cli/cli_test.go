package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/referral-checker/app/config"
	"github.com/referral-checker/app/models"
	"github.com/referral-checker/app/services"
	"github.com/referral-checker/internal/matcher"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	analyzeOpts = analyzeFlags{format: "text"}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.yaml")))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	invite := writeFile(t, dir, "invite.txt",
		"0x1111100000000000000000000000000000002222 10UXUY\n0x3333300000000000000000000000000000004444 20UXUY\n")
	referrers := writeFile(t, dir, "referrers.txt",
		"0x11111******2222\n0x33333******4444\n0x33333******4444\n0x99999******8888\n")

	t.Run("text", func(t *testing.T) {
		out, err := runCLI(t, "analyze", "--invite", invite, "--referrers", referrers)
		if err != nil {
			t.Fatalf("analyze: %v", err)
		}
		if !strings.Contains(out, "Referrers: 4 | matched: 3 | mismatched: 1") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		out, err := runCLI(t, "analyze", "--invite", invite, "--referrers", referrers, "--format", "json")
		if err != nil {
			t.Fatalf("analyze: %v", err)
		}
		var result models.AnalysisResult
		if err := json.Unmarshal([]byte(out), &result); err != nil {
			t.Fatalf("decode: %v\n%s", err, out)
		}
		if result.Report.MatchCount != 3 || len(result.Report.DuplicateGroups) != 1 {
			t.Errorf("report = %+v", result.Report)
		}
	})

	t.Run("csv to file", func(t *testing.T) {
		outPath := filepath.Join(dir, "report.csv")
		if _, err := runCLI(t, "analyze", "--invite", invite, "--referrers", referrers, "--format", "csv", "--out", outPath); err != nil {
			t.Fatalf("analyze: %v", err)
		}
		b, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if lines := strings.Count(string(b), "\n"); lines != 5 {
			t.Errorf("csv lines = %d, expected header + 4", lines)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		if _, err := runCLI(t, "analyze", "--invite", invite, "--referrers", referrers, "--format", "pdf"); err == nil {
			t.Errorf("expected error for unsupported format")
		}
	})
}

func TestDedupCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "addrs.txt",
		"0xAbCdE00000000000000000000000000000001234\n0xabcde00000000000000000000000000000001234\n0x55555aaa6666\n0x55555bbb6666\n")

	out, err := runCLI(t, "dedup", path)
	if err != nil {
		t.Fatalf("dedup: %v", err)
	}
	if !strings.Contains(out, "exact") || !strings.Contains(out, "pattern") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

type failingCloser struct {
	bytes.Buffer
	closeErr error
}

func (fc *failingCloser) Close() error { return fc.closeErr }

func TestWriteAndClose(t *testing.T) {
	result := &models.AnalysisResult{Report: &matcher.Report{}, TokenLabel: "UXUY"}
	export := services.NewExportService(config.Default(), nil)
	diskFull := errors.New("disk full")

	testCases := []struct {
		name     string
		closeErr error
		format   string
		wantErr  error
	}{
		{"Close_Ok", nil, services.FormatCSV, nil},
		{"Close_Fails", diskFull, services.FormatCSV, diskFull},
		{"Write_Error_Wins", diskFull, "pdf", services.ErrUnsupportedFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wc := &failingCloser{closeErr: tc.closeErr}
			err := writeAndClose(wc, result, tc.format, export)
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, expected %v", err, tc.wantErr)
			}
		})
	}
}
