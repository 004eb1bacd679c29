package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/referral-checker/internal/normalizer"
)

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	t.Setenv("STRICT_NORMALIZE", "")
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(C, Default()) {
		t.Errorf("expected defaults, got %+v", C)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checker.yaml")
	content := `
fingerprint:
  prefix_len: 6
  suffix_len: 5
strict_normalize: true
tiers: [0, 10, 100]
token_label: USDT
suggestions:
  enabled: false
limits:
  max_lines: 500
jobs:
  ttl: 10m
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("STRICT_NORMALIZE", "")
	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if C.Fingerprint.PrefixLen != 6 || C.Fingerprint.SuffixLen != 5 {
		t.Errorf("fingerprint = %+v", C.Fingerprint)
	}
	if !C.StrictNormalize || C.TokenLabel != "USDT" || C.Suggestions.Enabled {
		t.Errorf("unexpected config: %+v", C)
	}
	if C.FoldUnicode {
		t.Errorf("fold_unicode default should stay off for partial file")
	}
	if C.Limits.MaxLines != 500 || C.Jobs.TTL != 10*time.Minute {
		t.Errorf("limits/jobs = %+v / %+v", C.Limits, C.Jobs)
	}

	opts := C.EngineOptions()
	if opts.Normalizer.Mode != normalizer.ModeStrict || opts.Normalizer.PrefixLen != 6 {
		t.Errorf("engine options = %+v", opts)
	}
	if !reflect.DeepEqual(opts.Tiers, []int{0, 10, 100}) {
		t.Errorf("tiers = %v", opts.Tiers)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STRICT_NORMALIZE", "1")
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !C.StrictNormalize {
		t.Errorf("STRICT_NORMALIZE=1 should enable strict mode")
	}
}
