package config

import (
	"errors"
	"os"
	"time"

	"github.com/referral-checker/internal/matcher"
	"github.com/referral-checker/internal/normalizer"
	"gopkg.in/yaml.v3"
)

type FingerprintCfg struct {
	PrefixLen int `yaml:"prefix_len" json:"prefix_len"`
	SuffixLen int `yaml:"suffix_len" json:"suffix_len"`
}

type SuggestionCfg struct {
	Enabled     bool `yaml:"enabled" json:"enabled"`
	MaxDistance int  `yaml:"max_distance" json:"max_distance"`
}

type LimitsCfg struct {
	MaxLines int `yaml:"max_lines" json:"max_lines"`
}

type JobsCfg struct {
	TTL time.Duration `yaml:"ttl" json:"ttl"`
}

type CheckerCfg struct {
	Fingerprint     FingerprintCfg `yaml:"fingerprint" json:"fingerprint"`
	StrictNormalize bool           `yaml:"strict_normalize" json:"strict_normalize"`
	FoldUnicode     bool           `yaml:"fold_unicode" json:"fold_unicode"`
	Tiers           []int          `yaml:"tiers" json:"tiers"`
	TokenLabel      string         `yaml:"token_label" json:"token_label"`
	Suggestions     SuggestionCfg  `yaml:"suggestions" json:"suggestions"`
	Limits          LimitsCfg      `yaml:"limits" json:"limits"`
	Jobs            JobsCfg        `yaml:"jobs" json:"jobs"`
}

var C = Default()

// Default cấu hình mặc định khi không có file
func Default() CheckerCfg {
	return CheckerCfg{
		Fingerprint: FingerprintCfg{
			PrefixLen: normalizer.DefaultPrefixLen,
			SuffixLen: normalizer.DefaultSuffixLen,
		},
		FoldUnicode: false,
		Tiers:       append([]int(nil), matcher.CanonicalTiers...),
		TokenLabel:  "UXUY",
		Suggestions: SuggestionCfg{Enabled: true, MaxDistance: 1},
		Limits:      LimitsCfg{MaxLines: 20000},
		Jobs:        JobsCfg{TTL: time.Hour},
	}
}

// Load đọc file YAML đè lên cấu hình mặc định. File không tồn tại thì giữ mặc định.
func Load(path string) error {
	cfg := Default()

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return err
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return err
		}
	}

	// ENV overrides
	switch os.Getenv("STRICT_NORMALIZE") {
	case "0":
		cfg.StrictNormalize = false
	case "1":
		cfg.StrictNormalize = true
	}

	C = cfg
	return nil
}

// EngineOptions chuyển cấu hình sang matcher.Options
func (c CheckerCfg) EngineOptions() matcher.Options {
	mode := normalizer.ModePermissive
	if c.StrictNormalize {
		mode = normalizer.ModeStrict
	}
	return matcher.Options{
		Normalizer: normalizer.Options{
			Mode:      mode,
			PrefixLen: c.Fingerprint.PrefixLen,
			SuffixLen: c.Fingerprint.SuffixLen,
		},
		Tiers: c.Tiers,
	}
}

func RequestTimeout() time.Duration { return 1500 * time.Millisecond }
