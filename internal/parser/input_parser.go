package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"github.com/referral-checker/internal/matcher"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const lineSeparators = ",; \t"

var reInviteLine = regexp.MustCompile(`^([^\s,;]+)[\s,;]*(.*)$`)
var reDigits = regexp.MustCompile(`\d+`)

// ParseStats thống kê số dòng khi parse
type ParseStats struct {
	Lines   int `json:"lines"`   // số dòng không rỗng
	Parsed  int `json:"parsed"`  // số dòng parse được
	Skipped int `json:"skipped"` // số dòng bị bỏ qua
}

// InputParser tách text invite / referrer thành dữ liệu cho matcher
type InputParser struct {
	foldUnicode bool
	logger      *zap.Logger
}

// NewInputParser tạo mới InputParser
func NewInputParser(foldUnicode bool, logger *zap.Logger) *InputParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InputParser{
		foldUnicode: foldUnicode,
		logger:      logger,
	}
}

// ParseInviteText parse mỗi dòng "<address><sep><amount>[UXUY]" thành RewardEntry.
// Amount là dãy chữ số đầu tiên sau address, mặc định 0 nếu không có.
// Dòng không có address hoặc amount tràn số bị bỏ qua, không trả lỗi.
func (ip *InputParser) ParseInviteText(text string) ([]matcher.RewardEntry, ParseStats) {
	entries := make([]matcher.RewardEntry, 0)
	var stats ParseStats

	for _, line := range ip.lines(text) {
		stats.Lines++

		line = strings.TrimLeft(line, lineSeparators)
		m := reInviteLine.FindStringSubmatch(line)
		if m == nil || m[1] == "" {
			stats.Skipped++
			continue
		}

		amount := 0
		if digits := reDigits.FindString(m[2]); digits != "" {
			v, err := strconv.Atoi(digits)
			if err != nil {
				ip.logger.Debug("Bỏ qua dòng invite có amount không hợp lệ",
					zap.String("line", line), zap.Error(err))
				stats.Skipped++
				continue
			}
			amount = v
		}

		entries = append(entries, matcher.RewardEntry{Address: m[1], Amount: amount})
		stats.Parsed++
	}

	return entries, stats
}

// ParseReferrerText mỗi dòng không rỗng là một địa chỉ referrer
func (ip *InputParser) ParseReferrerText(text string) ([]string, ParseStats) {
	referrers := make([]string, 0)
	var stats ParseStats

	for _, line := range ip.lines(text) {
		stats.Lines++
		stats.Parsed++
		referrers = append(referrers, line)
	}

	return referrers, stats
}

// lines tách text thành các dòng đã sanitize + trim, bỏ dòng rỗng
func (ip *InputParser) lines(text string) []string {
	out := make([]string, 0)
	for _, raw := range strings.Split(text, "\n") {
		line := raw
		if ip.foldUnicode {
			line = SanitizeLine(line)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// SanitizeLine chuẩn hóa NFKC (０ｘ -> 0x), bỏ ký tự định dạng vô hình (zero-width, BOM)
// và chuyển ký tự non-ASCII còn lại về ASCII (homoglyph Cyrillic а -> a).
func SanitizeLine(s string) string {
	t := transform.Chain(norm.NFKC, runes.Remove(runes.In(unicode.Cf)))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	if isASCII(out) {
		return out
	}
	return unidecode.Unidecode(out)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}
