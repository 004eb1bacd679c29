package normalizer

import (
	"strings"
)

// Mode chế độ chuẩn hóa địa chỉ
type Mode int

const (
	// ModePermissive chỉ chuẩn hóa khoảng trắng, chữ hoa/thường và tiền tố 0x
	ModePermissive Mode = iota
	// ModeStrict loại bỏ thêm mọi ký tự không phải hex trong phần thân địa chỉ
	ModeStrict
)

const (
	hexPrefix        = "0x"
	fullHexBodyLen   = 40
	maskSeparator    = "******"
	DefaultPrefixLen = 5
	DefaultSuffixLen = 4
)

// Options cấu hình AddressNormalizer
type Options struct {
	Mode      Mode
	PrefixLen int // số ký tự đầu giữ lại trong fingerprint (tính cả 0x)
	SuffixLen int // số ký tự cuối giữ lại trong fingerprint
}

// DefaultOptions trả về cấu hình mặc định: permissive, 5 + 4
func DefaultOptions() Options {
	return Options{
		Mode:      ModePermissive,
		PrefixLen: DefaultPrefixLen,
		SuffixLen: DefaultSuffixLen,
	}
}

// AddressNormalizer chuẩn hóa địa chỉ ví và sinh fingerprint để so khớp địa chỉ bị che
type AddressNormalizer struct {
	mode      Mode
	prefixLen int
	suffixLen int
}

// NewAddressNormalizer tạo mới AddressNormalizer
func NewAddressNormalizer(opts Options) *AddressNormalizer {
	if opts.PrefixLen <= 0 {
		opts.PrefixLen = DefaultPrefixLen
	}
	if opts.SuffixLen <= 0 {
		opts.SuffixLen = DefaultSuffixLen
	}
	return &AddressNormalizer{
		mode:      opts.Mode,
		prefixLen: opts.PrefixLen,
		suffixLen: opts.SuffixLen,
	}
}

var defaultNormalizer = NewAddressNormalizer(DefaultOptions())

// Normalize chuẩn hóa địa chỉ với cấu hình mặc định
func Normalize(raw string) string { return defaultNormalizer.Normalize(raw) }

// Fingerprint sinh fingerprint với cấu hình mặc định
func Fingerprint(raw string) (string, bool) { return defaultNormalizer.Fingerprint(raw) }

// Mask che phần giữa địa chỉ với cấu hình mặc định
func Mask(raw string) string { return defaultNormalizer.Mask(raw) }

// Matches so khớp hai địa chỉ theo fingerprint với cấu hình mặc định
func Matches(a, b string) bool { return defaultNormalizer.Matches(a, b) }

// MinLength độ dài tối thiểu (tính theo rune) để địa chỉ có fingerprint
func (an *AddressNormalizer) MinLength() int {
	return an.prefixLen + an.suffixLen
}

// Normalize trim, lowercase và thêm 0x cho địa chỉ hex đầy đủ 40 ký tự.
// Ký tự che (*, &) ở giữa được giữ nguyên trừ khi ở ModeStrict.
func (an *AddressNormalizer) Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return s
	}

	if an.mode == ModeStrict {
		s = stripNonHex(s)
	}

	if strings.HasPrefix(s, hexPrefix) {
		return s
	}
	if len(s) == fullHexBodyLen && isHex(s) {
		return hexPrefix + s
	}
	return s
}

// Fingerprint trả về firstK + lastJ của địa chỉ đã chuẩn hóa.
// ok = false khi địa chỉ quá ngắn để so khớp.
func (an *AddressNormalizer) Fingerprint(raw string) (string, bool) {
	runes := []rune(an.Normalize(raw))
	if len(runes) < an.MinLength() {
		return "", false
	}
	return string(runes[:an.prefixLen]) + string(runes[len(runes)-an.suffixLen:]), true
}

// Mask hiển thị địa chỉ dạng first5 + "******" + last4, độ dài phần che cố định.
// Địa chỉ quá ngắn được trả về ở dạng chuẩn hóa.
func (an *AddressNormalizer) Mask(raw string) string {
	normalized := an.Normalize(raw)
	runes := []rune(normalized)
	if len(runes) < an.MinLength() {
		return normalized
	}
	return string(runes[:an.prefixLen]) + maskSeparator + string(runes[len(runes)-an.suffixLen:])
}

// MaskFingerprint che một fingerprint đã tính sẵn
func (an *AddressNormalizer) MaskFingerprint(fp string) string {
	runes := []rune(fp)
	if len(runes) != an.MinLength() {
		return fp
	}
	return string(runes[:an.prefixLen]) + maskSeparator + string(runes[an.prefixLen:])
}

// Matches true khi cả hai địa chỉ hợp lệ và có cùng fingerprint
func (an *AddressNormalizer) Matches(a, b string) bool {
	fa, okA := an.Fingerprint(a)
	fb, okB := an.Fingerprint(b)
	return okA && okB && fa == fb
}

// stripNonHex giữ tiền tố 0x (nếu có) và loại bỏ ký tự không phải hex trong phần thân
func stripNonHex(s string) string {
	prefix := ""
	body := s
	if strings.HasPrefix(s, hexPrefix) {
		prefix = hexPrefix
		body = s[len(hexPrefix):]
	}
	body = strings.Map(func(r rune) rune {
		if isHexRune(r) {
			return r
		}
		return -1
	}, body)
	return prefix + body
}

func isHex(s string) bool {
	for _, r := range s {
		if !isHexRune(r) {
			return false
		}
	}
	return true
}

func isHexRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}
