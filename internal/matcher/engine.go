package matcher

import (
	"sort"

	"github.com/referral-checker/internal/normalizer"
)

// Options cấu hình Engine
type Options struct {
	Normalizer normalizer.Options
	Tiers      []int // các mức thưởng luôn có bucket; 0 luôn được thêm vào
}

// DefaultOptions cấu hình mặc định: normalizer permissive 5+4, CanonicalTiers
func DefaultOptions() Options {
	return Options{
		Normalizer: normalizer.DefaultOptions(),
		Tiers:      CanonicalTiers,
	}
}

// Engine so khớp referrer với danh sách invite và phát hiện trùng lặp.
// Engine không giữ state giữa các lần gọi, an toàn khi dùng đồng thời.
type Engine struct {
	normalizer *normalizer.AddressNormalizer
	tiers      []int
}

// New tạo mới Engine
func New(opts Options) *Engine {
	tiers := make([]int, 0, len(opts.Tiers)+1)
	seen := make(map[int]bool, len(opts.Tiers)+1)
	for _, t := range append([]int{UnmatchedAmount}, opts.Tiers...) {
		if t < 0 || seen[t] {
			continue
		}
		seen[t] = true
		tiers = append(tiers, t)
	}
	sort.Ints(tiers)

	return &Engine{
		normalizer: normalizer.NewAddressNormalizer(opts.Normalizer),
		tiers:      tiers,
	}
}

var defaultEngine = New(DefaultOptions())

// Analyze phân tích với cấu hình mặc định
func Analyze(entries []RewardEntry, referrers []string) *Report {
	return defaultEngine.Analyze(entries, referrers)
}

// FindDuplicates tìm trùng lặp với cấu hình mặc định
func FindDuplicates(addresses []string) []DuplicateGroup {
	return defaultEngine.FindDuplicates(addresses)
}

// Normalizer trả về normalizer đang dùng
func (e *Engine) Normalizer() *normalizer.AddressNormalizer {
	return e.normalizer
}

// Tiers trả về các mức thưởng cố định (đã sort, có 0)
func (e *Engine) Tiers() []int {
	out := make([]int, len(e.tiers))
	copy(out, e.tiers)
	return out
}
