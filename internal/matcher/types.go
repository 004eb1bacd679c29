package matcher

// UnmatchedAmount bucket dành cho địa chỉ không khớp invite nào
const UnmatchedAmount = 0

// CanonicalTiers các mức thưởng luôn có bucket, kể cả khi không có entry nào
var CanonicalTiers = []int{0, 10, 15, 20, 30, 50}

// DuplicateKind phân loại trùng lặp
type DuplicateKind string

const (
	DuplicateNone    DuplicateKind = ""
	DuplicateExact   DuplicateKind = "exact"
	DuplicatePattern DuplicateKind = "pattern"
)

// RewardEntry một dòng invite: địa chỉ + số thưởng
type RewardEntry struct {
	Address string `json:"address"`
	Amount  int    `json:"amount"`
}

// DuplicateGroup nhóm địa chỉ trùng theo giá trị chuẩn hóa hoặc theo fingerprint
type DuplicateGroup struct {
	Pattern string   `json:"pattern"` // chuỗi hiển thị
	Key     string   `json:"key"`     // normalized (exact) hoặc fingerprint (pattern)
	Members []string `json:"members"`
	Count   int      `json:"count"`
	IsExact bool     `json:"is_exact"`
}

// Kind trả về loại trùng lặp của nhóm
func (g DuplicateGroup) Kind() DuplicateKind {
	if g.IsExact {
		return DuplicateExact
	}
	return DuplicatePattern
}

// AmountBucket các địa chỉ referrer được xếp vào một mức thưởng
type AmountBucket struct {
	Amount     int      `json:"amount"`
	Addresses  []string `json:"addresses"`  // raw, theo thứ tự xuất hiện, không lặp raw
	Placements int      `json:"placements"` // số lần referrer rơi vào bucket, tính cả lặp
}

// TierSummary thống kê cho một mức thưởng khác 0
type TierSummary struct {
	Amount            int `json:"amount"`
	Placements        int `json:"placements"`
	UniqueAddresses   int `json:"unique_addresses"`
	FinalAddressCount int `json:"final_address_count"` // unique theo fingerprint, bỏ địa chỉ trùng
}

// Placement kết quả của một referrer, theo thứ tự input
type Placement struct {
	Address     string        `json:"address"`
	Normalized  string        `json:"normalized"`
	Fingerprint string        `json:"fingerprint,omitempty"`
	Valid       bool          `json:"valid"`
	Matched     bool          `json:"matched"`
	Amount      int           `json:"amount"`
	Duplicate   DuplicateKind `json:"duplicate,omitempty"`
}

// Report kết quả phân tích, tính lại toàn bộ mỗi lần gọi Analyze
type Report struct {
	TotalReferrers  int              `json:"total_referrers"`
	MatchCount      int              `json:"match_count"`
	MismatchCount   int              `json:"mismatch_count"`
	InvalidCount    int              `json:"invalid_count"`
	Buckets         []AmountBucket   `json:"buckets"`
	DuplicateGroups []DuplicateGroup `json:"duplicate_groups"`
	Tiers           []TierSummary    `json:"tiers"`
	Rows            []Placement      `json:"rows"`
}

// Bucket tìm bucket theo amount
func (r *Report) Bucket(amount int) (AmountBucket, bool) {
	for _, b := range r.Buckets {
		if b.Amount == amount {
			return b, true
		}
	}
	return AmountBucket{}, false
}

// Tier tìm thống kê theo amount
func (r *Report) Tier(amount int) (TierSummary, bool) {
	for _, t := range r.Tiers {
		if t.Amount == amount {
			return t, true
		}
	}
	return TierSummary{}, false
}

// DuplicateCount tổng số địa chỉ nằm trong các nhóm trùng
func (r *Report) DuplicateCount() int {
	total := 0
	for _, g := range r.DuplicateGroups {
		total += g.Count
	}
	return total
}
