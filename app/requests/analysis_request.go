package requests

// AnalyzeRequest request phân tích invite/referrer
type AnalyzeRequest struct {
	InviteText   string         `json:"invite_text"`   // Mỗi dòng: <address> <amount>[UXUY]
	ReferrerText string         `json:"referrer_text"` // Mỗi dòng một địa chỉ
	Options      AnalyzeOptions `json:"options,omitempty"`
}

// AnalyzeOptions tùy chọn phân tích
type AnalyzeOptions struct {
	UseCache        bool  `json:"use_cache,omitempty"`        // Có sử dụng cache không
	Suggestions     *bool `json:"suggestions,omitempty"`      // Gợi ý gõ nhầm, mặc định theo config
	StrictNormalize *bool `json:"strict_normalize,omitempty"` // Ghi đè chế độ chuẩn hóa
}
