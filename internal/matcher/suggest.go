package matcher

import (
	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

const (
	jaroWinklerBoost  = 0.7
	jaroWinklerPrefix = 4
)

// NearMiss gợi ý entry gần nhất cho referrer không khớp (thường là gõ nhầm 1 ký tự).
// Gợi ý không ảnh hưởng tới bất kỳ số đếm nào của Report.
type NearMiss struct {
	Referrer   string  `json:"referrer"`
	Candidate  string  `json:"candidate"`
	Amount     int     `json:"amount"`
	Distance   int     `json:"distance"`
	Similarity float64 `json:"similarity"`
}

type suggestCandidate struct {
	address     string
	normalized  string
	fingerprint string
	amount      int
}

// SuggestNearMisses tìm entry có fingerprint cách fingerprint của referrer tối đa
// maxDistance (Levenshtein). Hòa thì chọn Jaro-Winkler cao hơn, rồi entry đứng trước.
func (e *Engine) SuggestNearMisses(entries []RewardEntry, report *Report, maxDistance int) []NearMiss {
	if report == nil || maxDistance <= 0 {
		return nil
	}

	candidates := make([]suggestCandidate, 0, len(entries))
	known := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		fp, ok := e.normalizer.Fingerprint(entry.Address)
		if !ok {
			continue
		}
		if _, dup := known[fp]; dup {
			continue
		}
		known[fp] = struct{}{}
		candidates = append(candidates, suggestCandidate{
			address:     entry.Address,
			normalized:  e.normalizer.Normalize(entry.Address),
			fingerprint: fp,
			amount:      entry.Amount,
		})
	}

	suggestions := make([]NearMiss, 0)
	done := make(map[string]struct{})
	for _, row := range report.Rows {
		if !row.Valid || row.Matched {
			continue
		}
		if _, hit := known[row.Fingerprint]; hit {
			continue
		}
		if _, seen := done[row.Address]; seen {
			continue
		}
		done[row.Address] = struct{}{}

		best := -1
		bestDist := maxDistance + 1
		bestSim := -1.0
		for i, c := range candidates {
			dist := levenshtein.ComputeDistance(row.Fingerprint, c.fingerprint)
			if dist > maxDistance || dist > bestDist {
				continue
			}
			sim := smetrics.JaroWinkler(row.Normalized, c.normalized, jaroWinklerBoost, jaroWinklerPrefix)
			if dist < bestDist || sim > bestSim {
				best, bestDist, bestSim = i, dist, sim
			}
		}
		if best < 0 {
			continue
		}

		suggestions = append(suggestions, NearMiss{
			Referrer:   row.Address,
			Candidate:  candidates[best].address,
			Amount:     candidates[best].amount,
			Distance:   bestDist,
			Similarity: bestSim,
		})
	}

	return suggestions
}
