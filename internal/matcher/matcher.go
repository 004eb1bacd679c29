package matcher

import (
	"sort"
)

// Analyze so khớp referrers với entries theo fingerprint và xếp vào bucket theo amount.
//
// Entry đầu tiên (theo thứ tự input) có cùng fingerprint quyết định amount. Referrer
// không khớp hoặc không có fingerprint rơi vào bucket 0. Một raw address không được
// thêm hai lần vào cùng bucket, nhưng Placements vẫn đếm mọi lần xuất hiện nên
// MatchCount + MismatchCount == TotalReferrers.
func (e *Engine) Analyze(entries []RewardEntry, referrers []string) *Report {
	buckets, bucketPos := e.buildBuckets(entries)
	index := e.buildIndex(entries)

	groups := e.FindDuplicates(referrers)
	dupKinds := e.duplicateKinds(groups)

	report := &Report{
		TotalReferrers:  len(referrers),
		DuplicateGroups: groups,
		Rows:            make([]Placement, 0, len(referrers)),
	}

	inBucket := make([]map[string]struct{}, len(buckets))
	for i := range inBucket {
		inBucket[i] = make(map[string]struct{})
	}

	for _, raw := range referrers {
		row := Placement{
			Address:    raw,
			Normalized: e.normalizer.Normalize(raw),
			Amount:     UnmatchedAmount,
		}

		if fp, ok := e.normalizer.Fingerprint(raw); ok {
			row.Valid = true
			row.Fingerprint = fp
			row.Duplicate = dupKinds[row.Normalized]
			if amount, hit := index[fp]; hit {
				row.Amount = amount
			}
		} else {
			report.InvalidCount++
		}
		row.Matched = row.Amount != UnmatchedAmount

		i := bucketPos[row.Amount]
		buckets[i].Placements++
		if _, exists := inBucket[i][raw]; !exists {
			inBucket[i][raw] = struct{}{}
			buckets[i].Addresses = append(buckets[i].Addresses, raw)
		}
		if row.Matched {
			report.MatchCount++
		}

		report.Rows = append(report.Rows, row)
	}

	report.MismatchCount = report.TotalReferrers - report.MatchCount
	report.Buckets = buckets
	report.Tiers = e.summarizeTiers(buckets, dupKinds)

	return report
}

// buildBuckets tạo bucket cho các mức cố định + mọi amount có trong entries, sort tăng dần
func (e *Engine) buildBuckets(entries []RewardEntry) ([]AmountBucket, map[int]int) {
	seen := make(map[int]bool, len(e.tiers))
	amounts := make([]int, 0, len(e.tiers))
	for _, t := range e.tiers {
		seen[t] = true
		amounts = append(amounts, t)
	}
	for _, entry := range entries {
		if !seen[entry.Amount] {
			seen[entry.Amount] = true
			amounts = append(amounts, entry.Amount)
		}
	}
	sort.Ints(amounts)

	buckets := make([]AmountBucket, len(amounts))
	pos := make(map[int]int, len(amounts))
	for i, amount := range amounts {
		buckets[i] = AmountBucket{Amount: amount, Addresses: make([]string, 0)}
		pos[amount] = i
	}
	return buckets, pos
}

// buildIndex fingerprint -> amount của entry đầu tiên có fingerprint đó
func (e *Engine) buildIndex(entries []RewardEntry) map[string]int {
	index := make(map[string]int, len(entries))
	for _, entry := range entries {
		fp, ok := e.normalizer.Fingerprint(entry.Address)
		if !ok {
			continue
		}
		if _, exists := index[fp]; !exists {
			index[fp] = entry.Amount
		}
	}
	return index
}

// summarizeTiers thống kê cho từng amount khác 0
func (e *Engine) summarizeTiers(buckets []AmountBucket, dupKinds map[string]DuplicateKind) []TierSummary {
	tiers := make([]TierSummary, 0, len(buckets))
	for _, b := range buckets {
		if b.Amount == UnmatchedAmount {
			continue
		}

		seenFp := make(map[string]struct{}, len(b.Addresses))
		final := 0
		for _, raw := range b.Addresses {
			if dupKinds[e.normalizer.Normalize(raw)] != DuplicateNone {
				continue
			}
			fp, ok := e.normalizer.Fingerprint(raw)
			if !ok {
				continue
			}
			if _, dup := seenFp[fp]; dup {
				continue
			}
			seenFp[fp] = struct{}{}
			final++
		}

		tiers = append(tiers, TierSummary{
			Amount:            b.Amount,
			Placements:        b.Placements,
			UniqueAddresses:   len(b.Addresses),
			FinalAddressCount: final,
		})
	}
	return tiers
}
