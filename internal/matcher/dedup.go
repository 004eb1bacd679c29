package matcher

type keyedAddress struct {
	raw         string
	normalized  string
	fingerprint string
}

// FindDuplicates nhóm địa chỉ trùng lặp.
//
// Bước A gom theo giá trị chuẩn hóa: giá trị xuất hiện >= 2 lần thành nhóm exact,
// Count là số lần lặp thật. Bước B gom phần còn lại theo fingerprint: fingerprint có
// >= 2 giá trị chuẩn hóa khác nhau thành nhóm pattern. Địa chỉ đã thuộc nhóm exact
// không bao giờ xuất hiện trong nhóm pattern. Địa chỉ không có fingerprint bị bỏ qua.
//
// Thứ tự: nhóm exact trước (theo lần đầu gặp giá trị chuẩn hóa), rồi nhóm pattern
// (theo lần đầu gặp fingerprint).
func (e *Engine) FindDuplicates(addresses []string) []DuplicateGroup {
	valid := e.keyAddresses(addresses)
	groups := make([]DuplicateGroup, 0)

	// Bước A: exact
	normCount := make(map[string]int, len(valid))
	normFirstRaw := make(map[string]string, len(valid))
	normOrder := make([]string, 0, len(valid))
	for _, a := range valid {
		if normCount[a.normalized] == 0 {
			normOrder = append(normOrder, a.normalized)
			normFirstRaw[a.normalized] = a.raw
		}
		normCount[a.normalized]++
	}

	for _, norm := range normOrder {
		if normCount[norm] < 2 {
			continue
		}
		groups = append(groups, DuplicateGroup{
			Pattern: norm,
			Key:     norm,
			Members: []string{normFirstRaw[norm]},
			Count:   normCount[norm],
			IsExact: true,
		})
	}

	// Bước B: pattern, chỉ trên các giá trị chuẩn hóa xuất hiện đúng 1 lần
	fpMembers := make(map[string][]string)
	fpOrder := make([]string, 0)
	for _, a := range valid {
		if normCount[a.normalized] > 1 {
			continue
		}
		if _, seen := fpMembers[a.fingerprint]; !seen {
			fpOrder = append(fpOrder, a.fingerprint)
		}
		fpMembers[a.fingerprint] = append(fpMembers[a.fingerprint], a.raw)
	}

	for _, fp := range fpOrder {
		members := fpMembers[fp]
		if len(members) < 2 {
			continue
		}
		groups = append(groups, DuplicateGroup{
			Pattern: e.normalizer.MaskFingerprint(fp),
			Key:     fp,
			Members: members,
			Count:   len(members),
			IsExact: false,
		})
	}

	return groups
}

// keyAddresses chuẩn hóa + fingerprint một lần cho mỗi địa chỉ, bỏ địa chỉ quá ngắn
func (e *Engine) keyAddresses(addresses []string) []keyedAddress {
	out := make([]keyedAddress, 0, len(addresses))
	for _, raw := range addresses {
		fp, ok := e.normalizer.Fingerprint(raw)
		if !ok {
			continue
		}
		out = append(out, keyedAddress{
			raw:         raw,
			normalized:  e.normalizer.Normalize(raw),
			fingerprint: fp,
		})
	}
	return out
}

// duplicateKinds map normalized -> loại trùng của các thành viên trong nhóm
func (e *Engine) duplicateKinds(groups []DuplicateGroup) map[string]DuplicateKind {
	kinds := make(map[string]DuplicateKind)
	for _, g := range groups {
		if g.IsExact {
			kinds[g.Key] = DuplicateExact
			continue
		}
		for _, m := range g.Members {
			kinds[e.normalizer.Normalize(m)] = DuplicatePattern
		}
	}
	return kinds
}
