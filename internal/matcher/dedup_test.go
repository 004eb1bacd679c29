package matcher

import (
	"reflect"
	"testing"
)

func TestFindDuplicates_CaseDifferentExact(t *testing.T) {
	referrers := []string{
		"0xAAAA1111BBBB2222CCCC3333DDDD4444EEEE5555",
		"0xaaaa1111bbbb2222cccc3333dddd4444eeee5555",
	}
	groups := FindDuplicates(referrers)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d: %+v", len(groups), groups)
	}
	g := groups[0]
	if !g.IsExact || g.Count != 2 {
		t.Errorf("expected exact group with count 2, got %+v", g)
	}
	if !reflect.DeepEqual(g.Members, []string{referrers[0]}) {
		t.Errorf("exact group members = %v", g.Members)
	}

	report := Analyze(nil, referrers)
	if report.TotalReferrers != 2 {
		t.Errorf("TotalReferrers = %d, expected 2", report.TotalReferrers)
	}
}

func TestFindDuplicates_Pattern(t *testing.T) {
	referrers := []string{"0x11Eabc393F", "0x11Exyz393F"}
	groups := FindDuplicates(referrers)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if g.IsExact {
		t.Errorf("expected pattern group")
	}
	if g.Count != 2 || !reflect.DeepEqual(g.Members, referrers) {
		t.Errorf("pattern group = %+v", g)
	}
	if g.Pattern != "0x11e******393f" {
		t.Errorf("pattern display = %q", g.Pattern)
	}
	if g.Key != "0x11e393f" {
		t.Errorf("pattern key = %q", g.Key)
	}
}

func TestFindDuplicates_ExactPrecedence(t *testing.T) {
	a := "0x11Eabc393F"
	b := "0x11Exyz393F"
	groups := FindDuplicates([]string{a, b, a})

	if len(groups) != 1 {
		t.Fatalf("expected only the exact group, got %+v", groups)
	}
	if !groups[0].IsExact || groups[0].Count != 2 {
		t.Errorf("expected exact group with count 2, got %+v", groups[0])
	}
	for _, g := range groups {
		if !g.IsExact {
			for _, m := range g.Members {
				if m == a {
					t.Errorf("exact duplicate %q also appears in a pattern group", a)
				}
			}
		}
	}
}

func TestFindDuplicates_PatternCountsUniqueMembers(t *testing.T) {
	groups := FindDuplicates([]string{
		"0x11Eabc393F",
		"0x11Exyz393F",
		"0x11Eqqq393F",
	})
	if len(groups) != 1 || groups[0].Count != 3 || len(groups[0].Members) != 3 {
		t.Errorf("unexpected groups: %+v", groups)
	}
}

func TestFindDuplicates_Ordering(t *testing.T) {
	referrers := []string{
		"0x22Eabc393F", // pattern P1 (lần đầu)
		"0xBBBBBBBBBB", // exact Y
		"0x33Eabc393F", // pattern P2
		"0xAAAAAAAAAA", // exact X
		"0x22Exyz393F", // P1
		"0xbbbbbbbbbb", // Y
		"0x33Exyz393F", // P2
		"0xaaaaaaaaaa", // X
	}
	groups := FindDuplicates(referrers)

	var keys []string
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	expected := []string{"0xbbbbbbbbbb", "0xaaaaaaaaaa", "0x22e393f", "0x33e393f"}
	if !reflect.DeepEqual(keys, expected) {
		t.Errorf("group order = %v, expected %v", keys, expected)
	}
}

func TestFindDuplicates_IgnoresShortAddresses(t *testing.T) {
	groups := FindDuplicates([]string{"0xab", "0xab", "abc", "abc"})
	if len(groups) != 0 {
		t.Errorf("short addresses must never be duplicates, got %+v", groups)
	}
}

func TestFindDuplicates_NoDuplicates(t *testing.T) {
	groups := FindDuplicates([]string{inviteTen, inviteTwenty})
	if groups == nil || len(groups) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", groups)
	}
}

func TestFindDuplicates_Symmetric(t *testing.T) {
	a, b := "0x11E00000000000000000000000000000000393F", "0x11E******393F"
	ab := FindDuplicates([]string{a, b})
	ba := FindDuplicates([]string{b, a})
	if len(ab) != len(ba) {
		t.Errorf("duplicate detection not symmetric: %d vs %d groups", len(ab), len(ba))
	}
}
