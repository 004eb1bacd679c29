package parser

import (
	"reflect"
	"testing"

	"github.com/referral-checker/internal/matcher"
)

func TestParseInviteText(t *testing.T) {
	p := NewInputParser(true, nil)

	testCases := []struct {
		name     string
		input    string
		expected []matcher.RewardEntry
	}{
		{
			name:     "Space_Separated",
			input:    "0x11E00000000000000000000000000000000393F 10",
			expected: []matcher.RewardEntry{{Address: "0x11E00000000000000000000000000000000393F", Amount: 10}},
		},
		{
			name:     "Token_Suffix_No_Space",
			input:    "0xabc1234567 10UXUY",
			expected: []matcher.RewardEntry{{Address: "0xabc1234567", Amount: 10}},
		},
		{
			name:     "Token_Suffix_With_Space",
			input:    "0xabc1234567\t20 UXUY",
			expected: []matcher.RewardEntry{{Address: "0xabc1234567", Amount: 20}},
		},
		{
			name:     "Comma_Separated",
			input:    "0xabc1234567,30",
			expected: []matcher.RewardEntry{{Address: "0xabc1234567", Amount: 30}},
		},
		{
			name:     "Missing_Amount_Defaults_Zero",
			input:    "0xabc1234567",
			expected: []matcher.RewardEntry{{Address: "0xabc1234567", Amount: 0}},
		},
		{
			name:     "Non_Numeric_Amount_Defaults_Zero",
			input:    "0xabc1234567 UXUY",
			expected: []matcher.RewardEntry{{Address: "0xabc1234567", Amount: 0}},
		},
		{
			name:  "Blank_Lines_And_CRLF",
			input: "\r\n0xaaa1234567 10\r\n\r\n   \n0xbbb1234567 50UXUY\r\n",
			expected: []matcher.RewardEntry{
				{Address: "0xaaa1234567", Amount: 10},
				{Address: "0xbbb1234567", Amount: 50},
			},
		},
		{
			name:     "Empty_Text",
			input:    "",
			expected: []matcher.RewardEntry{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := p.ParseInviteText(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("ParseInviteText(%q) = %+v, expected %+v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestParseInviteText_SkipsOverflow(t *testing.T) {
	p := NewInputParser(false, nil)
	entries, stats := p.ParseInviteText("0xabc1234567 99999999999999999999999999\n0xdef1234567 15")

	if len(entries) != 1 || entries[0].Amount != 15 {
		t.Errorf("unexpected entries: %+v", entries)
	}
	if stats.Lines != 2 || stats.Parsed != 1 || stats.Skipped != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestParseReferrerText(t *testing.T) {
	p := NewInputParser(true, nil)
	got, stats := p.ParseReferrerText("  0x11E******393F \n\n0xAAA\r\n")

	expected := []string{"0x11E******393F", "0xAAA"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("ParseReferrerText = %v, expected %v", got, expected)
	}
	if stats.Lines != 2 {
		t.Errorf("stats.Lines = %d, expected 2", stats.Lines)
	}

	empty, _ := p.ParseReferrerText("")
	if len(empty) != 0 {
		t.Errorf("expected no referrers for empty text, got %v", empty)
	}
}

func TestSanitizeLine(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Ascii_Untouched", "0x11E******393F", "0x11E******393F"},
		{"Full_Width", "０ｘ１１Ｅ", "0x11E"},
		{"Zero_Width_Space", "0x11\u200bE393F", "0x11E393F"},
		{"BOM", "\ufeff0x11E393F", "0x11E393F"},
		{"Cyrillic_Homoglyph", "0x11\u0430393F", "0x11a393F"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeLine(tc.input); got != tc.expected {
				t.Errorf("SanitizeLine(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestParseReferrerText_FoldDisabled(t *testing.T) {
	p := NewInputParser(false, nil)
	got, _ := p.ParseReferrerText("０ｘ１１Ｅ")
	if got[0] != "０ｘ１１Ｅ" {
		t.Errorf("fold disabled should keep input, got %q", got[0])
	}
}
