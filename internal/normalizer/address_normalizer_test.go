package normalizer

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Full_Address_Mixed_Case", "0xAAAA1111BBBB2222CCCC3333DDDD4444EEEE5555", "0xaaaa1111bbbb2222cccc3333dddd4444eeee5555"},
		{"Unprefixed_Full_Address", "  AAAA1111BBBB2222CCCC3333DDDD4444EEEE5555 ", "0xaaaa1111bbbb2222cccc3333dddd4444eeee5555"},
		{"Upper_Prefix", "0X11E00000000000000000000000000000000393F", "0x11e00000000000000000000000000000000393f"},
		{"Masked_Keeps_Stars", "0x11E******393F", "0x11e******393f"},
		{"Masked_Ampersand", "0x11e&&&393f", "0x11e&&&393f"},
		{"Unprefixed_Partial_Not_Prefixed", "11e0393f", "11e0393f"},
		{"Unprefixed_39_Hex", "aaaa1111bbbb2222cccc3333dddd4444eeee555", "aaaa1111bbbb2222cccc3333dddd4444eeee555"},
		{"Unprefixed_40_Non_Hex", "zzzz1111bbbb2222cccc3333dddd4444eeee5555", "zzzz1111bbbb2222cccc3333dddd4444eeee5555"},
		{"Empty", "", ""},
		{"Whitespace_Only", "   ", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.input)
			if got != tc.expected {
				t.Errorf("Normalize(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"0xAAAA1111BBBB2222CCCC3333DDDD4444EEEE5555",
		"AAAA1111BBBB2222CCCC3333DDDD4444EEEE5555",
		" 0x11E******393F ",
		"abc",
		"",
		"0x",
		"x0x12&&34",
		"ＡＢ",
	}

	for _, mode := range []Mode{ModePermissive, ModeStrict} {
		n := NewAddressNormalizer(Options{Mode: mode})
		for _, in := range inputs {
			once := n.Normalize(in)
			twice := n.Normalize(once)
			if once != twice {
				t.Errorf("mode %d: Normalize not idempotent for %q: %q -> %q", mode, in, once, twice)
			}
		}
	}
}

func TestNormalize_StrictMode(t *testing.T) {
	n := NewAddressNormalizer(Options{Mode: ModeStrict})

	testCases := []struct {
		input    string
		expected string
	}{
		{"0x11E******393F", "0x11e393f"},
		{"0x11e&&&393f", "0x11e393f"},
		{"AAAA1111-BBBB2222-CCCC3333-DDDD4444-EEEE5555", "0xaaaa1111bbbb2222cccc3333dddd4444eeee5555"},
		{"hello", "e"},
	}

	for _, tc := range testCases {
		if got := n.Normalize(tc.input); got != tc.expected {
			t.Errorf("strict Normalize(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestFingerprint(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  string
		expectsOK bool
	}{
		{"Full_Address", "0x11E00000000000000000000000000000000393F", "0x11e393f", true},
		{"Masked_Address", "0x11E******393F", "0x11e393f", true},
		{"Unprefixed_Full", "11E000000000000000000000000000000000393F", "0x11e393f", true},
		{"Exactly_Nine", "0x11e393f", "0x11e393f", true},
		{"Too_Short", "0x11e39f", "", false},
		{"Empty", "", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Fingerprint(tc.input)
			if ok != tc.expectsOK {
				t.Fatalf("Fingerprint(%q) ok = %v, expected %v", tc.input, ok, tc.expectsOK)
			}
			if got != tc.expected {
				t.Errorf("Fingerprint(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestFingerprint_StableUnderNormalize(t *testing.T) {
	inputs := []string{
		"0xAAAA1111BBBB2222CCCC3333DDDD4444EEEE5555",
		"AAAA1111BBBB2222CCCC3333DDDD4444EEEE5555",
		" 0x11E******393F",
		"short",
	}
	for _, in := range inputs {
		a, okA := Fingerprint(in)
		b, okB := Fingerprint(Normalize(in))
		if a != b || okA != okB {
			t.Errorf("Fingerprint(%q) = (%q,%v), Fingerprint(Normalize) = (%q,%v)", in, a, okA, b, okB)
		}
	}
}

func TestMatches_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"0x11E00000000000000000000000000000000393F", "0x11E******393F"},
		{"0x11Eabc393F", "0x11Exyz393F"},
		{"0x11E******393F", "0x22E******393F"},
		{"0x11E", "0x11E"},
	}
	for _, p := range pairs {
		if Matches(p[0], p[1]) != Matches(p[1], p[0]) {
			t.Errorf("Matches not symmetric for %q / %q", p[0], p[1])
		}
	}

	if !Matches(pairs[0][0], pairs[0][1]) {
		t.Errorf("expected full and masked address to match")
	}
	if Matches("0x11E", "0x11E") {
		t.Errorf("too-short addresses must never match")
	}
}

func TestMask(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"0x11E00000000000000000000000000000000393F", "0x11e******393f"},
		{"0x11E&393F", "0x11e******393f"},
		{"0x11e", "0x11e"},
	}
	for _, tc := range testCases {
		if got := Mask(tc.input); got != tc.expected {
			t.Errorf("Mask(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}

	n := NewAddressNormalizer(DefaultOptions())
	if got := n.MaskFingerprint("0x11e393f"); got != "0x11e******393f" {
		t.Errorf("MaskFingerprint = %q", got)
	}
}

func TestNewAddressNormalizer_CustomLengths(t *testing.T) {
	n := NewAddressNormalizer(Options{PrefixLen: 6, SuffixLen: 5})
	if n.MinLength() != 11 {
		t.Fatalf("MinLength = %d, expected 11", n.MinLength())
	}
	if _, ok := n.Fingerprint("0x11e393f00"); !ok {
		t.Errorf("11-char address should be valid with 6+5")
	}
	if _, ok := n.Fingerprint("0x11e393f0"); ok {
		t.Errorf("10-char address should be invalid with 6+5")
	}
}
