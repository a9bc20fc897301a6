package bot

import "testing"

func TestNormalizeNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"9798423774", "9798423774", true},
		{"+919798423774", "9798423774", true},
		{"+91 97984 23774", "9798423774", true},
		{"97984-23774", "9798423774", true},
		{"  9798423774  ", "9798423774", true},
		{"979842377", "", false},
		{"97984abc74", "", false},
		{"hello", "", false},
		{"", "", false},
		{"98765432101234", "98765432101234", true},
	}

	for _, tc := range cases {
		got, ok := normalizeNumber(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("normalizeNumber(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseStartReferral(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"ref_12345", 12345, true},
		{" ref_12345 ", 12345, true},
		{"ref_0", 0, false},
		{"ref_-5", 0, false},
		{"ref_abc", 0, false},
		{"12345", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, ok := parseStartReferral(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseStartReferral(%q) = %d, %v; want %d, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
