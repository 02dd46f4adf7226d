package util

import "testing"

func TestNormalizeToken(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "upper with spaces", input: "  CASE NUMBER ", want: "case_number"},
		{name: "punctuation runs", input: "Wage Rate (Of Pay) - From", want: "wage_rate_of_pay_from"},
		{name: "already normalized", input: "case_status", want: "case_status"},
		{name: "repeated underscores", input: "__soc__code__", want: "soc_code"},
		{name: "hyphenated unit", input: "Bi-Weekly", want: "bi_weekly"},
		{name: "non-breaking space", input: "EMPLOYER\u00a0NAME", want: "employer_name"},
		{name: "only punctuation", input: "---", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeToken(tc.input)
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
			if again := NormalizeToken(got); again != got {
				t.Fatalf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	for _, input := range []string{"", "   ", "nan", "NaN", "None", "NONE", " None "} {
		if v, ok := CleanText(input); ok {
			t.Fatalf("CleanText(%q) = %q, want missing", input, v)
		}
	}
	v, ok := CleanText("  ACME Corp  ")
	if !ok || v != "ACME Corp" {
		t.Fatalf("got %q %v", v, ok)
	}
	if v, ok := CleanText("none"); !ok || v != "none" {
		t.Fatalf("lower-case none should survive, got %q %v", v, ok)
	}
}
