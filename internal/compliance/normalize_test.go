package compliance

import "testing"

func TestNormalizeOwnerName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"mixed case and punctuation", "Dr. Jane O'Brien-Smith, MD", "drjaneobriensmithmd"},
		{"digits preserved", "Clinic 24/7 LLC", "clinic247llc"},
		{"whitespace stripped", "  Mercy   General  ", "mercygeneral"},
		{"diacritics removed not folded", "José Muñoz", "josmuoz"},
		{"empty", "", ""},
		{"only punctuation", "---", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeOwnerName(tc.in)
			if got != tc.want {
				t.Fatalf("NormalizeOwnerName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeOwnerNameIdempotent(t *testing.T) {
	inputs := []string{
		"Dr. Jane O'Brien-Smith, MD",
		"Clinic 24/7 LLC",
		"José Muñoz",
		"UPPER lower 123 !!!",
	}
	for _, in := range inputs {
		once := NormalizeOwnerName(in)
		twice := NormalizeOwnerName(once)
		if once != twice {
			t.Fatalf("normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
