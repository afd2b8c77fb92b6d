package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \n\t  ", ""},
		{"collapse", "We  MAY\n\nsell\tyour data", "we may sell your data"},
		{"smart quotes", "PROVIDED \u201cAS IS\u201d AND \u201cAS AVAILABLE\u201d", `provided "as is" and "as available"`},
		{"dashes", "non\u2013refundable", "non-refundable"},
		{"soft hyphen", "arbi\u00adtration", "arbitration"},
		{"fullwidth", "\uff27\uff24\uff30\uff32", "gdpr"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	in := "  Binding\u00a0Arbitration \u2014 \u201cSole Discretion\u201d "
	once := Normalize(in)
	if twice := Normalize(once); twice != once {
		t.Errorf("expected idempotent normalization, got %q then %q", once, twice)
	}
}
