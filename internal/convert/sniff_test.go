package convert

import (
	"errors"
	"testing"
)

// TestSniff_Delimiters verifies detection of the common delimiters.
func TestSniff_Delimiters(t *testing.T) {
	cases := []struct {
		name   string
		sample string
		want   rune
	}{
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"semicolon", "a;b;c\n1;2;3\n", ';'},
		{"tab", "a\tb\tc\n1\t2\t3\n", '\t'},
		{"pipe", "a|b|c\n1|2|3\n", '|'},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Sniff([]byte(tc.sample))
			if err != nil {
				t.Fatalf("Sniff failed: %v", err)
			}
			if d.Comma != tc.want {
				t.Errorf("Comma = %q, want %q", d.Comma, tc.want)
			}
		})
	}
}

// TestSniff_IgnoresQuotedDelimiters verifies that delimiters inside quoted
// fields do not skew the count.
func TestSniff_IgnoresQuotedDelimiters(t *testing.T) {
	sample := "a;b\n\"1;extra;stuff\";2\n"
	d, err := Sniff([]byte(sample))
	if err != nil {
		t.Fatalf("Sniff failed: %v", err)
	}
	if d.Comma != ';' {
		t.Errorf("Comma = %q, want ';'", d.Comma)
	}
	if d.Quote != '"' {
		t.Errorf("Quote = %q, want '\"'", d.Quote)
	}
}

// TestSniff_InconsistentSample verifies that a sample with no consistent
// delimiter reports ErrNoDialect.
func TestSniff_InconsistentSample(t *testing.T) {
	if _, err := Sniff([]byte("plain prose without structure\nanother line here\n")); !errors.Is(err, ErrNoDialect) {
		t.Errorf("Sniff on prose = %v, want ErrNoDialect", err)
	}
	if _, err := Sniff(nil); !errors.Is(err, ErrNoDialect) {
		t.Errorf("Sniff on empty sample = %v, want ErrNoDialect", err)
	}
}

// TestSniff_SingleQuote verifies single-quote detection next to the
// delimiter when no double quote is present.
func TestSniff_SingleQuote(t *testing.T) {
	sample := "a,'b'\n1,'2'\n"
	d, err := Sniff([]byte(sample))
	if err != nil {
		t.Fatalf("Sniff failed: %v", err)
	}
	if d.Comma != ',' {
		t.Errorf("Comma = %q, want ','", d.Comma)
	}
	if d.Quote != '\'' {
		t.Errorf("Quote = %q, want '\\''", d.Quote)
	}
}

// TestDetectDialect_Precedence verifies overrides beat sniffing, and the
// fallback applies when sniffing fails.
func TestDetectDialect_Precedence(t *testing.T) {
	sniffable := []byte("a;b\n1;2\n")

	d := DetectDialect(sniffable, "", "")
	if d.Comma != ';' {
		t.Errorf("sniffed Comma = %q, want ';'", d.Comma)
	}

	d = DetectDialect(sniffable, "|", "'")
	if d.Comma != '|' || d.Quote != '\'' {
		t.Errorf("override Dialect = %+v, want Comma='|' Quote='\\''", d)
	}

	d = DetectDialect([]byte("no structure here\n"), "", "")
	if d != DefaultDialect {
		t.Errorf("fallback Dialect = %+v, want %+v", d, DefaultDialect)
	}
}
