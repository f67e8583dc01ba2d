// Package textx contains tests for the text utilities.
package textx

import "testing"

func TestSanitizeText(t *testing.T) {
	in := "he\x00llo\nwo\x7frld\t!"
	got := SanitizeText(in)
	if got != "hello\nworld\t!" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("  Jane\x00 Doe\n\n\tGo   engineer \r\n")
	if got != "Jane Doe Go engineer" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestDecodeLossy(t *testing.T) {
	valid := "Résumé\nline two\t✓"
	if got := DecodeLossy([]byte(valid)); got != valid {
		t.Fatalf("valid utf-8 changed: %q", got)
	}

	r := ReplacementChar
	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{"each invalid byte replaced", []byte{'%', 'P', 'D', 'F', 0xff, 0xfe, 'x'}, "%PDF" + r + r + "x"},
		{"truncated sequence is one replacement", []byte{'a', 0xE2, 0x82, 'b'}, "a" + r + "b"},
		{"truncated at end", []byte{'a', 0xF0, 0x9F, 0x98}, "a" + r},
		{"bad second byte", []byte{0xE0, 0x80, 'z'}, r + r + "z"},
		{"leading bom dropped", []byte("\xEF\xBB\xBFJane"), "Jane"},
		{"bom only", []byte("\xEF\xBB\xBF"), ""},
		{"inner bom kept", []byte("a\xEF\xBB\xBFb"), "a\uFEFFb"},
		{"encoded replacement char kept", []byte("a\uFFFDb"), "a\uFFFDb"},
	}
	for _, tc := range cases {
		if got := DecodeLossy(tc.in); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}
