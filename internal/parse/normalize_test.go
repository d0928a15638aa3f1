package parse

import (
	"reflect"
	"testing"
)

func TestNormalizeTrimsAndDropsEmptyLines(t *testing.T) {
	raw := "  COOP LOMBARDIA  \r\n\n\t VIA ROMA 1 \x00\x07\n\n   \nTOTALE  12,50\n"
	doc := Normalize(raw)

	want := Document{"COOP LOMBARDIA", "VIA ROMA 1", "TOTALE 12,50"}
	if !reflect.DeepEqual(doc, want) {
		t.Fatalf("got %q, want %q", doc, want)
	}
	for _, line := range doc {
		if line == "" {
			t.Error("normalized document contains an empty line")
		}
		if line != "" && (line[0] == ' ' || line[len(line)-1] == ' ') {
			t.Errorf("line %q not trimmed", line)
		}
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	if doc := Normalize(""); len(doc) != 0 {
		t.Fatalf("empty input: got %d lines, want 0", len(doc))
	}
	if doc := Normalize("\n \t \r\n \x01\x02"); len(doc) != 0 {
		t.Fatalf("whitespace/control input: got %d lines, want 0", len(doc))
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"COOP  LOMBARDIA\nTOTALE 1O,5O\n\nGRAZIE",
		"  a \r b \n c ",
		"PANE 1,20\nLATTE 1,10",
	}
	for _, raw := range inputs {
		once := Normalize(raw)
		twice := Normalize(once.Join())
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Normalize not idempotent for %q: %q vs %q", raw, once, twice)
		}
	}
}

func TestNormalizeDigitConfusions(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		// confusions apply only inside tokens that already hold a digit
		{"TOTALE 1O,5O", "TOTALE 10,50"},
		{"ACQUA l2,00", "ACQUA 12,00"},
		{"PREZZO I0,00", "PREZZO 10,00"},
		// alphabetic tokens are never rewritten
		{"COOP OLIO", "COOP OLIO"},
		{"IL MULINO", "IL MULINO"},
	}
	for _, tt := range tests {
		doc := Normalize(tt.in)
		if len(doc) != 1 || doc[0] != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, doc, tt.want)
		}
	}
}
