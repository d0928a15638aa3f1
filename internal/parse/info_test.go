package parse

import (
	"testing"
	"time"
)

func TestExtractInfoDateAndTimeOnSeparateLines(t *testing.T) {
	doc := Document{
		"SUPERMERCATO ROSSI",
		"23/12/2024",
		"ORA 18:32",
	}
	info := ExtractInfo(doc)
	if info.Datetime == nil {
		t.Fatal("datetime not extracted")
	}
	want := time.Date(2024, time.December, 23, 18, 32, 0, 0, time.UTC)
	if !info.Datetime.Equal(want) {
		t.Errorf("datetime = %v, want %v", info.Datetime, want)
	}
}

func TestExtractInfoSeparatorsAndShortYear(t *testing.T) {
	tests := []struct {
		line string
		want time.Time
	}{
		{"23/12/2024", time.Date(2024, 12, 23, 0, 0, 0, 0, time.UTC)},
		{"23.12.24", time.Date(2024, 12, 23, 0, 0, 0, 0, time.UTC)},
		{"5-1-25", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		info := ExtractInfo(Document{tt.line})
		if info.Datetime == nil {
			t.Errorf("ExtractInfo(%q): no datetime", tt.line)
			continue
		}
		if !info.Datetime.Equal(tt.want) {
			t.Errorf("ExtractInfo(%q) = %v, want %v", tt.line, info.Datetime, tt.want)
		}
	}
}

func TestExtractInfoMissingTimeDefaultsToMidnight(t *testing.T) {
	info := ExtractInfo(Document{"23/12/2024"})
	if info.Datetime == nil {
		t.Fatal("datetime not extracted")
	}
	if h, m, s := info.Datetime.Clock(); h != 0 || m != 0 || s != 0 {
		t.Errorf("time = %02d:%02d:%02d, want midnight", h, m, s)
	}
}

func TestExtractInfoAbsentDate(t *testing.T) {
	doc := Document{"GRAZIE PER LA VISITA", "ORA 18:32"}
	info := ExtractInfo(doc)
	if info.Datetime != nil {
		t.Errorf("datetime = %v, want nil when no date pattern matches", info.Datetime)
	}
}

func TestExtractInfoSkipsInvalidCalendarDates(t *testing.T) {
	doc := Document{"99/99/99", "31/02/2024", "23/12/2024"}
	info := ExtractInfo(doc)
	if info.Datetime == nil {
		t.Fatal("datetime not extracted")
	}
	if info.Datetime.Day() != 23 || info.Datetime.Month() != time.December {
		t.Errorf("datetime = %v, want the first valid date 23/12/2024", info.Datetime)
	}
}

func TestExtractInfoDocumentNumber(t *testing.T) {
	doc := Document{"DOC.NUM. 0042-0017"}
	info := ExtractInfo(doc)
	if info.DocumentNumber == nil || *info.DocumentNumber != "0042-0017" {
		t.Errorf("document number = %v, want 0042-0017", info.DocumentNumber)
	}

	doc = Document{"DOCUMENTO N. 17/A"}
	info = ExtractInfo(doc)
	if info.DocumentNumber == nil {
		t.Fatal("loose document number not extracted")
	}

	if info := ExtractInfo(Document{"nessun numero qui"}); info.DocumentNumber != nil {
		t.Errorf("document number = %v, want nil", *info.DocumentNumber)
	}
}
