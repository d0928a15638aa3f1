package parse

import (
	"regexp"
	"testing"
)

func TestExtractMerchant(t *testing.T) {
	doc := Document{
		"SUPERMERCATO ROSSI SRL",
		"VIA GARIBALDI 12 20121 MILANO",
		"P.IVA 01234567890",
		"23/12/2024 18:32",
	}
	m := ExtractMerchant(doc)
	if m.Name == nil || *m.Name != "SUPERMERCATO ROSSI SRL" {
		t.Errorf("name = %v, want SUPERMERCATO ROSSI SRL", m.Name)
	}
	if m.VATID == nil || *m.VATID != "01234567890" {
		t.Errorf("vat id = %v, want 01234567890", m.VATID)
	}
	if m.Address == nil || *m.Address != "VIA GARIBALDI 12 20121 MILANO" {
		t.Errorf("address = %v, want the CAP line", m.Address)
	}
	if m.Country != "IT" {
		t.Errorf("country = %q, want IT", m.Country)
	}
}

func TestExtractMerchantScoresCompanySuffix(t *testing.T) {
	// the company-suffix line wins over a noisy first line
	doc := Document{
		"|||___",
		"COOP LOMBARDIA S.P.A.",
		"GRAZIE",
	}
	m := ExtractMerchant(doc)
	if m.Name == nil || *m.Name != "COOP LOMBARDIA S.P.A." {
		t.Errorf("name = %v, want COOP LOMBARDIA S.P.A.", m.Name)
	}
}

func TestExtractMerchantFallsBackToFirstLine(t *testing.T) {
	doc := Document{"bar mario", "grazie"}
	m := ExtractMerchant(doc)
	if m.Name == nil || *m.Name != "bar mario" {
		t.Errorf("name = %v, want first line fallback", m.Name)
	}
}

func TestExtractMerchantAbsentFields(t *testing.T) {
	m := ExtractMerchant(nil)
	if m.Name != nil || m.Address != nil || m.VATID != nil {
		t.Errorf("expected all-absent merchant, got %+v", m)
	}
}

func TestExtractMerchantCustomVATPattern(t *testing.T) {
	// e.g. a German locale: DE prefix plus nine digits, no keyword required
	de := regexp.MustCompile(`\b(DE[0-9]{9})\b`)
	doc := Document{"KAUFHAUS GMBH", "USt-ID DE123456789"}
	m := ExtractMerchantWithPattern(doc, de)
	if m.VATID == nil || *m.VATID != "DE123456789" {
		t.Errorf("vat id = %v, want DE123456789", m.VATID)
	}
}
