package parse

import "testing"

func TestExtractTotalsLastMatchWins(t *testing.T) {
	doc := Document{
		"SUBTOTALE 9,50",
		"TOTALE 10,00",
		"STORNO",
		"TOTALE COMPLESSIVO 12,50",
	}
	totals := ExtractTotals(doc)
	if totals.Total == nil {
		t.Fatal("total not extracted")
	}
	if *totals.Total != 12.50 {
		t.Fatalf("total = %v, want 12.50 (last match wins)", *totals.Total)
	}
	if totals.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", totals.Currency)
	}
}

func TestExtractTotalsKeywordVariants(t *testing.T) {
	tests := []struct {
		line string
		want float64
	}{
		{"TOTALE 15,00", 15.00},
		{"TOT. 3,20", 3.20},
		{"totale euro 1.234,56", 1234.56},
	}
	for _, tt := range tests {
		totals := ExtractTotals(Document{tt.line})
		if totals.Total == nil || *totals.Total != tt.want {
			t.Errorf("ExtractTotals(%q).Total = %v, want %v", tt.line, totals.Total, tt.want)
		}
	}
}

func TestExtractTotalsFallbacks(t *testing.T) {
	doc := Document{"Moneta altro 7,90"}
	if totals := ExtractTotals(doc); totals.Total == nil || *totals.Total != 7.90 {
		t.Errorf("moneta fallback: got %v, want 7.90", totals.Total)
	}

	doc = Document{"IMPORTO PAGATO 22,10"}
	if totals := ExtractTotals(doc); totals.Total == nil || *totals.Total != 22.10 {
		t.Errorf("importo pagato fallback: got %v, want 22.10", totals.Total)
	}

	// explicit TOTALE always beats the fallbacks
	doc = Document{"TOTALE 10,00", "IMPORTO PAGATO 22,10"}
	if totals := ExtractTotals(doc); totals.Total == nil || *totals.Total != 10.00 {
		t.Errorf("totale precedence: got %v, want 10.00", totals.Total)
	}
}

func TestExtractTotalsVAT(t *testing.T) {
	doc := Document{"IVA 22%", "DI CUI IVA 4,42"}
	totals := ExtractTotals(doc)
	if totals.VATRate == nil || *totals.VATRate != 22.0 {
		t.Errorf("vat rate = %v, want 22", totals.VATRate)
	}
	if totals.VATTotal == nil || *totals.VATTotal != 4.42 {
		t.Errorf("vat total = %v, want 4.42", totals.VATTotal)
	}
}

func TestExtractTotalsVATRateIgnoresLegend(t *testing.T) {
	// a multi-rate legend must not become the document rate
	doc := Document{
		"A: IVA 4,00%",
		"B: IVA 22,00%",
		"TOTALE 10,00",
	}
	if totals := ExtractTotals(doc); totals.VATRate != nil {
		t.Errorf("vat rate = %v, want absent for a multi-rate legend", *totals.VATRate)
	}

	// a summary rate line wins over the legend rows
	doc = Document{
		"A: IVA 4,00%",
		"B: IVA 10,00%",
		"IVA 22%",
	}
	if totals := ExtractTotals(doc); totals.VATRate == nil || *totals.VATRate != 22.0 {
		t.Errorf("vat rate = %v, want 22 from the summary line", totals.VATRate)
	}

	// a single-rate legend still stands in when nothing else mentions a rate
	doc = Document{
		"A: IVA 22,00%",
		"TOTALE 10,00",
	}
	if totals := ExtractTotals(doc); totals.VATRate == nil || *totals.VATRate != 22.0 {
		t.Errorf("vat rate = %v, want 22 from the sole legend row", totals.VATRate)
	}
}

func TestExtractTotalsAbsent(t *testing.T) {
	doc := Document{"GRAZIE PER LA VISITA", "ARRIVEDERCI"}
	totals := ExtractTotals(doc)
	if totals.Total != nil || totals.VATRate != nil || totals.VATTotal != nil {
		t.Errorf("expected fully absent totals, got %+v", totals)
	}

	// keyword present but no usable digits stays absent, not zero
	doc = Document{"TOTALE ,,"}
	if totals := ExtractTotals(doc); totals.Total != nil {
		t.Errorf("malformed amount should be absent, got %v", *totals.Total)
	}
}

func TestDeclaredArticleCountAndPaid(t *testing.T) {
	doc := Document{"ARTICOLI 12", "IMPORTO PAGATO 30,00"}
	if n := DeclaredArticleCount(doc); n == nil || *n != 12 {
		t.Errorf("declared count = %v, want 12", n)
	}
	if p := PaidAmount(doc); p == nil || *p != 30.00 {
		t.Errorf("paid = %v, want 30.00", p)
	}
	if n := DeclaredArticleCount(Document{"nothing"}); n != nil {
		t.Errorf("declared count = %v, want nil", *n)
	}
}
