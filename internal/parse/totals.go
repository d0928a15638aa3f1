package parse

import (
	"strconv"

	"github.com/scontrini/scontrini/internal/entity"
)

// ExtractTotals scans the document for the document total and VAT figures.
// Receipts commonly restate the total near the bottom, so when several
// TOTALE/TOT lines match, the LAST parseable one wins. Fallback keywords
// ("Moneta altro", "IMPORTO PAGATO") are consulted only when no TOTALE line
// yields an amount.
func ExtractTotals(doc Document) entity.Totals {
	t := entity.Totals{Currency: "EUR"}

	for _, line := range doc {
		for _, sub := range totalRE.FindAllStringSubmatch(line, -1) {
			if v, ok := ParseEuroAmount(sub[1]); ok {
				t.Total = &v
			}
		}
	}
	if t.Total == nil {
		for _, re := range []interface{ FindStringSubmatch(string) []string }{monetaRE, pagatoRE} {
			for _, line := range doc {
				if sub := re.FindStringSubmatch(line); sub != nil {
					if v, ok := ParseEuroAmount(sub[1]); ok {
						t.Total = &v
						break
					}
				}
			}
			if t.Total != nil {
				break
			}
		}
	}

	// Legend rows ("A: IVA 4,00%") describe department rates, not the
	// document rate, so they are skipped here. When the legend is the only
	// rate source and all its rows agree, that sole rate still stands in.
	for _, line := range doc {
		if vatLegendRE.MatchString(line) || isLegendLine(line) {
			continue
		}
		if sub := ivaRateRE.FindStringSubmatch(line); sub != nil {
			if v, ok := parseRate(sub[1]); ok {
				t.VATRate = &v
				break
			}
		}
	}
	if t.VATRate == nil {
		if rate, ok := soleLegendRate(doc); ok {
			t.VATRate = &rate
		}
	}
	for _, line := range doc {
		if sub := ivaTotalRE.FindStringSubmatch(line); sub != nil {
			if v, ok := ParseEuroAmount(sub[1]); ok {
				t.VATTotal = &v
				break
			}
		}
	}
	return t
}

// soleLegendRate returns the legend rate when every legend row carries the
// same one; a multi-rate legend is inconclusive about the document rate.
func soleLegendRate(doc Document) (float64, bool) {
	legend := parseVATLegend(doc)
	var rate float64
	seen := false
	for _, v := range legend {
		if seen && v != rate {
			return 0, false
		}
		rate = v
		seen = true
	}
	return rate, seen
}

// DeclaredArticleCount returns the "ARTICOLI N" count printed near the bottom
// of most Italian fiscal receipts, or nil when absent.
func DeclaredArticleCount(doc Document) *int {
	for _, line := range doc {
		if sub := articleCountRE.FindStringSubmatch(line); sub != nil {
			if n, err := strconv.Atoi(sub[1]); err == nil {
				return &n
			}
		}
	}
	return nil
}

// PaidAmount returns the "IMPORTO PAGATO" figure, used by the assembler to
// cross-check the extracted total.
func PaidAmount(doc Document) *float64 {
	for _, line := range doc {
		if sub := pagatoRE.FindStringSubmatch(line); sub != nil {
			if v, ok := ParseEuroAmount(sub[1]); ok {
				return &v
			}
		}
	}
	return nil
}
