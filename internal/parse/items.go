package parse

import (
	"regexp"
	"strings"

	"github.com/scontrini/scontrini/internal/entity"
)

// Item line shapes, tried in priority order per line. Shape 1 carries an
// explicit quantity marker ("x2", "2x", "0,480 kg x") with unit and total
// prices; shape 2 is a bare name plus a single price.
var (
	itemQtyRE = regexp.MustCompile(`(?i)^(.+?)\s+(?:x\s?(\d+(?:[.,]\d{1,3})?)|(\d+(?:[.,]\d{1,3})?)\s*(kg|g|l|lt|pz)?\s*x)(?:\s+(kg|g|l|lt|pz))?\s+(-?\d{1,3}(?:\.\d{3})+,\d{2}|-?\d+[.,]\d{2})\s+(-?\d{1,3}(?:\.\d{3})+,\d{2}|-?\d+[.,]\d{2})\s*([ABC])?\s*$`)

	itemSingleRE = regexp.MustCompile(`(?i)^(.+?)\s+(-?\d{1,3}(?:\.\d{3})+,\d{2}|-?\d+[.,]\d{2})\s*([ABC])?\s*$`)

	leadSingletonRE = regexp.MustCompile(`^[A-Za-z]\s+`)
)

// typical Italian VAT rates, used to tell a leading rate column from a unit
// price on two-number lines without a quantity marker
var knownVATRates = map[float64]bool{4: true, 5: true, 10: true, 22: true}

// a supermarket discount above this is almost always a misread digit
const maxPlausibleDiscount = 5.0

// ParseItems decomposes product lines from the document, in document order.
// Lines matching non-item keyword patterns (totals, VAT, payment, document
// metadata, bare dates) are excluded first; lines without any monetary token
// are skipped. Every other line that carries at least one monetary token is
// emitted as an item, with best-effort decomposition and the untouched source
// line retained in RawLine.
func ParseItems(doc Document) []entity.ReceiptItem {
	legend := parseVATLegend(doc)

	var items []entity.ReceiptItem
	for _, line := range doc {
		if nonItemRE.MatchString(line) {
			continue
		}
		if dateRE.MatchString(line) {
			continue
		}
		if isLegendLine(line) {
			continue
		}
		money := moneyRE.FindAllString(line, -1)
		if len(money) == 0 {
			continue
		}

		if it, ok := parseQtyShape(line, legend); ok {
			items = append(items, it)
			continue
		}
		if len(money) == 1 {
			if it, ok := parseSingleShape(line, legend); ok {
				items = append(items, it)
				continue
			}
		}
		items = append(items, parseFallback(line, money, legend))
	}
	return items
}

func parseQtyShape(line string, legend map[string]float64) (entity.ReceiptItem, bool) {
	sub := itemQtyRE.FindStringSubmatch(line)
	if sub == nil {
		return entity.ReceiptItem{}, false
	}
	it := entity.ReceiptItem{RawLine: line, Name: cleanItemName(sub[1])}

	qtyS := sub[2]
	if qtyS == "" {
		qtyS = sub[3]
	}
	if q, ok := parseRate(qtyS); ok && q > 0 {
		it.Quantity = &q
	} else {
		one := 1.0
		it.Quantity = &one
	}
	unitS := sub[4]
	if unitS == "" {
		unitS = sub[5]
	}
	if unitS != "" {
		u := strings.ToLower(unitS)
		it.Unit = &u
	}
	it.UnitPrice = euroAmountPtr(sub[6])
	it.TotalPrice = euroAmountPtr(sub[7])
	applyVATCode(&it, sub[8], legend)
	adjustDiscount(&it, line)
	return it, true
}

func parseSingleShape(line string, legend map[string]float64) (entity.ReceiptItem, bool) {
	sub := itemSingleRE.FindStringSubmatch(line)
	if sub == nil {
		return entity.ReceiptItem{}, false
	}
	price := euroAmountPtr(sub[2])
	if price == nil {
		return entity.ReceiptItem{}, false
	}
	one := 1.0
	it := entity.ReceiptItem{
		RawLine:    line,
		Name:       cleanItemName(sub[1]),
		Quantity:   &one,
		UnitPrice:  price,
		TotalPrice: price,
	}
	applyVATCode(&it, sub[3], legend)
	adjustDiscount(&it, line)
	return it, true
}

// parseFallback covers lines that carry monetary tokens but match neither
// shape: the name is whatever precedes the first token, the total is the last
// token. A leading number that looks like a VAT rate column is recorded as
// the rate instead of a price.
func parseFallback(line string, money []string, legend map[string]float64) entity.ReceiptItem {
	one := 1.0
	it := entity.ReceiptItem{RawLine: line, Quantity: &one}

	if loc := moneyRE.FindStringIndex(line); loc != nil {
		it.Name = cleanItemName(line[:loc[0]])
	}
	it.TotalPrice = euroAmountPtr(money[len(money)-1])

	if len(money) >= 2 {
		if first, ok := ParseEuroAmount(money[0]); ok {
			if knownVATRates[first] || legendHasRate(legend, first) {
				it.VATRate = &first
			} else {
				it.UnitPrice = &first
			}
		}
	}
	if it.VATRate == nil {
		if code := trailingVATCode(line); code != "" {
			applyVATCode(&it, code, legend)
		}
	}
	adjustDiscount(&it, line)
	return it
}

// parseVATLegend builds the department-code to rate map from legend lines
// like "A: IVA 4,00%", tolerating the usual OCR corruptions of the A row.
func parseVATLegend(doc Document) map[string]float64 {
	legend := map[string]float64{}
	for _, line := range doc {
		for _, sub := range vatLegendRE.FindAllStringSubmatch(line, -1) {
			if rate, ok := parseRate(sub[2]); ok {
				legend[strings.ToUpper(sub[1])] = rate
			}
		}
	}
	if _, ok := legend["A"]; !ok {
		for _, line := range doc {
			if sub := vatLegendAOCRRE.FindStringSubmatch(line); sub != nil {
				if rate, ok := parseRate(sub[1]); ok {
					legend["A"] = rate
					break
				}
			}
		}
	}
	if _, ok := legend["A"]; !ok {
		for _, line := range doc {
			if sub := vatLegendAAIVARE.FindStringSubmatch(line); sub != nil {
				if rate, ok := parseRate(sub[1]); ok {
					legend["A"] = rate
					break
				}
			}
		}
	}
	return legend
}

// isLegendLine catches the OCR-corrupted legend rows that slip past the
// keyword filter, e.g. "AAIVA 4,00%".
func isLegendLine(line string) bool {
	return vatLegendAOCRRE.MatchString(line) || vatLegendAAIVARE.MatchString(line)
}

func legendHasRate(legend map[string]float64, rate float64) bool {
	for _, v := range legend {
		if v == rate {
			return true
		}
	}
	return false
}

func applyVATCode(it *entity.ReceiptItem, code string, legend map[string]float64) {
	if code == "" {
		return
	}
	if rate, ok := legend[strings.ToUpper(code)]; ok {
		it.VATRate = &rate
	}
}

func trailingVATCode(line string) string {
	line = strings.TrimSpace(line)
	if len(line) < 2 {
		return ""
	}
	last := line[len(line)-1]
	if (last == 'A' || last == 'B' || last == 'C') && line[len(line)-2] == ' ' {
		return string(last)
	}
	return ""
}

// adjustDiscount keeps discount lines negative: a positive SCONTO amount on a
// line carrying an explicit '-' or '%' marker is flipped. A large positive
// SCONTO with neither marker is OCR noise, so its price is withdrawn while the
// raw line stays on record.
func adjustDiscount(it *entity.ReceiptItem, line string) {
	if !strings.Contains(strings.ToUpper(it.Name), "SCONTO") {
		return
	}
	if it.TotalPrice == nil || *it.TotalPrice <= 0 {
		return
	}
	if strings.Contains(line, "-") || strings.Contains(line, "%") {
		v := -*it.TotalPrice
		it.TotalPrice = &v
		return
	}
	if *it.TotalPrice > maxPlausibleDiscount {
		it.TotalPrice = nil
		it.UnitPrice = nil
	}
}

// cleanItemName strips implausible OCR symbols, collapses runs of spaces,
// drops stray single-letter prefixes and edge punctuation, and caps length.
func cleanItemName(name string) string {
	s := strings.ReplaceAll(name, "|", " ")
	s = nameJunkRE.ReplaceAllString(s, " ")
	s = strings.TrimSpace(multiSpaceRE.ReplaceAllString(s, " "))
	s = edgePunctLeadRE.ReplaceAllString(s, "")
	s = edgePunctTrailRE.ReplaceAllString(s, "")
	s = stripLeadingSingleton(s)
	return truncate(s, maxNameLen)
}

// stripLeadingSingleton removes a lone leading letter when followed by a
// substantial token, a frequent artifact of the receipt's left margin.
func stripLeadingSingleton(s string) string {
	if !leadSingletonRE.MatchString(s) {
		return s
	}
	rest := strings.TrimSpace(s[1:])
	first := strings.SplitN(rest, " ", 2)[0]
	if len(first) >= 3 {
		return rest
	}
	return s
}
