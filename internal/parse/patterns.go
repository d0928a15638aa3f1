package parse

import "regexp"

// All patterns are package-level compiled constants. Go's regexp is RE2, so
// every scan below runs in time linear in the input even on adversarial OCR
// noise; none of the expressions use nested unbounded quantifiers.
var (
	// dd/mm/yyyy with '/', '.' or '-' separators and 2- or 4-digit year.
	dateRE = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})\b`)

	// HH:MM with optional seconds.
	timeRE = regexp.MustCompile(`\b(\d{1,2}):(\d{2})(?::(\d{2}))?\b`)

	// European monetary token: grouped thousands with comma decimals, or a
	// plain amount with two decimal digits.
	moneyRE = regexp.MustCompile(`-?\d{1,3}(?:\.\d{3})+,\d{2}|-?\d+[.,]\d{2}`)

	// TOTALE / TOT keyword followed (anywhere on the line) by an amount.
	totalRE = regexp.MustCompile(`(?i)\bTOT(?:ALE)?\b.*?(-?\d{1,3}(?:\.\d{3})+,\d{2}|-?\d+[.,]\d{2})`)

	// Fallback totals sources seen on Italian fiscal receipts.
	monetaRE = regexp.MustCompile(`(?i)\bMONETA\s+ALTRO\b.*?(\d{1,3}(?:\.\d{3})+,\d{2}|\d+[.,]\d{2})`)
	pagatoRE = regexp.MustCompile(`(?i)\bIMPORTO\s+PAGATO\b.*?(\d{1,3}(?:\.\d{3})+,\d{2}|\d+[.,]\d{2})`)

	// IVA as a percentage ("IVA 22%") and as a restated amount ("DI CUI IVA 4,42").
	ivaRateRE  = regexp.MustCompile(`(?i)\bIVA\b\s*[:\-]?\s*(\d{1,2}(?:[.,]\d{1,2})?)\s*%`)
	ivaTotalRE = regexp.MustCompile(`(?i)\bDI\s+CUI\s+IVA\b.*?(\d{1,3}(?:\.\d{3})+,\d{2}|\d+[.,]\d{2})`)

	// Merchant VAT id: keyword then 8-15 alphanumerics, optionally with a
	// two-letter country prefix embedded in the captured token.
	vatIDRE = regexp.MustCompile(`(?i)\b(?:P\.?\s*IVA|PIVA|VAT)\s*[:\-]?\s*([A-Z0-9]{8,15})\b`)

	// Document number, "DOC.NUM 0042-0017" preferred over looser "N. 42".
	docNumRE   = regexp.MustCompile(`(?i)\bDOC\.?\s*N(?:UM)?\.?\s*[:\-]?\s*([A-Z0-9][A-Z0-9\-/]{2,})\b`)
	docNumLooseRE = regexp.MustCompile(`(?i)\b(?:DOCUMENTO|DOC|N\.|NR)\s*[:\-]?\s*([A-Z0-9][A-Z0-9\-/]+)\b`)

	// Declared article count ("ARTICOLI 12") printed near the bottom.
	articleCountRE = regexp.MustCompile(`(?i)\bARTICOLI\s+(\d{1,3})\b`)

	// VAT legend lines mapping a department code to a rate. The two extra
	// forms cover frequent OCR corruptions of "A: IVA 4,00%".
	vatLegendRE      = regexp.MustCompile(`(?i)\b([ABC])\s*[:\-]?\s*IVA\s*(\d{1,2}(?:[.,]\d{1,2})?)\s*%`)
	vatLegendAOCRRE  = regexp.MustCompile(`(?i)\bA{1,2}\s*[:\-]?\s*IVA\s*(\d{1,2}(?:[.,]\d{1,2})?)\s*%`)
	vatLegendAAIVARE = regexp.MustCompile(`(?i)\bAAIVA\s*(\d{1,2}(?:[.,]\d{1,2})?)\s*%`)

	// Lines that can never be item candidates, checked before any item shape.
	nonItemRE = regexp.MustCompile(`(?i)\b(TOTALE|TOT|SUBTOT|SUBTOTALE|IVA|IMPORTO|PAGATO|PAGAMENTO|RESTO|MONETA|CONTANTE|ARTICOLI|DOC|DOCUMENTO|SCONTRINO)\b`)

	// Company-suffix keywords that boost a merchant-name candidate.
	companyRE = regexp.MustCompile(`(?i)\b(SPA|S\.P\.A\.?|SRL|S\.R\.L\.?|SNC|SAS|SUPERMERCATI|MARKET|IPER)\b`)

	// Italian postal code, used as the address-line hint.
	capRE = regexp.MustCompile(`\b\d{5}\b`)

	junkRunRE    = regexp.MustCompile(`[|_]{2,}`)
	upperRE      = regexp.MustCompile(`[A-Z]`)
	multiSpaceRE = regexp.MustCompile(`\s+`)

	// Characters plausible in merchant/item names; everything else is OCR junk.
	nameJunkRE     = regexp.MustCompile(`[^A-Za-z0-9À-ÿ\s.,\-]`)
	merchantJunkRE = regexp.MustCompile(`[^A-Za-z0-9À-ÿ\s.\-]`)
	edgePunctLeadRE  = regexp.MustCompile(`^[.,\-]+\s*`)
	edgePunctTrailRE = regexp.MustCompile(`\s*[.,\-]+$`)
)
