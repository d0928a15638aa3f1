package parse

import (
	"fmt"
	"math"
	"regexp"

	"github.com/scontrini/scontrini/internal/entity"
)

// maximum tolerated drift between the item sum and the printed total before
// the receipt is flagged
const totalsTolerance = 0.05

// paid amount further apart than this from the total usually means a
// misrecognized digit (32,52 read as 92,52)
const paidTolerance = 0.50

// AssembleOptions carries the non-parsed context merged into the final record.
type AssembleOptions struct {
	Source          entity.Source
	OCR             entity.OCRInfo
	PreprocessSteps []string

	// cross-check inputs, typically from DeclaredArticleCount and PaidAmount
	DeclaredItems *int
	Paid          *float64

	// locale overrides; zero values keep the Italian defaults. The pattern
	// must expose the VAT id in its first capture group.
	VATIDPattern *regexp.Regexp
	Country      string
}

// Assemble merges the extractor outputs into one Receipt. It is a pure merge:
// no re-parsing happens here, and a missing total is surfaced as-is rather
// than being reconstructed from the item sum, so an OCR extraction failure is
// never masked by a possibly-wrong derived value.
func Assemble(m entity.Merchant, info entity.ReceiptInfo, totals entity.Totals, items []entity.ReceiptItem, opts AssembleOptions) *entity.Receipt {
	if totals.Currency == "" {
		totals.Currency = "EUR"
	}
	if items == nil {
		items = []entity.ReceiptItem{}
	}
	r := &entity.Receipt{
		Source:   opts.Source,
		Merchant: m,
		Info:     info,
		Totals:   totals,
		Items:    items,
		OCR:      opts.OCR,
		Quality: entity.Quality{
			PreprocessSteps: opts.PreprocessSteps,
			Warnings:        qualityWarnings(totals, items, opts),
		},
	}
	return r
}

// ParseReceipt runs the whole core over one raw OCR text blob: normalize,
// independent field extractors, item parser, assembler. Total over its input:
// empty or garbage text yields a fully-absent receipt, never an error.
func ParseReceipt(raw string, opts AssembleOptions) *entity.Receipt {
	doc := Normalize(raw)

	pattern := opts.VATIDPattern
	if pattern == nil {
		pattern = VATIDPattern
	}
	merchant := ExtractMerchantWithPattern(doc, pattern)
	if opts.Country != "" {
		merchant.Country = opts.Country
	}
	info := ExtractInfo(doc)
	totals := ExtractTotals(doc)
	items := ParseItems(doc)

	if opts.DeclaredItems == nil {
		opts.DeclaredItems = DeclaredArticleCount(doc)
	}
	if opts.Paid == nil {
		opts.Paid = PaidAmount(doc)
	}
	if opts.OCR.Text == "" {
		opts.OCR.Text = doc.Join()
	}
	return Assemble(merchant, info, totals, items, opts)
}

func qualityWarnings(totals entity.Totals, items []entity.ReceiptItem, opts AssembleOptions) []string {
	var warnings []string

	priced := 0
	sum := 0.0
	for _, it := range items {
		if it.TotalPrice != nil {
			priced++
			sum += *it.TotalPrice
		}
	}

	if opts.DeclaredItems != nil && priced != *opts.DeclaredItems {
		warnings = append(warnings, fmt.Sprintf("items_count_mismatch: declared=%d extracted=%d", *opts.DeclaredItems, priced))
	}

	if totals.Total == nil {
		warnings = append(warnings, "total_missing")
	} else {
		if delta := math.Abs(sum - *totals.Total); delta > totalsTolerance && len(items) > 0 {
			warnings = append(warnings, fmt.Sprintf("totals_inconsistent: sum_items=%.2f total=%.2f delta=%.2f", sum, *totals.Total, delta))
		}
		if opts.Paid != nil && math.Abs(*opts.Paid-*totals.Total) > paidTolerance {
			warnings = append(warnings, fmt.Sprintf("paid_amount_suspect: paid=%.2f total=%.2f", *opts.Paid, *totals.Total))
		}
	}
	return warnings
}
