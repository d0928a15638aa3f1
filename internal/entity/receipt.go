package entity

import (
	"time"

	"github.com/google/uuid"
)

// Merchant holds the business block extracted from the top of a receipt.
// Fields are nil when the corresponding pattern was not found.
type Merchant struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	VATID   *string `json:"vat_id,omitempty"`
	Country string  `json:"country"`
}

// ReceiptInfo holds document-level metadata.
type ReceiptInfo struct {
	Datetime       *time.Time `json:"datetime,omitempty"`
	DocumentNumber *string    `json:"document_number,omitempty"`
}

// Totals holds the document totals. Currency is fixed to EUR for the whole
// system; it is not extracted per receipt.
type Totals struct {
	Total    *float64 `json:"total,omitempty"`
	VATRate  *float64 `json:"vat_rate,omitempty"`
	VATTotal *float64 `json:"vat_total,omitempty"`
	Currency string   `json:"currency"`
}

// ReceiptItem is one decomposed product line. RawLine is always the untouched
// source line, kept for auditability even when structured decomposition fails.
type ReceiptItem struct {
	RawLine    string   `json:"raw_line"`
	Name       string   `json:"name"`
	Quantity   *float64 `json:"quantity,omitempty"`
	Unit       *string  `json:"unit,omitempty"`
	UnitPrice  *float64 `json:"unit_price,omitempty"`
	TotalPrice *float64 `json:"total_price,omitempty"`
	VATRate    *float64 `json:"vat_rate,omitempty"`
}

// Source describes where the receipt image came from.
type Source struct {
	ImagePath  string    `json:"image_path"`
	CapturedAt time.Time `json:"captured_at"`
}

// OCRInfo carries metadata about the OCR pass that produced the text.
type OCRInfo struct {
	Engine     string  `json:"engine"`
	Language   string  `json:"lang"`
	Text       string  `json:"text,omitempty"`
	Confidence float32 `json:"confidence,omitempty"`
}

// Quality collects audit information gathered while assembling a receipt.
type Quality struct {
	PreprocessSteps []string `json:"preprocess_steps,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// Receipt is the assembled record for one OCR pass. It is transient: built
// per pipeline invocation, handed to the repository, then discarded.
type Receipt struct {
	ID       uuid.UUID     `json:"id,omitempty"`
	Source   Source        `json:"source"`
	Merchant Merchant      `json:"merchant"`
	Info     ReceiptInfo   `json:"receipt"`
	Totals   Totals        `json:"totals"`
	Items    []ReceiptItem `json:"items"`
	OCR      OCRInfo       `json:"ocr"`
	Quality  Quality       `json:"quality"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}
