package parse

import (
	"strings"
	"unicode"
)

// Document is the ordered sequence of cleaned lines produced by Normalize.
// Every line is non-empty with no leading or trailing whitespace.
type Document []string

// Join renders the document back to a single text blob, one line per row.
func (d Document) Join() string {
	return strings.Join(d, "\n")
}

// ocrConfusions maps characters Tesseract commonly misreads inside numeric
// tokens. Applied only to tokens that already contain a digit, so alphabetic
// merchant-name tokens are never touched.
var ocrConfusions = map[rune]rune{
	'O': '0',
	'o': '0',
	'l': '1',
	'I': '1',
}

// Normalize cleans raw OCR output into a Document. It is total: any input,
// including empty or binary garbage, yields a (possibly empty) line sequence.
// Re-normalizing already-normalized text is a no-op.
func Normalize(raw string) Document {
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var doc Document
	for _, line := range strings.Split(raw, "\n") {
		line = stripNonPrintable(line)
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		for i, tok := range fields {
			fields[i] = fixDigitConfusions(tok)
		}
		doc = append(doc, strings.Join(fields, " "))
	}
	return doc
}

func stripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == ' ' {
			return ' '
		}
		if unicode.IsControl(r) || !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, s)
}

// fixDigitConfusions rewrites O/o/l/I to digits, but only when the token
// already carries at least one digit. "COOP" stays intact; "1O,5O" becomes
// "10,50".
func fixDigitConfusions(tok string) string {
	hasDigit := false
	for _, r := range tok {
		if r >= '0' && r <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return tok
	}
	return strings.Map(func(r rune) rune {
		if sub, ok := ocrConfusions[r]; ok {
			return sub
		}
		return r
	}, tok)
}
