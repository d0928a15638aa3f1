package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\b\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}\b`)
	reEuro   = regexp.MustCompile(`(?i)\beur\b|€|\biva\b|\btotale?\b`)
	reAmount = regexp.MustCompile(`\b\d{1,3}(\.\d{3})*,\d{2}\b|\b\d+,\d{2}\b`)
)

// naive heuristic confidence based on decoded text characteristics
func heuristicConfidence(txt string) float32 {
	// boost if we see common receipt artifacts: a date, euro/tax keywords,
	// comma-decimal amounts, and enough content overall
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reDate.MatchString(txtL) {
		score += 0.2
	}
	if reEuro.MatchString(txtL) {
		score += 0.15
	}
	if reAmount.MatchString(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
