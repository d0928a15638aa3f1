package parse

import (
	"regexp"
	"strings"

	"github.com/scontrini/scontrini/internal/entity"
)

const (
	maxNameLen    = 120
	maxAddressLen = 200

	// merchant candidates come from the top of the receipt only
	merchantScanLines = 10
)

// VATIDPattern is the default merchant VAT-id matcher (Italian P.IVA shape:
// keyword then 8-15 alphanumerics). The format is country specific, so
// callers with other locales should use ExtractMerchantWithPattern.
var VATIDPattern = vatIDRE

// ExtractMerchant scans the document for the merchant block using the
// default locale pattern.
func ExtractMerchant(doc Document) entity.Merchant {
	return ExtractMerchantWithPattern(doc, VATIDPattern)
}

// ExtractMerchantWithPattern is ExtractMerchant with a caller-supplied VAT-id
// pattern. The pattern must expose the id in its first capture group.
func ExtractMerchantWithPattern(doc Document, vatPattern *regexp.Regexp) entity.Merchant {
	m := entity.Merchant{Country: "IT"}
	if len(doc) == 0 {
		return m
	}

	nameIdx := -1
	top := doc
	if len(top) > merchantScanLines {
		top = top[:merchantScanLines]
	}
	bestScore := 0
	for i, line := range top {
		if s := scoreNameCandidate(line); s > bestScore {
			bestScore = s
			nameIdx = i
		}
	}
	if nameIdx == -1 {
		nameIdx = 0
	}
	name := truncate(cleanMerchantLine(doc[nameIdx]), maxNameLen)
	if name != "" {
		m.Name = &name
	}

	for _, line := range doc {
		if sub := vatPattern.FindStringSubmatch(line); sub != nil {
			id := strings.ToUpper(sub[1])
			m.VATID = &id
			break
		}
	}

	for i, line := range doc {
		if i == nameIdx {
			continue
		}
		if capRE.MatchString(line) {
			addr := truncate(cleanMerchantLine(line), maxAddressLen)
			if addr != "" {
				m.Address = &addr
			}
			break
		}
	}
	return m
}

// scoreNameCandidate rates how much a line looks like a business name.
// Company suffixes weigh most; date/total/VAT lines are ruled out entirely.
func scoreNameCandidate(line string) int {
	if dateRE.MatchString(line) || totalRE.MatchString(line) || vatIDRE.MatchString(line) || ivaRateRE.MatchString(line) {
		return -10
	}
	s := 0
	if companyRE.MatchString(line) {
		s += 6
	}
	if len(upperRE.FindAllString(line, -1)) >= 6 {
		s += 2
	}
	if junkRunRE.MatchString(line) {
		s -= 6
	}
	if len(line) < 4 {
		s -= 10
	}
	return s
}

func cleanMerchantLine(s string) string {
	s = merchantJunkRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(multiSpaceRE.ReplaceAllString(s, " "))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
