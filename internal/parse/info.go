package parse

import (
	"strconv"
	"strings"
	"time"

	"github.com/scontrini/scontrini/internal/entity"
)

// ExtractInfo scans the document for a purchase timestamp and a document
// number. The first valid date match and the first time match anywhere in the
// document are combined; they need not share a line. A date without a time
// defaults to midnight. No date at all leaves Datetime nil — never a zero or
// epoch timestamp.
func ExtractInfo(doc Document) entity.ReceiptInfo {
	info := entity.ReceiptInfo{}

	var datePart *time.Time
	for _, line := range doc {
		for _, sub := range dateRE.FindAllStringSubmatch(line, -1) {
			if t, ok := buildDate(sub[1], sub[2], sub[3]); ok {
				datePart = &t
				break
			}
		}
		if datePart != nil {
			break
		}
	}

	if datePart != nil {
		hh, mm, ss := 0, 0, 0
		for _, line := range doc {
			if sub := timeRE.FindStringSubmatch(line); sub != nil {
				h, _ := strconv.Atoi(sub[1])
				m, _ := strconv.Atoi(sub[2])
				if h > 23 || m > 59 {
					continue
				}
				hh, mm = h, m
				if sub[3] != "" {
					if s, err := strconv.Atoi(sub[3]); err == nil && s <= 59 {
						ss = s
					}
				}
				break
			}
		}
		t := time.Date(datePart.Year(), datePart.Month(), datePart.Day(), hh, mm, ss, 0, time.UTC)
		info.Datetime = &t
	}

	for _, line := range doc {
		if sub := docNumRE.FindStringSubmatch(line); sub != nil {
			n := strings.ToUpper(sub[1])
			info.DocumentNumber = &n
			break
		}
	}
	if info.DocumentNumber == nil {
		for _, line := range doc {
			if sub := docNumLooseRE.FindStringSubmatch(line); sub != nil {
				n := strings.ToUpper(sub[1])
				info.DocumentNumber = &n
				break
			}
		}
	}
	return info
}

// buildDate validates day/month/year fragments in the European day-first
// order. Two-digit years are pinned to 2000+.
func buildDate(dayS, monS, yearS string) (time.Time, bool) {
	day, err := strconv.Atoi(dayS)
	if err != nil {
		return time.Time{}, false
	}
	mon, err := strconv.Atoi(monS)
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(yearS)
	if err != nil {
		return time.Time{}, false
	}
	if len(yearS) == 2 {
		year += 2000
	}
	if year < 2000 || year > 2099 || mon < 1 || mon > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(mon), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(mon) {
		// overflowed an invalid calendar date, e.g. 31/02
		return time.Time{}, false
	}
	return t, true
}
