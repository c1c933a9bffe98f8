package entity

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyArtifacts = regexp.MustCompile(`[$,]`)

// ParseAmount strips currency symbols and thousands separators, then parses
// the remainder as a decimal. The bool reports whether parsing succeeded.
func ParseAmount(raw string) (float64, bool) {
	cleaned := currencyArtifacts.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}
