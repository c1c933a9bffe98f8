package extract

import "regexp"

// FieldPatterns binds a field name to its matchers, most specific first.
// The first pattern to hit supplies the candidate; later patterns for the
// same field are never tried.
type FieldPatterns struct {
	Name     string
	Patterns []*regexp.Regexp
}

func re(expr string) *regexp.Regexp {
	// Matching is case-insensitive and multi-line over the lower-cased text.
	return regexp.MustCompile(`(?im)` + expr)
}

// fieldTable is the fixed pattern-priority table. Position encodes priority:
// earlier patterns are strictly more specific. The table order is also the
// insertion order of candidates in the output record.
var fieldTable = []FieldPatterns{
	{"vendor_name", []*regexp.Regexp{
		re(`(?:from|vendor|company|bill from|sold by)[:\s]*([A-Za-z0-9\s&.,\-]+?)(?:\n|address|phone|email|tax)`),
		re(`^([A-Za-z0-9\s&.,\-]+?)(?:\n.*address|phone|email)`),
		re(`([A-Z][A-Za-z\s&.,\-]+(?:inc|llc|ltd|corp|company))`),
	}},
	{"vendor_address", []*regexp.Regexp{
		re(`(?:address|addr)[:\s]*([A-Za-z0-9\s,.\-#]+?)(?:\n\n|phone|email|tax|invoice)`),
		re(`(\d+\s+[A-Za-z\s,.\-]+\d{5})`),
	}},
	{"vendor_tax_id", []*regexp.Regexp{
		re(`(?:tax\s*id|gst|vat|ein)[:\s#]*([A-Z0-9\-]+)`),
		re(`(?:federal\s*id|employer\s*id)[:\s#]*([A-Z0-9\-]+)`),
	}},
	{"vendor_contact", []*regexp.Regexp{
		re(`(?:phone|tel|contact)[:\s]*([0-9\-()\s+]+)`),
		re(`(?:email|e-mail)[:\s]*([A-Za-z0-9@.\-_]+)`),
	}},
	{"invoice_number", []*regexp.Regexp{
		re(`invoice\s*#?\s*:?\s*([A-Z0-9\-]+)`),
		re(`inv\s*#?\s*:?\s*([A-Z0-9\-]+)`),
		re(`#\s*([A-Z0-9\-]+)`),
		re(`invoice\s*number[:\s]*([A-Z0-9\-]+)`),
	}},
	{"invoice_date", []*regexp.Regexp{
		re(`(?:invoice\s*)?date\s*:?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
		re(`(?:invoice\s*)?date\s*:?\s*([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
		re(`(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	}},
	{"due_date", []*regexp.Regexp{
		re(`due\s*date\s*:?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
		re(`payment\s*due\s*:?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`),
	}},
	{"po_number", []*regexp.Regexp{
		re(`(?:po|purchase\s*order)\s*#?\s*:?\s*([A-Z0-9\-]+)`),
		re(`p\.?o\.?\s*#?\s*:?\s*([A-Z0-9\-]+)`),
	}},
	{"payment_terms", []*regexp.Regexp{
		re(`(?:payment\s*terms|terms)[:\s]*(net\s*\d+|due\s*on\s*receipt|[A-Za-z0-9\s]+)`),
		re(`(net\s*\d+)`),
	}},
	{"subtotal", []*regexp.Regexp{
		re(`subtotal\s*:?\s*\$?([0-9,]+\.?\d*)`),
		re(`sub\s*total\s*:?\s*\$?([0-9,]+\.?\d*)`),
	}},
	{"tax_amount", []*regexp.Regexp{
		re(`tax\s*(?:amount)?\s*:?\s*\$?([0-9,]+\.?\d*)`),
		re(`(?:sales\s*tax|vat)\s*:?\s*\$?([0-9,]+\.?\d*)`),
	}},
	{"tax_rate", []*regexp.Regexp{
		re(`tax\s*(?:rate)?\s*:?\s*([0-9.]+)%`),
		re(`(?:sales\s*tax|vat)\s*(?:rate)?\s*:?\s*([0-9.]+)%`),
	}},
	{"discount", []*regexp.Regexp{
		re(`discount\s*:?\s*\$?([0-9,]+\.?\d*)`),
		re(`less\s*:?\s*\$?([0-9,]+\.?\d*)`),
	}},
	{"shipping", []*regexp.Regexp{
		re(`(?:shipping|freight|delivery)\s*:?\s*\$?([0-9,]+\.?\d*)`),
		re(`(?:handling|ship)\s*:?\s*\$?([0-9,]+\.?\d*)`),
	}},
	{"total", []*regexp.Regexp{
		// \b keeps this from matching inside "subtotal".
		re(`\btotal\s*(?:amount)?\s*(?:due)?\s*:?\s*\$?([0-9,]+\.?\d*)`),
		re(`amount\s*due\s*:?\s*\$?([0-9,]+\.?\d*)`),
		re(`grand\s*total\s*:?\s*\$?([0-9,]+\.?\d*)`),
		re(`\$([0-9,]+\.?\d*)`),
	}},
	{"currency", []*regexp.Regexp{
		re(`(\$|USD|EUR|GBP|CAD)`),
		re(`currency[:\s]*([A-Z]{3})`),
	}},
	{"bank_details", []*regexp.Regexp{
		re(`(?:bank|routing|account)\s*(?:number|#)?\s*:?\s*([0-9\-]+)`),
		re(`(?:swift|iban)\s*:?\s*([A-Z0-9]+)`),
	}},
	{"notes", []*regexp.Regexp{
		re(`(?:notes|comments|memo)[:\s]*([A-Za-z0-9\s.,\-]+?)(?:\n\n|$)`),
	}},
	{"payment_method", []*regexp.Regexp{
		re(`(?:payment\s*method|pay\s*via)[:\s]*([A-Za-z\s]+)`),
		re(`(?:check|cash|credit|wire|ach)`),
	}},
}

// FieldNames returns the extractable field names in table order.
func FieldNames() []string {
	names := make([]string, len(fieldTable))
	for i, fp := range fieldTable {
		names[i] = fp.Name
	}
	return names
}
