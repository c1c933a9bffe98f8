package constants

// LineItemsKey is the synthetic record key that carries heuristic line items.
const LineItemsKey = "line_items"

// MaxLineItems caps heuristic row detection per document.
const MaxLineItems = 10

// RequiredFields are the fields a usable invoice record must carry, in the
// order they are reported when missing.
var RequiredFields = []string{"invoice_number", "invoice_date", "total", "vendor_name"}

// AmountFields are the monetary fields normalized to decimals during validation.
var AmountFields = map[string]struct{}{
	"subtotal":   {},
	"tax_amount": {},
	"discount":   {},
	"shipping":   {},
	"total":      {},
}

// DateFields are the date-shaped fields retained verbatim after validation.
var DateFields = map[string]struct{}{
	"invoice_date": {},
	"due_date":     {},
}
