package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateMap(res Result) map[string]string {
	out := make(map[string]string, len(res.Candidates))
	for _, c := range res.Candidates {
		out[c.Name] = c.Raw
	}
	return out
}

func TestExtractFieldsSampleInvoice(t *testing.T) {
	e := NewEngine()
	text := "Invoice #: INV-2024-001\nDate: 12/15/2024\nSubtotal: $100.00\nTax: $10.00\nTotal: $110.00"

	res := e.ExtractFields(text)
	got := candidateMap(res)

	assert.Equal(t, "inv-2024-001", got["invoice_number"])
	assert.Equal(t, "12/15/2024", got["invoice_date"])
	assert.Equal(t, "100.00", got["subtotal"])
	assert.Equal(t, "10.00", got["tax_amount"])
	assert.Equal(t, "110.00", got["total"], "total must not match inside the word subtotal")
	assert.NotContains(t, got, "vendor_name")
	assert.Empty(t, res.LineItems)
}

func TestFirstPatternWins(t *testing.T) {
	e := NewEngine()

	// Both the "invoice #" matcher and the bare "#" fallback could hit; the
	// earlier, more specific pattern must supply the value.
	res := e.ExtractFields("Ref # ABC-1\nInvoice #: INV-77")
	got := candidateMap(res)
	assert.Equal(t, "inv-77", got["invoice_number"])
}

func TestAtMostOneCandidatePerField(t *testing.T) {
	e := NewEngine()
	res := e.ExtractFields("Invoice #: INV-1\nInvoice #: INV-2\nInvoice #: INV-3")

	seen := 0
	for _, c := range res.Candidates {
		if c.Name == "invoice_number" {
			seen++
			assert.Equal(t, "inv-1", c.Raw)
		}
	}
	assert.Equal(t, 1, seen)
}

func TestCandidatesFollowTableOrder(t *testing.T) {
	e := NewEngine()
	text := "Vendor: Acme Corp\nInvoice #: INV-1\nTotal: $5.00"

	res := e.ExtractFields(text)
	require.NotEmpty(t, res.Candidates)

	order := map[string]int{}
	for i, name := range FieldNames() {
		order[name] = i
	}
	for i := 1; i < len(res.Candidates); i++ {
		prev, cur := res.Candidates[i-1].Name, res.Candidates[i].Name
		assert.Less(t, order[prev], order[cur], "%s must come before %s", prev, cur)
	}
}

func TestLineItemDetection(t *testing.T) {
	e := NewEngine()
	text := strings.Join([]string{
		"Description Qty Price Total", // header, skipped
		"Web Development Services 1 2500.00 2500.00",
		"Domain Registration 1 $15.00 $15.00",
		"",
		"only two tokens",
		"one 1 token",   // a single numeric token does not qualify
		"Subtotal: $2,515.00", // header token "total", skipped
	}, "\n")

	res := e.ExtractFields(text)
	require.Len(t, res.LineItems, 2)

	first := res.LineItems[0]
	assert.Equal(t, "Web Development Services", first.Description)
	require.NotNil(t, first.Quantity)
	assert.Equal(t, 1.0, *first.Quantity)
	require.NotNil(t, first.UnitPrice)
	assert.Equal(t, 2500.0, *first.UnitPrice)
	require.NotNil(t, first.LineTotal)
	assert.Equal(t, 2500.0, *first.LineTotal)

	second := res.LineItems[1]
	assert.Equal(t, "Domain Registration", second.Description)
	require.NotNil(t, second.UnitPrice)
	assert.Equal(t, 15.0, *second.UnitPrice)
}

func TestLineItemColumnAssignment(t *testing.T) {
	e := NewEngine()

	// More than two numeric tokens: first is quantity, last two are unit
	// price and line total, the rest are ignored.
	res := e.ExtractFields("Widget 2 99 10.00 20.00")
	require.Len(t, res.LineItems, 1)

	item := res.LineItems[0]
	assert.Equal(t, "Widget", item.Description)
	assert.Equal(t, 2.0, *item.Quantity)
	assert.Equal(t, 10.0, *item.UnitPrice)
	assert.Equal(t, 20.0, *item.LineTotal)
}

func TestLineItemsCappedAtTen(t *testing.T) {
	e := NewEngine()
	var lines []string
	for i := 0; i < 25; i++ {
		lines = append(lines, fmt.Sprintf("Item %d 1 5.00 5.00", i))
	}

	res := e.ExtractFields(strings.Join(lines, "\n"))
	assert.Len(t, res.LineItems, 10)
}

func TestEmptyText(t *testing.T) {
	e := NewEngine()
	res := e.ExtractFields("")
	assert.Empty(t, res.Candidates)
	assert.Empty(t, res.LineItems)
}
