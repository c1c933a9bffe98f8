package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvoice = "Invoice #: INV-2024-001\nDate: 12/15/2024\nSubtotal: $100.00\nTax: $10.00\nTotal: $110.00"

func TestExtractAndValidateSampleInvoice(t *testing.T) {
	p := NewProcessor(nil)

	res := p.ExtractAndValidate(context.Background(), sampleInvoice)
	require.NotNil(t, res)

	assert.Equal(t, "INV-2024-001", res.ExtractedData.String("invoice_number"))
	assert.Equal(t, "12/15/2024", res.ExtractedData.String("invoice_date"))
	assert.Equal(t, 100.0, res.ExtractedData.Number("subtotal"))
	assert.Equal(t, 10.0, res.ExtractedData.Number("tax_amount"))
	assert.Equal(t, 110.0, res.ExtractedData.Number("total"))

	assert.True(t, res.MathValidation.SubtotalTaxTotalMatch)
	assert.True(t, res.MathValidation.CalculationsCorrect)
	assert.GreaterOrEqual(t, res.OverallConfidence, 0.8)
	assert.Equal(t, []string{"vendor_name"}, res.MissingRequiredFields)
}

func TestExtractAndValidateEmptyText(t *testing.T) {
	p := NewProcessor(nil)

	res := p.ExtractAndValidate(context.Background(), "")
	require.NotNil(t, res)

	assert.Zero(t, res.ExtractedData.Len())
	assert.Empty(t, res.FieldConfidence)
	assert.Equal(t, 0.0, res.OverallConfidence)
	assert.Equal(t, []string{"invoice_number", "invoice_date", "total", "vendor_name"}, res.MissingRequiredFields)
	// With every amount defaulted to 0, the arithmetic trivially reconciles.
	// The overall confidence of 0.0 is what marks the document unusable.
	assert.True(t, res.MathValidation.SubtotalTaxTotalMatch)
}
