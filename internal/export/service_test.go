package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/invoiceai/extractor/internal/entity"
)

func f64(v float64) *float64 { return &v }

func sampleResult() *entity.ExtractionResult {
	rec := entity.NewRecord()
	rec.Set("vendor_name", "Acme Widgets Inc.")
	rec.Set("invoice_number", "INV-2024-001")
	rec.Set("invoice_date", "12/15/2024")
	rec.Set("subtotal", 100.0)
	rec.Set("tax_amount", 10.0)
	rec.Set("total", 110.0)
	rec.Set("line_items", []entity.LineItem{
		{Description: "Web Development", Quantity: f64(1), UnitPrice: f64(100), LineTotal: f64(100)},
	})

	return &entity.ExtractionResult{
		Success:       true,
		ExtractedData: rec,
		FieldConfidence: map[string]float64{
			"vendor_name":    0.7,
			"invoice_number": 0.9,
			"invoice_date":   0.8,
			"subtotal":       0.9,
			"tax_amount":     0.9,
			"total":          0.9,
			"line_items":     0.8,
		},
		MathValidation: entity.MathValidation{
			SubtotalTaxTotalMatch: true,
			LineItemsSumMatch:     true,
			CalculationsCorrect:   true,
		},
		OverallConfidence:     0.95,
		MissingRequiredFields: []string{},
	}
}

func TestToJSON(t *testing.T) {
	s := NewService(nil)

	b, err := s.ToJSON(sampleResult())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, true, decoded["success"])

	data, ok := decoded["extracted_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INV-2024-001", data["invoice_number"])
	assert.Equal(t, 110.0, data["total"])
}

func TestJSONPreservesFieldOrder(t *testing.T) {
	s := NewService(nil)

	b, err := s.ToJSON(sampleResult())
	require.NoError(t, err)

	// The raw JSON text must list fields in extraction order.
	idxVendor := bytes.Index(b, []byte(`"vendor_name"`))
	idxNumber := bytes.Index(b, []byte(`"invoice_number"`))
	idxTotal := bytes.Index(b, []byte(`"total"`))
	require.Positive(t, idxVendor)
	assert.Less(t, idxVendor, idxNumber)
	assert.Less(t, idxNumber, idxTotal)
}

func TestToJSONRejectsSchemaViolations(t *testing.T) {
	s := NewService(nil)

	bad := sampleResult()
	bad.OverallConfidence = 3.5 // outside [0,1]
	_, err := s.ToJSON(bad)
	assert.Error(t, err)
}

func TestToCSV(t *testing.T) {
	s := NewService(nil)

	b, err := s.ToCSV(sampleResult())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Field", "Value", "Confidence"}, rows[0])
	assert.Equal(t, []string{"vendor_name", "Acme Widgets Inc.", "70.0%"}, rows[1])
	assert.Equal(t, []string{"invoice_number", "INV-2024-001", "90.0%"}, rows[2])

	var flat [][]string
	for _, row := range rows {
		flat = append(flat, row)
	}
	assert.Contains(t, flat, []string{"line_item_1_description", "Web Development", ""})
	assert.Contains(t, flat, []string{"line_item_1_quantity", "1", ""})
	assert.Contains(t, flat, []string{"overall_confidence", "95.0%", ""})
	assert.Contains(t, flat, []string{"math_validation", "true", ""})
}

func TestToXLSX(t *testing.T) {
	s := NewService(nil)

	b, err := s.ToXLSX(sampleResult())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Invoice Data", "Line Items"}, f.GetSheetList())

	got, err := f.GetCellValue("Invoice Data", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Field", got)

	got, err = f.GetCellValue("Invoice Data", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Vendor Name", got)

	got, err = f.GetCellValue("Line Items", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Web Development", got)
}

func TestBatchXLSX(t *testing.T) {
	s := NewService(nil)

	entries := []BatchEntry{
		{Filename: "a.pdf", Result: sampleResult()},
		{Filename: "b.pdf", Result: sampleResult(), Duplicate: true},
		{Filename: "c.pdf", Err: "file is empty"},
	}

	b, err := s.BatchXLSX(entries)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Invoices"}, f.GetSheetList())

	got, err := f.GetCellValue("Invoices", "B2")
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-001", got)

	got, err = f.GetCellValue("Invoices", "G3")
	require.NoError(t, err)
	assert.Equal(t, "true", got)

	got, err = f.GetCellValue("Invoices", "H4")
	require.NoError(t, err)
	assert.Equal(t, "file is empty", got)
}

func TestToXLSXWithoutLineItems(t *testing.T) {
	s := NewService(nil)

	rec := entity.NewRecord()
	rec.Set("invoice_number", "INV-1")
	res := &entity.ExtractionResult{
		Success:               true,
		ExtractedData:         rec,
		FieldConfidence:       map[string]float64{"invoice_number": 0.9},
		MissingRequiredFields: []string{"invoice_date", "total", "vendor_name"},
	}

	b, err := s.ToXLSX(res)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Invoice Data"}, f.GetSheetList())
}
