package entity

import (
	"github.com/google/uuid"
)

// LineItem is one heuristic table row from an invoice body. Numeric columns
// are nil when the matched token could not be parsed.
type LineItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	LineTotal   *float64 `json:"line_total"`
}

// MathValidation reports cross-field arithmetic consistency.
// CalculationsCorrect mirrors SubtotalTaxTotalMatch only; line-item agreement
// is reported but does not gate the aggregate flag.
type MathValidation struct {
	SubtotalTaxTotalMatch bool `json:"subtotal_tax_total_match"`
	LineItemsSumMatch     bool `json:"line_items_sum_match"`
	CalculationsCorrect   bool `json:"calculations_correct"`
}

// FileInfo describes the submitted document.
type FileInfo struct {
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	FileSize int    `json:"file_size"`
}

// DataQuality summarizes which parts of the invoice were recovered.
type DataQuality struct {
	HasLineItems        bool `json:"has_line_items"`
	HasVendorInfo       bool `json:"has_vendor_info"`
	HasFinancialSummary bool `json:"has_financial_summary"`
	CalculationsValid   bool `json:"calculations_valid"`
}

// ExtractionResult is the validated, confidence-scored outcome for one document.
// Every key in FieldConfidence has a corresponding field in ExtractedData and
// vice versa; the synthetic line_items key carries 0.8 when rows exist.
type ExtractionResult struct {
	RequestID             uuid.UUID          `json:"request_id,omitempty"`
	Success               bool               `json:"success"`
	ProcessingTime        float64            `json:"processing_time"`
	FileInfo              *FileInfo          `json:"file_info,omitempty"`
	ExtractedData         *Record            `json:"extracted_data"`
	FieldConfidence       map[string]float64 `json:"field_confidence"`
	MathValidation        MathValidation     `json:"math_validation"`
	OverallConfidence     float64            `json:"overall_confidence"`
	MissingRequiredFields []string           `json:"missing_required_fields"`
	DataQuality           DataQuality        `json:"data_quality"`
}
