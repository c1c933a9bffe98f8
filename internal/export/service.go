package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/invoiceai/extractor/constants"
	"github.com/invoiceai/extractor/internal/entity"
)

// Service serializes extraction results to JSON, CSV, and XLSX. Field order
// follows the record's insertion order in every format.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ToJSON renders the result as indented JSON and checks the output against
// the result schema before returning it.
func (s *Service) ToJSON(result *entity.ExtractionResult) ([]byte, error) {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	if err := ValidateResultJSON(b); err != nil {
		return nil, fmt.Errorf("exported JSON failed schema check: %w", err)
	}
	return b, nil
}

// ToCSV renders a flat Field,Value,Confidence table. Line items expand to
// line_item_N_* rows; summary rows close the file.
func (s *Service) ToCSV(result *entity.ExtractionResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Field", "Value", "Confidence"}); err != nil {
		return nil, err
	}

	for _, field := range result.ExtractedData.Keys() {
		if field == constants.LineItemsKey {
			for i, item := range result.ExtractedData.LineItems(field) {
				prefix := fmt.Sprintf("line_item_%d_", i+1)
				rows := [][]string{
					{prefix + "description", item.Description, ""},
					{prefix + "quantity", formatOptional(item.Quantity), ""},
					{prefix + "unit_price", formatOptional(item.UnitPrice), ""},
					{prefix + "line_total", formatOptional(item.LineTotal), ""},
				}
				for _, row := range rows {
					if err := w.Write(row); err != nil {
						return nil, err
					}
				}
			}
			continue
		}

		value, _ := result.ExtractedData.Get(field)
		confidence := result.FieldConfidence[field] * 100
		if err := w.Write([]string{field, formatValue(value), fmt.Sprintf("%.1f%%", confidence)}); err != nil {
			return nil, err
		}
	}

	summary := [][]string{
		{"overall_confidence", fmt.Sprintf("%.1f%%", result.OverallConfidence*100), ""},
		{"math_validation", strconv.FormatBool(result.MathValidation.CalculationsCorrect), ""},
	}
	for _, row := range summary {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// ToXLSX renders a styled workbook: an "Invoice Data" sheet with fields and
// summary, plus a "Line Items" sheet when rows were detected.
func (s *Service) ToXLSX(result *entity.ExtractionResult) ([]byte, error) {
	f := excelize.NewFile()
	const mainSheet = "Invoice Data"
	if err := f.SetSheetName("Sheet1", mainSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	write := func(sheet string, col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
	writeHeader := func(sheet string, headers []string) {
		for i, h := range headers {
			write(sheet, i+1, 1, h)
		}
		endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", endCell, headerStyle)
	}

	writeHeader(mainSheet, []string{"Field", "Value", "Confidence"})

	row := 2
	for _, field := range result.ExtractedData.Keys() {
		if field == constants.LineItemsKey {
			continue
		}
		value, _ := result.ExtractedData.Get(field)
		write(mainSheet, 1, row, displayFieldName(field))
		write(mainSheet, 2, row, formatValue(value))
		write(mainSheet, 3, row, fmt.Sprintf("%.1f%%", result.FieldConfidence[field]*100))
		row++
	}

	write(mainSheet, 1, row, "Overall Confidence")
	write(mainSheet, 2, row, fmt.Sprintf("%.1f%%", result.OverallConfidence*100))
	row++
	write(mainSheet, 1, row, "Math Validation")
	write(mainSheet, 2, row, strconv.FormatBool(result.MathValidation.CalculationsCorrect))

	if items := result.ExtractedData.LineItems(constants.LineItemsKey); len(items) > 0 {
		const itemSheet = "Line Items"
		if _, err := f.NewSheet(itemSheet); err != nil {
			return nil, err
		}
		writeHeader(itemSheet, []string{"Description", "Quantity", "Unit Price", "Line Total"})
		for i, item := range items {
			write(itemSheet, 1, i+2, item.Description)
			write(itemSheet, 2, i+2, formatOptional(item.Quantity))
			write(itemSheet, 3, i+2, formatOptional(item.UnitPrice))
			write(itemSheet, 4, i+2, formatOptional(item.LineTotal))
		}
	}

	if err := autofitColumns(f); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BatchEntry is one processed document in a batch summary.
type BatchEntry struct {
	Filename  string
	Result    *entity.ExtractionResult
	Duplicate bool
	Err       string
}

// BatchXLSX renders a one-row-per-document summary workbook for a batch run.
func (s *Service) BatchXLSX(entries []BatchEntry) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Invoices"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	headers := []string{"File", "Invoice Number", "Vendor", "Date", "Total", "Confidence", "Duplicate", "Error"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", endCell, headerStyle)

	for i, e := range entries {
		row := []any{e.Filename, "", "", "", "", "", strconv.FormatBool(e.Duplicate), e.Err}
		if e.Result != nil {
			data := e.Result.ExtractedData
			row[1] = data.String("invoice_number")
			row[2] = data.String("vendor_name")
			row[3] = data.String("invoice_date")
			if data.Has("total") {
				row[4] = data.Number("total")
			}
			row[5] = fmt.Sprintf("%.1f%%", e.Result.OverallConfidence*100)
		}
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	if err := autofitColumns(f); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// autofitColumns widens each column to its longest cell value, capped at 50.
func autofitColumns(f *excelize.File) error {
	for _, sheet := range f.GetSheetList() {
		cols, err := f.GetCols(sheet)
		if err != nil {
			return err
		}
		for i, col := range cols {
			maxLen := 0
			for _, cell := range col {
				if len(cell) > maxLen {
					maxLen = len(cell)
				}
			}
			width := float64(maxLen + 2)
			if width > 50 {
				width = 50
			}
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return err
			}
			if err := f.SetColWidth(sheet, name, name, width); err != nil {
				return err
			}
		}
	}
	return nil
}

// displayFieldName turns snake_case field names into spaced title case.
func displayFieldName(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
