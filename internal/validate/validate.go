package validate

import (
	"log/slog"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/invoiceai/extractor/constants"
	"github.com/invoiceai/extractor/internal/entity"
	"github.com/invoiceai/extractor/internal/extract"
)

// amountTolerance is the absolute tolerance for cross-field arithmetic checks.
const amountTolerance = 0.01

// dateShape is the minimal mm/dd/yyyy-ish shape a date candidate must lead
// with to earn full date confidence. No calendar validation happens here.
var dateShape = regexp.MustCompile(`^\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}`)

// Engine normalizes candidates into a typed record with per-field confidence,
// runs arithmetic validation, and scores the document overall. It is
// stateless and safe for concurrent use.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Validate turns raw extraction output into a validated record. Fields that
// fail amount normalization are dropped rather than surfaced as errors.
func (e *Engine) Validate(res extract.Result) *entity.ExtractionResult {
	record := entity.NewRecord()
	confidence := make(map[string]float64)

	for _, cand := range res.Candidates {
		value, conf, keep := e.normalizeField(cand.Name, cand.Raw)
		if !keep {
			e.logger.Debug("field dropped during validation", "field", cand.Name, "raw", cand.Raw)
			continue
		}
		record.Set(cand.Name, value)
		confidence[cand.Name] = conf
	}

	if len(res.LineItems) > 0 {
		record.Set(constants.LineItemsKey, res.LineItems)
		confidence[constants.LineItemsKey] = 0.8
	}

	mathValidation := validateMathematics(record)
	overall := overallConfidence(confidence, mathValidation)
	missing := missingRequiredFields(record)

	return &entity.ExtractionResult{
		ExtractedData:         record,
		FieldConfidence:       confidence,
		MathValidation:        mathValidation,
		OverallConfidence:     overall,
		MissingRequiredFields: missing,
		DataQuality: entity.DataQuality{
			HasLineItems:        len(res.LineItems) > 0,
			HasVendorInfo:       record.String("vendor_name") != "",
			HasFinancialSummary: record.Has("total"),
			CalculationsValid:   mathValidation.CalculationsCorrect,
		},
	}
}

// normalizeField applies the per-field rule and returns the normalized value,
// its confidence, and whether the field survives.
func (e *Engine) normalizeField(name, raw string) (any, float64, bool) {
	if raw == "" {
		return nil, 0, false
	}

	if _, ok := constants.AmountFields[name]; ok {
		f, ok := entity.ParseAmount(raw)
		if !ok {
			return nil, 0, false
		}
		return f, 0.9, true
	}

	if _, ok := constants.DateFields[name]; ok {
		if dateShape.MatchString(raw) {
			return raw, 0.8, true
		}
		return raw, 0.5, true
	}

	switch name {
	case "invoice_number":
		return strings.ToUpper(raw), 0.9, true
	case "vendor_name":
		return titleCase(raw), 0.7, true
	default:
		return raw, 0.6, true
	}
}

// validateMathematics checks the invoice's arithmetic, defaulting absent
// amounts to zero. CalculationsCorrect deliberately tracks only the
// subtotal/tax/total reconciliation, matching longstanding behavior that
// consumers depend on; line-item agreement is reported separately.
func validateMathematics(record *entity.Record) entity.MathValidation {
	var v entity.MathValidation

	subtotal := record.Number("subtotal")
	taxAmount := record.Number("tax_amount")
	total := record.Number("total")
	discount := record.Number("discount")
	shipping := record.Number("shipping")

	calculated := subtotal + taxAmount + shipping - discount
	v.SubtotalTaxTotalMatch = math.Abs(calculated-total) < amountTolerance

	if items := record.LineItems(constants.LineItemsKey); len(items) > 0 {
		var sum float64
		for _, it := range items {
			if it.LineTotal != nil {
				sum += *it.LineTotal
			}
		}
		v.LineItemsSumMatch = math.Abs(sum-subtotal) < amountTolerance
	}

	v.CalculationsCorrect = v.SubtotalTaxTotalMatch
	return v
}

// overallConfidence averages the per-field scores, boosts for passing
// arithmetic, penalizes missing required fields, and clamps to [0,1] rounded
// to two decimals. A document with no extracted fields scores exactly 0.
func overallConfidence(confidence map[string]float64, mv entity.MathValidation) float64 {
	if len(confidence) == 0 {
		return 0.0
	}

	var sum float64
	for _, c := range confidence {
		sum += c
	}
	base := sum / float64(len(confidence))

	boost := 0.0
	if mv.CalculationsCorrect {
		boost = 0.10
	}

	penalty := 0.0
	for _, f := range constants.RequiredFields {
		if _, ok := confidence[f]; !ok {
			penalty += 0.05
		}
	}

	final := base + boost - penalty
	if final > 1.0 {
		final = 1.0
	}
	if final < 0.0 {
		final = 0.0
	}
	return math.Round(final*100) / 100
}

// missingRequiredFields reports required fields that are absent or falsy, in
// fixed order.
func missingRequiredFields(record *entity.Record) []string {
	missing := make([]string, 0, len(constants.RequiredFields))
	for _, f := range constants.RequiredFields {
		v, ok := record.Get(f)
		if !ok || isFalsy(v) {
			missing = append(missing, f)
		}
	}
	return missing
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return t == 0
	case []entity.LineItem:
		return len(t) == 0
	default:
		return false
	}
}

// titleCase capitalizes the first letter of every word and lowers the rest,
// leaving non-letter runes untouched.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			b.WriteRune(r)
			prevLetter = false
		case prevLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToUpper(r))
			prevLetter = true
		}
	}
	return b.String()
}
