package pipeline

import (
	"context"
	"log/slog"

	"github.com/invoiceai/extractor/internal/entity"
	"github.com/invoiceai/extractor/internal/extract"
	"github.com/invoiceai/extractor/internal/validate"
)

// Processor runs the extraction and validation stages back to back, turning
// recognized text into a structured, confidence-scored record.
type Processor struct {
	extractor *extract.Engine
	validator *validate.Engine
	logger    *slog.Logger
}

func NewProcessor(logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		extractor: extract.NewEngine(),
		validator: validate.NewEngine(logger),
		logger:    logger,
	}
}

// ExtractAndValidate resolves field candidates from rawText and validates
// them into a scored record. Empty or unrecognizable text is tolerated: the
// result simply carries zero fields, confidence 0, and every required field
// reported missing.
func (p *Processor) ExtractAndValidate(ctx context.Context, rawText string) *entity.ExtractionResult {
	_ = ctx // extraction and validation are pure in-memory computations

	raw := p.extractor.ExtractFields(rawText)
	result := p.validator.Validate(raw)

	p.logger.Info("extract.complete",
		"candidates", len(raw.Candidates),
		"line_items", len(raw.LineItems),
		"fields", result.ExtractedData.Len(),
		"overall_confidence", result.OverallConfidence,
		"calculations_correct", result.MathValidation.CalculationsCorrect,
	)
	return result
}
