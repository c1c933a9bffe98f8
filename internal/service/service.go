package service

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/invoiceai/extractor/internal/common"
	"github.com/invoiceai/extractor/internal/dedup"
	"github.com/invoiceai/extractor/internal/entity"
	"github.com/invoiceai/extractor/internal/ingest"
	"github.com/invoiceai/extractor/internal/pipeline"
	"github.com/invoiceai/extractor/internal/quota"
)

// Service orchestrates one document submission end to end: admission check,
// intake validation, extraction and validation, then duplicate suppression.
type Service struct {
	limiter      *quota.Limiter
	detector     *dedup.Detector
	processor    *pipeline.Processor
	maxFileBytes int64
	logger       *slog.Logger
}

func NewService(limiter *quota.Limiter, detector *dedup.Detector, processor *pipeline.Processor, maxFileBytes int64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		limiter:      limiter,
		detector:     detector,
		processor:    processor,
		maxFileBytes: maxFileBytes,
		logger:       logger,
	}
}

// ProcessRequest represents one document submission.
type ProcessRequest struct {
	RequesterID string
	Filename    string
	Content     []byte
	// Text is the recognized document text. When empty and Content is a PDF
	// with a native text layer, the text is extracted here; image OCR is the
	// caller's responsibility.
	Text string
}

// RateLimitInfo reports the requester's remaining budget.
type RateLimitInfo struct {
	Remaining int        `json:"remaining_requests"`
	Limit     int        `json:"limit"`
	Window    string     `json:"window"`
	ResetAt   *time.Time `json:"reset_time,omitempty"`
}

// ProcessResult wraps the extraction outcome with governance metadata.
type ProcessResult struct {
	Result    *entity.ExtractionResult `json:"result"`
	Duplicate bool                     `json:"duplicate_detected"`
	Message   string                   `json:"message,omitempty"`
	RateLimit *RateLimitInfo           `json:"rate_limit_info,omitempty"`
}

// ProcessDocument gates the request, extracts and validates the document, and
// suppresses duplicates. A duplicate submission returns the previously stored
// result instead of a fresh one. Quota denial surfaces as ResourceExhausted
// with a retry hint; malformed requests as InvalidArgument.
func (s *Service) ProcessDocument(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	identity := strings.TrimSpace(req.RequesterID)
	if identity == "" {
		identity = common.RequesterIDFromContext(ctx)
	}

	v := common.NewValidator()
	v.Field("requester_id", identity, common.Required)
	v.Field("content", req.Content, common.Required)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !s.limiter.Allow(identity, now) {
		msg := "rate limit exceeded"
		if resetAt, ok := s.limiter.ResetAt(identity, now); ok {
			msg = "rate limit exceeded, retry after " + resetAt.Format(time.RFC3339)
		}
		s.logger.Warn("admission denied", "requester_id", identity)
		return nil, common.ResourceExhaustedErrorf("%s: maximum %d requests per %s",
			msg, s.limiter.MaxRequests(), s.limiter.Window())
	}

	if err := ingest.ValidateFile(req.Content, req.Filename, s.maxFileBytes); err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}

	text := req.Text
	if text == "" && ingest.IsPDF(req.Content) {
		extracted, err := ingest.ExtractPDFText(req.Content)
		if err != nil {
			s.logger.Warn("native PDF text extraction failed", "requester_id", identity, "error", err)
		} else {
			text = extracted
		}
	}

	start := time.Now()
	result := s.processor.ExtractAndValidate(ctx, text)
	result.RequestID = uuid.New()
	result.Success = true
	result.ProcessingTime = math.Round(time.Since(start).Seconds()*100) / 100
	result.FileInfo = &entity.FileInfo{
		Filename: req.Filename,
		FileType: ingest.DetectFileType(req.Content),
		FileSize: len(req.Content),
	}

	isDup, prior := s.detector.CheckDuplicate(identity, req.Content, result)
	if isDup {
		s.logger.Info("duplicate submission", "requester_id", identity, "request_id", result.RequestID)
		return &ProcessResult{
			Result:    prior,
			Duplicate: true,
			Message:   "this document has been processed before",
			RateLimit: s.rateLimitInfo(identity, now),
		}, nil
	}

	s.logger.Info("document processed",
		"requester_id", identity,
		"request_id", result.RequestID,
		"overall_confidence", result.OverallConfidence,
		"missing_required", len(result.MissingRequiredFields),
	)
	return &ProcessResult{
		Result:    result,
		RateLimit: s.rateLimitInfo(identity, now),
	}, nil
}

// Stats reports the requester's current quota standing without consuming it.
func (s *Service) Stats(identity string) *RateLimitInfo {
	return s.rateLimitInfo(identity, time.Now().UTC())
}

func (s *Service) rateLimitInfo(identity string, now time.Time) *RateLimitInfo {
	info := &RateLimitInfo{
		Remaining: s.limiter.Remaining(identity, now),
		Limit:     s.limiter.MaxRequests(),
		Window:    s.limiter.Window().String(),
	}
	if resetAt, ok := s.limiter.ResetAt(identity, now); ok {
		info.ResetAt = &resetAt
	}
	return info
}
