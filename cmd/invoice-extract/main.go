package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/invoiceai/extractor/internal/common"
	"github.com/invoiceai/extractor/internal/dedup"
	"github.com/invoiceai/extractor/internal/export"
	"github.com/invoiceai/extractor/internal/pipeline"
	"github.com/invoiceai/extractor/internal/quota"
	"github.com/invoiceai/extractor/internal/service"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		file     = flag.String("file", "", "invoice document to process (required)")
		textFile = flag.String("text", "", "recognized text file for the document (optional; native PDF text is used when omitted)")
		format   = flag.String("format", "json", "output format: json, csv, or xlsx")
		out      = flag.String("out", "", "output file path (optional, defaults next to the input)")
		id       = flag.String("id", "local", "requester identity")
	)
	flag.Parse()

	if *file == "" {
		printError("Error: --file is required\n")
		os.Exit(1)
	}
	switch strings.ToLower(*format) {
	case "json", "csv", "xlsx":
	default:
		printError("Error: --format must be json, csv, or xlsx\n")
		os.Exit(1)
	}
	if *out == "" {
		base := strings.TrimSuffix(*file, filepath.Ext(*file))
		*out = base + "_data." + strings.ToLower(*format)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()

	svc := service.NewService(
		quota.NewLimiter(cfg.Quota.MaxRequests, cfg.Quota.Window),
		dedup.NewDetector(cfg.Dedup.Retention),
		pipeline.NewProcessor(logger),
		cfg.Ingest.MaxFileBytes,
		logger,
	)
	exporter := export.NewService(logger)

	content, err := os.ReadFile(*file)
	if err != nil {
		printError("Error: reading %s: %v\n", *file, err)
		os.Exit(1)
	}

	var text string
	if *textFile != "" {
		b, err := os.ReadFile(*textFile)
		if err != nil {
			printError("Error: reading %s: %v\n", *textFile, err)
			os.Exit(1)
		}
		text = string(b)
	}

	ctx := common.WithRequesterID(context.Background(), *id)
	res, err := svc.ProcessDocument(ctx, service.ProcessRequest{
		RequesterID: *id,
		Filename:    filepath.Base(*file),
		Content:     content,
		Text:        text,
	})
	if err != nil {
		logger.Error("processing failed", "file", *file, "error", err)
		os.Exit(1)
	}
	if res.Duplicate {
		logger.Info("duplicate detected, returning previously stored result", "file", *file)
	}

	var outBytes []byte
	switch strings.ToLower(*format) {
	case "json":
		outBytes, err = exporter.ToJSON(res.Result)
	case "csv":
		outBytes, err = exporter.ToCSV(res.Result)
	case "xlsx":
		outBytes, err = exporter.ToXLSX(res.Result)
	}
	if err != nil {
		logger.Error("export failed", "format", *format, "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, outBytes, 0o644); err != nil {
		printError("Error: writing %s: %v\n", *out, err)
		os.Exit(1)
	}

	logger.Info("done",
		"out", *out,
		"overall_confidence", res.Result.OverallConfidence,
		"missing_required", res.Result.MissingRequiredFields,
		"remaining_requests", res.RateLimit.Remaining,
	)
}
