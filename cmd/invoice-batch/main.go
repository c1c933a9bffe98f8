package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/invoiceai/extractor/internal/common"
	"github.com/invoiceai/extractor/internal/dedup"
	"github.com/invoiceai/extractor/internal/export"
	"github.com/invoiceai/extractor/internal/ingest"
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
		dir        = flag.String("dir", "", "directory of invoice documents to process (required)")
		out        = flag.String("out", "", "summary XLSX path (optional, defaults to parent directory)")
		id         = flag.String("id", "local", "requester identity")
		skipHidden = flag.Bool("skip-hidden", true, "skip hidden files and directories")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "invoices.xlsx")
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

	logger.Info("scanning directory", "dir", *dir)
	paths, stats, err := ingest.ScanDirectory(*dir, *skipHidden)
	if err != nil {
		logger.Error("failed to scan directory", "error", err)
		os.Exit(1)
	}
	logger.Info("scan complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"skipped", stats.Skipped)

	ctx := common.WithRequesterID(context.Background(), *id)

	var entries []export.BatchEntry
	processed := 0
	duplicates := 0
	failures := 0

	for _, path := range paths {
		entry := export.BatchEntry{Filename: filepath.Base(path)}

		content, err := os.ReadFile(path)
		if err != nil {
			logger.Error("failed to read file", "path", path, "error", err)
			entry.Err = err.Error()
			failures++
			entries = append(entries, entry)
			continue
		}

		res, err := svc.ProcessDocument(ctx, service.ProcessRequest{
			RequesterID: *id,
			Filename:    filepath.Base(path),
			Content:     content,
		})
		if err != nil {
			logger.Error("failed to process file", "path", path, "error", err)
			entry.Err = err.Error()
			failures++
			entries = append(entries, entry)
			continue
		}

		entry.Result = res.Result
		entry.Duplicate = res.Duplicate
		if res.Duplicate {
			duplicates++
		}
		processed++
		entries = append(entries, entry)
	}

	logger.Info("exporting summary", "output", *out)
	xlsxBytes, err := exporter.BatchXLSX(entries)
	if err != nil {
		logger.Error("failed to build summary workbook", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0o644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete",
		"files_processed", processed,
		"duplicates", duplicates,
		"failures", failures,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files processed: %d\n", processed)
	fmt.Printf("- Duplicates: %d\n", duplicates)
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Output: %s\n", *out)
}
