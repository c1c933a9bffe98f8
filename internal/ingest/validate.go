package ingest

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/invoiceai/extractor/constants"
)

// File type names as reported by DetectFileType.
const (
	TypePDF     = "pdf"
	TypeJPEG    = "jpeg"
	TypePNG     = "png"
	TypeTIFF    = "tiff"
	TypeUnknown = "unknown"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// ValidateFile rejects documents that are empty, oversized, or carry an
// extension outside the allowed set. maxBytes <= 0 falls back to the default
// cap.
func ValidateFile(content []byte, filename string, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = constants.MaxFileBytes
	}
	if len(content) == 0 {
		return fmt.Errorf("file is empty")
	}
	if int64(len(content)) > maxBytes {
		return fmt.Errorf("file size (%d bytes) exceeds %d byte limit", len(content), maxBytes)
	}

	ext := constants.NormalizeExt(filepath.Ext(filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return fmt.Errorf("file type %q not supported", ext)
	}
	return nil
}

// DetectFileType sniffs the document type from its leading bytes.
func DetectFileType(content []byte) string {
	switch {
	case IsPDF(content):
		return TypePDF
	case len(content) >= 2 && content[0] == 0xff && content[1] == 0xd8:
		return TypeJPEG
	case bytes.HasPrefix(content, pngSignature):
		return TypePNG
	case bytes.HasPrefix(content, []byte("II")) || bytes.HasPrefix(content, []byte("MM")):
		return TypeTIFF
	default:
		return TypeUnknown
	}
}

// IsPDF reports whether the bytes start with the PDF magic.
func IsPDF(content []byte) bool {
	return bytes.HasPrefix(content, []byte("%PDF"))
}
