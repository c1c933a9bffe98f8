package constants

import "strings"

// MaxFileBytes is the default upload size cap for submitted documents.
const MaxFileBytes = 10 * 1024 * 1024

// AllowedExtensions holds the allowed file extensions for invoice submission.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tiff": {},
	"tif":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
