package security

import (
	"bytes"
	"mime"
	"path/filepath"
	"strings"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Lowercased file extension
	DeclaredMIME string // Media type sent by the client, parameters stripped
	Error        string // Error message if validation failed
}

// Signatures of binary formats that are commonly renamed to .csv by mistake
// (spreadsheets exported as xlsx, PDFs, images).
var binarySignatures = map[string][]byte{
	"zip":  {0x50, 0x4B, 0x03, 0x04},
	"ole":  {0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1},
	"pdf":  {0x25, 0x50, 0x44, 0x46},
	"png":  {0x89, 0x50, 0x4E, 0x47},
	"jpeg": {0xFF, 0xD8, 0xFF},
	"gif":  {0x47, 0x49, 0x46, 0x38},
}

var csvMIMETypes = map[string]bool{
	"text/csv": true,
}

// ValidateCSVUpload accepts a file when its declared media type is text/csv
// or its name ends in .csv, and its content is not a known binary format.
func ValidateCSVUpload(filename, contentType string, data []byte) FileValidationResult {
	result := FileValidationResult{
		Extension:    strings.ToLower(filepath.Ext(filename)),
		DeclaredMIME: declaredMIME(contentType),
	}

	// Layer 1: declared kind
	if result.Extension != ".csv" && !csvMIMETypes[result.DeclaredMIME] {
		result.Error = "file must be a CSV"
		return result
	}

	// Layer 2: content must not be a binary document in disguise
	if kind, ok := detectBinary(data); ok {
		result.Error = "file content looks like " + kind + ", not CSV"
		return result
	}

	result.Valid = true
	return result
}

func declaredMIME(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

func detectBinary(data []byte) (string, bool) {
	for kind, sig := range binarySignatures {
		if bytes.HasPrefix(data, sig) {
			return kind, true
		}
	}
	// NUL bytes never appear in text exports
	probe := data
	if len(probe) > 512 {
		probe = probe[:512]
	}
	if bytes.IndexByte(probe, 0x00) >= 0 {
		return "binary data", true
	}
	return "", false
}
