// Package validation provides upload validation utilities.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrEmptyUpload is returned for a zero-byte upload.
var ErrEmptyUpload = errors.New("uploaded file is empty")

// SupportedExtensions lists the upload extensions the workbook loader reads.
var SupportedExtensions = []string{".csv", ".xlsx", ".xlsm"}

// ValidateUpload checks an uploaded file's name and size before parsing.
// A non-positive maxSize disables the size check.
func ValidateUpload(name string, size, maxSize int64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("uploaded file has no name")
	}
	if size == 0 {
		return ErrEmptyUpload
	}
	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("uploaded file is %d bytes, the limit is %d", size, maxSize)
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return nil
		}
	}
	return fmt.Errorf("file %s has unsupported extension %q, expected one of %s",
		name, ext, strings.Join(SupportedExtensions, ", "))
}

// ParseList splits a comma-separated form value into trimmed, non-empty items.
func ParseList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
