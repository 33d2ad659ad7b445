package media

import (
	"path/filepath"
	"strings"
)

// DefaultExtensions lists the upload extensions accepted out of the box.
var DefaultExtensions = []string{"mp4", "avi", "mov", "mkv", "webm"}

// Validator gates uploads by filename extension. It performs no content
// sniffing; the extension is the only signal checked.
type Validator struct {
	allowed map[string]struct{}
}

// NewValidator builds a validator from an extension allow-list. Extensions
// are matched case-insensitively, without the leading dot.
func NewValidator(extensions []string) *Validator {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &Validator{allowed: allowed}
}

// IsAllowed reports whether the filename carries an allowed extension. A
// filename without an extension is always rejected.
func (v *Validator) IsAllowed(filename string) bool {
	ext := Ext(filename)
	if ext == "" {
		return false
	}
	_, ok := v.allowed[ext]
	return ok
}

// Ext returns the lower-cased extension of filename without the dot, or ""
// when there is none.
func Ext(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
