package models

import (
	"strings"

	"github.com/Belphemur/CaptionExport/internal/apperrors"
)

// Format is a subtitle output format.
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatTXT Format = "txt"
)

// AllFormats lists the supported formats in their canonical order.
var AllFormats = []Format{FormatSRT, FormatVTT, FormatTXT}

// String returns the string representation of the format
func (f Format) String() string {
	return string(f)
}

// Extension returns the file extension used for the format, without the leading dot.
func (f Format) Extension() string {
	return string(f)
}

// MimeType returns the MIME type handed to the save step for this format.
func (f Format) MimeType() string {
	switch f {
	case FormatSRT:
		return "text/srt"
	case FormatVTT:
		return "text/vtt"
	case FormatTXT:
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	switch f {
	case FormatSRT, FormatVTT, FormatTXT:
		return true
	default:
		return false
	}
}

// ParseFormat converts a user supplied format name (case-insensitive, optional leading dot).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	if !f.Valid() {
		return "", apperrors.NewValidationError("format", "unsupported format "+strings.TrimSpace(s)+" (expected srt, vtt or txt)")
	}
	return f, nil
}

// ParseFormats parses a list of format names, dropping duplicates while keeping the first occurrence order.
func ParseFormats(values []string) ([]Format, error) {
	formats := make([]Format, 0, len(values))
	seen := make(map[Format]struct{}, len(values))
	for _, v := range values {
		f, err := ParseFormat(v)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		formats = append(formats, f)
	}
	return formats, nil
}
