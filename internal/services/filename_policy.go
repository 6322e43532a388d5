package services

import (
	"strings"
	"unicode"

	"github.com/Belphemur/CaptionExport/internal/models"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultFileNameFallback replaces a base name that sanitizes to nothing.
const DefaultFileNameFallback = "caption"

// maxBaseNameLength is the maximum length of the sanitized base name, before the suffix.
const maxBaseNameLength = 100

// FilenamePolicy derives deterministic, filesystem-safe output names.
type FilenamePolicy struct {
	// Fallback is used when the title or override sanitizes to an empty string.
	Fallback string
	// Transliterate folds accented letters to ASCII (é → e) instead of dropping them.
	Transliterate bool
}

// NewFilenamePolicy creates a policy. An empty fallback selects DefaultFileNameFallback.
func NewFilenamePolicy(fallback string, transliterate bool) *FilenamePolicy {
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultFileNameFallback
	}
	return &FilenamePolicy{Fallback: fallback, Transliterate: transliterate}
}

// BuildFileName returns "{base}_{language}.{ext}". The base is override when it is
// non-empty, otherwise title, reduced to [A-Za-z0-9 _-] with whitespace runs
// collapsed to a single underscore and cut to 100 characters.
func (p *FilenamePolicy) BuildFileName(title, languageCode string, format models.Format, override string) string {
	base := title
	if strings.TrimSpace(override) != "" {
		base = override
	}
	if p.Transliterate {
		base = foldToASCII(base)
	}

	base = sanitizeBaseName(base)
	if base == "" {
		base = p.Fallback
	}
	return base + "_" + languageCode + "." + format.Extension()
}

func sanitizeBaseName(s string) string {
	kept := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, s)

	// only plain spaces survive the filter above, so Fields splits on space runs
	collapsed := strings.Join(strings.Fields(kept), "_")
	if len(collapsed) > maxBaseNameLength {
		collapsed = collapsed[:maxBaseNameLength]
	}
	return collapsed
}

// foldToASCII decomposes s and drops the combining marks.
func foldToASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
