package models

import (
	"strings"

	"github.com/Belphemur/CaptionExport/internal/apperrors"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// CaptionDescriptor describes one caption track available for a video
type CaptionDescriptor struct {
	ID              string `json:"id"`
	Language        string `json:"language"`
	DisplayName     string `json:"displayName"`
	IsAutoGenerated bool   `json:"isAutoGenerated"`
}

// Video holds the metadata needed to name exported files
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DefaultCaption picks the caption preselected for a video: the first English
// track ("en" or "en-US") if any, otherwise the first track. Returns nil for an empty list.
func DefaultCaption(captions []CaptionDescriptor) *CaptionDescriptor {
	if len(captions) == 0 {
		return nil
	}
	for i := range captions {
		if captions[i].Language == "en" || captions[i].Language == "en-US" {
			return &captions[i]
		}
	}
	return &captions[0]
}

// FindCaption returns the caption with the given ID or language code.
func FindCaption(captions []CaptionDescriptor, idOrLanguage string) (*CaptionDescriptor, bool) {
	for i := range captions {
		if captions[i].ID == idOrLanguage {
			return &captions[i], true
		}
	}
	for i := range captions {
		if strings.EqualFold(captions[i].Language, idOrLanguage) {
			return &captions[i], true
		}
	}
	return nil, false
}

// LanguageDisplayName returns the English name of a BCP 47 language code,
// e.g. "en-US" → "American English". Unknown codes fall back to the upper-cased code.
func LanguageDisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return strings.ToUpper(code)
	}
	return name
}

// SelectCaptions resolves caption IDs or language codes against the available
// tracks, keeping the selector order. No selector picks DefaultCaption.
func SelectCaptions(captions []CaptionDescriptor, selectors []string) ([]CaptionDescriptor, error) {
	if len(selectors) == 0 {
		if def := DefaultCaption(captions); def != nil {
			return []CaptionDescriptor{*def}, nil
		}
		return nil, apperrors.NewValidationError("captions", "select at least one caption")
	}

	selected := make([]CaptionDescriptor, 0, len(selectors))
	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		caption, ok := FindCaption(captions, sel)
		if !ok {
			return nil, apperrors.NewValidationError("captions", "no caption track matches "+sel)
		}
		selected = append(selected, *caption)
	}
	if len(selected) == 0 {
		return nil, apperrors.NewValidationError("captions", "select at least one caption")
	}
	return selected, nil
}
