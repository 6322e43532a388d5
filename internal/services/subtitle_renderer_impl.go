package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Belphemur/CaptionExport/internal/apperrors"
	"github.com/Belphemur/CaptionExport/internal/models"
)

const vttHeader = "WEBVTT\n\n"

// timestampEpsilon absorbs float noise such as 0.29*1000 = 289.99999999999994
// before the millisecond value is truncated.
const timestampEpsilon = 1e-6

// DefaultSubtitleRenderer is the default implementation of SubtitleRenderer
type DefaultSubtitleRenderer struct{}

// NewSubtitleRenderer creates a new instance of DefaultSubtitleRenderer
func NewSubtitleRenderer() SubtitleRenderer {
	return &DefaultSubtitleRenderer{}
}

// Render renders cues into srt, vtt or txt.
//
// The vtt output is the srt body behind a WEBVTT header with the millisecond
// separators switched to '.', so it keeps the numeric index lines.
func (r *DefaultSubtitleRenderer) Render(cues []models.Cue, format models.Format) (string, error) {
	switch format {
	case models.FormatSRT:
		return renderSRT(cues, ','), nil
	case models.FormatVTT:
		return vttHeader + renderSRT(cues, '.'), nil
	case models.FormatTXT:
		return renderTXT(cues), nil
	default:
		return "", apperrors.NewValidationError("format", fmt.Sprintf("unsupported format %q", format))
	}
}

func renderSRT(cues []models.Cue, msSeparator byte) string {
	var b strings.Builder
	for _, cue := range cues {
		b.WriteString(strconv.Itoa(cue.Index))
		b.WriteByte('\n')
		b.WriteString(FormatTimestamp(cue.StartSeconds, msSeparator))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(cue.EndSeconds, msSeparator))
		b.WriteByte('\n')
		b.WriteString(cue.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

func renderTXT(cues []models.Cue) string {
	parts := make([]string, 0, len(cues))
	for _, cue := range cues {
		if text := strings.TrimSpace(cue.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// FormatTimestamp formats seconds as HH:MM:SS followed by msSeparator and a three
// digit millisecond part. Every component is truncated, never rounded up.
// Negative, NaN and infinite values render as zero.
func FormatTimestamp(seconds float64, msSeparator byte) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	totalMs := int64(math.Floor(seconds*1000 + timestampEpsilon))

	hours := totalMs / 3_600_000
	minutes := totalMs / 60_000 % 60
	secs := totalMs / 1000 % 60
	ms := totalMs % 1000

	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, secs, msSeparator, ms)
}
