package services

import (
	"github.com/Belphemur/CaptionExport/internal/models"
)

// SubtitleRenderer defines the interface for rendering cues into subtitle files
type SubtitleRenderer interface {
	// Render renders cues into the given format. The output only depends on the cues and the format.
	Render(cues []models.Cue, format models.Format) (string, error)
}
