package services

import (
	"context"
	"fmt"

	"github.com/Belphemur/CaptionExport/internal/config"
	"github.com/Belphemur/CaptionExport/internal/metrics"
	"github.com/Belphemur/CaptionExport/internal/models"
	"github.com/Belphemur/CaptionExport/internal/parser"
)

// PayloadFetcher downloads the raw timed-text payload of a caption track.
type PayloadFetcher interface {
	FetchCaptionPayload(ctx context.Context, videoID, captionID string) (string, error)
}

// ExportedFile is a caption rendered into one format and named, ready to be saved.
type ExportedFile struct {
	models.RenderedSubtitle
	FileName string
	MimeType string
	Cues     int
	Skipped  int
}

// CaptionExporter runs fetch, parse, render and naming for one caption and format.
type CaptionExporter struct {
	fetcher  PayloadFetcher
	parser   parser.CueParser
	renderer SubtitleRenderer
	policy   *FilenamePolicy
}

// NewCaptionExporter creates an exporter. A nil policy uses the default fallback name.
func NewCaptionExporter(fetcher PayloadFetcher, p parser.CueParser, renderer SubtitleRenderer, policy *FilenamePolicy) *CaptionExporter {
	if policy == nil {
		policy = NewFilenamePolicy("", false)
	}
	return &CaptionExporter{fetcher: fetcher, parser: p, renderer: renderer, policy: policy}
}

// Export fetches the caption payload and renders it into format.
func (e *CaptionExporter) Export(ctx context.Context, video models.Video, caption models.CaptionDescriptor, format models.Format, fileNameOverride string) (*ExportedFile, error) {
	payload, err := e.fetcher.FetchCaptionPayload(ctx, video.ID, caption.ID)
	if err != nil {
		metrics.CaptionExportsTotal.WithLabelValues(format.String(), "error").Inc()
		return nil, err
	}
	return e.ExportPayload(video, caption, format, fileNameOverride, payload)
}

// ExportPayload renders an already fetched payload. Parsing never fails; only
// an unsupported format is an error.
func (e *CaptionExporter) ExportPayload(video models.Video, caption models.CaptionDescriptor, format models.Format, fileNameOverride, payload string) (*ExportedFile, error) {
	logger := config.GetLogger()

	parsed := e.parser.Parse(payload)
	if parsed.Skipped > 0 {
		metrics.TimedTextSkippedEntriesTotal.Add(float64(parsed.Skipped))
		logger.Warn().
			Str("videoID", video.ID).
			Str("captionID", caption.ID).
			Int("skipped", parsed.Skipped).
			Msg("Dropped incomplete timed-text entries")
	}

	content, err := e.renderer.Render(parsed.Cues, format)
	if err != nil {
		metrics.CaptionExportsTotal.WithLabelValues(format.String(), "error").Inc()
		return nil, fmt.Errorf("failed to render %s: %w", format, err)
	}

	file := &ExportedFile{
		RenderedSubtitle: models.RenderedSubtitle{
			Format:   format,
			Language: caption.Language,
			Content:  content,
		},
		FileName: e.policy.BuildFileName(video.Title, caption.Language, format, fileNameOverride),
		MimeType: format.MimeType(),
		Cues:     len(parsed.Cues),
		Skipped:  parsed.Skipped,
	}

	metrics.CaptionExportsTotal.WithLabelValues(format.String(), "success").Inc()
	logger.Debug().
		Str("videoID", video.ID).
		Str("captionID", caption.ID).
		Str("format", format.String()).
		Str("fileName", file.FileName).
		Int("cues", file.Cues).
		Msg("Rendered caption")

	return file, nil
}
