package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Belphemur/CaptionExport/internal/apperrors"
	"github.com/Belphemur/CaptionExport/internal/models"
	"github.com/Belphemur/CaptionExport/internal/parser"
	"github.com/Belphemur/CaptionExport/internal/testutil"
)

type stubFetcher struct {
	payloads map[string]string
	err      error
	calls    []string
}

func (s *stubFetcher) FetchCaptionPayload(_ context.Context, videoID, captionID string) (string, error) {
	s.calls = append(s.calls, videoID+"/"+captionID)
	if s.err != nil {
		return "", s.err
	}
	return s.payloads[captionID], nil
}

func newTestExporter(fetcher PayloadFetcher) *CaptionExporter {
	return NewCaptionExporter(fetcher, parser.NewTimedTextParser(), NewSubtitleRenderer(), nil)
}

func TestCaptionExporter_Export(t *testing.T) {
	t.Parallel()
	fetcher := &stubFetcher{payloads: map[string]string{"cap-en": testutil.EnglishTranscript}}
	exporter := newTestExporter(fetcher)

	video := models.Video{ID: "dQw4w9WgXcQ", Title: "Never: Gonna Give"}
	caption := models.CaptionDescriptor{ID: "cap-en", Language: "en"}

	file, err := exporter.Export(context.Background(), video, caption, models.FormatSRT, "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if file.FileName != "Never_Gonna_Give_en.srt" {
		t.Errorf("Unexpected file name %q", file.FileName)
	}
	if file.MimeType != "text/srt" || file.Format != models.FormatSRT || file.Language != "en" {
		t.Errorf("Unexpected metadata %+v", file)
	}
	if file.Cues != 3 || file.Skipped != 0 {
		t.Errorf("Expected 3 cues and no skipped entries, got %d/%d", file.Cues, file.Skipped)
	}
	if !strings.HasPrefix(file.Content, "1\n00:00:00,000 --> 00:00:01,500\nNever gonna give you up\n\n") {
		t.Errorf("Unexpected content %q", file.Content)
	}
	if !strings.Contains(file.Content, "<music> & dance") {
		t.Errorf("Expected decoded entities in content, got %q", file.Content)
	}
	if len(fetcher.calls) != 1 || fetcher.calls[0] != "dQw4w9WgXcQ/cap-en" {
		t.Errorf("Unexpected fetch calls %v", fetcher.calls)
	}
}

func TestCaptionExporter_ExportPayload_ReportsSkipped(t *testing.T) {
	t.Parallel()
	exporter := newTestExporter(&stubFetcher{})

	file, err := exporter.ExportPayload(models.Video{Title: "Gaps"}, models.CaptionDescriptor{Language: "en"}, models.FormatTXT, "", testutil.TranscriptWithGaps)
	if err != nil {
		t.Fatalf("ExportPayload: %v", err)
	}
	if file.Skipped != 2 || file.Cues != 3 {
		t.Errorf("Expected 3 cues and 2 skipped, got %d/%d", file.Cues, file.Skipped)
	}
	if file.Content != "first second third" {
		t.Errorf("Unexpected txt content %q", file.Content)
	}
}

func TestCaptionExporter_FetchError(t *testing.T) {
	t.Parallel()
	fetchErr := &apperrors.ErrNetwork{URL: "https://api/captions/cap-en", StatusCode: 403}
	exporter := newTestExporter(&stubFetcher{err: fetchErr})

	_, err := exporter.Export(context.Background(), models.Video{ID: "v"}, models.CaptionDescriptor{ID: "cap-en"}, models.FormatSRT, "")
	if !errors.Is(err, &apperrors.ErrNetwork{}) {
		t.Fatalf("Expected ErrNetwork, got %v", err)
	}
}

func TestCaptionExporter_UnknownFormat(t *testing.T) {
	t.Parallel()
	exporter := newTestExporter(&stubFetcher{})

	_, err := exporter.ExportPayload(models.Video{}, models.CaptionDescriptor{}, models.Format("ssa"), "", testutil.FrenchTranscript)
	if !errors.Is(err, &apperrors.ErrValidation{}) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}
}
