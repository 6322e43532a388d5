package grpc

import (
	"context"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Belphemur/CaptionExport/internal/batch"
	"github.com/Belphemur/CaptionExport/internal/config"
	"github.com/Belphemur/CaptionExport/internal/models"
	"github.com/Belphemur/CaptionExport/internal/services"
	"github.com/rs/zerolog"
)

// CaptionSource looks up videos and their caption tracks.
type CaptionSource interface {
	FetchVideo(ctx context.Context, videoID string) (*models.Video, error)
	FetchCaptionList(ctx context.Context, videoID string) ([]models.CaptionDescriptor, error)
}

// Options tunes the batches started through RunBatch.
type Options struct {
	Policy    batch.Policy
	Filenames *services.FilenamePolicy
	// BundleFormats is used when a RunBatch request has no "bundle" field.
	BundleFormats bool
	// Observers are notified of every batch in addition to the requesting stream.
	Observers []batch.Observer
}

// server implements CaptionServiceServer
type server struct {
	source   CaptionSource
	exporter batch.Exporter
	opts     Options
	logger   zerolog.Logger
}

// NewServer creates a new caption service instance
func NewServer(source CaptionSource, exporter batch.Exporter, opts Options) CaptionServiceServer {
	if opts.Filenames == nil {
		opts.Filenames = services.NewFilenamePolicy("", false)
	}
	return &server{
		source:   source,
		exporter: exporter,
		opts:     opts,
		logger:   config.GetLogger(),
	}
}

// ListCaptions takes {video_id} and answers {video, captions, default_caption_id}.
// video_id may also be a watch or share URL.
func (s *server) ListCaptions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	videoID, err := models.ExtractVideoID(stringField(req, "video_id"))
	if err != nil {
		return nil, toStatus(err, "failed to list captions")
	}
	s.logger.Debug().Str("videoID", videoID).Msg("ListCaptions called")

	video, captions, err := s.lookup(ctx, videoID)
	if err != nil {
		s.logger.Error().Err(err).Str("videoID", videoID).Msg("Failed to list captions")
		return nil, toStatus(err, "failed to list captions")
	}

	resp, err := convertCaptionListToStruct(*video, captions)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode caption list: %v", err)
	}
	s.logger.Debug().Str("videoID", videoID).Int("count", len(captions)).Msg("ListCaptions completed")
	return resp, nil
}

// RenderCaption takes {video_id, caption_id, format, file_name} and answers
// {file_name, mime_type, format, language, content, cues, skipped_entries}.
// caption_id also accepts a language code; without it the default caption is used.
func (s *server) RenderCaption(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	videoID, err := models.ExtractVideoID(stringField(req, "video_id"))
	if err != nil {
		return nil, toStatus(err, "failed to render caption")
	}
	format, err := models.ParseFormat(stringField(req, "format"))
	if err != nil {
		return nil, toStatus(err, "failed to render caption")
	}
	s.logger.Debug().Str("videoID", videoID).Str("format", format.String()).Msg("RenderCaption called")

	video, captions, err := s.lookup(ctx, videoID)
	if err != nil {
		s.logger.Error().Err(err).Str("videoID", videoID).Msg("Failed to list captions")
		return nil, toStatus(err, "failed to render caption")
	}

	var selectors []string
	if id := stringField(req, "caption_id"); id != "" {
		selectors = []string{id}
	}
	selected, err := models.SelectCaptions(captions, selectors)
	if err != nil {
		return nil, toStatus(err, "failed to render caption")
	}

	file, err := s.exporter.Export(ctx, *video, selected[0], format, stringField(req, "file_name"))
	if err != nil {
		s.logger.Error().Err(err).Str("videoID", videoID).Str("captionID", selected[0].ID).Msg("Failed to render caption")
		return nil, toStatus(err, "failed to download "+selected[0].Language+" captions")
	}

	resp, err := convertExportedFileToStruct(file)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode caption: %v", err)
	}
	s.logger.Debug().Str("videoID", videoID).Str("fileName", file.FileName).Int("size", len(file.Content)).Msg("RenderCaption completed")
	return resp, nil
}

// RunBatch takes {video_id, caption_ids, formats, file_name, bundle} and streams
// "item" events on every state change, a "file" event per rendered file and a
// final "done" event. Failed items do not fail the call.
func (s *server) RunBatch(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()

	videoID, err := models.ExtractVideoID(stringField(req, "video_id"))
	if err != nil {
		return toStatus(err, "failed to start batch")
	}
	formats, err := models.ParseFormats(stringListField(req, "formats"))
	if err != nil {
		return toStatus(err, "failed to start batch")
	}
	s.logger.Debug().Str("videoID", videoID).Int("formats", len(formats)).Msg("RunBatch called")

	video, captions, err := s.lookup(ctx, videoID)
	if err != nil {
		s.logger.Error().Err(err).Str("videoID", videoID).Msg("Failed to list captions")
		return toStatus(err, "failed to start batch")
	}
	selected, err := models.SelectCaptions(captions, stringListField(req, "caption_ids"))
	if err != nil {
		return toStatus(err, "failed to start batch")
	}

	job, err := batch.NewJob(batch.JobRequest{
		Video:            *video,
		Captions:         selected,
		Formats:          formats,
		FileNameOverride: stringField(req, "file_name"),
		BundleFormats:    boolField(req, "bundle", s.opts.BundleFormats),
	}, s.opts.Filenames)
	if err != nil {
		return toStatus(err, "failed to start batch")
	}

	sink := &streamSink{stream: stream, jobID: job.ID}
	observers := append([]batch.Observer{sink}, s.opts.Observers...)
	orchestrator := batch.NewOrchestrator(s.exporter, sink, s.opts.Policy, observers...)
	if err := orchestrator.Run(ctx, job); err != nil {
		return toStatus(err, "failed to run batch")
	}

	if err := sink.Err(); err != nil {
		s.logger.Error().Err(err).Str("job", job.ID).Msg("Failed to stream batch events")
		return status.Errorf(codes.Internal, "failed to stream batch events: %v", err)
	}
	s.logger.Debug().Str("job", job.ID).Int("items", job.Len()).Msg("RunBatch completed")
	return nil
}

func (s *server) lookup(ctx context.Context, videoID string) (*models.Video, []models.CaptionDescriptor, error) {
	video, err := s.source.FetchVideo(ctx, videoID)
	if err != nil {
		return nil, nil, err
	}
	captions, err := s.source.FetchCaptionList(ctx, videoID)
	if err != nil {
		return nil, nil, err
	}
	return video, captions, nil
}

// streamSink forwards a batch to a RunBatch stream: it saves files by sending them
// to the caller and observes item updates. It remembers the first send failure;
// once set, later saves fail so the remaining items end quickly.
type streamSink struct {
	stream grpc.ServerStreamingServer[structpb.Struct]
	jobID  string

	mu  sync.Mutex
	err error
}

func (k *streamSink) SaveRenderedFile(ctx context.Context, content, fileName, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := k.Err(); err != nil {
		return "", err
	}
	event, err := convertFileEventToStruct(k.jobID, fileName, mimeType, content)
	if err != nil {
		return "", err
	}
	if err := k.send(event); err != nil {
		return "", err
	}
	return fileName, nil
}

func (k *streamSink) OnItemUpdate(jobID string, item models.DownloadItem) {
	event, err := convertItemEventToStruct(jobID, item)
	if err != nil {
		k.setErr(err)
		return
	}
	_ = k.send(event)
}

func (k *streamSink) OnJobDone(snapshot batch.JobSnapshot) {
	event, err := convertDoneEventToStruct(snapshot)
	if err != nil {
		k.setErr(err)
		return
	}
	_ = k.send(event)
}

func (k *streamSink) send(event *structpb.Struct) error {
	if err := k.Err(); err != nil {
		return err
	}
	if err := k.stream.Send(event); err != nil {
		k.setErr(err)
		return err
	}
	return nil
}

func (k *streamSink) setErr(err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.err == nil {
		k.err = err
	}
}

// Err returns the first send failure.
func (k *streamSink) Err() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.err
}
