package reporting

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Belphemur/CaptionExport/internal/batch"
	"github.com/Belphemur/CaptionExport/internal/config"
	"github.com/Belphemur/CaptionExport/internal/models"
)

const defaultFlushTimeout = 2 * time.Second

// SentryObserver reports failed download items to Sentry. It is a batch.Observer.
type SentryObserver struct {
	hub          *sentry.Hub
	flushTimeout time.Duration
}

var _ batch.Observer = (*SentryObserver)(nil)

// NewSentryObserver creates an observer with its own Sentry client.
func NewSentryObserver(opts sentry.ClientOptions) (*SentryObserver, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &SentryObserver{
		hub:          sentry.NewHub(client, sentry.NewScope()),
		flushTimeout: defaultFlushTimeout,
	}, nil
}

// NewSentryObserverFromConfig returns nil, nil when no DSN is configured.
func NewSentryObserverFromConfig(cfg *config.Config) (*SentryObserver, error) {
	if cfg.Sentry.DSN == "" {
		return nil, nil
	}
	obs, err := NewSentryObserver(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
	})
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger()
	logger.Info().Str("environment", cfg.Sentry.Environment).Msg("Sentry error reporting enabled")
	return obs, nil
}

// OnItemUpdate captures one event per failed item.
func (o *SentryObserver) OnItemUpdate(jobID string, item models.DownloadItem) {
	if item.Status != models.ItemStatusError {
		return
	}

	formats := make([]string, len(item.Formats))
	for i, f := range item.Formats {
		formats[i] = f.String()
	}

	// One observer serves concurrent batches: each event gets its own hub.
	hub := o.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetTag("job_id", jobID)
		scope.SetTag("video_id", item.VideoID)
		scope.SetTag("language", item.Caption.Language)
		scope.SetContext("download_item", sentry.Context{
			"id":                item.ID,
			"caption_id":        item.Caption.ID,
			"formats":           formats,
			"file_names":        item.FileNames,
			"is_auto_generated": item.Caption.IsAutoGenerated,
		})
	})
	hub.CaptureMessage(item.Error)
}

// OnJobDone flushes the events of the finished job.
func (o *SentryObserver) OnJobDone(snapshot batch.JobSnapshot) {
	if snapshot.Counts()[models.ItemStatusError] == 0 {
		return
	}
	if !o.hub.Flush(o.flushTimeout) {
		logger := config.GetLogger()
		logger.Warn().Str("job", snapshot.ID).Msg("Timed out flushing Sentry events")
	}
}

// Close flushes pending events.
func (o *SentryObserver) Close() {
	o.hub.Flush(o.flushTimeout)
}
