package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Belphemur/CaptionExport/internal/apperrors"
	"github.com/Belphemur/CaptionExport/internal/config"
	"github.com/Belphemur/CaptionExport/internal/metrics"
	"github.com/Belphemur/CaptionExport/internal/models"
	"github.com/Belphemur/CaptionExport/internal/services"
)

// Exporter renders one caption in one format.
type Exporter interface {
	Export(ctx context.Context, video models.Video, caption models.CaptionDescriptor, format models.Format, fileNameOverride string) (*services.ExportedFile, error)
}

// Observer is told about every item state change and about the end of a job.
// Calls come from the goroutine running the batch, one at a time, and carry copies.
type Observer interface {
	OnItemUpdate(jobID string, item models.DownloadItem)
	OnJobDone(snapshot JobSnapshot)
}

// Policy paces a batch. The delays only throttle requests; zero disables them.
type Policy struct {
	// FormatDelay separates two formats of the same item.
	FormatDelay time.Duration
	// ItemDelay separates two items.
	ItemDelay time.Duration
}

// DefaultPolicy returns the 300ms / 500ms pacing.
func DefaultPolicy() Policy {
	return Policy{FormatDelay: 300 * time.Millisecond, ItemDelay: 500 * time.Millisecond}
}

// PolicyFromConfig reads batch.format_delay and batch.item_delay.
func PolicyFromConfig(cfg *config.Config) Policy {
	def := DefaultPolicy()
	return Policy{
		FormatDelay: config.ParseDuration("batch.format_delay", cfg.Batch.FormatDelay, def.FormatDelay),
		ItemDelay:   config.ParseDuration("batch.item_delay", cfg.Batch.ItemDelay, def.ItemDelay),
	}
}

// Orchestrator runs jobs one at a time, and the items of a job strictly in order.
//
// A failing item is marked Error and the batch moves on; Run never reports
// per-item failures. Canceling the context does not abort the loop: pending
// fetches fail fast and delays return at once, so every item still ends in a
// terminal state.
type Orchestrator struct {
	exporter  Exporter
	saver     services.FileSaver
	policy    Policy
	observers []Observer
	sleep     func(ctx context.Context, d time.Duration)

	mu      sync.Mutex
	current *Job
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(exporter Exporter, saver services.FileSaver, policy Policy, observers ...Observer) *Orchestrator {
	return &Orchestrator{
		exporter:  exporter,
		saver:     saver,
		policy:    policy,
		observers: observers,
		sleep:     sleepContext,
	}
}

// Run executes job and returns once every item has been attempted. It returns
// ErrBatchRunning if another job is still running and ErrValidation for a job
// that was already run; otherwise it returns nil whatever happened to the items.
// Starting a job discards the previous, finished one.
func (o *Orchestrator) Run(ctx context.Context, job *Job) error {
	if job == nil || job.Len() == 0 {
		return apperrors.NewValidationError("job", "nothing to download")
	}

	o.mu.Lock()
	if o.current != nil && o.current.running {
		id := o.current.ID
		o.mu.Unlock()
		return &apperrors.ErrBatchRunning{JobID: id}
	}
	if job.started {
		o.mu.Unlock()
		return apperrors.NewValidationError("job", "job "+job.ID+" has already run")
	}
	o.current = job
	job.started = true
	job.running = true
	o.mu.Unlock()

	logger := config.GetLogger()
	logger.Info().Str("job", job.ID).Str("videoID", job.Video.ID).Int("items", job.Len()).Msg("Starting batch")
	started := time.Now()

	for i, item := range job.items {
		if i > 0 {
			o.sleep(ctx, o.policy.ItemDelay)
		}
		o.runItem(ctx, job, item)
	}

	o.mu.Lock()
	job.running = false
	snapshot := job.snapshot()
	o.mu.Unlock()

	elapsed := time.Since(started)
	metrics.BatchDurationSeconds.Observe(elapsed.Seconds())
	counts := snapshot.Counts()
	logger.Info().
		Str("job", job.ID).
		Int("completed", counts[models.ItemStatusCompleted]).
		Int("failed", counts[models.ItemStatusError]).
		Dur("elapsed", elapsed).
		Msg("Batch finished")

	for _, obs := range o.observers {
		obs.OnJobDone(snapshot)
	}
	return nil
}

// runItem drives one item to a terminal state. Failures, panics included,
// stop at this boundary.
func (o *Orchestrator) runItem(ctx context.Context, job *Job, item *models.DownloadItem) {
	logger := config.GetLogger().With().Str("job", job.ID).Str("item", item.ID).Str("captionID", item.Caption.ID).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Download item panicked")
			o.fail(job, item, fmt.Sprintf("failed to download %s captions: unexpected error: %v", item.Caption.Language, r))
		}
	}()

	if !o.transition(job, item, item.Start) {
		return
	}

	total := len(item.Formats)
	for i, format := range item.Formats {
		if i > 0 {
			o.sleep(ctx, o.policy.FormatDelay)
		}

		file, err := o.exporter.Export(ctx, job.Video, item.Caption, format, job.FileNameOverride)
		if err != nil {
			logger.Warn().Err(err).Str("format", format.String()).Msg("Caption download failed")
			o.fail(job, item, fmt.Sprintf("failed to download %s captions: %v", item.Caption.Language, err))
			return
		}

		// the item's name is the one observers were shown
		if i < len(item.FileNames) {
			file.FileName = item.FileNames[i]
		}
		path, err := o.saver.SaveRenderedFile(ctx, file.Content, file.FileName, file.MimeType)
		if err != nil {
			logger.Warn().Err(err).Str("format", format.String()).Str("fileName", file.FileName).Msg("Saving caption failed")
			o.fail(job, item, fmt.Sprintf("failed to save %s: %v", file.FileName, err))
			return
		}
		logger.Debug().Str("format", format.String()).Str("path", path).Msg("Caption exported")

		if i < total-1 {
			progress := (i + 1) * 100 / total
			o.transition(job, item, func() error { return item.SetProgress(progress) })
		}
	}

	o.transition(job, item, item.Complete)
}

func (o *Orchestrator) fail(job *Job, item *models.DownloadItem, message string) {
	o.transition(job, item, func() error { return item.Fail(message) })
}

// transition applies change under the lock, then notifies observers.
// It reports whether the change was applied.
func (o *Orchestrator) transition(job *Job, item *models.DownloadItem, change func() error) bool {
	o.mu.Lock()
	err := change()
	snapshot := item.Clone()
	o.mu.Unlock()

	if err != nil {
		logger := config.GetLogger()
		logger.Error().Err(err).Str("job", job.ID).Str("item", item.ID).Msg("Rejected download item transition")
		return false
	}

	if snapshot.Status.IsFinished() {
		metrics.BatchItemsTotal.WithLabelValues(snapshot.Status.String()).Inc()
	}
	for _, obs := range o.observers {
		obs.OnItemUpdate(job.ID, snapshot)
	}
	return true
}

// Snapshot returns a copy of the current or last job. ok is false before the first Run.
func (o *Orchestrator) Snapshot() (snapshot JobSnapshot, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return JobSnapshot{}, false
	}
	return o.current.snapshot(), true
}

// Running reports whether a job is in progress.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current != nil && o.current.running
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
