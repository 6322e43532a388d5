package batch

import (
	"github.com/Belphemur/CaptionExport/internal/apperrors"
	"github.com/Belphemur/CaptionExport/internal/models"
	"github.com/Belphemur/CaptionExport/internal/services"

	"github.com/google/uuid"
)

// JobRequest is what a user commits: a video, the caption tracks and the
// formats to export them in.
type JobRequest struct {
	Video            models.Video
	Captions         []models.CaptionDescriptor
	Formats          []models.Format
	FileNameOverride string
	// BundleFormats makes one item per caption carrying every format. Otherwise
	// each caption and format pair is its own item.
	BundleFormats bool
}

// Job is an ordered list of download items run as one batch.
type Job struct {
	ID               string
	Video            models.Video
	FileNameOverride string

	items   []*models.DownloadItem
	started bool
	running bool
}

// JobSnapshot is a read-only copy of a job's state.
type JobSnapshot struct {
	ID      string
	Running bool
	Items   []models.DownloadItem
}

// Counts returns how many items are in each status.
func (s JobSnapshot) Counts() map[models.ItemStatus]int {
	counts := make(map[models.ItemStatus]int, 4)
	for _, item := range s.Items {
		counts[item.Status]++
	}
	return counts
}

// NewJob validates req and builds its pending items. Nothing is fetched: an empty
// caption or format selection is rejected with ErrValidation right away.
func NewJob(req JobRequest, policy *services.FilenamePolicy) (*Job, error) {
	if len(req.Captions) == 0 {
		return nil, apperrors.NewValidationError("captions", "select at least one caption")
	}
	if len(req.Formats) == 0 {
		return nil, apperrors.NewValidationError("formats", "select at least one download format")
	}
	for _, f := range req.Formats {
		if !f.Valid() {
			return nil, apperrors.NewValidationError("formats", "unsupported format "+f.String())
		}
	}
	if policy == nil {
		policy = services.NewFilenamePolicy("", false)
	}

	job := &Job{
		ID:               uuid.NewString(),
		Video:            req.Video,
		FileNameOverride: req.FileNameOverride,
	}

	seen := make(map[string]struct{}, len(req.Captions))
	for _, caption := range req.Captions {
		if _, dup := seen[caption.ID]; dup {
			continue
		}
		seen[caption.ID] = struct{}{}

		if req.BundleFormats {
			job.addItem(caption, req.Formats, policy)
			continue
		}
		for _, f := range req.Formats {
			job.addItem(caption, []models.Format{f}, policy)
		}
	}

	return job, nil
}

func (j *Job) addItem(caption models.CaptionDescriptor, formats []models.Format, policy *services.FilenamePolicy) {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = policy.BuildFileName(j.Video.Title, caption.Language, f, j.FileNameOverride)
	}
	j.items = append(j.items, models.NewDownloadItem(uuid.NewString(), j.Video.ID, caption, formats, names))
}

// Len returns the number of items.
func (j *Job) Len() int {
	return len(j.items)
}

// snapshot copies the job. Callers hold the orchestrator lock.
func (j *Job) snapshot() JobSnapshot {
	items := make([]models.DownloadItem, len(j.items))
	for i, item := range j.items {
		items[i] = item.Clone()
	}
	return JobSnapshot{ID: j.ID, Running: j.running, Items: items}
}

// Items returns copies of the job's items. Use Orchestrator.Snapshot once the job
// has been handed to Run.
func (j *Job) Items() []models.DownloadItem {
	return j.snapshot().Items
}
