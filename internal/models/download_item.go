package models

import (
	"github.com/Belphemur/CaptionExport/internal/apperrors"
)

// ItemStatus represents the lifecycle state of a download item
type ItemStatus string

const (
	// ItemStatusPending means the item is queued but not started
	ItemStatusPending ItemStatus = "Pending"

	// ItemStatusDownloading means the item is being fetched, converted and saved
	ItemStatusDownloading ItemStatus = "Downloading"

	// ItemStatusCompleted means every format of the item was saved
	ItemStatusCompleted ItemStatus = "Completed"

	// ItemStatusError means the item failed; see DownloadItem.Error
	ItemStatusError ItemStatus = "Error"
)

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// IsFinished returns true for the terminal states (completed or error)
func (s ItemStatus) IsFinished() bool {
	return s == ItemStatusCompleted || s == ItemStatusError
}

// DownloadItem is one export operation of a batch: a caption track rendered into one
// or more formats. FileNames is parallel to Formats.
//
// Only the batch orchestrator mutates an item, through the transition methods below.
// Observers receive copies.
type DownloadItem struct {
	ID        string
	VideoID   string
	Caption   CaptionDescriptor
	Formats   []Format
	FileNames []string
	Status    ItemStatus
	Progress  int // 0 to 100
	Error     string
}

// NewDownloadItem creates a pending item.
func NewDownloadItem(id, videoID string, caption CaptionDescriptor, formats []Format, fileNames []string) *DownloadItem {
	return &DownloadItem{
		ID:        id,
		VideoID:   videoID,
		Caption:   caption,
		Formats:   append([]Format(nil), formats...),
		FileNames: append([]string(nil), fileNames...),
		Status:    ItemStatusPending,
	}
}

// Start moves a pending item to Downloading.
func (d *DownloadItem) Start() error {
	if d.Status != ItemStatusPending {
		return d.invalid(ItemStatusDownloading)
	}
	d.Status = ItemStatusDownloading
	d.Progress = 0
	return nil
}

// SetProgress records an intermediate progress value. Only valid while downloading;
// 100 is reserved for Complete.
func (d *DownloadItem) SetProgress(progress int) error {
	if d.Status != ItemStatusDownloading || progress < 0 || progress >= 100 {
		return d.invalid(ItemStatusDownloading)
	}
	d.Progress = progress
	return nil
}

// Complete marks a downloading item as completed with full progress.
func (d *DownloadItem) Complete() error {
	if d.Status != ItemStatusDownloading {
		return d.invalid(ItemStatusCompleted)
	}
	d.Status = ItemStatusCompleted
	d.Progress = 100
	d.Error = ""
	return nil
}

// Fail marks a downloading item as failed, resetting its progress.
func (d *DownloadItem) Fail(message string) error {
	if d.Status != ItemStatusDownloading {
		return d.invalid(ItemStatusError)
	}
	d.Status = ItemStatusError
	d.Progress = 0
	d.Error = message
	return nil
}

// Clone returns a deep copy safe to hand to observers.
func (d *DownloadItem) Clone() DownloadItem {
	c := *d
	c.Formats = append([]Format(nil), d.Formats...)
	c.FileNames = append([]string(nil), d.FileNames...)
	return c
}

func (d *DownloadItem) invalid(to ItemStatus) error {
	return &apperrors.ErrInvalidTransition{From: d.Status.String(), To: to.String()}
}
