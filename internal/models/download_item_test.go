// Tests for the DownloadItem lifecycle and its invariants.
package models

import (
	"errors"
	"testing"

	"github.com/Belphemur/CaptionExport/internal/apperrors"
)

func newTestItem() *DownloadItem {
	return NewDownloadItem("item-1", "vid", CaptionDescriptor{ID: "cap", Language: "en"},
		[]Format{FormatSRT, FormatVTT}, []string{"a_en.srt", "a_en.vtt"})
}

func TestDownloadItem_HappyPath(t *testing.T) {
	t.Parallel()
	item := newTestItem()

	if item.Status != ItemStatusPending || item.Progress != 0 {
		t.Fatalf("Expected new item to be Pending/0, got %s/%d", item.Status, item.Progress)
	}
	if err := item.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := item.SetProgress(50); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	if item.Progress != 50 {
		t.Errorf("Expected progress 50, got %d", item.Progress)
	}
	if err := item.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if item.Status != ItemStatusCompleted || item.Progress != 100 {
		t.Errorf("Expected Completed/100, got %s/%d", item.Status, item.Progress)
	}
}

func TestDownloadItem_FailResetsProgress(t *testing.T) {
	t.Parallel()
	item := newTestItem()
	_ = item.Start()
	_ = item.SetProgress(50)

	if err := item.Fail("failed to download en captions"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if item.Status != ItemStatusError {
		t.Errorf("Expected Error status, got %s", item.Status)
	}
	if item.Progress != 0 {
		t.Errorf("Expected progress reset to 0, got %d", item.Progress)
	}
	if item.Error != "failed to download en captions" {
		t.Errorf("Unexpected error message %q", item.Error)
	}
}

func TestDownloadItem_InvalidTransitions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		setup func(*DownloadItem)
		act   func(*DownloadItem) error
	}{
		{
			name:  "progress while pending",
			setup: func(*DownloadItem) {},
			act:   func(d *DownloadItem) error { return d.SetProgress(10) },
		},
		{
			name:  "complete while pending",
			setup: func(*DownloadItem) {},
			act:   func(d *DownloadItem) error { return d.Complete() },
		},
		{
			name:  "fail while pending",
			setup: func(*DownloadItem) {},
			act:   func(d *DownloadItem) error { return d.Fail("x") },
		},
		{
			name:  "progress of 100 is reserved for completion",
			setup: func(d *DownloadItem) { _ = d.Start() },
			act:   func(d *DownloadItem) error { return d.SetProgress(100) },
		},
		{
			name:  "restart a completed item",
			setup: func(d *DownloadItem) { _ = d.Start(); _ = d.Complete() },
			act:   func(d *DownloadItem) error { return d.Start() },
		},
		{
			name:  "fail a completed item",
			setup: func(d *DownloadItem) { _ = d.Start(); _ = d.Complete() },
			act:   func(d *DownloadItem) error { return d.Fail("late") },
		},
		{
			name:  "complete a failed item",
			setup: func(d *DownloadItem) { _ = d.Start(); _ = d.Fail("boom") },
			act:   func(d *DownloadItem) error { return d.Complete() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			item := newTestItem()
			tt.setup(item)
			before := item.Clone()

			err := tt.act(item)
			if !errors.Is(err, &apperrors.ErrInvalidTransition{}) {
				t.Fatalf("Expected ErrInvalidTransition, got %v", err)
			}
			if item.Status != before.Status || item.Progress != before.Progress || item.Error != before.Error {
				t.Errorf("Rejected transition mutated the item: %+v -> %+v", before, *item)
			}
		})
	}
}

func TestDownloadItem_CloneIsIndependent(t *testing.T) {
	t.Parallel()
	item := newTestItem()
	snapshot := item.Clone()

	item.Formats[0] = FormatTXT
	item.FileNames[0] = "changed"
	_ = item.Start()

	if snapshot.Formats[0] != FormatSRT || snapshot.FileNames[0] != "a_en.srt" {
		t.Error("Expected clone slices to be independent of the item")
	}
	if snapshot.Status != ItemStatusPending {
		t.Errorf("Expected clone status to stay Pending, got %s", snapshot.Status)
	}
}

func TestItemStatus_IsFinished(t *testing.T) {
	t.Parallel()
	finished := map[ItemStatus]bool{
		ItemStatusPending:     false,
		ItemStatusDownloading: false,
		ItemStatusCompleted:   true,
		ItemStatusError:       true,
	}
	for status, want := range finished {
		if got := status.IsFinished(); got != want {
			t.Errorf("%s.IsFinished() = %v, want %v", status, got, want)
		}
	}
}
