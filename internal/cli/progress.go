package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Belphemur/CaptionExport/internal/batch"
	"github.com/Belphemur/CaptionExport/internal/models"
)

// progressPrinter writes one line per item state change.
type progressPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w}
}

func (p *progressPrinter) OnItemUpdate(jobID string, item models.DownloadItem) {
	p.mu.Lock()
	defer p.mu.Unlock()

	label := fmt.Sprintf("[%s] %s", item.Caption.Language, strings.Join(item.FileNames, ", "))
	switch item.Status {
	case models.ItemStatusError:
		fmt.Fprintf(p.w, "%s: %s\n", label, item.Error)
	case models.ItemStatusCompleted:
		fmt.Fprintf(p.w, "%s: done\n", label)
	default:
		fmt.Fprintf(p.w, "%s: %d%%\n", label, item.Progress)
	}
}

func (p *progressPrinter) OnJobDone(snapshot batch.JobSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	counts := snapshot.Counts()
	fmt.Fprintf(p.w, "%d completed, %d failed\n", counts[models.ItemStatusCompleted], counts[models.ItemStatusError])
}
