package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Belphemur/CaptionExport/internal/client"
	"github.com/Belphemur/CaptionExport/internal/config"
	"github.com/Belphemur/CaptionExport/internal/models"
	"github.com/Belphemur/CaptionExport/internal/parser"
	"github.com/Belphemur/CaptionExport/internal/services"
)

// app carries what every command needs. newClient is swapped in tests.
type app struct {
	cfg       *config.Config
	newClient func(cfg *config.Config) (client.Client, error)
	quiet     bool
}

// NewRootCommand builds the captionexport command tree on top of cfg.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	return newRootCommand(&app{cfg: cfg, newClient: client.NewClient})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "captionexport",
		Short: "Export YouTube captions as SRT, WebVTT or plain text",
		Long: `captionexport lists the caption tracks of a YouTube video and exports them
as SRT, WebVTT or plain text files, one track and format at a time.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "only print errors")

	root.AddCommand(
		newListCommand(a),
		newExportCommand(a),
		newPreviewCommand(a),
		newConvertCommand(a),
		newServeCommand(a),
	)
	return root
}

// Execute runs the command line with the global configuration. SIGINT and
// SIGTERM cancel the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand(config.GetConfig()).ExecuteContext(ctx)
}

// session is an open client plus the video it was asked about.
type session struct {
	client   client.Client
	video    *models.Video
	captions []models.CaptionDescriptor
}

func (a *app) open(ctx context.Context, videoArg string) (*session, error) {
	videoID, err := models.ExtractVideoID(videoArg)
	if err != nil {
		return nil, err
	}
	c, err := a.newClient(a.cfg)
	if err != nil {
		return nil, err
	}

	video, err := c.FetchVideo(ctx, videoID)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	captions, err := c.FetchCaptionList(ctx, videoID)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return &session{client: c, video: video, captions: captions}, nil
}

func (a *app) filenamePolicy() *services.FilenamePolicy {
	return services.NewFilenamePolicy(a.cfg.Filename.Fallback, a.cfg.Filename.Transliterate)
}

func (a *app) exporter(fetcher services.PayloadFetcher) *services.CaptionExporter {
	return services.NewCaptionExporter(fetcher, parser.NewTimedTextParser(), services.NewSubtitleRenderer(), a.filenamePolicy())
}
