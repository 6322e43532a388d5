package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Belphemur/CaptionExport/internal/batch"
	"github.com/Belphemur/CaptionExport/internal/config"
	"github.com/Belphemur/CaptionExport/internal/models"
	"github.com/Belphemur/CaptionExport/internal/reporting"
	"github.com/Belphemur/CaptionExport/internal/services"
)

type exportOptions struct {
	languages []string
	formats   []string
	name      string
	outDir    string
	noBundle  bool
}

func newExportCommand(a *app) *cobra.Command {
	opts := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export <video>",
		Short: "Download caption tracks and save them in one or more formats",
		Long: `Download the selected caption tracks of a video and save each one in every
requested format. Tracks are processed one after the other; a failing track is
reported and the remaining ones are still exported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringSliceVarP(&opts.languages, "lang", "l", nil, "caption IDs or language codes (default: English or the first track)")
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", []string{"srt"}, "output formats: srt, vtt, txt")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "base file name instead of the video title")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "output directory (default: output_dir setting)")
	cmd.Flags().BoolVar(&opts.noBundle, "no-bundle", false, "run every track and format pair as its own download")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, videoArg string, opts *exportOptions) error {
	formats, err := models.ParseFormats(opts.formats)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := a.open(ctx, videoArg)
	if err != nil {
		return err
	}
	defer s.client.Close()

	selected, err := models.SelectCaptions(s.captions, opts.languages)
	if err != nil {
		return err
	}

	job, err := batch.NewJob(batch.JobRequest{
		Video:            *s.video,
		Captions:         selected,
		Formats:          formats,
		FileNameOverride: opts.name,
		BundleFormats:    a.cfg.Batch.BundleFormats && !opts.noBundle,
	}, a.filenamePolicy())
	if err != nil {
		return err
	}

	outDir := opts.outDir
	if outDir == "" {
		outDir = a.cfg.OutputDir
	}

	var progressOut io.Writer = cmd.OutOrStdout()
	if a.quiet {
		progressOut = io.Discard
	}
	observers := []batch.Observer{newProgressPrinter(progressOut)}

	reporter, err := reporting.NewSentryObserverFromConfig(a.cfg)
	if err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Msg("Sentry reporting disabled")
	} else if reporter != nil {
		defer reporter.Close()
		observers = append(observers, reporter)
	}

	orchestrator := batch.NewOrchestrator(a.exporter(s.client), services.NewDiskSaver(outDir), batch.PolicyFromConfig(a.cfg), observers...)
	if err := orchestrator.Run(ctx, job); err != nil {
		return err
	}

	snapshot, _ := orchestrator.Snapshot()
	if failed := snapshot.Counts()[models.ItemStatusError]; failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(snapshot.Items))
	}
	return nil
}
