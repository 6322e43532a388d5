package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Belphemur/CaptionExport/internal/models"
	"github.com/Belphemur/CaptionExport/internal/parser"
	"github.com/Belphemur/CaptionExport/internal/services"
)

func newConvertCommand(a *app) *cobra.Command {
	var (
		lang    string
		formats []string
		name    string
		outDir  string
	)
	cmd := &cobra.Command{
		Use:   "convert <timedtext-file>",
		Short: "Convert a saved timed-text payload without calling the API",
		Long: `Convert a timed-text document saved on disk into the requested formats. The
file name, without extension, is used as the title.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedFormats, err := models.ParseFormats(formats)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			result, err := parser.NewTimedTextParser().ParseReader(f, "")
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			if result.Skipped > 0 && !a.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d incomplete entries\n", result.Skipped)
			}

			if outDir == "" {
				outDir = a.cfg.OutputDir
			}
			saver := services.NewDiskSaver(outDir)
			renderer := services.NewSubtitleRenderer()
			policy := a.filenamePolicy()
			title := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))

			for _, format := range parsedFormats {
				content, err := renderer.Render(result.Cues, format)
				if err != nil {
					return err
				}
				path, err := saver.SaveRenderedFile(cmd.Context(), content, policy.BuildFileName(title, lang, format, name), format.MimeType())
				if err != nil {
					return err
				}
				if !a.quiet {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (%d cues)\n", path, len(result.Cues))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "en", "language code used in the file name")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{"srt"}, "output formats: srt, vtt, txt")
	cmd.Flags().StringVarP(&name, "name", "n", "", "base file name instead of the input file name")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: output_dir setting)")
	return cmd
}
