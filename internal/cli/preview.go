package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Belphemur/CaptionExport/internal/models"
	"github.com/Belphemur/CaptionExport/internal/services"
)

func newPreviewCommand(a *app) *cobra.Command {
	var (
		lang  string
		words int
	)
	cmd := &cobra.Command{
		Use:   "preview <video>",
		Short: "Print the first words of a caption track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.open(ctx, args[0])
			if err != nil {
				return err
			}
			defer s.client.Close()

			var selectors []string
			if lang != "" {
				selectors = []string{lang}
			}
			selected, err := models.SelectCaptions(s.captions, selectors)
			if err != nil {
				return err
			}
			caption := selected[0]

			file, err := a.exporter(s.client).Export(ctx, *s.video, caption, models.FormatTXT, "")
			if err != nil {
				return fmt.Errorf("failed to download %s captions: %w", caption.Language, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", caption.DisplayName, caption.Language)
			fmt.Fprintln(out, services.PreviewText(file.Content, words))
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "caption ID or language code (default: English or the first track)")
	cmd.Flags().IntVarP(&words, "words", "w", services.DefaultPreviewWords, "number of words to show")
	return cmd
}
