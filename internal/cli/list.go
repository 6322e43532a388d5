package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Belphemur/CaptionExport/internal/models"
)

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <video>",
		Short: "List the caption tracks of a video",
		Long: `List the caption tracks of a video. <video> is an 11 character video ID or
a youtube.com / youtu.be URL. The track preselected by export is marked with *.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer s.client.Close()

			def := models.DefaultCaption(s.captions)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", s.video.Title, s.video.ID)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tID\tLANGUAGE\tNAME\tKIND")
			for _, c := range s.captions {
				marker := ""
				if def != nil && c.ID == def.ID {
					marker = "*"
				}
				kind := "manual"
				if c.IsAutoGenerated {
					kind = "auto-generated"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", marker, c.ID, c.Language, c.DisplayName, kind)
			}
			return tw.Flush()
		},
	}
}
