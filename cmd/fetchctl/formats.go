package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"thirdcoast.systems/fetchbox/internal/format"
	"thirdcoast.systems/fetchbox/internal/site"
)

// FormatsJSON is the output of `fetchctl formats --json`.
type FormatsJSON struct {
	URL              string   `json:"url"`
	Site             string   `json:"site"`
	Format           string   `json:"format"`
	Args             []string `json:"args"`
	ThumbnailSkipped string   `json:"thumbnail_skipped,omitempty"`
}

func newFormatsCmd(opts *rootOptions) *cobra.Command {
	var (
		container  string
		resolution string
		highestFPS string
		subtitles  bool
		title      string
	)

	cmd := &cobra.Command{
		Use:   "formats [flags] <url>",
		Short: "Show the yt-dlp format selection for a link (local, no download)",
		Long: `Print the format expression and flags the server would pass to yt-dlp.

Examples:
  fetchctl formats https://www.youtube.com/watch?v=abc
  fetchctl formats --format mp4 --resolution 720 --highest-fps no https://vimeo.com/1
  fetchctl formats --format ogg --title "clip 🔥" https://example.com/v`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := format.ParseOptions(container, resolution, highestFPS, subtitles)
			if err != nil {
				return err
			}

			conf, err := opts.loadConfig()
			if err != nil {
				return err
			}

			url := args[0]
			policy := format.Policy{SubtitleLanguage: conf.SubtitleTag()}
			sel := policy.Select(url, o, title)

			out := FormatsJSON{
				URL:              url,
				Site:             site.For(url).Name,
				Format:           sel.Format,
				Args:             sel.Args,
				ThumbnailSkipped: sel.ThumbnailSkipped,
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Site:    %s\n", out.Site)
			fmt.Fprintf(w, "Format:  %s\n", out.Format)
			fmt.Fprintf(w, "Args:    %s\n", strings.Join(out.Args, " "))
			if out.ThumbnailSkipped != "" {
				fmt.Fprintf(w, "Note:    thumbnail skipped (%s)\n", out.ThumbnailSkipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&container, "format", format.DefaultContainer, "Output format ("+strings.Join(format.Containers, ", ")+")")
	cmd.Flags().StringVar(&resolution, "resolution", "", "Maximum video height, e.g. 720")
	cmd.Flags().StringVar(&highestFPS, "highest-fps", "yes", `"no" caps video at 30 fps`)
	cmd.Flags().BoolVar(&subtitles, "subs", false, "Embed subtitles")
	cmd.Flags().StringVar(&title, "title", "", "Media title, used for the thumbnail check")
	return cmd
}
