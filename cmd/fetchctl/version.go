package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"thirdcoast.systems/fetchbox/pkg/ytdlp"
)

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print fetchctl and yt-dlp versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "fetchctl %s\n", version)

			conf, err := opts.loadConfig()
			if err != nil {
				return err
			}
			yt := ytdlp.New()
			yt.Path = conf.YtdlpPath
			v, err := yt.Version(cmd.Context())
			if err != nil {
				return fmt.Errorf("yt-dlp (%s): %w", yt.PathOrDefault(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "yt-dlp %s\n", v)
			return nil
		},
	}
}
