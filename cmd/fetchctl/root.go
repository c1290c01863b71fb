package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"thirdcoast.systems/fetchbox/internal/config"
)

var version = "dev"

type rootOptions struct {
	envFile    string
	jsonOutput bool
	ytdlpPath  string
	curlPath   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "fetchctl",
		Short: "Operator tool for fetchbox",
		Long: `fetchctl - operator tool for fetchbox

Runs the URL resolver and format policy without the web service,
and sweeps stale files out of the storage roots.

Settings come from the environment (and .env) like the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.envFile == "" {
				return config.LoadDotEnv()
			}
			return config.LoadDotEnv(opts.envFile)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Read settings from this file instead of .env")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")
	cmd.PersistentFlags().StringVar(&opts.ytdlpPath, "ytdlp", "", "yt-dlp executable (default $YTDLP_PATH)")
	cmd.PersistentFlags().StringVar(&opts.curlPath, "curl", "", "curl executable (default $CURL_PATH)")

	cmd.Version = version
	cmd.SetVersionTemplate("fetchctl {{.Version}}\n")

	cmd.AddCommand(
		newResolveCmd(opts),
		newFormatsCmd(opts),
		newSweepCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads settings without requiring the storage roots, then
// applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	conf, err := config.LoadWithoutValidation()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.ytdlpPath != "" {
		conf.YtdlpPath = o.ytdlpPath
	}
	if o.curlPath != "" {
		conf.CurlPath = o.curlPath
	}
	return conf, nil
}
