package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"thirdcoast.systems/fetchbox/internal/janitor"
)

// SweepJSON is the output of `fetchctl sweep --json`.
type SweepJSON struct {
	Roots   []string `json:"roots"`
	TTL     string   `json:"ttl"`
	Removed int      `json:"removed"`
	Bytes   int64    `json:"bytes"`
}

func newSweepCmd(opts *rootOptions) *cobra.Command {
	var (
		roots []string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete files older than the job TTL from the storage roots",
		Long: `Run one cleanup pass over the storage roots, exactly like the
server's periodic sweep. Roots default to $DOWNLOAD_ROOT and $UPLOAD_ROOT.

Examples:
  fetchctl sweep
  fetchctl sweep --root /srv/downloads --ttl 30m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if len(roots) == 0 {
				for _, r := range conf.Roots() {
					if r != "" {
						roots = append(roots, r)
					}
				}
			}
			if len(roots) == 0 {
				return fmt.Errorf("no storage roots: set DOWNLOAD_ROOT/UPLOAD_ROOT or pass --root")
			}
			if ttl <= 0 {
				ttl = conf.JobTTL()
			}

			j := &janitor.Janitor{Roots: roots, TTL: ttl}
			res := j.Sweep()

			out := SweepJSON{Roots: roots, TTL: ttl.String(), Removed: res.Removed, Bytes: res.Bytes}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries (%s) older than %s\n",
				out.Removed, humanize.Bytes(uint64(out.Bytes)), out.TTL)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&roots, "root", nil, "Storage root to sweep (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Age after which files are removed (default $JOB_TTL_HOURS)")
	return cmd
}
