package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"thirdcoast.systems/fetchbox/internal/pipeline"
	"thirdcoast.systems/fetchbox/internal/resolver"
	"thirdcoast.systems/fetchbox/pkg/curl"
	"thirdcoast.systems/fetchbox/pkg/ytdlp"
)

// EntryJSON is one resolved entry.
type EntryJSON struct {
	ID         string `json:"id"`
	URL        string `json:"url,omitempty"`
	WebpageURL string `json:"webpage_url,omitempty"`
	Title      string `json:"title,omitempty"`
	Type       string `json:"type,omitempty"`
	Direct     bool   `json:"direct,omitempty"`
}

// ResolveJSON is the output of `fetchctl resolve --json`.
type ResolveJSON struct {
	URL          string      `json:"url"`
	Title        string      `json:"title"`
	IsCollection bool        `json:"is_collection"`
	Entries      []EntryJSON `json:"entries"`
}

func toResolveJSON(url string, res resolver.Result) ResolveJSON {
	out := ResolveJSON{
		URL:          url,
		Title:        res.Meta.Title,
		IsCollection: res.Meta.IsCollection,
		Entries:      make([]EntryJSON, 0, len(res.Entries)),
	}
	for _, e := range res.Entries {
		out.Entries = append(out.Entries, EntryJSON{
			ID:         e.ID,
			URL:        e.URL,
			WebpageURL: e.WebpageURL,
			Title:      e.Title,
			Type:       e.Type,
			Direct:     e.Direct,
		})
	}
	return out
}

func newResolveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <url-or-text>",
		Short: "List the entries a link resolves to",
		Long: `Resolve a link the way the server does and print the flattened,
de-duplicated entries. The argument may be free text containing a link.

Examples:
  fetchctl resolve "https://www.youtube.com/playlist?list=PL..."
  fetchctl resolve --json "check this out https://vimeo.com/1234"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := pipeline.ExtractURL(strings.Join(args, " "))
			if err != nil {
				return err
			}

			conf, err := opts.loadConfig()
			if err != nil {
				return err
			}

			yt := ytdlp.New()
			yt.Path = conf.YtdlpPath
			cl := curl.New()
			cl.Path = conf.CurlPath

			res, err := resolver.New(yt, cl, conf.Cookies()).Resolve(cmd.Context(), url)
			if err != nil {
				return err
			}

			out := toResolveJSON(url, res)
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			printResolve(cmd, out)
			return nil
		},
	}
}

func printResolve(cmd *cobra.Command, r ResolveJSON) {
	w := cmd.OutOrStdout()
	kind := "single"
	if r.IsCollection {
		kind = "collection"
	}
	fmt.Fprintf(w, "%s (%s, %d entries)\n", r.Title, kind, len(r.Entries))
	for i, e := range r.Entries {
		target := e.WebpageURL
		if target == "" {
			target = e.URL
		}
		label := e.Title
		if label == "" {
			label = e.ID
		}
		if e.Direct {
			label += " [direct]"
		}
		fmt.Fprintf(w, "%3d. %s\n     %s\n", i+1, label, target)
	}
}
