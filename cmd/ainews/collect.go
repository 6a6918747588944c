package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"ainews/internal/domain"

	"github.com/spf13/cobra"
)

func newCollectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Run one collection and publish the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Collect(ctx)
			if err != nil {
				return fmt.Errorf("collection failed (%s): %w", domain.KindOf(err), err)
			}
			printSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func printSummary(w io.Writer, result *domain.Result) {
	s := result.Stats
	fmt.Fprintf(w, "run %s finished in %s\n", result.RunID, result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(w, "sources: %d ok, %d failed\n", s.SourcesOK, s.SourcesFailed)
	fmt.Fprintf(w, "articles: %d rss, %d api, %d unique, %d ranked, %d important (>= %d)\n",
		s.RSSArticles, s.APIArticles, s.Unique, s.Ranked, s.Important, s.ImportantThreshold)

	names := make([]string, 0, len(s.BySource))
	for name := range s.BySource {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-30s %d\n", name, s.BySource[name])
	}
	for _, f := range s.Failures {
		fmt.Fprintf(w, "  skipped %s [%s]: %s\n", f.Source, f.Kind, f.Message)
	}
	for i, a := range result.Articles {
		fmt.Fprintf(w, "%2d. [%2d] %s (%s)\n", i+1, a.Importance, a.Title, a.Source)
	}
}
