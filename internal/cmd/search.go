package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jimezsa/jobradar/internal/models"
	"github.com/jimezsa/jobradar/internal/pipeline"
	"github.com/jimezsa/jobradar/internal/profile"
)

type SearchCmd struct {
	Query        string  `arg:"" optional:"" help:"Keywords to score against."`
	Profile      string  `help:"User id whose stored profile completes the request."`
	DropExcluded bool    `name:"drop-excluded" help:"Remove postings that contain an --exclude term."`
	MinScore     float64 `name:"min-score" help:"Hide postings scoring below this value."`
	Top          int     `help:"Show at most N postings."`
	RequestOptions
	OutputOptions
}

func (s *SearchCmd) Run(ctx *Context) error {
	runCtx, cancel := signalContext()
	defer cancel()

	req := s.RequestOptions.request(s.Query)
	if strings.TrimSpace(s.Profile) != "" {
		profiles, err := ctx.openProfiles()
		if err != nil {
			return err
		}
		p, err := profiles.Get(s.Profile)
		if err != nil {
			return err
		}
		req = profile.SearchRequest(p, req)
	}

	st, err := ctx.openStore(runCtx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ranked, err := pipeline.New(nil, st, ctx.Logger, pipeline.Options{}).Search(runCtx, req)
	if err != nil {
		return err
	}

	if s.DropExcluded {
		ranked = pipeline.DropExcluded(ranked, req.Exclusions)
	}
	ranked = filterRanked(ranked, s.MinScore, s.Top)

	if err := writePostings(ctx, ranked, s.OutputOptions); err != nil {
		return err
	}
	printSearchSummary(ctx, ranked)
	return nil
}

// filterRanked keeps postings scoring at least minScore, then the top n.
func filterRanked(ranked []models.Posting, minScore float64, top int) []models.Posting {
	if minScore > 0 {
		kept := make([]models.Posting, 0, len(ranked))
		for _, p := range ranked {
			if p.Score() >= minScore {
				kept = append(kept, p)
			}
		}
		ranked = kept
	}
	if top > 0 && len(ranked) > top {
		ranked = ranked[:top]
	}
	return ranked
}

func printSearchSummary(ctx *Context, postings []models.Posting) {
	if ctx == nil || ctx.Err == nil {
		return
	}
	_, _ = fmt.Fprintf(ctx.Err, "%s\n", formatSearchSummary(postings))
}

func formatSearchSummary(postings []models.Posting) string {
	counts := countBySource(postings)
	if len(counts) == 0 {
		return "summary: ranked=0 by_source=none"
	}

	parts := make([]string, 0, len(counts))
	for _, count := range counts {
		parts = append(parts, fmt.Sprintf("%s:%d", count.source, count.total))
	}

	return fmt.Sprintf("summary: ranked=%d top_score=%.3f by_source=%s",
		len(postings), postings[0].Score(), strings.Join(parts, ", "))
}

type sourceCount struct {
	source string
	total  int
}

func countBySource(postings []models.Posting) []sourceCount {
	totals := make(map[string]int, len(postings))
	for _, p := range postings {
		source := strings.ToLower(strings.TrimSpace(p.Source))
		if source == "" {
			source = "unknown"
		}
		totals[source]++
	}

	counts := make([]sourceCount, 0, len(totals))
	for source, total := range totals {
		counts = append(counts, sourceCount{source: source, total: total})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].source < counts[j].source
	})
	return counts
}
