package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jimezsa/jobradar/internal/pipeline"
)

type HarvestCmd struct {
	Query     string `arg:"" optional:"" help:"Keywords; comma separates queries. Empty harvests the default query."`
	QueryFile string `help:"Path to a JSON file with queries (string array or object with a queries array)."`
	RequestOptions
	SourceOptions
}

// harvestOutput is the --json document of one harvest command.
type harvestOutput struct {
	Total   int               `json:"total"`
	Reports []pipeline.Report `json:"reports"`
}

func (h *HarvestCmd) Run(ctx *Context) error {
	queries := []string{""}
	if strings.TrimSpace(h.Query) != "" || strings.TrimSpace(h.QueryFile) != "" {
		var err error
		queries, err = resolveQueries(h.Query, h.QueryFile)
		if err != nil {
			return err
		}
	}

	runCtx, cancel := signalContext()
	defer cancel()

	st, err := ctx.openStore(runCtx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	p, err := ctx.buildPipeline(st, h.SourceOptions)
	if err != nil {
		return err
	}

	stop := startIndicator(ctx, "Harvesting")
	out := harvestOutput{Reports: make([]pipeline.Report, 0, len(queries))}
	for _, query := range queries {
		result, err := p.Harvest(runCtx, h.RequestOptions.harvestRequest(query, ctx.Config))
		if err != nil {
			stop()
			return err
		}
		out.Total += len(result.Postings)
		out.Reports = append(out.Reports, result.Report)
	}
	stop()

	if ctx.JSONOutput {
		return writeJSON(ctx.Out, out)
	}

	for _, report := range out.Reports {
		reportFailures(ctx, report.Failures)
		if _, err := fmt.Fprintln(ctx.Out, formatHarvestSummary(report)); err != nil {
			return err
		}
	}
	return nil
}

func formatHarvestSummary(r pipeline.Report) string {
	return fmt.Sprintf(
		"harvest: query=%q country=%s scraped=%d unique=%d stored=%d new=%d errors=%d",
		r.Query, r.Country, r.Scraped, r.Unique, r.Stored, r.New, len(r.Failures),
	)
}

// reportFailures lists failed connectors. Stubbed connectors are only shown
// with --verbose.
func reportFailures(ctx *Context, failures []pipeline.SourceFailure) {
	if ctx == nil || ctx.UI == nil || len(failures) == 0 {
		return
	}

	sorted := append([]pipeline.SourceFailure(nil), failures...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Source) < strings.ToLower(sorted[j].Source)
	})

	for _, failure := range sorted {
		if failure.NotImplemented && !ctx.Verbose {
			continue
		}
		ctx.UI.Warnf("  %s: %v", failure.Source, failure.Err)
	}
}
