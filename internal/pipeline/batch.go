package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"

	"github.com/jimezsa/jobradar/internal/models"
)

// CatalogEntry is one batch query: space-separated keywords and the
// countries to harvest them in.
type CatalogEntry struct {
	Keywords  string   `json:"keywords"`
	Countries []string `json:"countries"`
}

func (e CatalogEntry) String() string {
	return fmt.Sprintf("%s [%s]", e.Keywords, strings.Join(e.Countries, ","))
}

// DefaultCatalog is the weekly tech-role sweep.
var DefaultCatalog = []CatalogEntry{
	{Keywords: "python developer", Countries: []string{"fr"}},
	{Keywords: "javascript react", Countries: []string{"fr"}},
	{Keywords: "java spring", Countries: []string{"fr"}},
	{Keywords: "golang developer", Countries: []string{"fr"}},
	{Keywords: "rust developer", Countries: []string{"fr", "de", "us"}},
	{Keywords: "react native", Countries: []string{"fr"}},
	{Keywords: "flutter developer", Countries: []string{"fr"}},
	{Keywords: "ios swift", Countries: []string{"fr"}},
	{Keywords: "android kotlin", Countries: []string{"fr"}},
	{Keywords: "devops kubernetes", Countries: []string{"fr"}},
	{Keywords: "sre site reliability", Countries: []string{"fr", "de"}},
	{Keywords: "cloud architect aws", Countries: []string{"fr"}},
	{Keywords: "terraform ansible", Countries: []string{"fr"}},
	{Keywords: "data engineer", Countries: []string{"fr"}},
	{Keywords: "data scientist", Countries: []string{"fr"}},
	{Keywords: "machine learning engineer", Countries: []string{"fr", "de"}},
	{Keywords: "mlops", Countries: []string{"fr"}},
	{Keywords: "security engineer", Countries: []string{"fr"}},
	{Keywords: "qa test automation", Countries: []string{"fr"}},
	{Keywords: "blockchain developer", Countries: []string{"fr", "de"}},
	{Keywords: "game developer unity", Countries: []string{"fr"}},
}

// LoadCatalog reads a JSON5 array of catalog entries. Entries without
// keywords are dropped; entries without countries get DefaultCountry.
func LoadCatalog(path string) ([]CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var entries []CatalogEntry
	if err := json5.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	out := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		e.Keywords = strings.TrimSpace(e.Keywords)
		if e.Keywords == "" {
			continue
		}
		if len(e.Countries) == 0 {
			e.Countries = []string{DefaultCountry}
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("catalog %s: no entries with keywords", path)
	}
	return out, nil
}

// BatchReport accumulates harvest totals over a catalog.
type BatchReport struct {
	Scraped int      `json:"total_scraped"`
	Stored  int      `json:"total_stored"`
	Errors  []string `json:"errors"`
	Runs    []Report `json:"runs"`
}

// RunBatch harvests every (keywords, country) pair of the catalog in order.
// A failing query is recorded and the batch continues; cancellation stops it.
func (p *Pipeline) RunBatch(ctx context.Context, catalog []CatalogEntry) (BatchReport, error) {
	var report BatchReport
	for _, entry := range catalog {
		for _, country := range entry.Countries {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			req := models.SearchRequest{
				Keywords:  strings.Fields(entry.Keywords),
				Countries: []string{country},
			}
			result, err := p.Harvest(ctx, req)
			report.Scraped += result.Report.Scraped
			report.Stored += result.Report.Stored
			if result.Report.Query != "" {
				report.Runs = append(report.Runs, result.Report)
			}
			for _, f := range result.Report.Failures {
				report.Errors = append(report.Errors, fmt.Sprintf("Query %s (%s): %s", entry.Keywords, country, f.Error()))
			}
			if err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("Query %s (%s): %v", entry.Keywords, country, err))
			}
		}
	}

	p.logger.Info().
		Int("queries", len(report.Runs)).
		Int("scraped", report.Scraped).
		Int("stored", report.Stored).
		Int("errors", len(report.Errors)).
		Msg("batch complete")
	return report, nil
}
