package cmd

import (
	"fmt"

	"github.com/jimezsa/jobradar/internal/pipeline"
)

type BatchCmd struct {
	Catalog string `help:"JSON5 catalog: an array of objects with keywords and countries (default: built-in weekly catalog)."`
	List    bool   `help:"Print the catalog and exit."`
	SourceOptions
}

func (b *BatchCmd) Run(ctx *Context) error {
	catalog, err := loadCatalog(b.Catalog)
	if err != nil {
		return err
	}

	if b.List {
		if ctx.JSONOutput {
			return writeJSON(ctx.Out, catalog)
		}
		for _, entry := range catalog {
			if _, err := fmt.Fprintln(ctx.Out, entry.String()); err != nil {
				return err
			}
		}
		return nil
	}

	runCtx, cancel := signalContext()
	defer cancel()

	st, err := ctx.openStore(runCtx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	p, err := ctx.buildPipeline(st, b.SourceOptions)
	if err != nil {
		return err
	}

	stop := startIndicator(ctx, "Running batch")
	report, err := p.RunBatch(runCtx, catalog)
	stop()
	if err != nil {
		return err
	}

	if ctx.JSONOutput {
		return writeJSON(ctx.Out, report)
	}
	if ctx.Verbose {
		for _, msg := range report.Errors {
			ctx.UI.Warnf("  %s", msg)
		}
	}
	_, err = fmt.Fprintf(ctx.Out, "batch: queries=%d total_scraped=%d total_stored=%d errors=%d\n",
		len(report.Runs), report.Scraped, report.Stored, len(report.Errors))
	return err
}

func loadCatalog(path string) ([]pipeline.CatalogEntry, error) {
	if path == "" {
		return pipeline.DefaultCatalog, nil
	}
	return pipeline.LoadCatalog(path)
}
