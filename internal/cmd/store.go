package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/jimezsa/jobradar/internal/store"
)

type StoreCmd struct {
	Stats StoreStatsCmd `cmd:"" help:"Print posting counts per source."`
	Clear StoreClearCmd `cmd:"" help:"Remove every stored posting."`
}

type StoreStatsCmd struct{}

type StoreClearCmd struct {
	Force bool `help:"Required; clearing cannot be undone."`
}

type storeStats struct {
	Backend  string         `json:"backend"`
	Location string         `json:"location"`
	Total    int            `json:"total"`
	BySource map[string]int `json:"by_source"`
}

func (c *StoreStatsCmd) Run(ctx *Context) error {
	runCtx, cancel := signalContext()
	defer cancel()

	st, err := ctx.openStore(runCtx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	postings, err := st.All(runCtx)
	if err != nil {
		return err
	}

	stats := storeStats{
		Backend:  firstNonEmpty(ctx.Config.Store.Backend, store.BackendFile),
		Location: storeLocation(ctx),
		Total:    len(postings),
		BySource: map[string]int{},
	}
	counts := countBySource(postings)
	for _, count := range counts {
		stats.BySource[count.source] = count.total
	}

	if ctx.JSONOutput {
		return writeJSON(ctx.Out, stats)
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "backend\t%s\n", stats.Backend)
	fmt.Fprintf(tw, "location\t%s\n", stats.Location)
	fmt.Fprintf(tw, "total\t%d\n", stats.Total)
	for _, count := range counts {
		fmt.Fprintf(tw, "  %s\t%d\n", count.source, count.total)
	}
	return tw.Flush()
}

func (c *StoreClearCmd) Run(ctx *Context) error {
	if !c.Force {
		return fmt.Errorf("refusing to clear %s without --force", storeLocation(ctx))
	}

	runCtx, cancel := signalContext()
	defer cancel()

	st, err := ctx.openStore(runCtx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.Clear(runCtx); err != nil {
		return err
	}
	ctx.UI.Successf("Cleared %s", storeLocation(ctx))
	return nil
}

func storeLocation(ctx *Context) string {
	switch ctx.Config.Store.Backend {
	case store.BackendRedis:
		return fmt.Sprintf("%s (prefix %s)", ctx.Config.Store.RedisURL, firstNonEmpty(ctx.Config.Store.RedisPrefix, store.DefaultRedisPrefix))
	case store.BackendMemory:
		return "memory"
	default:
		return ctx.Config.Store.Path
	}
}
