package cmd

import (
	"fmt"

	"github.com/jimezsa/jobradar/internal/dedupe"
	"github.com/jimezsa/jobradar/internal/store"
)

type DedupeCmd struct {
	Unique DedupeUniqueCmd `cmd:"" help:"Drop fingerprint repeats inside one postings JSON file."`
	Diff   DedupeDiffCmd   `cmd:"" help:"Write postings of A not present in B (A-B) to JSON."`
	Merge  DedupeMergeCmd  `cmd:"" help:"Merge new postings into a history JSON file."`
}

type DedupeUniqueCmd struct {
	Input string `name:"input" required:"" help:"Path to a postings JSON file."`
	Out   string `name:"out" required:"" help:"Output path for the unique postings."`
	Stats bool   `name:"stats" help:"Print dedupe stats."`
}

type DedupeDiffCmd struct {
	New   string `name:"new" required:"" help:"Path to new postings JSON file (A)."`
	Seen  string `name:"seen" required:"" help:"Path to seen postings JSON file (B). Missing file is treated as empty."`
	Out   string `name:"out" required:"" help:"Output path for unseen postings JSON file (C)."`
	Stats bool   `name:"stats" help:"Print comparison stats."`
}

type DedupeMergeCmd struct {
	Seen  string `name:"seen" required:"" help:"Path to seen postings JSON file (B). Missing file is treated as empty."`
	Input string `name:"input" required:"" help:"Path to postings JSON file to merge into the history."`
	Out   string `name:"out" required:"" help:"Output path for the merged history."`
	Stats bool   `name:"stats" help:"Print merge stats."`
}

func (c *DedupeUniqueCmd) Run(ctx *Context) error {
	postings, err := store.ReadPostings(c.Input)
	if err != nil {
		return fmt.Errorf("read --input: %w", err)
	}

	unique, stats := dedupe.DeduplicateWithStats(postings)
	if err := store.WritePostings(c.Out, unique); err != nil {
		return fmt.Errorf("write --out: %w", err)
	}

	if c.Stats {
		_, err := fmt.Fprintf(ctx.Out, "total=%d duplicates=%d unique=%d\n", stats.Total, stats.Duplicates, stats.Unique)
		return err
	}
	return nil
}

func (c *DedupeDiffCmd) Run(ctx *Context) error {
	if pathsEqual(c.Out, c.Seen) {
		return fmt.Errorf("--out path must differ from --seen")
	}

	incoming, err := store.ReadPostings(c.New)
	if err != nil {
		return fmt.Errorf("read --new: %w", err)
	}
	existing, err := store.ReadPostingsAllowMissing(c.Seen)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}

	unseen, stats := dedupe.Diff(incoming, existing)
	if err := store.WritePostings(c.Out, unseen); err != nil {
		return fmt.Errorf("write --out: %w", err)
	}

	if c.Stats {
		_, err := fmt.Fprintf(
			ctx.Out,
			"total_new=%d total_seen=%d duplicates=%d unseen_emitted=%d\n",
			stats.TotalIncoming,
			stats.TotalExisting,
			stats.Duplicates,
			stats.Unseen,
		)
		return err
	}
	return nil
}

func (c *DedupeMergeCmd) Run(ctx *Context) error {
	existing, err := store.ReadPostingsAllowMissing(c.Seen)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}
	incoming, err := store.ReadPostings(c.Input)
	if err != nil {
		return fmt.Errorf("read --input: %w", err)
	}

	merged, stats := dedupe.Merge(existing, incoming)
	if err := store.WritePostings(c.Out, merged); err != nil {
		return fmt.Errorf("write --out: %w", err)
	}

	if c.Stats {
		_, err := fmt.Fprintf(
			ctx.Out,
			"total_seen=%d total_input=%d added=%d total_out=%d\n",
			stats.TotalExisting,
			stats.TotalIncoming,
			stats.Added,
			stats.TotalOut,
		)
		return err
	}
	return nil
}
