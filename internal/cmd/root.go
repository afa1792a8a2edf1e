package cmd

import (
	"github.com/alecthomas/kong"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `name:"version" help:"Print version."`

	Version    VersionCmd    `cmd:"" help:"Print version."`
	Config     ConfigCmd     `cmd:"" help:"Manage configuration."`
	Harvest    HarvestCmd    `cmd:"" help:"Fetch postings from every connector and store the unique ones."`
	Search     SearchCmd     `cmd:"" help:"Score and rank stored postings."`
	Batch      BatchCmd      `cmd:"" help:"Harvest a catalog of queries."`
	Serve      ServeCmd      `cmd:"" help:"Run the HTTP API and the scheduled batch."`
	Profile    ProfileCmd    `cmd:"" help:"Manage candidate profiles."`
	Store      StoreCmd      `cmd:"" help:"Inspect or reset the posting store."`
	Dedupe     DedupeCmd     `cmd:"" help:"Compare and merge posting JSON files."`
	Connectors ConnectorsCmd `cmd:"" help:"List connectors and their status."`
	Proxies    ProxiesCmd    `cmd:"" help:"Proxy utilities."`
}

func NewCLI() *CLI {
	return &CLI{}
}
