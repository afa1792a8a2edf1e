package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/jobradar/internal/config"
	"github.com/jimezsa/jobradar/internal/connector"
)

type ConnectorsCmd struct{}

type connectorInfo struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Status  string `json:"status"`
}

func (c *ConnectorsCmd) Run(ctx *Context) error {
	infos := connectorInfos(ctx.Config)
	if ctx.JSONOutput {
		return writeJSON(ctx.Out, infos)
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "priority\tname\tenabled\tstatus")
	for i, info := range infos {
		fmt.Fprintf(tw, "%d\t%s\t%t\t%s\n", i+1, info.Name, info.Enabled, info.Status)
	}
	return tw.Flush()
}

// connectorInfos reports every connector in priority order, whether the
// config enables it and whether it can currently return postings.
func connectorInfos(cfg config.Config) []connectorInfo {
	enabled := map[string]bool{}
	for _, name := range connector.NormalizeNames(cfg.Connectors) {
		enabled[name] = true
	}
	all := len(enabled) == 0 || enabled["all"]

	names := connector.Names()
	infos := make([]connectorInfo, 0, len(names))
	for _, name := range names {
		info := connectorInfo{Name: name, Enabled: all || enabled[name], Status: "ready"}
		switch name {
		case connector.SourceFranceTravail, connector.SourceEURES:
			info.Status = "not implemented"
		case connector.SourceAdzuna:
			if strings.TrimSpace(cfg.Adzuna.AppID) == "" || strings.TrimSpace(cfg.Adzuna.AppKey) == "" {
				info.Status = "needs ADZUNA_APP_ID and ADZUNA_APP_KEY"
			}
		}
		infos = append(infos, info)
	}
	return infos
}
