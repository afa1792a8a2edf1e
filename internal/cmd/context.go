package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/jimezsa/jobradar/internal/config"
	"github.com/jimezsa/jobradar/internal/connector"
	"github.com/jimezsa/jobradar/internal/network"
	"github.com/jimezsa/jobradar/internal/pipeline"
	"github.com/jimezsa/jobradar/internal/profile"
	"github.com/jimezsa/jobradar/internal/store"
	"github.com/jimezsa/jobradar/internal/ui"
)

type Context struct {
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Config     config.Config
	ConfigDir  string
	Logger     zerolog.Logger
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode
}

// SourceOptions selects and tunes the connectors of a harvest.
type SourceOptions struct {
	Connectors string `help:"Comma-separated connectors (default: config, then all)."`
	Proxies    string `help:"Comma-separated proxy URLs." env:"JOBRADAR_PROXIES"`
	Limit      int    `help:"Maximum postings per connector."`
	Timeout    int    `help:"Per-connector timeout in seconds."`
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (c *Context) openStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, store.Options{
		Backend:     c.Config.Store.Backend,
		Path:        c.Config.Store.Path,
		RedisURL:    c.Config.Store.RedisURL,
		RedisPrefix: c.Config.Store.RedisPrefix,
	})
}

func closeStore(st store.Store) {
	if closer, ok := st.(io.Closer); ok {
		_ = closer.Close()
	}
}

func (c *Context) openProfiles() (*profile.Store, error) {
	return profile.NewStore(c.Config.ProfilesDir)
}

func (c *Context) credentials() connector.Credentials {
	return connector.Credentials{
		AdzunaAppID:         c.Config.Adzuna.AppID,
		AdzunaAppKey:        c.Config.Adzuna.AppKey,
		FranceTravailAPIKey: c.Config.FranceTravail.APIKey,
		EURESAPIKey:         c.Config.EURES.APIKey,
	}
}

// buildPipeline wires the selected connectors, behind the proxy rotator when
// proxies are configured, to st.
func (c *Context) buildPipeline(st store.Store, opts SourceOptions) (*pipeline.Pipeline, error) {
	proxies, err := config.LoadProxies(opts.Proxies)
	if err != nil {
		return nil, err
	}

	var rotator *network.Rotator
	if len(proxies) > 0 {
		rotator, err = network.NewRotator(proxies, network.DefaultBanDuration)
		if err != nil {
			return nil, err
		}
	}

	timeout := c.Config.ConnectorTimeout()
	if opts.Timeout > 0 {
		timeout = secondsDuration(opts.Timeout)
	}

	registry, err := connector.Registry(rotator, c.credentials(), timeout)
	if err != nil {
		return nil, err
	}

	names := splitList(opts.Connectors)
	if len(names) == 0 {
		names = c.Config.Connectors
	}
	selected, err := connector.Select(registry, names)
	if err != nil {
		return nil, err
	}

	return pipeline.New(selected, st, c.Logger, pipeline.Options{
		Timeout: timeout,
		Limit:   defaultInt(opts.Limit, c.Config.DefaultLimit),
	}), nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
