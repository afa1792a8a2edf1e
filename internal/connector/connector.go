// Package connector holds the job sources the pipeline harvests from.
package connector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"

	"github.com/jimezsa/jobradar/internal/models"
	"github.com/jimezsa/jobradar/internal/network"
)

var (
	ErrNotImplemented = errors.New("connector not implemented")
	ErrNotConfigured  = errors.New("connector not configured")
	ErrMalformedCard  = errors.New("malformed card")
)

const (
	SourceFranceTravail = "france_travail"
	SourceAdzuna        = "adzuna"
	SourceEURES         = "eures"
	SourceWTTJ          = "welcometothejungle"
	SourceRemotive      = "remotive"
	SourceAPEC          = "apec"
	SourceIndeed        = "indeed"
)

// Names lists every source in priority order. Harvest results are merged in
// this order, so earlier sources win ties during deduplication.
func Names() []string {
	return []string{
		SourceFranceTravail,
		SourceAdzuna,
		SourceEURES,
		SourceWTTJ,
		SourceRemotive,
		SourceAPEC,
		SourceIndeed,
	}
}

// Query is what a single connector call searches for.
type Query struct {
	Text    string
	Country string
	Limit   int
}

// Connector fetches normalized postings from one source. A country the source
// does not cover yields no postings and no error.
type Connector interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]models.Posting, error)
}

// Doer is the HTTP surface connectors need; *network.Client satisfies it.
type Doer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

// Credentials carries API keys for the sources that need them.
type Credentials struct {
	AdzunaAppID         string
	AdzunaAppKey        string
	FranceTravailAPIKey string
	EURESAPIKey         string
}

// Registry builds every connector, each with its own HTTP client so proxy
// rotation state is not shared between sources.
func Registry(rotator *network.Rotator, creds Credentials, timeout time.Duration) ([]Connector, error) {
	makeClient := func() (*network.Client, error) {
		return network.NewClient(rotator, network.WithTimeout(timeout))
	}

	clients := make([]*network.Client, 5)
	for i := range clients {
		client, err := makeClient()
		if err != nil {
			return nil, err
		}
		clients[i] = client
	}

	return []Connector{
		NewFranceTravail(creds.FranceTravailAPIKey),
		NewAdzuna(clients[0], creds.AdzunaAppID, creds.AdzunaAppKey),
		NewEURES(creds.EURESAPIKey),
		NewWTTJ(clients[1]),
		NewRemotive(clients[2]),
		NewAPEC(clients[3]),
		NewIndeed(clients[4]),
	}, nil
}

// Select keeps the connectors named in names, preserving registry order.
// An empty list or "all" keeps everything.
func Select(all []Connector, names []string) ([]Connector, error) {
	requested := NormalizeNames(names)
	if len(requested) == 0 || (len(requested) == 1 && requested[0] == "all") {
		return all, nil
	}

	known := make(map[string]bool, len(all))
	for _, c := range all {
		known[c.Name()] = true
	}
	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		name = expandAlias(name)
		if !known[name] {
			return nil, fmt.Errorf("unknown connector: %s", name)
		}
		want[name] = true
	}

	selected := make([]Connector, 0, len(want))
	for _, c := range all {
		if want[c.Name()] {
			selected = append(selected, c)
		}
	}
	return selected, nil
}

func NormalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		name = strings.TrimPrefix(name, "www.")
		out = append(out, name)
	}
	return out
}

func expandAlias(name string) string {
	switch name {
	case "wttj", "welcome-to-the-jungle":
		return SourceWTTJ
	case "francetravail", "france-travail", "pole-emploi":
		return SourceFranceTravail
	default:
		return name
	}
}
