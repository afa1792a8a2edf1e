// Package pipeline sequences harvesting (fetch, dedupe, persist) and search
// (load, score, rank).
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jimezsa/jobradar/internal/connector"
	"github.com/jimezsa/jobradar/internal/dedupe"
	"github.com/jimezsa/jobradar/internal/models"
	"github.com/jimezsa/jobradar/internal/scoring"
	"github.com/jimezsa/jobradar/internal/store"
)

var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrInvalidRequest    = errors.New("invalid request")
)

const (
	DefaultQuery   = "developpeur"
	DefaultCountry = "fr"
	DefaultLimit   = 15
	DefaultTimeout = 20 * time.Second
)

type Options struct {
	// Timeout bounds each connector call independently.
	Timeout time.Duration
	// Limit is the per-connector result cap passed to Fetch.
	Limit int
}

type Pipeline struct {
	connectors []connector.Connector
	store      store.Store
	logger     zerolog.Logger
	timeout    time.Duration
	limit      int
}

func New(connectors []connector.Connector, st store.Store, logger zerolog.Logger, opts Options) *Pipeline {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	return &Pipeline{
		connectors: connectors,
		store:      st,
		logger:     logger,
		timeout:    opts.Timeout,
		limit:      opts.Limit,
	}
}

// Connectors returns the configured connector names in priority order.
func (p *Pipeline) Connectors() []string {
	names := make([]string, 0, len(p.connectors))
	for _, c := range p.connectors {
		names = append(names, c.Name())
	}
	return names
}

// SourceFailure records one connector that contributed nothing.
type SourceFailure struct {
	Source         string `json:"source"`
	Err            error  `json:"-"`
	Message        string `json:"error"`
	NotImplemented bool   `json:"not_implemented,omitempty"`
}

func (f SourceFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Source, f.Err)
}

func (f SourceFailure) Unwrap() []error {
	return []error{ErrSourceUnavailable, f.Err}
}

// Report summarizes one harvest.
type Report struct {
	Query    string          `json:"query"`
	Country  string          `json:"country"`
	Scraped  int             `json:"scraped"`
	Unique   int             `json:"unique"`
	Stored   int             `json:"stored"`
	New      int             `json:"new"`
	Failures []SourceFailure `json:"errors"`
}

// Errors renders the failures as strings.
func (r Report) Errors() []string {
	out := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, f.Error())
	}
	return out
}

type HarvestResult struct {
	Postings []models.Posting `json:"items"`
	Report   Report           `json:"report"`
}

// ValidateRequest rejects requests no component can interpret.
func ValidateRequest(req models.SearchRequest) error {
	if _, ok := models.ParseRemoteType(string(req.RemotePreference)); !ok {
		return fmt.Errorf("%w: remote_preference %q (want remote, hybrid or onsite)", ErrInvalidRequest, req.RemotePreference)
	}
	if req.SalaryMin != nil && *req.SalaryMin < 0 {
		return fmt.Errorf("%w: salary_min %v is negative", ErrInvalidRequest, *req.SalaryMin)
	}
	return nil
}

// NormalizeRequest validates req and returns it with the remote preference in
// canonical form, so " Remote" scores the same as "remote".
func NormalizeRequest(req models.SearchRequest) (models.SearchRequest, error) {
	if err := ValidateRequest(req); err != nil {
		return models.SearchRequest{}, err
	}
	req.RemotePreference, _ = models.ParseRemoteType(string(req.RemotePreference))
	return req, nil
}

// QueryFor derives the connector query: the joined keywords (or the default
// query) and the first requested country (or the default country).
func QueryFor(req models.SearchRequest, limit int) connector.Query {
	text := strings.TrimSpace(strings.Join(req.Keywords, " "))
	if text == "" {
		text = DefaultQuery
	}
	country := DefaultCountry
	if len(req.Countries) > 0 && strings.TrimSpace(req.Countries[0]) != "" {
		country = strings.ToLower(strings.TrimSpace(req.Countries[0]))
	}
	return connector.Query{Text: text, Country: country, Limit: limit}
}

// Harvest fetches from every connector, deduplicates the merged results and
// upserts them. Connector failures land in the report; only an invalid
// request or a store failure is returned as an error.
func (p *Pipeline) Harvest(ctx context.Context, req models.SearchRequest) (HarvestResult, error) {
	req, err := NormalizeRequest(req)
	if err != nil {
		return HarvestResult{}, err
	}

	q := QueryFor(req, p.limit)
	report := Report{Query: q.Text, Country: q.Country}

	fetched, failures := p.fetchAll(ctx, q)
	report.Failures = failures
	report.Scraped = len(fetched)

	unique, _ := dedupe.DeduplicateWithStats(fetched)
	report.Unique = len(unique)

	existing, err := p.store.All(ctx)
	if err != nil {
		return HarvestResult{Postings: unique, Report: report}, fmt.Errorf("read store: %w", err)
	}
	_, diff := dedupe.Diff(unique, existing)
	report.New = diff.Unseen

	stored, err := p.store.Upsert(ctx, unique)
	report.Stored = stored
	result := HarvestResult{Postings: unique, Report: report}
	if err != nil {
		p.logger.Error().Err(err).Str("query", q.Text).Msg("store upsert failed")
		return result, fmt.Errorf("upsert %d postings: %w", len(unique), err)
	}

	p.logger.Info().
		Str("query", q.Text).
		Str("country", q.Country).
		Int("scraped", report.Scraped).
		Int("stored", report.Stored).
		Int("new", report.New).
		Int("errors", len(report.Failures)).
		Msg("harvest complete")
	return result, nil
}

type sourceResult struct {
	postings []models.Posting
	err      error
}

// fetchAll runs every connector concurrently. Results are buffered per
// connector and merged in registry order so dedupe stays deterministic.
func (p *Pipeline) fetchAll(ctx context.Context, q connector.Query) ([]models.Posting, []SourceFailure) {
	results := make([]sourceResult, len(p.connectors))

	var wg sync.WaitGroup
	for i, c := range p.connectors {
		wg.Add(1)
		go func(i int, c connector.Connector) {
			defer wg.Done()
			start := time.Now()
			postings, err := p.fetch(ctx, c, q)
			results[i] = sourceResult{postings: postings, err: err}
			if err != nil {
				p.logger.Warn().Err(err).Str("source", c.Name()).Msg("connector failed")
				return
			}
			p.logger.Debug().
				Str("source", c.Name()).
				Int("count", len(postings)).
				Dur("elapsed", time.Since(start)).
				Msg("connector done")
		}(i, c)
	}
	wg.Wait()

	var (
		all      []models.Posting
		failures []SourceFailure
	)
	for i, res := range results {
		name := p.connectors[i].Name()
		if res.err != nil {
			failures = append(failures, SourceFailure{
				Source:         name,
				Err:            res.err,
				Message:        res.err.Error(),
				NotImplemented: errors.Is(res.err, connector.ErrNotImplemented),
			})
			continue
		}
		for _, posting := range res.postings {
			all = append(all, normalize(posting, name))
		}
	}
	return all, failures
}

// fetch bounds one connector call by the pipeline timeout. A late result is
// discarded and a panic becomes an error.
func (p *Pipeline) fetch(ctx context.Context, c connector.Connector, q connector.Query) ([]models.Posting, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan sourceResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- sourceResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		postings, err := c.Fetch(ctx, q)
		done <- sourceResult{postings: postings, err: err}
	}()

	select {
	case res := <-done:
		return res.postings, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("no response within %s: %w", p.timeout, ctx.Err())
	}
}

func normalize(posting models.Posting, source string) models.Posting {
	if posting.Source == "" {
		posting.Source = source
	}
	if posting.ID == "" {
		posting.ID = dedupe.StableID(posting)
	}
	return posting
}

// Search scores every stored posting against req and ranks them, highest
// score first. Equal scores keep the store's order.
func (p *Pipeline) Search(ctx context.Context, req models.SearchRequest) ([]models.Posting, error) {
	req, err := NormalizeRequest(req)
	if err != nil {
		return nil, err
	}

	postings, err := p.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}

	for i := range postings {
		scoring.Score(&postings[i], req)
	}
	sort.SliceStable(postings, func(i, j int) bool {
		return postings[i].Score() > postings[j].Score()
	})

	p.logger.Debug().Int("postings", len(postings)).Strs("keywords", req.Keywords).Msg("search ranked")
	return postings, nil
}
