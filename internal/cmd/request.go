package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/muesli/termenv"

	"github.com/jimezsa/jobradar/internal/config"
	"github.com/jimezsa/jobradar/internal/export"
	"github.com/jimezsa/jobradar/internal/models"
)

const maxQueries = 10

// RequestOptions are the SearchRequest fields exposed as flags.
type RequestOptions struct {
	Country   []string `help:"Country codes; the first one drives harvesting." sep:","`
	Location  []string `help:"Preferred locations." sep:","`
	Contract  []string `help:"Target contract types (CDI, CDD, Freelance, Internship)." sep:","`
	Remote    string   `help:"Remote preference: remote, hybrid or onsite." enum:",remote,hybrid,onsite" default:""`
	SalaryMin float64  `help:"Minimum yearly salary."`
	Language  []string `help:"Spoken or programming languages to match." sep:","`
	Exclude   []string `help:"Terms that disqualify a posting." sep:","`
	CVSummary string   `name:"cv-summary" help:"Free-text CV summary to match against."`
}

func (o RequestOptions) request(query string) models.SearchRequest {
	req := models.SearchRequest{
		Keywords:         splitKeywords(query),
		Locations:        trimAll(o.Location),
		Countries:        lowerAll(o.Country),
		ContractTypes:    trimAll(o.Contract),
		Languages:        trimAll(o.Language),
		Exclusions:       trimAll(o.Exclude),
		RemotePreference: models.RemoteType(strings.ToLower(o.Remote)),
		CVSummary:        strings.TrimSpace(o.CVSummary),
	}
	if o.SalaryMin > 0 {
		req.SalaryMin = models.Float(o.SalaryMin)
	}
	return req
}

// harvestRequest is request plus the configured default country.
func (o RequestOptions) harvestRequest(query string, cfg config.Config) models.SearchRequest {
	req := o.request(query)
	if len(req.Countries) == 0 && cfg.DefaultCountry != "" {
		req.Countries = []string{strings.ToLower(cfg.DefaultCountry)}
	}
	return req
}

// OutputOptions control how ranked postings are written.
type OutputOptions struct {
	Format string `help:"Output format: table, csv, tsv, json, md." enum:",table,csv,tsv,json,md" default:""`
	Links  string `help:"Table link display: short or full." enum:"short,full" default:"full"`
	Output string `name:"output" short:"o" help:"Write output to a file."`
}

func splitKeywords(raw string) []string {
	return strings.Fields(strings.ReplaceAll(raw, ",", " "))
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func lowerAll(values []string) []string {
	out := trimAll(values)
	for i := range out {
		out[i] = strings.ToLower(out[i])
	}
	return out
}

func secondsDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

func parseQueries(raw string) ([]string, error) {
	return mergeAndNormalizeQueries(splitQueries(raw), nil)
}

// resolveQueries merges the comma-separated positional queries with the
// ones from queryFile, dropping case-insensitive repeats.
func resolveQueries(raw string, queryFile string) ([]string, error) {
	positionalQueries := splitQueries(raw)
	var fileQueries []string
	if strings.TrimSpace(queryFile) != "" {
		var err error
		fileQueries, err = loadQueriesFromJSON(queryFile)
		if err != nil {
			return nil, err
		}
	}
	return mergeAndNormalizeQueries(positionalQueries, fileQueries)
}

func splitQueries(raw string) []string {
	parts := strings.Split(raw, ",")
	queries := make([]string, 0, len(parts))
	for _, part := range parts {
		query := strings.TrimSpace(part)
		if query == "" {
			continue
		}
		queries = append(queries, query)
	}
	return queries
}

func mergeAndNormalizeQueries(primary []string, secondary []string) ([]string, error) {
	queries := make([]string, 0, len(primary)+len(secondary))
	seenQueries := make(map[string]struct{}, len(primary)+len(secondary))

	appendUnique := func(rawQuery string) {
		query := strings.TrimSpace(rawQuery)
		if query == "" {
			return
		}
		normalized := strings.ToLower(query)
		if _, exists := seenQueries[normalized]; exists {
			return
		}
		seenQueries[normalized] = struct{}{}
		queries = append(queries, query)
	}

	for _, query := range primary {
		appendUnique(query)
	}
	for _, query := range secondary {
		appendUnique(query)
	}

	if len(queries) == 0 {
		return nil, fmt.Errorf("at least one non-empty query is required")
	}
	if len(queries) > maxQueries {
		return nil, fmt.Errorf("too many queries: max %d", maxQueries)
	}
	return queries, nil
}

// loadQueriesFromJSON accepts a top-level string array or an object with a
// "queries" string array.
func loadQueriesFromJSON(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read --query-file %q: %w", path, err)
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parse --query-file %q: %w", path, err)
	}

	switch value := decoded.(type) {
	case []any:
		return parseStringArray(value, path, "root array")
	case map[string]any:
		raw, ok := value["queries"]
		if !ok {
			return nil, fmt.Errorf("invalid --query-file %q: expected top-level string array or object with \"queries\" string array", path)
		}
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("invalid --query-file %q: field \"queries\" must be an array of strings", path)
		}
		return parseStringArray(list, path, "queries")
	default:
		return nil, fmt.Errorf("invalid --query-file %q: expected top-level string array or object with \"queries\" string array", path)
	}
}

func parseStringArray(values []any, path string, fieldName string) ([]string, error) {
	queries := make([]string, 0, len(values))
	for idx, rawValue := range values {
		query, ok := rawValue.(string)
		if !ok {
			return nil, fmt.Errorf("invalid --query-file %q: %s[%d] must be a string", path, fieldName, idx)
		}
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		queries = append(queries, query)
	}
	return queries, nil
}

func resolveFormat(ctx *Context, opts OutputOptions) (export.Format, error) {
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if opts.Format != "" {
		return export.ParseFormat(opts.Format)
	}
	if opts.Output != "" {
		return export.FormatCSV, nil
	}
	if isTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

// writePostings renders postings to --output or stdout.
func writePostings(ctx *Context, postings []models.Posting, opts OutputOptions) error {
	format, err := resolveFormat(ctx, opts)
	if err != nil {
		return err
	}

	writer := ctx.Out
	if opts.Output != "" {
		file, err := os.Create(opts.Output)
		if err != nil {
			return err
		}
		defer file.Close()
		writer = file
	}

	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled && opts.Output == ""
	hyperlinks := colorEnabled && isTTY(writer)
	linkStyle := export.LinkStyleShort
	if strings.EqualFold(opts.Links, string(export.LinkStyleFull)) {
		linkStyle = export.LinkStyleFull
	}
	return export.WritePostings(writer, postings, format, export.WriteOptions{
		ColorEnabled: colorEnabled,
		Hyperlinks:   hyperlinks,
		LinkStyle:    linkStyle,
	})
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func pathsEqual(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil {
		return absA == absB
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func isTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}

// startIndicator draws a spinner on stderr while a slow command runs. It is a
// no-op when stderr is not a terminal.
func startIndicator(ctx *Context, label string) func() {
	if ctx == nil || ctx.Err == nil || ctx.UI == nil || !isTTY(ctx.Err) {
		return func() {}
	}

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		start := time.Now()
		frames := []string{"|", "/", "-", "\\"}
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		index := 0

		for {
			select {
			case <-done:
				fmt.Fprint(ctx.Err, "\r\033[2K")
				return
			case <-ticker.C:
				seconds := int(time.Since(start).Seconds())
				frame := frames[index%len(frames)]
				fmt.Fprintf(ctx.Err, "\r\033[2K%s... %ds %s", label, seconds, frame)
				index++
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}
