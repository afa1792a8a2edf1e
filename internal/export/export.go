// Package export renders ranked postings as a terminal table, CSV, TSV,
// JSON or Markdown.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/muesli/termenv"

	"github.com/jimezsa/jobradar/internal/models"
	"github.com/jimezsa/jobradar/internal/ui"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
	LinkStyle    LinkStyle
}

type LinkStyle string

const (
	LinkStyleShort LinkStyle = "short"
	LinkStyleFull  LinkStyle = "full"
)

// ParseFormat maps a user-supplied name to a Format. Empty means table.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "tsv":
		return FormatTSV, nil
	case "table", "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format: %s", value)
	}
}

func WritePostings(w io.Writer, postings []models.Posting, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, postings)
	case FormatCSV:
		return writeCSV(w, postings, ',')
	case FormatTSV:
		return writeCSV(w, postings, '\t')
	case FormatMarkdown:
		return writeMarkdown(w, postings)
	default:
		return writeTable(w, postings, opts)
	}
}

func writeJSON(w io.Writer, postings []models.Posting) error {
	if postings == nil {
		postings = []models.Posting{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(postings)
}

func writeCSV(w io.Writer, postings []models.Posting, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(csvHeader()); err != nil {
		return err
	}
	for _, p := range postings {
		if err := writer.Write(csvRow(p)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, postings []models.Posting, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader(), "\t"))
	output := termenv.NewOutput(w)
	for _, p := range postings {
		fmt.Fprintln(tw, strings.Join(tableRow(p, output, opts), "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, postings []models.Posting) error {
	if len(postings) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, p := range postings {
		urlLine := "  URL: -"
		if link := safe(p.ApplyURL); link != "" {
			urlLine = fmt.Sprintf("  URL: [Open listing](<%s>)", link)
		}
		lines := []string{
			fmt.Sprintf("- **%s** (%s) score %s", safe(p.Title), safe(p.Company), ScoreText(p)),
			fmt.Sprintf("  Location: %s", orDash(Location(p))),
			fmt.Sprintf("  Source: %s", safe(p.Source)),
			urlLine,
		}
		if p.RemoteType != "" {
			lines = append(lines, fmt.Sprintf("  Remote: %s", p.RemoteType))
		}
		if p.ContractType != "" {
			lines = append(lines, fmt.Sprintf("  Contract: %s", safe(p.ContractType)))
		}
		if salary := SalaryText(p); salary != "" {
			lines = append(lines, fmt.Sprintf("  Salary: %s", salary))
		}
		if p.PostedAt != nil {
			lines = append(lines, fmt.Sprintf("  Posted: %s", p.PostedAt.Format(time.RFC3339)))
		}
		if len(p.Skills) > 0 {
			lines = append(lines, fmt.Sprintf("  Skills: %s", strings.Join(p.Skills, ", ")))
		}
		if len(p.Reasons) > 0 {
			lines = append(lines, fmt.Sprintf("  Why: %s", strings.Join(p.Reasons, "; ")))
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func csvHeader() []string {
	return []string{
		"id",
		"score",
		"source",
		"title",
		"company",
		"city",
		"country",
		"remote_type",
		"contract_type",
		"experience_level",
		"salary_min",
		"salary_max",
		"currency",
		"salary_period",
		"apply_url",
		"posted_at",
		"skills",
		"reasons",
	}
}

func csvRow(p models.Posting) []string {
	posted := ""
	if p.PostedAt != nil {
		posted = p.PostedAt.Format(time.RFC3339)
	}
	score := ""
	if p.MatchScore != nil {
		score = formatFloat(*p.MatchScore)
	}
	return []string{
		p.ID,
		score,
		p.Source,
		p.Title,
		p.Company,
		p.City,
		p.Country,
		string(p.RemoteType),
		p.ContractType,
		p.ExperienceLevel,
		floatPtr(p.SalaryMin),
		floatPtr(p.SalaryMax),
		p.Currency,
		string(p.SalaryPeriod),
		p.ApplyURL,
		posted,
		strings.Join(p.Skills, ";"),
		strings.Join(p.Reasons, "; "),
	}
}

func tableHeader() []string {
	return []string{
		"score",
		"source",
		"title",
		"company",
		"location",
		"remote",
		"contract",
		"salary",
		"url",
	}
}

func tableRow(p models.Posting, output *termenv.Output, opts WriteOptions) []string {
	link := safe(p.ApplyURL)
	displayURL := "-"
	if link != "" {
		displayURL = link
		if opts.LinkStyle == LinkStyleShort && opts.Hyperlinks {
			displayURL = shortURLLabel(link)
		}
		displayURL = ui.ColorizeLink(output, opts.ColorEnabled, displayURL)
		if opts.Hyperlinks {
			displayURL = hyperlink(link, displayURL)
		}
	}
	return []string{
		ui.ColorizeScore(output, opts.ColorEnabled, p.Score(), ScoreText(p)),
		safe(p.Source),
		safe(p.Title),
		orDash(safe(p.Company)),
		orDash(Location(p)),
		orDash(string(p.RemoteType)),
		orDash(safe(p.ContractType)),
		orDash(SalaryText(p)),
		displayURL,
	}
}

// ScoreText formats the match score, or "-" for an unscored posting.
func ScoreText(p models.Posting) string {
	if p.MatchScore == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *p.MatchScore)
}

// Location joins city and country.
func Location(p models.Posting) string {
	parts := make([]string, 0, 2)
	if city := safe(p.City); city != "" {
		parts = append(parts, city)
	}
	if country := safe(p.Country); country != "" {
		parts = append(parts, strings.ToUpper(country))
	}
	return strings.Join(parts, ", ")
}

// SalaryText renders "40000-55000 EUR/year", collapsing equal bounds.
func SalaryText(p models.Posting) string {
	if p.SalaryMin == nil && p.SalaryMax == nil {
		return ""
	}
	var amount string
	switch {
	case p.SalaryMin != nil && p.SalaryMax != nil && *p.SalaryMin != *p.SalaryMax:
		amount = formatFloat(*p.SalaryMin) + "-" + formatFloat(*p.SalaryMax)
	case p.SalaryMin != nil:
		amount = formatFloat(*p.SalaryMin)
	default:
		amount = formatFloat(*p.SalaryMax)
	}
	if p.Currency != "" {
		amount += " " + p.Currency
	}
	if p.SalaryPeriod != "" && p.SalaryPeriod != models.PeriodUnknown {
		amount += "/" + string(p.SalaryPeriod)
	}
	return amount
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func floatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func safe(value string) string {
	return strings.TrimSpace(value)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	const maxLen = 60
	label := strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(parsed.Host, "www.")
		if host != "" {
			label = host + parsed.Path
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = raw
	}
	if len(label) > maxLen {
		label = label[:maxLen-3] + "..."
	}
	return label
}
