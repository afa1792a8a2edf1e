package connector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	fhttp "github.com/bogdanfinn/fhttp"

	"github.com/jimezsa/jobradar/internal/cvparse"
	"github.com/jimezsa/jobradar/internal/dedupe"
	"github.com/jimezsa/jobradar/internal/models"
)

func fetchDocument(ctx context.Context, client Doer, target string, headers map[string]string) (*goquery.Document, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	applyHeaders(req, headers)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

func applyHeaders(req *fhttp.Request, headers map[string]string) {
	if headers == nil {
		headers = map[string]string{}
	}
	if _, ok := headers["accept"]; !ok {
		headers["accept"] = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	}
	if _, ok := headers["accept-language"]; !ok {
		headers["accept-language"] = "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7"
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
}

// selectCards returns the first selector in the list that matches anything.
func selectCards(doc *goquery.Document, selectors ...string) *goquery.Selection {
	for _, selector := range selectors {
		if cards := doc.Find(selector); cards.Length() > 0 {
			return cards
		}
	}
	return doc.Find(selectors[len(selectors)-1])
}

func firstText(s *goquery.Selection, selector string) string {
	return cleanText(s.Find(selector).First().Text())
}

func cleanText(value string) string {
	value = html.UnescapeString(value)
	return strings.Join(strings.Fields(value), " ")
}

func absoluteURL(base string, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// lastPathSegment is used as the source id for slug-addressed offers.
func lastPathSegment(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	return parts[len(parts)-1]
}

func cityFrom(location string) string {
	city, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(city)
}

func parsePostedAt(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		"2006-01-02",
		"2006-01-02T15:04:05-0700",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %s", value)
}

// classifyRemote reads the remote policy from free text.
func classifyRemote(text string) models.RemoteType {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "télétravail"), strings.Contains(lower, "remote"):
		return models.RemoteFull
	case strings.Contains(lower, "hybride"), strings.Contains(lower, "hybrid"), strings.Contains(lower, "partiel"):
		return models.RemoteHybrid
	default:
		return models.RemoteOnsite
	}
}

// classifyContract reads the contract type from free text, defaulting to CDI.
func classifyContract(text string) string {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "CDD"):
		return "CDD"
	case strings.Contains(upper, "STAGE"), strings.Contains(upper, "INTERN"):
		return "Internship"
	case strings.Contains(upper, "FREELANCE"), strings.Contains(upper, "INDÉPENDANT"):
		return "Freelance"
	default:
		return "CDI"
	}
}

// finalize fills the derived fields every connector shares: a stable id and
// the skill tags found in the title and description.
func finalize(p *models.Posting) {
	p.ID = dedupe.StableID(*p)
	if len(p.Skills) == 0 {
		if skills := cvparse.Extract(p.Title + " " + p.Description).Skills; len(skills) > 0 {
			p.Skills = skills
		}
	}
}

func limitPostings(postings []models.Posting, limit int) []models.Posting {
	if limit <= 0 || len(postings) <= limit {
		return postings
	}
	return postings[:limit]
}

func minLimit(requested, ceiling int) int {
	if requested <= 0 || requested > ceiling {
		return ceiling
	}
	return requested
}

func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if max <= 0 || utf8.RuneCountInString(value) <= max {
		return value
	}
	runes := []rune(value)
	return strings.TrimSpace(string(runes[:max])) + "..."
}

// parseJSONLDPostings reads schema.org JobPosting blocks, the fallback when a
// results page carries no recognizable cards.
func parseJSONLDPostings(doc *goquery.Document, source string) []models.Posting {
	var postings []models.Posting
	seen := map[string]struct{}{}

	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		data, err := decodeJSONLD(raw)
		if err != nil {
			return
		}

		for _, posting := range extractJSONLD(data, source) {
			if posting.Title == "" || posting.ApplyURL == "" {
				continue
			}
			if _, ok := seen[posting.ApplyURL]; ok {
				continue
			}
			seen[posting.ApplyURL] = struct{}{}
			postings = append(postings, posting)
		}
	})

	return postings
}

func decodeJSONLD(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "<!--")
	raw = strings.TrimSuffix(raw, "-->")
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, "\u2028", "")
	raw = strings.ReplaceAll(raw, "\u2029", "")

	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func extractJSONLD(data any, source string) []models.Posting {
	var postings []models.Posting

	switch value := data.(type) {
	case []any:
		for _, item := range value {
			postings = append(postings, extractJSONLD(item, source)...)
		}
	case map[string]any:
		switch strings.ToLower(stringValue(value["@type"], value["type"])) {
		case "jobposting":
			return append(postings, postingFromJSONLD(value, source))
		case "itemlist":
			if items, ok := value["itemListElement"]; ok {
				postings = append(postings, extractJSONLD(items, source)...)
			}
		case "listitem":
			if item, ok := value["item"]; ok {
				postings = append(postings, extractJSONLD(item, source)...)
			}
		}
		if graph, ok := value["@graph"]; ok {
			postings = append(postings, extractJSONLD(graph, source)...)
		}
		if main, ok := value["mainEntity"]; ok {
			postings = append(postings, extractJSONLD(main, source)...)
		}
	}

	return postings
}

func postingFromJSONLD(value map[string]any, source string) models.Posting {
	p := models.Posting{Source: source}
	p.Title = stringValue(value["title"], value["name"])
	p.Company = stringValue(mapValue(value["hiringOrganization"], "name"))
	p.ApplyURL = stringValue(value["url"], value["@id"])
	p.SourceJobID = stringValue(mapValue(value["identifier"], "value"))
	p.Description = truncate(cleanText(stringValue(value["description"])), 250)

	locality, country := locationFromJSONLD(value["jobLocation"])
	p.City = locality
	p.Country = strings.ToLower(country)

	if ts, err := parsePostedAt(stringValue(value["datePosted"])); err == nil {
		p.PostedAt = &ts
	}

	employment := stringValue(value["employmentType"])
	p.ContractType = classifyContract(employment)
	if strings.EqualFold(stringValue(value["jobLocationType"]), "TELECOMMUTE") {
		p.RemoteType = models.RemoteFull
	} else {
		p.RemoteType = classifyRemote(p.Title + " " + p.Description)
	}

	applyJSONLDSalary(&p, value["baseSalary"])
	return p
}

func applyJSONLDSalary(p *models.Posting, value any) {
	salary, ok := value.(map[string]any)
	if !ok {
		return
	}
	amount, ok := salary["value"].(map[string]any)
	if !ok {
		return
	}

	min, hasMin := amount["minValue"].(float64)
	max, hasMax := amount["maxValue"].(float64)
	if single, ok := amount["value"].(float64); ok && !hasMin {
		min, max, hasMin, hasMax = single, single, true, true
	}
	if !hasMin {
		return
	}
	if !hasMax {
		max = min
	}

	p.SalaryMin = models.Float(min)
	p.SalaryMax = models.Float(max)
	p.Currency = stringValue(salary["currency"])
	p.SalaryPeriod = periodFromUnit(stringValue(amount["unitText"]))
	confidence := confidenceRange
	if min == max {
		confidence = confidenceSingle
	}
	p.SalaryConfidence = models.Float(confidence)
}

func periodFromUnit(unit string) models.SalaryPeriod {
	switch strings.ToUpper(unit) {
	case "YEAR":
		return models.PeriodYear
	case "MONTH":
		return models.PeriodMonth
	case "DAY":
		return models.PeriodDay
	case "HOUR":
		return models.PeriodHour
	default:
		return models.PeriodUnknown
	}
}

// locationFromJSONLD returns the first locality and country it finds.
func locationFromJSONLD(value any) (string, string) {
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if city, country := locationFromJSONLD(item); city != "" || country != "" {
				return city, country
			}
		}
	case map[string]any:
		address := v
		if nested, ok := v["address"].(map[string]any); ok {
			address = nested
		}
		return stringValue(address["addressLocality"]), stringValue(address["addressCountry"])
	case string:
		return cityFrom(v), ""
	}
	return "", ""
}

func stringValue(values ...any) string {
	for _, value := range values {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		case float64:
			return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
		case json.Number:
			return v.String()
		case map[string]any:
			if name := stringValue(v["name"]); name != "" {
				return name
			}
		}
	}
	return ""
}

func mapValue(value any, key string) any {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}
