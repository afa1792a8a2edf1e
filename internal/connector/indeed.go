package connector

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jimezsa/jobradar/internal/models"
)

type Indeed struct {
	client Doer
}

func NewIndeed(client Doer) *Indeed {
	return &Indeed{client: client}
}

func (i *Indeed) Name() string {
	return SourceIndeed
}

func (i *Indeed) Fetch(ctx context.Context, q Query) ([]models.Posting, error) {
	doc, err := fetchDocument(ctx, i.client, buildIndeedURL(q), nil)
	if err != nil {
		return nil, err
	}
	return parseIndeed(doc, q), nil
}

func parseIndeed(doc *goquery.Document, q Query) []models.Posting {
	base := baseIndeedURL(q.Country)
	country := strings.ToLower(strings.TrimSpace(q.Country))

	var postings []models.Posting
	selectCards(doc, "div.job_seen_beacon", "div[data-jk]", "a.tapItem").Each(func(_ int, s *goquery.Selection) {
		if q.Limit > 0 && len(postings) >= q.Limit {
			return
		}
		posting, err := indeedCard(s, base, country)
		if err != nil {
			return
		}
		postings = append(postings, posting)
	})

	if len(postings) == 0 {
		postings = limitPostings(parseJSONLDPostings(doc, SourceIndeed), q.Limit)
		for idx := range postings {
			finalize(&postings[idx])
		}
	}
	return postings
}

func indeedCard(s *goquery.Selection, base, country string) (models.Posting, error) {
	title := firstText(s, "h2 a span, h2.jobTitle span, a.jcs-JobTitle")
	if title == "" {
		title = firstText(s, "h2")
	}

	jobKey := indeedJobKey(s)
	link, _ := s.Find("h2 a, a.jcs-JobTitle, a[data-jk]").First().Attr("href")
	if link == "" && goquery.NodeName(s) == "a" {
		link, _ = s.Attr("href")
	}
	link = absoluteURL(base, link)
	if link == "" && jobKey != "" {
		link = base + "/viewjob?jk=" + url.QueryEscape(jobKey)
	}
	if title == "" || link == "" {
		return models.Posting{}, ErrMalformedCard
	}

	location := firstText(s, "div.companyLocation, div.location, span.companyLocation, div[data-testid='text-location']")
	description := firstText(s, "div.job-snippet, div.summary, td.snippetColumn")
	cardText := cleanText(s.Text())

	salaryText := firstText(s, "span.salary-snippet, div.salary-snippet-container, span.estimated-salary, div[data-testid='attribute_snippet_testid']")
	if salaryText == "" {
		salaryText = cardText
	}

	posting := models.Posting{
		Source:       SourceIndeed,
		SourceJobID:  jobKey,
		Title:        title,
		Company:      firstText(s, "span.companyName, div.company, span[data-testid='company-name']"),
		Country:      country,
		City:         cityFrom(location),
		Description:  truncate(description, 250),
		ApplyURL:     link,
		RemoteType:   classifyRemote(cardText),
		ContractType: classifyContract(cardText),
	}
	applySalary(&posting, salaryText, "EUR")
	finalize(&posting)
	return posting, nil
}

func indeedJobKey(s *goquery.Selection) string {
	if key, ok := s.Attr("data-jk"); ok && key != "" {
		return key
	}
	if key, ok := s.Find("[data-jk]").First().Attr("data-jk"); ok && key != "" {
		return key
	}
	href, _ := s.Find("a[href*='jk=']").First().Attr("href")
	if href == "" {
		href, _ = s.Attr("href")
	}
	if u, err := url.Parse(href); err == nil {
		return u.Query().Get("jk")
	}
	return ""
}

func buildIndeedURL(q Query) string {
	values := url.Values{}
	values.Set("q", q.Text)
	values.Set("l", indeedLocation(q.Country))
	values.Set("sort", "date")
	return fmt.Sprintf("%s/jobs?%s", baseIndeedURL(q.Country), values.Encode())
}

// indeedLocation is the location filter sent with a query: the country name
// for France, the upper-cased code elsewhere.
func indeedLocation(country string) string {
	country = strings.TrimSpace(country)
	if country == "" || strings.EqualFold(country, "fr") {
		return "France"
	}
	return strings.ToUpper(country)
}

func baseIndeedURL(country string) string {
	country = strings.TrimSpace(strings.ToLower(country))
	switch country {
	case "":
		return "https://fr.indeed.com"
	case "usa", "us":
		return "https://www.indeed.com"
	case "gb", "uk":
		return "https://uk.indeed.com"
	default:
		return fmt.Sprintf("https://%s.indeed.com", country)
	}
}
