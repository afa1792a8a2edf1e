package connector

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jimezsa/jobradar/internal/models"
)

const (
	wttjBaseURL  = "https://www.welcometothejungle.com"
	wttjMaxCards = 10
)

// WTTJ scrapes Welcome to the Jungle, which only covers France.
type WTTJ struct {
	client Doer
}

func NewWTTJ(client Doer) *WTTJ {
	return &WTTJ{client: client}
}

func (w *WTTJ) Name() string {
	return SourceWTTJ
}

func (w *WTTJ) Fetch(ctx context.Context, q Query) ([]models.Posting, error) {
	if !strings.EqualFold(strings.TrimSpace(q.Country), "fr") {
		return nil, nil
	}
	target := wttjBaseURL + "/fr/jobs?query=" + url.QueryEscape(q.Text)
	doc, err := fetchDocument(ctx, w.client, target, nil)
	if err != nil {
		return nil, err
	}
	return parseWTTJ(doc, minLimit(q.Limit, wttjMaxCards)), nil
}

func parseWTTJ(doc *goquery.Document, limit int) []models.Posting {
	var postings []models.Posting
	selectCards(doc, "li[data-testid='job-list-item']", ".job-card").Each(func(_ int, s *goquery.Selection) {
		if len(postings) >= limit {
			return
		}
		posting, err := wttjCard(s)
		if err != nil {
			return
		}
		postings = append(postings, posting)
	})
	return postings
}

func wttjCard(s *goquery.Selection) (models.Posting, error) {
	title := firstText(s, "h3, .job-title, h4")
	href, _ := s.Find("a[href*='/jobs/']").First().Attr("href")
	if title == "" || href == "" {
		return models.Posting{}, ErrMalformedCard
	}

	company := firstText(s, ".company-name, [data-testid='company-name'], span.wui-text")
	description := firstText(s, ".job-description, p")
	if description == "" {
		description = "Offre " + title
		if company != "" {
			description += " chez " + company
		}
	}

	cardText := cleanText(s.Text())
	posting := models.Posting{
		Source:       SourceWTTJ,
		SourceJobID:  lastPathSegment(href),
		Title:        title,
		Company:      company,
		Country:      "fr",
		City:         cityFrom(firstText(s, "[data-testid='job-location'], .location")),
		Description:  truncate(description, 250),
		ApplyURL:     absoluteURL(wttjBaseURL, href),
		RemoteType:   classifyRemote(cardText),
		ContractType: classifyContract(cardText),
	}
	applySalary(&posting, cardText, "EUR")
	finalize(&posting)
	return posting, nil
}
