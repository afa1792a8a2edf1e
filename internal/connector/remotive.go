package connector

import (
	"context"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/jimezsa/jobradar/internal/models"
)

const (
	remotiveBaseURL  = "https://remotive.com"
	remotiveMaxCards = 15
	remotiveCountry  = "international"
)

// Remotive lists fully remote offers regardless of the requested country.
type Remotive struct {
	client Doer
}

func NewRemotive(client Doer) *Remotive {
	return &Remotive{client: client}
}

func (r *Remotive) Name() string {
	return SourceRemotive
}

func (r *Remotive) Fetch(ctx context.Context, q Query) ([]models.Posting, error) {
	target := remotiveBaseURL + "/remote-jobs/search?query=" + url.QueryEscape(q.Text)
	doc, err := fetchDocument(ctx, r.client, target, nil)
	if err != nil {
		return nil, err
	}
	return parseRemotive(doc, minLimit(q.Limit, remotiveMaxCards)), nil
}

func parseRemotive(doc *goquery.Document, limit int) []models.Posting {
	var postings []models.Posting
	selectCards(doc, ".job-tile", "li.job-list-item").Each(func(_ int, s *goquery.Selection) {
		if len(postings) >= limit {
			return
		}
		posting, err := remotiveCard(s)
		if err != nil {
			return
		}
		postings = append(postings, posting)
	})
	return postings
}

func remotiveCard(s *goquery.Selection) (models.Posting, error) {
	title := firstText(s, ".job-tile-title, h3")
	href, _ := s.Find("a[href]").First().Attr("href")
	if title == "" || href == "" {
		return models.Posting{}, ErrMalformedCard
	}

	company := firstText(s, ".job-tile-company, .company")
	description := title
	if company != "" {
		description += " @ " + company
	}

	cardText := cleanText(s.Text())
	posting := models.Posting{
		Source:       SourceRemotive,
		SourceJobID:  lastPathSegment(href),
		Title:        title,
		Company:      company,
		Country:      remotiveCountry,
		Description:  description,
		ApplyURL:     absoluteURL(remotiveBaseURL, href),
		RemoteType:   models.RemoteFull,
		ContractType: classifyContract(cardText),
	}
	applySalary(&posting, cardText, "USD")
	finalize(&posting)
	return posting, nil
}
