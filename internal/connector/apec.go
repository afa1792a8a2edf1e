package connector

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jimezsa/jobradar/internal/models"
)

const apecBaseURL = "https://www.apec.fr"

var apecOfferID = regexp.MustCompile(`numIdOffre=(\d+)`)

// APEC lists executive ("cadre") offers in France only.
type APEC struct {
	client Doer
}

func NewAPEC(client Doer) *APEC {
	return &APEC{client: client}
}

func (a *APEC) Name() string {
	return SourceAPEC
}

func (a *APEC) Fetch(ctx context.Context, q Query) ([]models.Posting, error) {
	if !strings.EqualFold(strings.TrimSpace(q.Country), "fr") {
		return nil, nil
	}
	target := apecBaseURL + "/candidat/recherche-emploi.html/emploi?motsCles=" + url.QueryEscape(q.Text)
	doc, err := fetchDocument(ctx, a.client, target, nil)
	if err != nil {
		return nil, err
	}
	return parseAPEC(doc, q.Limit), nil
}

func parseAPEC(doc *goquery.Document, limit int) []models.Posting {
	var postings []models.Posting
	cards := selectCards(doc,
		"article.job-card, .result-item, li.offer-item",
		"article[class*='offer'], article[class*='job'], article[class*='result']",
	)
	cards.Each(func(_ int, s *goquery.Selection) {
		if limit > 0 && len(postings) >= limit {
			return
		}
		posting, err := apecCard(s)
		if err != nil {
			return
		}
		postings = append(postings, posting)
	})
	return postings
}

func apecCard(s *goquery.Selection) (models.Posting, error) {
	title := firstText(s, "h3, .job-title, .offer-title, h2.title")
	link := s.Find("a[href*='/offre/']").First()
	if link.Length() == 0 {
		link = s.Find("a[href]").First()
	}
	href, _ := link.Attr("href")
	if title == "" || href == "" {
		return models.Posting{}, ErrMalformedCard
	}

	var offerID string
	if m := apecOfferID.FindStringSubmatch(href); m != nil {
		offerID = m[1]
	}

	cardText := cleanText(s.Text())
	posting := models.Posting{
		Source:       SourceAPEC,
		SourceJobID:  offerID,
		Title:        title,
		Company:      firstText(s, ".company-name, .enterprise, .employer"),
		Country:      "fr",
		City:         cityFrom(firstText(s, ".location, .job-location, .place")),
		Description:  truncate(firstText(s, ".description, .job-description, p"), 200),
		ApplyURL:     absoluteURL(apecBaseURL, href),
		RemoteType:   classifyRemote(cardText),
		ContractType: classifyContract(cardText),
	}
	applySalary(&posting, cardText, "EUR")
	finalize(&posting)
	return posting, nil
}
