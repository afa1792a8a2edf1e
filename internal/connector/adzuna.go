package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	fhttp "github.com/bogdanfinn/fhttp"

	"github.com/jimezsa/jobradar/internal/models"
)

const (
	adzunaBaseURL    = "https://api.adzuna.com/v1/api/jobs"
	adzunaMaxResults = 50
)

// Countries the Adzuna API serves, with their salary currency.
var adzunaCountries = map[string]string{
	"at": "EUR", "au": "AUD", "be": "EUR", "br": "BRL", "ca": "CAD",
	"ch": "CHF", "de": "EUR", "es": "EUR", "fr": "EUR", "gb": "GBP",
	"in": "INR", "it": "EUR", "mx": "MXN", "nl": "EUR", "nz": "NZD",
	"pl": "PLN", "sg": "SGD", "us": "USD", "za": "ZAR",
}

type Adzuna struct {
	client  Doer
	appID   string
	appKey  string
	baseURL string
}

func NewAdzuna(client Doer, appID, appKey string) *Adzuna {
	return &Adzuna{
		client:  client,
		appID:   strings.TrimSpace(appID),
		appKey:  strings.TrimSpace(appKey),
		baseURL: adzunaBaseURL,
	}
}

func (a *Adzuna) Name() string {
	return SourceAdzuna
}

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Company           adzunaName     `json:"company"`
	Location          adzunaLocation `json:"location"`
	Category          adzunaCategory `json:"category"`
	SalaryMin         float64        `json:"salary_min"`
	SalaryMax         float64        `json:"salary_max"`
	SalaryIsPredicted string         `json:"salary_is_predicted"`
	RedirectURL       string         `json:"redirect_url"`
	Created           string         `json:"created"`
	ContractType      string         `json:"contract_type"`
	ContractTime      string         `json:"contract_time"`
}

type adzunaName struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string   `json:"display_name"`
	Area        []string `json:"area"`
}

type adzunaCategory struct {
	Label string `json:"label"`
}

func (a *Adzuna) Fetch(ctx context.Context, q Query) ([]models.Posting, error) {
	if a.appID == "" || a.appKey == "" {
		return nil, fmt.Errorf("adzuna: %w (set ADZUNA_APP_ID and ADZUNA_APP_KEY)", ErrNotConfigured)
	}
	country := strings.ToLower(strings.TrimSpace(q.Country))
	currency, ok := adzunaCountries[country]
	if !ok {
		return nil, nil
	}

	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, a.searchURL(q, country), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != fhttp.StatusOK {
		return nil, fmt.Errorf("adzuna returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var apiResp adzunaResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("decode adzuna response: %w", err)
	}

	postings := make([]models.Posting, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		posting, err := adzunaPosting(r, country, currency)
		if err != nil {
			continue
		}
		postings = append(postings, posting)
	}
	return limitPostings(postings, q.Limit), nil
}

func (a *Adzuna) searchURL(q Query, country string) string {
	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", strconv.Itoa(minLimit(q.Limit, adzunaMaxResults)))
	params.Set("what", q.Text)
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")
	return fmt.Sprintf("%s/%s/search/1?%s", a.baseURL, country, params.Encode())
}

func adzunaPosting(r adzunaResult, country, currency string) (models.Posting, error) {
	title := cleanText(r.Title)
	if title == "" || r.RedirectURL == "" {
		return models.Posting{}, ErrMalformedCard
	}

	description := cleanText(r.Description)
	city := cityFrom(r.Location.DisplayName)
	if len(r.Location.Area) > 0 {
		city = r.Location.Area[len(r.Location.Area)-1]
	}

	posting := models.Posting{
		Source:       SourceAdzuna,
		SourceJobID:  r.ID,
		Title:        title,
		Company:      cleanText(r.Company.DisplayName),
		Country:      country,
		City:         city,
		Description:  description,
		ApplyURL:     r.RedirectURL,
		RemoteType:   classifyRemote(title + " " + description),
		ContractType: adzunaContract(r.ContractType, r.ContractTime),
	}

	if r.SalaryMin > 0 || r.SalaryMax > 0 {
		min, max := r.SalaryMin, r.SalaryMax
		if min == 0 {
			min = max
		}
		if max == 0 {
			max = min
		}
		confidence := confidenceRange
		switch {
		case r.SalaryIsPredicted == "1":
			confidence = confidenceImplicit
		case min == max:
			confidence = confidenceSingle
		}
		posting.SalaryMin = models.Float(min)
		posting.SalaryMax = models.Float(max)
		posting.Currency = currency
		posting.SalaryPeriod = models.PeriodYear
		posting.SalaryConfidence = models.Float(confidence)
	}

	if ts, err := parsePostedAt(r.Created); err == nil {
		posting.PostedAt = &ts
	}

	finalize(&posting)
	return posting, nil
}

func adzunaContract(contractType, contractTime string) string {
	switch strings.ToLower(contractType) {
	case "permanent":
		return "CDI"
	case "contract":
		return "CDD"
	}
	if strings.EqualFold(contractTime, "part_time") {
		return "Part-time"
	}
	return ""
}
