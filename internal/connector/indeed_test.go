package connector

import (
	"context"
	"strings"
	"testing"

	"github.com/jimezsa/jobradar/internal/models"
)

const indeedFixture = `
<html><body>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a href="/rc/clk?jk=abc123" data-jk="abc123"><span>Développeur Python</span></a></h2>
  <span class="companyName">Acme</span>
  <div class="companyLocation">Lyon, Auvergne-Rhône-Alpes</div>
  <div class="job-snippet">Python, Django et PostgreSQL. Télétravail partiel.</div>
  <span class="salary-snippet">40 000 € - 50 000 € par an</span>
</div>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a href="https://fr.indeed.com/viewjob?jk=def456"><span>Stage Data Engineer</span></a></h2>
  <span class="companyName">Beta</span>
  <div class="companyLocation">Paris</div>
  <div class="job-snippet">Spark, hybride</div>
</div>
<div class="job_seen_beacon">
  <span class="companyName">Card without a title</span>
</div>
</body></html>`

func TestBuildIndeedURL(t *testing.T) {
	cases := []struct {
		query Query
		parts []string
	}{
		{Query{Text: "golang", Country: "fr"}, []string{"https://fr.indeed.com/jobs?", "q=golang", "l=France", "sort=date"}},
		{Query{Text: "data engineer", Country: "de"}, []string{"https://de.indeed.com/jobs?", "q=data+engineer", "l=DE"}},
		{Query{Text: "sre", Country: "us"}, []string{"https://www.indeed.com/jobs?", "l=US"}},
	}

	for _, tc := range cases {
		got := buildIndeedURL(tc.query)
		if !containsAll(got, tc.parts) {
			t.Fatalf("buildIndeedURL(%+v) = %s, want parts %v", tc.query, got, tc.parts)
		}
	}
}

func TestIndeedFetchParsesCards(t *testing.T) {
	doer := &fakeDoer{body: indeedFixture}
	postings, err := NewIndeed(doer).Fetch(context.Background(), Query{Text: "python", Country: "fr", Limit: 10})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings (malformed card skipped), got %d", len(postings))
	}
	if len(doer.requests) != 1 || doer.requests[0].URL.Host != "fr.indeed.com" {
		t.Fatalf("unexpected requests: %d", len(doer.requests))
	}

	first := postings[0]
	if first.ID != "indeed-abc123" || first.SourceJobID != "abc123" {
		t.Fatalf("unexpected ids: %q / %q", first.ID, first.SourceJobID)
	}
	if first.Title != "Développeur Python" || first.Company != "Acme" || first.City != "Lyon" || first.Country != "fr" {
		t.Fatalf("unexpected descriptive fields: %+v", first)
	}
	if first.ApplyURL != "https://fr.indeed.com/rc/clk?jk=abc123" {
		t.Fatalf("ApplyURL = %q", first.ApplyURL)
	}
	if first.RemoteType != models.RemoteFull || first.ContractType != "CDI" {
		t.Fatalf("unexpected classification: %q / %q", first.RemoteType, first.ContractType)
	}
	if first.SalaryMin == nil || *first.SalaryMin != 40000 || *first.SalaryMax != 50000 || first.Currency != "EUR" {
		t.Fatalf("unexpected salary: %+v", first)
	}
	if !contains(first.Skills, "python") {
		t.Fatalf("Skills = %v, want python", first.Skills)
	}

	second := postings[1]
	if second.ID != "indeed-def456" || second.ContractType != "Internship" || second.RemoteType != models.RemoteHybrid {
		t.Fatalf("unexpected second posting: %+v", second)
	}
	if second.SalaryMin != nil {
		t.Fatalf("expected no salary, got %v", *second.SalaryMin)
	}
}

func TestIndeedRespectsLimit(t *testing.T) {
	doer := &fakeDoer{body: indeedFixture}
	postings, err := NewIndeed(doer).Fetch(context.Background(), Query{Text: "python", Country: "fr", Limit: 1})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
}

func TestIndeedFallsBackToJSONLD(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
{"@type": "JobPosting", "title": "SRE", "url": "https://fr.indeed.com/viewjob?jk=zz", "hiringOrganization": {"name": "Ops"}}
</script></head><body></body></html>`
	postings := parseIndeed(mustDoc(t, html), Query{Country: "fr"})
	if len(postings) != 1 || postings[0].Title != "SRE" {
		t.Fatalf("unexpected fallback postings: %+v", postings)
	}
	if !strings.HasPrefix(postings[0].ID, "indeed-") {
		t.Fatalf("expected finalized id, got %q", postings[0].ID)
	}
}

func containsAll(value string, parts []string) bool {
	for _, part := range parts {
		if !strings.Contains(value, part) {
			return false
		}
	}
	return true
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
