package scoring

import (
	"reflect"
	"testing"

	"github.com/jimezsa/jobradar/internal/models"
)

func backendPosting() models.Posting {
	return models.Posting{
		ID:          "p1",
		Source:      "adzuna",
		Title:       "Backend Engineer",
		Description: "Python, AWS",
		RemoteType:  models.RemoteOnsite,
	}
}

func TestKeywordRatio(t *testing.T) {
	cases := []struct {
		name     string
		keywords []string
		text     string
		want     float64
	}{
		{"empty keywords", nil, "python", 0},
		{"all found", []string{"python", "AWS"}, "Python, aws", 1},
		{"half found", []string{"python", "rust"}, "python", 0.5},
		{"substring match", []string{"go"}, "Google", 1},
		{"none found", []string{"java"}, "", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KeywordRatio(tc.keywords, tc.text); got != tc.want {
				t.Fatalf("KeywordRatio() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScoreFullMatch(t *testing.T) {
	p := backendPosting()
	req := models.SearchRequest{Keywords: []string{"python", "aws"}}

	Score(&p, req)
	if p.MatchScore == nil || *p.MatchScore != 1.0 {
		t.Fatalf("MatchScore = %v, want 1.0", p.MatchScore)
	}
	want := []string{"Mots-clés trouvés (100%)"}
	if !reflect.DeepEqual(p.Reasons, want) {
		t.Fatalf("Reasons = %#v, want %#v", p.Reasons, want)
	}
}

func TestScoreRemoteMismatch(t *testing.T) {
	p := backendPosting()
	req := models.SearchRequest{Keywords: []string{"python", "aws"}, RemotePreference: models.RemoteFull}

	Score(&p, req)
	if p.MatchScore == nil || *p.MatchScore != 0.8 {
		t.Fatalf("MatchScore = %v, want 0.8", p.MatchScore)
	}
	want := []string{"Mots-clés trouvés (100%)", "Remote attendu: remote, offre: onsite"}
	if !reflect.DeepEqual(p.Reasons, want) {
		t.Fatalf("Reasons = %#v, want %#v", p.Reasons, want)
	}
}

func TestScoreUsesCVSummaryWhenHigher(t *testing.T) {
	p := models.Posting{Title: "Engineer", Description: "nothing relevant"}
	req := models.SearchRequest{
		Keywords:  []string{"python", "anglais"},
		Languages: []string{"Anglais"},
		CVSummary: "Compétences: python",
	}

	b := Evaluate(p, req)
	if b.KeywordScore != 0 || b.CVScore != 1 || b.Base != 1 {
		t.Fatalf("unexpected breakdown: %+v", b)
	}

	Score(&p, req)
	if len(p.Reasons) != 0 {
		t.Fatalf("expected no keyword reason when title/description do not match, got %#v", p.Reasons)
	}
}

func TestPenaltyRules(t *testing.T) {
	p := models.Posting{
		RemoteType:   models.RemoteOnsite,
		ContractType: "CDD",
		Country:      "DE",
		SalaryMin:    models.Float(30000),
	}
	req := models.SearchRequest{
		RemotePreference: models.RemoteFull,
		ContractTypes:    []string{"cdi"},
		Countries:        []string{"fr"},
		SalaryMin:        models.Float(40000),
	}
	if got := Penalty(p, req); !approx(got, 0.8) {
		t.Fatalf("Penalty() = %v, want 0.8", got)
	}

	matching := models.Posting{RemoteType: models.RemoteFull, ContractType: "CDI", Country: "FR", SalaryMin: models.Float(50000)}
	if got := Penalty(matching, req); got != 0 {
		t.Fatalf("Penalty() = %v, want 0", got)
	}

	unknown := models.Posting{}
	if got := Penalty(unknown, req); got != 0 {
		t.Fatalf("Penalty() with unknown posting fields = %v, want 0", got)
	}
}

func TestScoreClampsAtZero(t *testing.T) {
	p := models.Posting{Title: "Java dev", RemoteType: models.RemoteOnsite, ContractType: "CDD"}
	req := models.SearchRequest{
		Keywords:         []string{"java", "kotlin"},
		RemotePreference: models.RemoteHybrid,
		ContractTypes:    []string{"CDI", "Freelance"},
	}
	Score(&p, req)
	if *p.MatchScore != 0.1 {
		t.Fatalf("MatchScore = %v, want 0.1", *p.MatchScore)
	}

	req.Keywords = []string{"rust"}
	Score(&p, req)
	if *p.MatchScore != 0 {
		t.Fatalf("MatchScore = %v, want 0", *p.MatchScore)
	}
	want := []string{"Remote attendu: hybrid, offre: onsite", "Contrat cible: CDI, Freelance"}
	if !reflect.DeepEqual(p.Reasons, want) {
		t.Fatalf("Reasons = %#v, want %#v", p.Reasons, want)
	}
}

func TestScoreIsDeterministicAndBounded(t *testing.T) {
	postings := []models.Posting{
		backendPosting(),
		{Title: "", Description: ""},
		{Title: "Go Go Go", Country: "fr", SalaryMin: models.Float(1)},
	}
	reqs := []models.SearchRequest{
		{},
		{Keywords: []string{"go", "python", "aws"}, Countries: []string{"de"}, SalaryMin: models.Float(2)},
		{Keywords: []string{"backend"}, RemotePreference: models.RemoteHybrid},
	}

	for _, req := range reqs {
		for _, p := range postings {
			first := p.Clone()
			second := p.Clone()
			Score(&first, req)
			Score(&second, req)
			Score(&second, req)
			if *first.MatchScore != *second.MatchScore {
				t.Fatalf("non-deterministic score: %v vs %v", *first.MatchScore, *second.MatchScore)
			}
			if *first.MatchScore < 0 || *first.MatchScore > 1 {
				t.Fatalf("score out of range: %v", *first.MatchScore)
			}
			b := Evaluate(p, req)
			if b.Penalty > 0.8+1e-9 || b.Score < b.Base-0.8-1e-9 {
				t.Fatalf("penalty bound violated: %+v", b)
			}
		}
	}
}

func TestAddingTitleKeywordNeverLowersBase(t *testing.T) {
	p := models.Posting{Title: "Platform Engineer", Description: "Kubernetes and Terraform"}
	before := Evaluate(p, models.SearchRequest{Keywords: []string{"kubernetes", "rust"}})
	after := Evaluate(p, models.SearchRequest{Keywords: []string{"kubernetes", "rust", "platform"}})
	if after.Base < before.Base {
		t.Fatalf("base decreased: %v -> %v", before.Base, after.Base)
	}
}

func TestReasonsRoundKeywordPercentUp(t *testing.T) {
	p := models.Posting{Title: "python"}
	req := models.SearchRequest{Keywords: []string{"python", "go", "rust"}}
	b := Evaluate(p, req)
	got := Reasons(p, req, b)
	want := []string{"Mots-clés trouvés (34%)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Reasons() = %#v, want %#v", got, want)
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
