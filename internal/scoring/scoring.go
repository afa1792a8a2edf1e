// Package scoring ranks postings against a search request.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/jimezsa/jobradar/internal/models"
)

// PenaltyPerRule is the deduction for each violated constraint. Four rules
// bound the total at 0.8.
const PenaltyPerRule = 0.2

// Breakdown exposes the intermediate values behind a score.
type Breakdown struct {
	KeywordScore float64
	CVScore      float64
	Base         float64
	Penalty      float64
	Score        float64
}

// KeywordRatio is the share of keywords found as case-insensitive substrings
// of text. It is 0 when there are no keywords.
func KeywordRatio(keywords []string, text string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	text = strings.ToLower(text)
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

// Penalty sums the constraint deductions. A rule is skipped when either the
// request or the posting lacks the field it compares.
func Penalty(p models.Posting, req models.SearchRequest) float64 {
	penalty := 0.0
	if req.RemotePreference != "" && p.RemoteType != "" && req.RemotePreference != p.RemoteType {
		penalty += PenaltyPerRule
	}
	if len(req.ContractTypes) > 0 && p.ContractType != "" && !containsFold(req.ContractTypes, p.ContractType) {
		penalty += PenaltyPerRule
	}
	if len(req.Countries) > 0 && p.Country != "" && !containsFold(req.Countries, p.Country) {
		penalty += PenaltyPerRule
	}
	if req.SalaryMin != nil && p.SalaryMin != nil && *p.SalaryMin < *req.SalaryMin {
		penalty += PenaltyPerRule
	}
	return penalty
}

// Evaluate computes the score of p against req without touching p.
func Evaluate(p models.Posting, req models.SearchRequest) Breakdown {
	kw := KeywordRatio(req.Keywords, p.Title+" "+p.Description)
	cv := KeywordRatio(req.Keywords, strings.Join(req.Languages, " ")+" "+req.CVSummary)
	base := math.Max(kw, cv)
	penalty := Penalty(p, req)
	score := math.Max(0, math.Min(1, base-penalty))
	return Breakdown{
		KeywordScore: kw,
		CVScore:      cv,
		Base:         base,
		Penalty:      penalty,
		Score:        round3(score),
	}
}

// Score annotates p with its match score and reasons and returns it.
// Scoring the same posting twice with the same request gives the same result.
func Score(p *models.Posting, req models.SearchRequest) *models.Posting {
	b := Evaluate(*p, req)
	p.MatchScore = models.Float(b.Score)
	p.Reasons = Reasons(*p, req, b)
	return p
}

// Reasons explains a score; the strings are not fed back into scoring.
func Reasons(p models.Posting, req models.SearchRequest, b Breakdown) []string {
	reasons := []string{}
	if b.KeywordScore > 0 {
		reasons = append(reasons, fmt.Sprintf("Mots-clés trouvés (%d%%)", int(math.Ceil(b.KeywordScore*100))))
	}
	if req.RemotePreference != "" {
		offer := string(p.RemoteType)
		if offer == "" {
			offer = "n/a"
		}
		reasons = append(reasons, fmt.Sprintf("Remote attendu: %s, offre: %s", req.RemotePreference, offer))
	}
	if len(req.ContractTypes) > 0 {
		reasons = append(reasons, fmt.Sprintf("Contrat cible: %s", strings.Join(req.ContractTypes, ", ")))
	}
	return reasons
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(value, target) {
			return true
		}
	}
	return false
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
