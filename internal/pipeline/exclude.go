package pipeline

import (
	"strings"

	"github.com/jimezsa/jobradar/internal/models"
)

// Excluded reports whether any exclusion term appears, case-insensitively,
// in the posting's title, company or description.
func Excluded(p models.Posting, exclusions []string) bool {
	if len(exclusions) == 0 {
		return false
	}
	combined := strings.ToLower(p.Title + " " + p.Company + " " + p.Description)
	for _, term := range exclusions {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// DropExcluded returns the postings that match no exclusion term, in their
// original order.
func DropExcluded(postings []models.Posting, exclusions []string) []models.Posting {
	if len(exclusions) == 0 {
		return postings
	}
	kept := make([]models.Posting, 0, len(postings))
	for _, p := range postings {
		if Excluded(p, exclusions) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
