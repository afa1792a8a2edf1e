package profile

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jimezsa/jobradar/internal/cvparse"
	"github.com/jimezsa/jobradar/internal/models"
)

const summaryCVChars = 200

// ApplyFeatures overwrites the CV-derived fields of p. Experience years and
// level are only replaced when the extractor found them.
func ApplyFeatures(p *models.Profile, f cvparse.Features) {
	p.Skills = append([]string{}, f.Skills...)
	p.Languages = append([]string{}, f.Languages...)
	p.Sectors = append([]string{}, f.Sectors...)
	if f.ExperienceYears != nil {
		years := *f.ExperienceYears
		p.ExperienceYears = &years
	}
	if f.ExperienceLevel != "" {
		p.ExperienceLevel = f.ExperienceLevel
	}
}

// CVSummary condenses a profile into the free text scored against postings.
func CVSummary(p models.Profile) string {
	var parts []string
	if len(p.Skills) > 0 {
		parts = append(parts, "Compétences: "+strings.Join(p.Skills, ", "))
	}
	if p.ExperienceYears != nil && *p.ExperienceYears > 0 {
		parts = append(parts, fmt.Sprintf("%d ans d'expérience", *p.ExperienceYears))
	}
	if p.ExperienceLevel != "" {
		parts = append(parts, "Niveau: "+p.ExperienceLevel)
	}
	if len(p.Sectors) > 0 {
		parts = append(parts, "Secteurs: "+strings.Join(p.Sectors, ", "))
	}
	if len(p.Languages) > 0 {
		parts = append(parts, "Langues: "+strings.Join(p.Languages, ", "))
	}
	if p.CVText != "" {
		parts = append(parts, firstChars(p.CVText, summaryCVChars))
	}
	return strings.Join(parts, " | ")
}

// SearchRequest completes base with the profile: the CV summary always, the
// preferences only where base leaves them unset.
func SearchRequest(p models.Profile, base models.SearchRequest) models.SearchRequest {
	req := base
	req.CVSummary = CVSummary(p)
	if len(req.ContractTypes) == 0 {
		req.ContractTypes = append([]string(nil), p.PreferredContractTypes...)
	}
	if req.RemotePreference == "" {
		req.RemotePreference = p.PreferredRemote
	}
	if req.SalaryMin == nil && p.SalaryMin != nil {
		req.SalaryMin = models.Float(*p.SalaryMin)
	}
	if len(req.Countries) == 0 {
		req.Countries = append([]string(nil), p.PreferredCountries...)
	}
	if len(req.Languages) == 0 {
		req.Languages = append([]string(nil), p.Languages...)
	}
	return req
}

func firstChars(value string, n int) string {
	if utf8.RuneCountInString(value) <= n {
		return value
	}
	return string([]rune(value)[:n])
}
