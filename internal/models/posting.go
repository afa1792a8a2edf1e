package models

import (
	"strings"
	"time"
)

// RemoteType classifies where the work happens.
type RemoteType string

const (
	RemoteFull    RemoteType = "remote"
	RemoteHybrid  RemoteType = "hybrid"
	RemoteOnsite  RemoteType = "onsite"
	RemoteUnknown RemoteType = "unknown"
)

// ParseRemoteType accepts remote, hybrid or onsite (any case). An empty value
// yields "" with ok=true; anything else is rejected.
func ParseRemoteType(value string) (RemoteType, bool) {
	switch RemoteType(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return "", true
	case RemoteFull:
		return RemoteFull, true
	case RemoteHybrid:
		return RemoteHybrid, true
	case RemoteOnsite:
		return RemoteOnsite, true
	default:
		return "", false
	}
}

// SalaryPeriod is the unit salary amounts are expressed in.
type SalaryPeriod string

const (
	PeriodYear    SalaryPeriod = "year"
	PeriodMonth   SalaryPeriod = "month"
	PeriodDay     SalaryPeriod = "day"
	PeriodHour    SalaryPeriod = "hour"
	PeriodUnknown SalaryPeriod = "unknown"
)

// Posting is the normalized job offer returned by connectors.
type Posting struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	SourceJobID string `json:"source_job_id"`

	Title       string `json:"title"`
	Company     string `json:"company,omitempty"`
	Country     string `json:"country,omitempty"`
	City        string `json:"city,omitempty"`
	Description string `json:"description,omitempty"`
	ApplyURL    string `json:"apply_url,omitempty"`

	RemoteType      RemoteType `json:"remote_type,omitempty"`
	ContractType    string     `json:"contract_type,omitempty"`
	ExperienceLevel string     `json:"experience_level,omitempty"`

	SalaryMin        *float64     `json:"salary_min,omitempty"`
	SalaryMax        *float64     `json:"salary_max,omitempty"`
	Currency         string       `json:"currency,omitempty"`
	SalaryPeriod     SalaryPeriod `json:"salary_period,omitempty"`
	SalaryConfidence *float64     `json:"salary_confidence,omitempty"`

	Skills   []string   `json:"skills,omitempty"`
	PostedAt *time.Time `json:"posted_at,omitempty"`

	MatchScore *float64 `json:"match_score,omitempty"`
	Reasons    []string `json:"reasons,omitempty"`
}

// Score returns the match score, treating an unscored posting as 0.
func (p Posting) Score() float64 {
	if p.MatchScore == nil {
		return 0
	}
	return *p.MatchScore
}

// Clone returns a copy that shares no slices or pointers with p.
func (p Posting) Clone() Posting {
	out := p
	out.SalaryMin = cloneFloat(p.SalaryMin)
	out.SalaryMax = cloneFloat(p.SalaryMax)
	out.SalaryConfidence = cloneFloat(p.SalaryConfidence)
	out.MatchScore = cloneFloat(p.MatchScore)
	if p.PostedAt != nil {
		ts := *p.PostedAt
		out.PostedAt = &ts
	}
	if p.Skills != nil {
		out.Skills = append([]string(nil), p.Skills...)
	}
	if p.Reasons != nil {
		out.Reasons = append([]string(nil), p.Reasons...)
	}
	return out
}

// Float returns a pointer to v, for the nullable numeric fields.
func Float(v float64) *float64 {
	return &v
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
