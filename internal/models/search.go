package models

// SearchRequest captures what a searcher is looking for. Empty lists mean
// the dimension is unconstrained.
type SearchRequest struct {
	Keywords      []string `json:"keywords"`
	Locations     []string `json:"locations"`
	Countries     []string `json:"countries"`
	ContractTypes []string `json:"contract_types"`
	Languages     []string `json:"languages"`
	Exclusions    []string `json:"exclusions"`

	RemotePreference RemoteType `json:"remote_preference,omitempty"`
	SalaryMin        *float64   `json:"salary_min,omitempty"`
	CVSummary        string     `json:"cv_summary,omitempty"`
}
