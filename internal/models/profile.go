package models

import "time"

// Profile is a searcher with a CV and search preferences.
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	CVText   string `json:"cv_text,omitempty"`

	Skills          []string `json:"skills"`
	ExperienceYears *int     `json:"experience_years,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	Sectors         []string `json:"sectors"`
	Languages       []string `json:"languages"`

	PreferredContractTypes []string   `json:"preferred_contract_types"`
	PreferredRemote        RemoteType `json:"preferred_remote,omitempty"`
	SalaryMin              *float64   `json:"salary_min,omitempty"`
	PreferredCountries     []string   `json:"preferred_countries"`
	PreferredCategories    []string   `json:"preferred_categories"`
}

// ProfilePatch is a field mask: only non-nil fields are applied.
type ProfilePatch struct {
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Location *string `json:"location,omitempty"`
	CVText   *string `json:"cv_text,omitempty"`

	Skills          *[]string `json:"skills,omitempty"`
	ExperienceYears *int      `json:"experience_years,omitempty"`
	ExperienceLevel *string   `json:"experience_level,omitempty"`
	Sectors         *[]string `json:"sectors,omitempty"`
	Languages       *[]string `json:"languages,omitempty"`

	PreferredContractTypes *[]string   `json:"preferred_contract_types,omitempty"`
	PreferredRemote        *RemoteType `json:"preferred_remote,omitempty"`
	SalaryMin              *float64    `json:"salary_min,omitempty"`
	PreferredCountries     *[]string   `json:"preferred_countries,omitempty"`
	PreferredCategories    *[]string   `json:"preferred_categories,omitempty"`
}

// Apply copies every set field of the patch onto p.
func (patch ProfilePatch) Apply(p *Profile) {
	setString(&p.FullName, patch.FullName)
	setString(&p.Email, patch.Email)
	setString(&p.Phone, patch.Phone)
	setString(&p.Location, patch.Location)
	setString(&p.CVText, patch.CVText)
	setString(&p.ExperienceLevel, patch.ExperienceLevel)

	setList(&p.Skills, patch.Skills)
	setList(&p.Sectors, patch.Sectors)
	setList(&p.Languages, patch.Languages)
	setList(&p.PreferredContractTypes, patch.PreferredContractTypes)
	setList(&p.PreferredCountries, patch.PreferredCountries)
	setList(&p.PreferredCategories, patch.PreferredCategories)

	if patch.ExperienceYears != nil {
		years := *patch.ExperienceYears
		p.ExperienceYears = &years
	}
	if patch.PreferredRemote != nil {
		p.PreferredRemote = *patch.PreferredRemote
	}
	if patch.SalaryMin != nil {
		p.SalaryMin = Float(*patch.SalaryMin)
	}
}

// Empty reports whether the patch sets no field at all.
func (patch ProfilePatch) Empty() bool {
	return patch == ProfilePatch{}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setList(dst *[]string, src *[]string) {
	if src != nil {
		*dst = append([]string{}, (*src)...)
	}
}
