// Package cvparse derives structured signals from free-form CV text.
package cvparse

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxExperienceYears = 50

const (
	LevelJunior = "Junior"
	LevelMid    = "Mid"
	LevelSenior = "Senior"
)

// Features is what Extract finds in a CV. ExperienceYears is nil and
// ExperienceLevel empty when the text carries no such signal.
type Features struct {
	Skills          []string `json:"skills"`
	ExperienceYears *int     `json:"experience_years"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	Languages       []string `json:"languages"`
	Sectors         []string `json:"sectors"`
}

// Skill groups: runtimes, infra/cloud, data stores, frontend, ML, process.
var skillPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(python|java|javascript|typescript|react|vue|angular|node\.?js|go|golang|rust|c\+\+|c#|php|ruby|swift|kotlin|dart|scala|clojure|haskell|elixir|erlang)\b`),
	regexp.MustCompile(`(?i)\b(kubernetes|docker|terraform|ansible|jenkins|gitlab|github|aws|azure|gcp|cloud)\b`),
	regexp.MustCompile(`(?i)\b(postgresql|mysql|mongodb|redis|elasticsearch|kafka|rabbitmq|sql|nosql)\b`),
	regexp.MustCompile(`(?i)\b(react|vue|angular|svelte|next\.?js|nuxt|gatsby|remix)\b`),
	regexp.MustCompile(`(?i)\b(machine learning|ml|ai|deep learning|nlp|computer vision|tensorflow|pytorch)\b`),
	regexp.MustCompile(`(?i)\b(devops|sre|ci/cd|agile|scrum|kanban)\b`),
}

// Tried in order, first match wins.
var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*(?:ans?|years?|années?)\s*(?:d'?expérience|of experience|exp)`),
	regexp.MustCompile(`(?i)expérience\s*:\s*(\d+)`),
	regexp.MustCompile(`(?i)(\d+)\+?\s*(?:ans?|years?)`),
}

// RE2's \b only knows ASCII word characters, so a trailing \b after an
// accented letter never matches; "confirmé" is left open on the right.
var levelPatterns = []struct {
	re    *regexp.Regexp
	level string
}{
	{regexp.MustCompile(`(?i)\b(junior|débutant|beginner|entry)\b`), LevelJunior},
	{regexp.MustCompile(`(?i)\b(mid|intermédiaire|intermediate)\b|\bconfirmé`), LevelMid},
	{regexp.MustCompile(`(?i)\b(senior|expert|lead|architect|principal)\b`), LevelSenior},
}

var languagePattern = regexp.MustCompile(`(?i)\b(anglais|english|français|french|allemand|german|espagnol|spanish|italien|italian|chinois|chinese|japonais|japanese)\b`)

var languageNames = map[string]string{
	"anglais":  "Anglais",
	"english":  "Anglais",
	"français": "Français",
	"french":   "Français",
	"allemand": "Allemand",
	"german":   "Allemand",
	"espagnol": "Espagnol",
	"spanish":  "Espagnol",
}

// Declaration order is output order.
var sectorKeywords = []struct {
	sector   string
	keywords []string
}{
	{"fintech", []string{"fintech", "finance", "banking", "banque"}},
	{"e-commerce", []string{"e-commerce", "ecommerce", "retail", "commerce"}},
	{"healthcare", []string{"healthcare", "santé", "médical", "health"}},
	{"edtech", []string{"edtech", "éducation", "education", "formation"}},
	{"saas", []string{"saas", "software as a service"}},
	{"gaming", []string{"gaming", "jeu", "game"}},
}

// Extract never fails; missing signals leave fields empty.
func Extract(text string) Features {
	lower := strings.ToLower(text)
	return Features{
		Skills:          extractSkills(lower),
		ExperienceYears: extractExperienceYears(text),
		ExperienceLevel: extractLevel(lower),
		Languages:       extractLanguages(lower),
		Sectors:         extractSectors(lower),
	}
}

func extractSkills(text string) []string {
	found := map[string]struct{}{}
	for _, re := range skillPatterns {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			skill := NormalizeSkill(match[1])
			if utf8.RuneCountInString(skill) <= 2 {
				continue
			}
			found[skill] = struct{}{}
		}
	}
	return sortedKeys(found)
}

// NormalizeSkill lower-cases a skill and strips dots and spaces, so
// "Node.js" and "nodejs" collapse.
func NormalizeSkill(value string) string {
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, ".", "")
	return strings.ReplaceAll(value, " ", "")
}

func extractExperienceYears(text string) *int {
	for _, re := range experiencePatterns {
		match := re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		years, err := strconv.Atoi(match[1])
		if err != nil {
			// only overflow gets here; \d+ guarantees digits
			years = maxExperienceYears
		}
		years = min(max(years, 0), maxExperienceYears)
		return &years
	}
	return nil
}

func extractLevel(text string) string {
	for _, candidate := range levelPatterns {
		if candidate.re.MatchString(text) {
			return candidate.level
		}
	}
	return ""
}

func extractLanguages(text string) []string {
	found := map[string]struct{}{}
	for _, match := range languagePattern.FindAllStringSubmatch(text, -1) {
		found[CanonicalLanguage(match[1])] = struct{}{}
	}
	return sortedKeys(found)
}

// CanonicalLanguage maps a language name to its display form ("english" ->
// "Anglais"). Names outside the table are capitalized as-is.
func CanonicalLanguage(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if name, ok := languageNames[value]; ok {
		return name
	}
	return capitalize(value)
}

func extractSectors(text string) []string {
	sectors := []string{}
	for _, entry := range sectorKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(text, keyword) {
				sectors = append(sectors, entry.sector)
				break
			}
		}
	}
	return sectors
}

// Sectors lists the sector vocabulary in declaration order.
func Sectors() []string {
	out := make([]string, 0, len(sectorKeywords))
	for _, entry := range sectorKeywords {
		out = append(out, entry.sector)
	}
	return out
}

func capitalize(value string) string {
	r, size := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError {
		return value
	}
	return string(unicode.ToUpper(r)) + value[size:]
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
