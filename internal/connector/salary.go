package connector

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jimezsa/jobradar/internal/models"
)

const (
	confidenceRange    = 0.8
	confidenceSingle   = 0.6
	confidenceImplicit = 0.5
	confidenceHourly   = 0.4

	hoursPerWeek = 35
	weeksPerYear = 52
)

// Salary is an annual amount read from free text.
type Salary struct {
	Min        float64
	Max        float64
	Currency   string
	Confidence float64
}

var (
	salaryKRange        = regexp.MustCompile(`(?i)([$€£]?)\s*(\d+)\s*k\s*[$€£]?\s*[-–à]\s*[$€£]?\s*(\d+)\s*k`)
	salaryThousandRange = regexp.MustCompile(`(\d+)\s*000\s*([$€£]?)\s*[-–à]\s*(\d+)\s*000`)
	salaryBetween       = regexp.MustCompile(`(?i)entre\s+(\d+)\s*(k)?\s*€?\s+et\s+(\d+)`)
	salaryHourly        = regexp.MustCompile(`(?i)(\d+)(?:[,.](\d+))?\s*€\s*/\s*(?:heure|hour|h)`)
	salarySingle        = regexp.MustCompile(`(\d+)\s*000\s*([$€£])`)
)

// ParseSalary tries the known salary formats in order, first match wins.
// Hourly rates are annualized on a 35-hour week.
func ParseSalary(text string) (Salary, bool) {
	if m := salaryKRange.FindStringSubmatch(text); m != nil {
		return Salary{
			Min:        atof(m[2]) * 1000,
			Max:        atof(m[3]) * 1000,
			Currency:   currencyFor(m[1]),
			Confidence: confidenceRange,
		}, true
	}
	if m := salaryThousandRange.FindStringSubmatch(text); m != nil {
		return Salary{
			Min:        atof(m[1]) * 1000,
			Max:        atof(m[3]) * 1000,
			Currency:   currencyFor(m[2]),
			Confidence: confidenceRange,
		}, true
	}
	if m := salaryBetween.FindStringSubmatch(text); m != nil {
		low, high := atof(m[1]), atof(m[3])
		confidence := confidenceRange
		switch {
		case m[2] != "":
			low, high = low*1000, high*1000
		case low < 200:
			low, high = low*1000, high*1000
			confidence = confidenceImplicit
		}
		return Salary{Min: low, Max: high, Currency: "EUR", Confidence: confidence}, true
	}
	if m := salaryHourly.FindStringSubmatch(text); m != nil {
		hourly := atof(m[1])
		if m[2] != "" {
			hourly = atof(m[1] + "." + m[2])
		}
		annual := hourly * hoursPerWeek * weeksPerYear
		return Salary{Min: annual, Max: annual, Currency: "EUR", Confidence: confidenceHourly}, true
	}
	if m := salarySingle.FindStringSubmatch(text); m != nil {
		value := atof(m[1]) * 1000
		return Salary{Min: value, Max: value, Currency: currencyFor(m[2]), Confidence: confidenceSingle}, true
	}
	return Salary{}, false
}

// applySalary parses text into p. fallbackCurrency is used when the text
// carries no currency symbol.
func applySalary(p *models.Posting, text string, fallbackCurrency string) {
	salary, ok := ParseSalary(text)
	if !ok {
		return
	}
	p.SalaryMin = models.Float(salary.Min)
	p.SalaryMax = models.Float(salary.Max)
	p.SalaryPeriod = models.PeriodYear
	p.SalaryConfidence = models.Float(salary.Confidence)
	p.Currency = salary.Currency
	if p.Currency == "" {
		p.Currency = fallbackCurrency
	}
}

func currencyFor(symbol string) string {
	switch strings.TrimSpace(symbol) {
	case "$":
		return "USD"
	case "£":
		return "GBP"
	case "€":
		return "EUR"
	default:
		return ""
	}
}

func atof(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}
