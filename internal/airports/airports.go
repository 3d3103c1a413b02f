package airports

import (
	"strings"

	"github.com/dharmasatrya/flightlookup/internal/models"
)

// table is iterated in declaration order; the first entry wins on ambiguous
// substring matches.
var table = []models.AirportRecord{
	// India
	{Code: "BOM", DisplayName: "Chhatrapati Shivaji Maharaj International Airport", City: "Mumbai", Country: "India", Aliases: []string{"MUMBAI", "BOMBAY"}},
	{Code: "DEL", DisplayName: "Indira Gandhi International Airport", City: "Delhi", Country: "India", Aliases: []string{"DELHI", "NEW DELHI"}},
	{Code: "BLR", DisplayName: "Kempegowda International Airport", City: "Bangalore", Country: "India", Aliases: []string{"BANGALORE", "BENGALURU"}},
	{Code: "MAA", DisplayName: "Chennai International Airport", City: "Chennai", Country: "India", Aliases: []string{"CHENNAI", "MADRAS"}},

	// UAE
	{Code: "DXB", DisplayName: "Dubai International Airport", City: "Dubai", Country: "UAE", Aliases: []string{"DUBAI"}},

	// Saudi Arabia
	{Code: "RUH", DisplayName: "King Khalid International Airport", City: "Riyadh", Country: "Saudi Arabia", Aliases: []string{"RIYADH"}},
	{Code: "JED", DisplayName: "King Abdulaziz International Airport", City: "Jeddah", Country: "Saudi Arabia", Aliases: []string{"JEDDAH"}},
	{Code: "ULH", DisplayName: "AlUla International Airport", City: "AlUla", Country: "Saudi Arabia", Aliases: []string{"ALULA", "AL ULA"}},
}

var byKey map[string]string

func init() {
	byKey = make(map[string]string, len(table)*3)
	for _, a := range table {
		for _, k := range keys(a) {
			if _, ok := byKey[k]; !ok {
				byKey[k] = a.Code
			}
		}
	}
}

func keys(a models.AirportRecord) []string {
	out := []string{a.Code, strings.ToUpper(a.City)}
	return append(out, a.Aliases...)
}

// All returns a copy of the reference table.
func All() []models.AirportRecord {
	out := make([]models.AirportRecord, len(table))
	copy(out, table)
	return out
}

func Lookup(code string) (models.AirportRecord, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, a := range table {
		if a.Code == code {
			return a, true
		}
	}
	return models.AirportRecord{}, false
}

// Resolve maps a code, city name or a fragment of either to a canonical
// code. Any three-letter input passes through unvalidated, and unmatched
// input comes back uppercased.
func Resolve(query string) string {
	q := strings.ToUpper(strings.TrimSpace(query))

	if isCode(q) {
		return q
	}

	if code, ok := byKey[q]; ok {
		return code
	}

	if q != "" {
		for _, a := range table {
			if strings.Contains(a.Code, q) || strings.Contains(strings.ToUpper(a.City), q) {
				return a.Code
			}
			for _, alias := range a.Aliases {
				if strings.Contains(alias, q) {
					return a.Code
				}
			}
		}
	}

	return q
}

// Search matches the query against code, city, display name and aliases.
// Results are deduplicated by code and not capped.
func Search(query string) models.AirportSearchResult {
	q := strings.ToUpper(strings.TrimSpace(query))
	result := models.AirportSearchResult{
		Query:    strings.TrimSpace(query),
		Airports: make([]models.AirportRecord, 0),
	}
	if q == "" {
		return result
	}

	seen := make(map[string]bool)
	for _, a := range table {
		if seen[a.Code] || !matches(a, q) {
			continue
		}
		seen[a.Code] = true
		result.Airports = append(result.Airports, a)
	}

	result.Found = len(result.Airports) > 0
	return result
}

func matches(a models.AirportRecord, q string) bool {
	if strings.Contains(a.Code, q) ||
		strings.Contains(strings.ToUpper(a.City), q) ||
		strings.Contains(strings.ToUpper(a.DisplayName), q) {
		return true
	}
	for _, alias := range a.Aliases {
		if strings.Contains(alias, q) {
			return true
		}
	}
	return false
}

func isCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
