package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/dharmasatrya/flightlookup/internal/models"
	"github.com/dharmasatrya/flightlookup/internal/schedule"
)

// Apply returns the matching flights in the requested order. The input slice
// is never modified, so cached results can be passed in directly.
func Apply(flights []models.FlightCandidate, filters models.FlightFilters) []models.FlightCandidate {
	filtered := applyFilters(flights, filters)
	return applySort(filtered, filters.SortBy, filters.SortOrder)
}

func applyFilters(flights []models.FlightCandidate, filters models.FlightFilters) []models.FlightCandidate {
	airlines := splitList(filters.Airlines)
	minTime, hasMin := parseTimeOfDay(filters.DepartAfter)
	maxTime, hasMax := parseTimeOfDay(filters.DepartBefore)

	result := make([]models.FlightCandidate, 0, len(flights))
	for _, f := range flights {
		if len(airlines) > 0 && !matchesAirline(f, airlines) {
			continue
		}
		if hasMin || hasMax {
			dep, ok := departureMinutes(f)
			if !ok {
				continue
			}
			if hasMin && dep < minTime {
				continue
			}
			if hasMax && dep > maxTime {
				continue
			}
		}
		result = append(result, f)
	}
	return result
}

// matchesAirline accepts either the airline name or the flight number
// prefix, so "Emirates" and "EK" both select EK500.
func matchesAirline(f models.FlightCandidate, airlines []string) bool {
	for _, a := range airlines {
		if strings.EqualFold(f.Airline, a) || strings.HasPrefix(strings.ToUpper(f.FlightNumber), strings.ToUpper(a)) {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseTimeOfDay(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	t, err := time.Parse(models.TimeOfDayLayout, s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func departureMinutes(f models.FlightCandidate) (int, bool) {
	t, err := time.Parse(schedule.LabelLayout, f.DepartureLabel)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func applySort(flights []models.FlightCandidate, sortBy, sortOrder string) []models.FlightCandidate {
	if len(flights) < 2 {
		return flights
	}

	ascending := strings.ToLower(sortOrder) != "desc"

	switch strings.ToLower(sortBy) {
	case models.SortByDeparture:
		sort.SliceStable(flights, func(i, j int) bool {
			di, okI := departureMinutes(flights[i])
			dj, okJ := departureMinutes(flights[j])
			if okI != okJ {
				// unknown times always last
				return okI
			}
			if ascending {
				return di < dj
			}
			return di > dj
		})

	case models.SortByAirline:
		sort.SliceStable(flights, func(i, j int) bool {
			if ascending {
				return flights[i].Airline < flights[j].Airline
			}
			return flights[i].Airline > flights[j].Airline
		})
	}

	return flights
}
