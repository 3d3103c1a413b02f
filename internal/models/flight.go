package models

import "strings"

type Source string

const (
	SourceLive      Source = "live"
	SourceSynthetic Source = "synthetic"
)

// Outcome records which path produced a result. It is never shown to the
// traveller; callers and logs use it to tell live data from fallback data.
type Outcome string

const (
	OutcomeLive                  Outcome = "live"
	OutcomeFallbackNoCredential  Outcome = "fallback_no_credential"
	OutcomeFallbackUpstreamError Outcome = "fallback_upstream_error"
	OutcomeFallbackEmptyUpstream Outcome = "fallback_empty_upstream"
)

func (o Outcome) IsFallback() bool {
	return o != OutcomeLive
}

const AnyDate = "any"

type RouteQuery struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date,omitempty"`
}

// Key is the cache key for the query. A missing date and an explicit "any"
// share the same bucket.
func (q RouteQuery) Key() string {
	date := strings.TrimSpace(q.Date)
	if date == "" || strings.EqualFold(date, AnyDate) {
		date = AnyDate
	}
	return q.Origin + "|" + q.Destination + "|" + date
}

func (q RouteQuery) Route() string {
	return q.Origin + " → " + q.Destination
}

type FlightCandidate struct {
	Airline          string `json:"airline"`
	FlightNumber     string `json:"flight_number"`
	DepartureAirport string `json:"departure_airport"`
	ArrivalAirport   string `json:"arrival_airport"`
	DepartureLabel   string `json:"departure"`
	ArrivalLabel     string `json:"arrival"`
	Status           string `json:"status"`
	Source           Source `json:"source"`
}

type LookupResult struct {
	Query    RouteQuery        `json:"query"`
	Flights  []FlightCandidate `json:"flights"`
	Outcome  Outcome           `json:"outcome"`
	CacheHit bool              `json:"cache_hit"`
}

type FlightStatus struct {
	FlightNumber     string `json:"flight_number"`
	Airline          string `json:"airline"`
	Status           string `json:"status"`
	DepartureAirport string `json:"departure_airport"`
	DepartureLabel   string `json:"departure"`
	ArrivalAirport   string `json:"arrival_airport"`
	ArrivalLabel     string `json:"arrival"`
	Source           Source `json:"source"`
}

// StatusResult always reports Success; an unknown status is not an error.
type StatusResult struct {
	Success bool         `json:"success"`
	Flight  FlightStatus `json:"flight"`
	Outcome Outcome      `json:"outcome"`
}
