package models

import (
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04"

	SortByDeparture = "departure"
	SortByAirline   = "airline"
)

type LiveFlightsRequest struct {
	From string `json:"from_airport" query:"from"`
	To   string `json:"to_airport" query:"to"`
	Date string `json:"date,omitempty" query:"date"`
}

func (r *LiveFlightsRequest) Validate() error {
	r.From = strings.TrimSpace(r.From)
	r.To = strings.TrimSpace(r.To)
	if r.From == "" {
		return ErrMissingOrigin
	}
	if r.To == "" {
		return ErrMissingDestination
	}
	return nil
}

// FlightFilters narrows a route lookup on the structured endpoint. Times are
// 24h "HH:MM" and compare against the departure clock label.
type FlightFilters struct {
	Airlines     string `query:"airlines"`
	DepartAfter  string `query:"depart_after"`
	DepartBefore string `query:"depart_before"`
	SortBy       string `query:"sort_by"`
	SortOrder    string `query:"sort_order"`
}

func (f *FlightFilters) Validate() error {
	for _, t := range []string{f.DepartAfter, f.DepartBefore} {
		if t == "" {
			continue
		}
		if _, err := time.Parse(TimeOfDayLayout, t); err != nil {
			return ErrInvalidTimeOfDay
		}
	}
	switch strings.ToLower(f.SortBy) {
	case "", SortByDeparture, SortByAirline:
	default:
		return ErrInvalidSortBy
	}
	switch strings.ToLower(f.SortOrder) {
	case "", "asc", "desc":
	default:
		return ErrInvalidSortOrder
	}
	return nil
}

type FlightsQuery struct {
	LiveFlightsRequest
	FlightFilters
}

// Validate is stricter than the tool requests: a malformed date is reported
// instead of silently widened to any date.
func (q *FlightsQuery) Validate() error {
	if err := q.LiveFlightsRequest.Validate(); err != nil {
		return err
	}
	if err := validateDate(q.Date); err != nil {
		return err
	}
	return q.FlightFilters.Validate()
}

type FlightStatusRequest struct {
	FlightNumber string `json:"flight_number" param:"number"`
	Date         string `json:"date,omitempty" query:"date"`
}

func (r *FlightStatusRequest) Validate() error {
	r.FlightNumber = strings.TrimSpace(r.FlightNumber)
	if r.FlightNumber == "" {
		return ErrMissingFlightNumber
	}
	return nil
}

type AirportSearchRequest struct {
	Query string `json:"query" query:"q"`
}

func (r *AirportSearchRequest) Validate() error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return ErrMissingQuery
	}
	return nil
}

func validateDate(date string) error {
	date = strings.TrimSpace(date)
	if date == "" || strings.EqualFold(date, AnyDate) {
		return nil
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin       ValidationError = "from_airport is required"
	ErrMissingDestination  ValidationError = "to_airport is required"
	ErrMissingFlightNumber ValidationError = "flight_number is required"
	ErrMissingQuery        ValidationError = "query is required"
	ErrInvalidDate         ValidationError = "date must be YYYY-MM-DD"
	ErrInvalidTimeOfDay    ValidationError = "depart_after and depart_before must be HH:MM"
	ErrInvalidSortBy       ValidationError = "sort_by must be departure or airline"
	ErrInvalidSortOrder    ValidationError = "sort_order must be asc or desc"
)
