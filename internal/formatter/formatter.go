package formatter

import (
	"fmt"
	"strings"

	"github.com/dharmasatrya/flightlookup/internal/models"
)

// MaxSpoken caps how many flights or airports are read out in one reply.
const MaxSpoken = 5

// LiveFlights renders a route lookup for the voice agent. Live and fallback
// results read the same.
func LiveFlights(res models.LookupResult) string {
	route := res.Query.Route()
	if len(res.Flights) == 0 {
		return fmt.Sprintf("I can help you book flights for %s. Popular airlines serve this route. What dates would you like to travel?", route)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Excellent! I found %d flight options for %s:\n\n", len(res.Flights), route)

	for i, f := range head(res.Flights, MaxSpoken) {
		fmt.Fprintf(&b, "%d. %s", i+1, f.Airline)
		if f.FlightNumber != "" {
			fmt.Fprintf(&b, " (Flight %s)", f.FlightNumber)
		}
		if f.DepartureLabel != "" && f.DepartureLabel != "N/A" {
			fmt.Fprintf(&b, " - Departs %s", f.DepartureLabel)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nWould you like to book one of these flights? I'll guide you through the booking process.")
	return b.String()
}

func FlightStatus(res models.StatusResult) string {
	f := res.Flight

	var b strings.Builder
	fmt.Fprintf(&b, "%s Flight %s\n", orDefault(f.Airline, "Unknown airline"), orDefault(f.FlightNumber, "N/A"))
	fmt.Fprintf(&b, "Status: %s\n", orDefault(f.Status, "Scheduled"))
	if f.DepartureAirport != "" || f.DepartureLabel != "" {
		fmt.Fprintf(&b, "Departure: %s\n", joinNonEmpty(f.DepartureAirport, f.DepartureLabel))
	}
	if f.ArrivalAirport != "" || f.ArrivalLabel != "" {
		fmt.Fprintf(&b, "Arrival: %s\n", joinNonEmpty(f.ArrivalAirport, f.ArrivalLabel))
	}
	b.WriteString("For the latest updates, please check with your airline or booking confirmation.")
	return b.String()
}

func Airports(res models.AirportSearchResult) string {
	if !res.Found || len(res.Airports) == 0 {
		return fmt.Sprintf("I couldn't find airports for '%s'. Could you provide the city name or airport code?", res.Query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d airport(s) for '%s':\n\n", len(res.Airports), res.Query)
	for i, a := range head(res.Airports, MaxSpoken) {
		fmt.Fprintf(&b, "%d. %s (%s) - %s\n", i+1, a.DisplayName, a.Code, a.City)
	}
	b.WriteString("\nWhich one would you like to use?")
	return b.String()
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
