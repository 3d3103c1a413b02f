package fallback

import (
	"strconv"
	"strings"

	"github.com/dharmasatrya/flightlookup/internal/models"
	"github.com/dharmasatrya/flightlookup/internal/schedule"
)

const (
	MaxFlights    = 4
	ServiceStatus = "Regular Service"
)

type Route struct {
	Origin      string
	Destination string
}

// RouteTable maps a directed route to the airlines known to serve it, in
// preference order.
type RouteTable map[Route][]string

var DefaultAirlines = []string{"Air India", "Emirates", "IndiGo", "Saudia"}

var PopularRoutes = RouteTable{
	{"BOM", "DXB"}: {"Air India", "Emirates", "IndiGo", "SpiceJet"},
	{"DEL", "DXB"}: {"Air India", "Emirates", "IndiGo"},
	{"BLR", "DXB"}: {"Air India", "Emirates", "IndiGo"},
	{"MAA", "DXB"}: {"Air India", "Emirates", "IndiGo"},
	{"BOM", "RUH"}: {"Air India", "Saudia"},
	{"DEL", "RUH"}: {"Air India", "Saudia"},
	{"BLR", "RUH"}: {"Air India", "Saudia"},
	{"BLR", "ULH"}: {"Saudia", "Flynas"},
	{"DEL", "ULH"}: {"Saudia", "Flynas"},
	{"BOM", "ULH"}: {"Saudia", "Flynas"},
	{"BOM", "JED"}: {"Air India", "Saudia"},
	{"DEL", "JED"}: {"Air India", "Saudia"},
}

func (t RouteTable) Airlines(origin, destination string) []string {
	if airlines, ok := t[Route{origin, destination}]; ok && len(airlines) > 0 {
		return airlines
	}
	return DefaultAirlines
}

// Generate builds the synthetic schedule for a route. It is deterministic:
// the same query and table always produce the same flights.
func Generate(q models.RouteQuery, routes RouteTable) []models.FlightCandidate {
	airlines := routes.Airlines(q.Origin, q.Destination)
	if len(airlines) > MaxFlights {
		airlines = airlines[:MaxFlights]
	}

	flights := make([]models.FlightCandidate, 0, len(airlines))
	for i, airline := range airlines {
		dep, arr := schedule.Slot(i)
		flights = append(flights, models.FlightCandidate{
			Airline:          airline,
			FlightNumber:     FlightNumber(airline, i),
			DepartureAirport: q.Origin,
			ArrivalAirport:   q.Destination,
			DepartureLabel:   schedule.ClockLabel(dep),
			ArrivalLabel:     schedule.ClockLabel(arr),
			Status:           ServiceStatus,
			Source:           models.SourceSynthetic,
		})
	}
	return flights
}

// FlightNumber is the first two letters of the airline name, uppercased,
// followed by 100+index.
func FlightNumber(airline string, index int) string {
	prefix := []rune(strings.ToUpper(strings.TrimSpace(airline)))
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return string(prefix) + strconv.Itoa(100+index)
}
