package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightlookup/internal/filter"
	"github.com/dharmasatrya/flightlookup/internal/lookup"
	"github.com/dharmasatrya/flightlookup/internal/models"
)

// FlightHandler exposes the structured lookup results, including outcome
// and source tags, for operators and integration checks.
type FlightHandler struct {
	service *lookup.Service
}

func NewFlightHandler(service *lookup.Service) *FlightHandler {
	return &FlightHandler{
		service: service,
	}
}

func (h *FlightHandler) Flights(c echo.Context) error {
	startTime := time.Now()

	var req models.FlightsQuery
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	result := h.service.GetLiveFlights(c.Request().Context(), req.From, req.To, req.Date)
	filtered := filter.Apply(result.Flights, req.FlightFilters)

	return c.JSON(http.StatusOK, models.FlightsResponse{
		Query: result.Query,
		Metadata: models.LookupMetadata{
			Outcome:      result.Outcome,
			CacheHit:     result.CacheHit,
			TotalResults: len(filtered),
			SearchTimeMs: time.Since(startTime).Milliseconds(),
		},
		Flights: filtered,
	})
}

func (h *FlightHandler) Status(c echo.Context) error {
	var req models.FlightStatusRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	return c.JSON(http.StatusOK, h.service.GetFlightStatus(c.Request().Context(), req.FlightNumber, req.Date))
}

func (h *FlightHandler) Airports(c echo.Context) error {
	var req models.AirportSearchRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	result := h.service.SearchAirports(req.Query)
	if !result.Found {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "No airports found for '" + result.Query + "'",
			Code:    http.StatusNotFound,
		})
	}
	return c.JSON(http.StatusOK, result)
}
