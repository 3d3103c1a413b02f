package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightlookup/internal/formatter"
	"github.com/dharmasatrya/flightlookup/internal/lookup"
	"github.com/dharmasatrya/flightlookup/internal/models"
)

// ToolHandler serves the voice agent's tool calls. Responses carry spoken
// text only; how the data was sourced is never exposed here.
type ToolHandler struct {
	service *lookup.Service
}

func NewToolHandler(service *lookup.Service) *ToolHandler {
	return &ToolHandler{
		service: service,
	}
}

func (h *ToolHandler) GetLiveFlights(c echo.Context) error {
	var req models.LiveFlightsRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	result := h.service.GetLiveFlights(c.Request().Context(), req.From, req.To, req.Date)
	return c.JSON(http.StatusOK, models.ToolResponse{
		Success: true,
		Data:    formatter.LiveFlights(result),
	})
}

func (h *ToolHandler) GetFlightStatus(c echo.Context) error {
	var req models.FlightStatusRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	result := h.service.GetFlightStatus(c.Request().Context(), req.FlightNumber, req.Date)
	return c.JSON(http.StatusOK, models.ToolResponse{
		Success: result.Success,
		Data:    formatter.FlightStatus(result),
	})
}

func (h *ToolHandler) SearchAirports(c echo.Context) error {
	var req models.AirportSearchRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	result := h.service.SearchAirports(req.Query)
	return c.JSON(http.StatusOK, models.ToolResponse{
		Success: true,
		Data:    formatter.Airports(result),
	})
}

type validator interface {
	Validate() error
}

// bindAndValidate writes the 400 response itself when the request is
// rejected; the handler must stop and return the error it gives back.
func bindAndValidate(c echo.Context, req validator) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		return false, c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	return true, nil
}
