package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/dharmasatrya/flightlookup/internal/models"
)

// ErrNoFlights means the upstream answered successfully with zero records.
var ErrNoFlights = errors.New("upstream returned no flights")

type Provider interface {
	Name() string
	SearchRoute(ctx context.Context, q models.RouteQuery, limit int) ([]models.FlightCandidate, error)
	FlightStatus(ctx context.Context, flightNumber, date string) (*models.FlightStatus, error)
}

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}

// StatusError is a non-200 upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
