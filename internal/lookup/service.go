package lookup

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dharmasatrya/flightlookup/internal/airports"
	"github.com/dharmasatrya/flightlookup/internal/cache"
	"github.com/dharmasatrya/flightlookup/internal/fallback"
	"github.com/dharmasatrya/flightlookup/internal/models"
	"github.com/dharmasatrya/flightlookup/internal/providers"
	"github.com/dharmasatrya/flightlookup/internal/ratelimit"
	"github.com/dharmasatrya/flightlookup/pkg/logger"
	"github.com/dharmasatrya/flightlookup/pkg/metrics"
)

const (
	DefaultTimeout    = 2 * time.Second
	DefaultMaxFlights = 5

	OpLiveFlights    = "live_flights"
	OpFlightStatus   = "flight_status"
	OpSearchAirports = "search_airports"
)

type Dependency struct {
	// Provider is nil when no upstream credential is configured.
	Provider   providers.Provider
	Cache      cache.Cache
	Limiter    *ratelimit.UpstreamLimiter
	Routes     fallback.RouteTable
	Timeout    time.Duration
	MaxFlights int
	Logger     logger.Logger
	Metrics    *metrics.Metrics
}

// Service answers the voice agent's flight questions. Every lookup returns a
// usable result: upstream failures are recovered with synthetic data and
// reported through Outcome, never as an error.
type Service struct {
	provider   providers.Provider
	cache      cache.Cache
	limiter    *ratelimit.UpstreamLimiter
	routes     fallback.RouteTable
	timeout    time.Duration
	maxFlights int
	logger     logger.Logger
	metrics    *metrics.Metrics
}

func NewService(dep Dependency) *Service {
	s := &Service{
		provider:   dep.Provider,
		cache:      dep.Cache,
		limiter:    dep.Limiter,
		routes:     dep.Routes,
		timeout:    dep.Timeout,
		maxFlights: dep.MaxFlights,
		logger:     dep.Logger,
		metrics:    dep.Metrics,
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryCache(cache.DefaultTTL)
	}
	if s.routes == nil {
		s.routes = fallback.PopularRoutes
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.maxFlights <= 0 {
		s.maxFlights = DefaultMaxFlights
	}
	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	return s
}

func (s *Service) HasUpstream() bool {
	return s.provider != nil
}

// GetLiveFlights resolves both airports, serves from cache when fresh, and
// otherwise makes a single bounded upstream attempt before falling back to
// the synthetic schedule.
func (s *Service) GetLiveFlights(ctx context.Context, from, to, date string) models.LookupResult {
	start := time.Now()
	q := models.RouteQuery{
		Origin:      airports.Resolve(from),
		Destination: airports.Resolve(to),
		Date:        s.normalizeDate(date),
	}
	key := q.Key()

	if cached, ok := s.cache.Get(ctx, key); ok {
		s.metrics.ObserveCache(true)
		s.metrics.ObserveLookup(OpLiveFlights, string(cached.Outcome))
		s.logger.Debug("route lookup served from cache", "route", key, "outcome", cached.Outcome)
		cached.CacheHit = true
		return cached
	}
	s.metrics.ObserveCache(false)

	flights, outcome := s.fetchRoute(ctx, q)
	result := models.LookupResult{
		Query:   q,
		Flights: flights,
		Outcome: outcome,
	}

	// A caller hanging up mid-lookup must not leave a fallback pinned in
	// the cache, so the store ignores caller cancellation.
	if err := s.cache.Set(context.WithoutCancel(ctx), key, result); err != nil {
		s.logger.Warn("failed to cache route lookup", "route", key, "error", err)
	}

	s.metrics.ObserveLookup(OpLiveFlights, string(outcome))
	s.logger.Info("route lookup",
		"route", key,
		"outcome", outcome,
		"flights", len(flights),
		"elapsed_ms", time.Since(start).Milliseconds())
	return result
}

func (s *Service) fetchRoute(ctx context.Context, q models.RouteQuery) ([]models.FlightCandidate, models.Outcome) {
	if s.provider == nil {
		return fallback.Generate(q, s.routes), models.OutcomeFallbackNoCredential
	}

	flights, err := callWithin(ctx, s, ratelimit.EndpointRoute, func(ctx context.Context) ([]models.FlightCandidate, error) {
		return s.provider.SearchRoute(ctx, q, s.maxFlights)
	})
	if err == nil && len(flights) == 0 {
		err = providers.ErrNoFlights
	}
	if err != nil {
		outcome := classify(err)
		s.logger.Warn("upstream route lookup failed, using fallback",
			"route", q.Key(),
			"provider", s.provider.Name(),
			"outcome", outcome,
			"error", err)
		return fallback.Generate(q, s.routes), outcome
	}

	if len(flights) > s.maxFlights {
		flights = flights[:s.maxFlights]
	}
	return flights, models.OutcomeLive
}

// GetFlightStatus never fails; when the upstream cannot answer, the
// requested flight number is echoed back with an unknown status.
func (s *Service) GetFlightStatus(ctx context.Context, flightNumber, date string) models.StatusResult {
	number := strings.ToUpper(strings.TrimSpace(flightNumber))
	date = s.normalizeDate(date)

	status, outcome := s.fetchStatus(ctx, number, date)
	s.metrics.ObserveLookup(OpFlightStatus, string(outcome))
	s.logger.Info("flight status lookup", "flight", number, "outcome", outcome)

	return models.StatusResult{
		Success: true,
		Flight:  status,
		Outcome: outcome,
	}
}

func (s *Service) fetchStatus(ctx context.Context, number, date string) (models.FlightStatus, models.Outcome) {
	if s.provider == nil {
		return UnknownStatus(number), models.OutcomeFallbackNoCredential
	}

	status, err := callWithin(ctx, s, ratelimit.EndpointStatus, func(ctx context.Context) (*models.FlightStatus, error) {
		return s.provider.FlightStatus(ctx, number, date)
	})
	if err == nil && status == nil {
		err = providers.ErrNoFlights
	}
	if err != nil {
		outcome := classify(err)
		s.logger.Warn("upstream status lookup failed, using fallback",
			"flight", number,
			"provider", s.provider.Name(),
			"outcome", outcome,
			"error", err)
		return UnknownStatus(number), outcome
	}
	return *status, models.OutcomeLive
}

// SearchAirports is a purely local lookup.
func (s *Service) SearchAirports(query string) models.AirportSearchResult {
	result := airports.Search(query)
	outcome := "found"
	if !result.Found {
		outcome = "not_found"
	}
	s.metrics.ObserveLookup(OpSearchAirports, outcome)
	s.logger.Debug("airport search", "query", result.Query, "matches", len(result.Airports))
	return result
}

func UnknownStatus(number string) models.FlightStatus {
	return models.FlightStatus{
		FlightNumber:     number,
		Airline:          "Multiple Airlines",
		Status:           "Unknown",
		DepartureAirport: "See booking confirmation",
		DepartureLabel:   "Check with airline",
		ArrivalAirport:   "See booking confirmation",
		ArrivalLabel:     "Check with airline",
		Source:           models.SourceSynthetic,
	}
}

// callWithin runs one upstream call inside the service's timeout budget. The
// budget is the only cancellation point: caller cancellation is detached so
// an interrupted request cannot turn into a cached upstream failure. The
// rate limiter wait counts against the same budget. A provider that ignores
// its context is abandoned when the deadline passes.
func callWithin[T any](ctx context.Context, s *Service, endpoint string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.limiter.Wait(callCtx, endpoint); err != nil {
		s.metrics.ObserveUpstream(endpoint, time.Since(start), "rate_limited")
		return zero, err
	}

	type callResult struct {
		value T
		err   error
	}
	resultCh := make(chan callResult, 1)
	go func() {
		v, err := fn(callCtx)
		resultCh <- callResult{value: v, err: err}
	}()

	var r callResult
	select {
	case r = <-resultCh:
	case <-callCtx.Done():
		r = callResult{err: callCtx.Err()}
	}

	s.metrics.ObserveUpstream(endpoint, time.Since(start), reason(r.err))
	return r.value, r.err
}

func classify(err error) models.Outcome {
	if errors.Is(err, providers.ErrNoFlights) {
		return models.OutcomeFallbackEmptyUpstream
	}
	return models.OutcomeFallbackUpstreamError
}

func reason(err error) string {
	var se *providers.StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ratelimit.ErrQuotaExhausted):
		return "rate_limited"
	case errors.Is(err, providers.ErrNoFlights):
		return "empty"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &se):
		return "status"
	default:
		return "error"
	}
}

// normalizeDate keeps valid ISO dates and drops anything else, so a
// malformed date never blocks a lookup.
func (s *Service) normalizeDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" || strings.EqualFold(date, models.AnyDate) {
		return ""
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		s.logger.Warn("ignoring unparseable date", "date", date)
		return ""
	}
	return date
}
