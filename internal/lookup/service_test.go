package lookup

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dharmasatrya/flightlookup/internal/cache"
	"github.com/dharmasatrya/flightlookup/internal/models"
	"github.com/dharmasatrya/flightlookup/internal/providers"
	"github.com/dharmasatrya/flightlookup/internal/ratelimit"
)

type fakeProvider struct {
	calls   atomic.Int32
	delay   time.Duration
	flights []models.FlightCandidate
	status  *models.FlightStatus
	err     error

	// honorCtx makes calls fail with the context error once it is done.
	honorCtx bool
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) SearchRoute(ctx context.Context, q models.RouteQuery, limit int) ([]models.FlightCandidate, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.honorCtx && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if p.err != nil {
		return nil, p.err
	}
	if len(p.flights) > limit {
		return p.flights[:limit], nil
	}
	return p.flights, nil
}

func (p *fakeProvider) FlightStatus(ctx context.Context, flightNumber, date string) (*models.FlightStatus, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.status, nil
}

func liveFlights(n int) []models.FlightCandidate {
	flights := make([]models.FlightCandidate, n)
	for i := range flights {
		flights[i] = models.FlightCandidate{
			Airline:          "Emirates",
			FlightNumber:     "EK50" + string(rune('0'+i)),
			DepartureAirport: "BOM",
			ArrivalAirport:   "DXB",
			DepartureLabel:   "10:00 AM",
			ArrivalLabel:     "11:30 AM",
			Status:           "scheduled",
			Source:           models.SourceLive,
		}
	}
	return flights
}

func TestGetLiveFlights_NoCredentialUsesPopularRoute(t *testing.T) {
	svc := NewService(Dependency{})

	res := svc.GetLiveFlights(context.Background(), "Mumbai", "Dubai", "")

	if res.Outcome != models.OutcomeFallbackNoCredential {
		t.Fatalf("outcome = %q", res.Outcome)
	}
	if res.Query.Origin != "BOM" || res.Query.Destination != "DXB" {
		t.Fatalf("query = %+v", res.Query)
	}
	want := []string{"Air India", "Emirates", "IndiGo", "SpiceJet"}
	if len(res.Flights) != len(want) {
		t.Fatalf("got %d flights, want %d", len(res.Flights), len(want))
	}
	for i, f := range res.Flights {
		if f.Airline != want[i] {
			t.Errorf("flight %d airline = %q, want %q", i, f.Airline, want[i])
		}
		if f.Source != models.SourceSynthetic {
			t.Errorf("flight %d source = %q", i, f.Source)
		}
		if f.DepartureAirport != "BOM" || f.ArrivalAirport != "DXB" {
			t.Errorf("flight %d airports = %s-%s", i, f.DepartureAirport, f.ArrivalAirport)
		}
	}
}

func TestGetLiveFlights_UnknownRouteUsesDefaultAirlines(t *testing.T) {
	svc := NewService(Dependency{})

	res := svc.GetLiveFlights(context.Background(), "JFK", "LHR", "any")

	if len(res.Flights) != 4 {
		t.Fatalf("got %d flights", len(res.Flights))
	}
	if res.Flights[0].Airline != "Air India" || res.Flights[3].Airline != "Saudia" {
		t.Errorf("unexpected airlines: %+v", res.Flights)
	}
}

func TestGetLiveFlights_LiveResultIsCached(t *testing.T) {
	p := &fakeProvider{flights: liveFlights(7)}
	svc := NewService(Dependency{Provider: p})

	first := svc.GetLiveFlights(context.Background(), "BOM", "DXB", "2026-11-02")
	second := svc.GetLiveFlights(context.Background(), "bom", "dxb", "2026-11-02")

	if got := p.calls.Load(); got != 1 {
		t.Fatalf("provider called %d times, want 1", got)
	}
	if first.Outcome != models.OutcomeLive {
		t.Fatalf("outcome = %q", first.Outcome)
	}
	if len(first.Flights) != DefaultMaxFlights {
		t.Errorf("got %d flights, want %d", len(first.Flights), DefaultMaxFlights)
	}
	if first.CacheHit || !second.CacheHit {
		t.Errorf("cache hit flags = %v, %v", first.CacheHit, second.CacheHit)
	}
	if !reflect.DeepEqual(first.Flights, second.Flights) || first.Query != second.Query || first.Outcome != second.Outcome {
		t.Errorf("cached result differs:\n%+v\n%+v", first, second)
	}
}

func TestGetLiveFlights_MissingAndAnyDateShareCache(t *testing.T) {
	p := &fakeProvider{flights: liveFlights(2)}
	svc := NewService(Dependency{Provider: p})

	svc.GetLiveFlights(context.Background(), "BOM", "DXB", "")
	res := svc.GetLiveFlights(context.Background(), "BOM", "DXB", "ANY")

	if got := p.calls.Load(); got != 1 {
		t.Fatalf("provider called %d times, want 1", got)
	}
	if !res.CacheHit {
		t.Error("expected cache hit")
	}
}

func TestGetLiveFlights_FallbackIsCached(t *testing.T) {
	p := &fakeProvider{err: errors.New("boom")}
	svc := NewService(Dependency{Provider: p})

	first := svc.GetLiveFlights(context.Background(), "DEL", "RUH", "")
	second := svc.GetLiveFlights(context.Background(), "DEL", "RUH", "")

	if got := p.calls.Load(); got != 1 {
		t.Fatalf("provider called %d times, want 1", got)
	}
	if first.Outcome != models.OutcomeFallbackUpstreamError || second.Outcome != first.Outcome {
		t.Errorf("outcomes = %q, %q", first.Outcome, second.Outcome)
	}
}

func TestGetLiveFlights_CallerCancellationDoesNotPoisonCache(t *testing.T) {
	p := &fakeProvider{flights: liveFlights(2), honorCtx: true}
	svc := NewService(Dependency{Provider: p})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	first := svc.GetLiveFlights(ctx, "BOM", "DXB", "")
	second := svc.GetLiveFlights(context.Background(), "BOM", "DXB", "")

	if first.Outcome != models.OutcomeLive {
		t.Fatalf("first outcome = %q", first.Outcome)
	}
	if !second.CacheHit || second.Outcome != models.OutcomeLive {
		t.Errorf("second = cache hit %v, outcome %q", second.CacheHit, second.Outcome)
	}
	if second.Flights[0].Source != models.SourceLive {
		t.Errorf("cached source = %q", second.Flights[0].Source)
	}
	if got := p.calls.Load(); got != 1 {
		t.Errorf("provider called %d times, want 1", got)
	}
}

func TestGetLiveFlights_Outcomes(t *testing.T) {
	tests := []struct {
		name string
		p    *fakeProvider
		want models.Outcome
	}{
		{"empty result", &fakeProvider{}, models.OutcomeFallbackEmptyUpstream},
		{"explicit no flights", &fakeProvider{err: providers.ErrNoFlights}, models.OutcomeFallbackEmptyUpstream},
		{"wrapped no flights", &fakeProvider{err: providers.NewProviderError("fake", providers.ErrNoFlights)}, models.OutcomeFallbackEmptyUpstream},
		{"http status", &fakeProvider{err: &providers.StatusError{StatusCode: 503}}, models.OutcomeFallbackUpstreamError},
		{"live", &fakeProvider{flights: liveFlights(1)}, models.OutcomeLive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(Dependency{Provider: tt.p})
			res := svc.GetLiveFlights(context.Background(), "BOM", "DXB", "")
			if res.Outcome != tt.want {
				t.Errorf("outcome = %q, want %q", res.Outcome, tt.want)
			}
			if len(res.Flights) == 0 {
				t.Error("expected flights")
			}
			for _, f := range res.Flights {
				wantSource := models.SourceSynthetic
				if tt.want == models.OutcomeLive {
					wantSource = models.SourceLive
				}
				if f.Source != wantSource {
					t.Errorf("source = %q, want %q", f.Source, wantSource)
				}
			}
		})
	}
}

func TestGetLiveFlights_SlowUpstreamIsBounded(t *testing.T) {
	p := &fakeProvider{delay: 2 * time.Second, flights: liveFlights(1)}
	svc := NewService(Dependency{Provider: p, Timeout: 50 * time.Millisecond})

	start := time.Now()
	res := svc.GetLiveFlights(context.Background(), "BLR", "ULH", "")
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Fatalf("lookup took %v", elapsed)
	}
	if res.Outcome != models.OutcomeFallbackUpstreamError {
		t.Errorf("outcome = %q", res.Outcome)
	}
	if res.Flights[0].Airline != "Saudia" {
		t.Errorf("first airline = %q", res.Flights[0].Airline)
	}
}

func TestGetLiveFlights_ExpiredEntryRefetches(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	p := &fakeProvider{flights: liveFlights(1)}
	svc := NewService(Dependency{
		Provider: p,
		Cache:    cache.NewMemoryCache(30*time.Minute, cache.WithClock(clock)),
	})

	svc.GetLiveFlights(context.Background(), "BOM", "DXB", "")
	mu.Lock()
	now = now.Add(29 * time.Minute)
	mu.Unlock()
	svc.GetLiveFlights(context.Background(), "BOM", "DXB", "")
	if got := p.calls.Load(); got != 1 {
		t.Fatalf("provider called %d times before expiry", got)
	}

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()
	res := svc.GetLiveFlights(context.Background(), "BOM", "DXB", "")
	if got := p.calls.Load(); got != 2 {
		t.Fatalf("provider called %d times after expiry", got)
	}
	if res.CacheHit {
		t.Error("expired entry served as cache hit")
	}
}

func TestGetLiveFlights_InvalidDateIgnored(t *testing.T) {
	p := &fakeProvider{flights: liveFlights(1)}
	svc := NewService(Dependency{Provider: p})

	res := svc.GetLiveFlights(context.Background(), "BOM", "DXB", "next tuesday")

	if res.Query.Date != "" {
		t.Errorf("date = %q", res.Query.Date)
	}
	if res.Query.Key() != "BOM|DXB|any" {
		t.Errorf("key = %q", res.Query.Key())
	}
}

func TestGetLiveFlights_RateLimited(t *testing.T) {
	limiter := ratelimit.NewUpstreamLimiter(ratelimit.Config{
		Default:   ratelimit.DefaultLimit,
		Endpoints: map[string]ratelimit.Limit{ratelimit.EndpointRoute: {RequestsPerSecond: 0.001, Burst: 1}},
	})
	p := &fakeProvider{flights: liveFlights(1)}
	svc := NewService(Dependency{Provider: p, Limiter: limiter, Timeout: 100 * time.Millisecond})

	first := svc.GetLiveFlights(context.Background(), "BOM", "DXB", "")
	second := svc.GetLiveFlights(context.Background(), "DEL", "DXB", "")

	if first.Outcome != models.OutcomeLive {
		t.Errorf("first outcome = %q", first.Outcome)
	}
	if second.Outcome != models.OutcomeFallbackUpstreamError {
		t.Errorf("second outcome = %q", second.Outcome)
	}
	if got := p.calls.Load(); got != 1 {
		t.Errorf("provider called %d times, want 1", got)
	}
}

func TestReason(t *testing.T) {
	quota := &ratelimit.QuotaError{Endpoint: ratelimit.EndpointRoute, Err: errors.New("would exceed deadline")}
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{quota, "rate_limited"},
		{providers.ErrNoFlights, "empty"},
		{context.DeadlineExceeded, "timeout"},
		{context.Canceled, "canceled"},
		{&providers.StatusError{StatusCode: 429}, "status"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := reason(tt.err); got != tt.want {
			t.Errorf("reason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
	if got := classify(quota); got != models.OutcomeFallbackUpstreamError {
		t.Errorf("classify(quota) = %q", got)
	}
}

func TestGetFlightStatus(t *testing.T) {
	live := &models.FlightStatus{
		FlightNumber: "EK500",
		Airline:      "Emirates",
		Status:       "active",
		Source:       models.SourceLive,
	}
	tests := []struct {
		name        string
		provider    providers.Provider
		wantOutcome models.Outcome
		wantStatus  string
	}{
		{"no credential", nil, models.OutcomeFallbackNoCredential, "Unknown"},
		{"upstream error", &fakeProvider{err: errors.New("down")}, models.OutcomeFallbackUpstreamError, "Unknown"},
		{"not found", &fakeProvider{err: providers.ErrNoFlights}, models.OutcomeFallbackEmptyUpstream, "Unknown"},
		{"live", &fakeProvider{status: live}, models.OutcomeLive, "active"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(Dependency{Provider: tt.provider})
			res := svc.GetFlightStatus(context.Background(), " ek500 ", "")
			if !res.Success {
				t.Error("status lookup must report success")
			}
			if res.Outcome != tt.wantOutcome {
				t.Errorf("outcome = %q, want %q", res.Outcome, tt.wantOutcome)
			}
			if res.Flight.FlightNumber != "EK500" {
				t.Errorf("flight number = %q", res.Flight.FlightNumber)
			}
			if res.Flight.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", res.Flight.Status, tt.wantStatus)
			}
		})
	}
}

func TestGetFlightStatus_Fallback(t *testing.T) {
	svc := NewService(Dependency{})
	res := svc.GetFlightStatus(context.Background(), "AI101", "")

	if res.Flight.Airline != "Multiple Airlines" {
		t.Errorf("airline = %q", res.Flight.Airline)
	}
	if res.Flight.DepartureLabel != "Check with airline" || res.Flight.ArrivalLabel != "Check with airline" {
		t.Errorf("labels = %q, %q", res.Flight.DepartureLabel, res.Flight.ArrivalLabel)
	}
	if res.Flight.Source != models.SourceSynthetic {
		t.Errorf("source = %q", res.Flight.Source)
	}
}

func TestSearchAirports(t *testing.T) {
	svc := NewService(Dependency{})

	res := svc.SearchAirports("Riyadh")
	if !res.Found || len(res.Airports) != 1 || res.Airports[0].Code != "RUH" {
		t.Errorf("Riyadh search = %+v", res)
	}

	res = svc.SearchAirports("Nowhereville")
	if res.Found || len(res.Airports) != 0 {
		t.Errorf("Nowhereville search = %+v", res)
	}
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(Dependency{})
	if svc.timeout != DefaultTimeout {
		t.Errorf("timeout = %v", svc.timeout)
	}
	if svc.maxFlights != DefaultMaxFlights {
		t.Errorf("max flights = %d", svc.maxFlights)
	}
	if svc.HasUpstream() {
		t.Error("service without provider reports upstream")
	}
}
