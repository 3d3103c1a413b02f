package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dharmasatrya/flightlookup/internal/models"
	"github.com/dharmasatrya/flightlookup/internal/schedule"
)

const (
	DefaultAviationStackURL = "https://api.aviationstack.com/v1"
	userAgent               = "flightlookup/1.0"
	requestLimit            = 10
	maxErrorBody            = 512
)

type aviationstackResponse struct {
	Data  []aviationstackFlight `json:"data"`
	Error *aviationstackError   `json:"error,omitempty"`
}

type aviationstackError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *aviationstackError) Error() string {
	return e.Code + ": " + e.Message
}

type aviationstackFlight struct {
	FlightDate   string                `json:"flight_date"`
	FlightStatus string                `json:"flight_status"`
	Departure    aviationstackEndpoint `json:"departure"`
	Arrival      aviationstackEndpoint `json:"arrival"`
	Airline      aviationstackAirline  `json:"airline"`
	Flight       aviationstackNumber   `json:"flight"`
}

type aviationstackEndpoint struct {
	Airport   string  `json:"airport"`
	IATA      string  `json:"iata"`
	Terminal  *string `json:"terminal"`
	Scheduled string  `json:"scheduled"`
}

type aviationstackAirline struct {
	Name string `json:"name"`
	IATA string `json:"iata"`
}

type aviationstackNumber struct {
	Number string `json:"number"`
	IATA   string `json:"iata"`
}

type AviationStackProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type Option func(*AviationStackProvider)

func WithBaseURL(u string) Option {
	return func(p *AviationStackProvider) {
		if u != "" {
			p.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(p *AviationStackProvider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// NewAviationStackProvider returns nil when apiKey is empty; the lookup
// service treats a nil provider as "no credential configured".
func NewAviationStackProvider(apiKey string, opts ...Option) *AviationStackProvider {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	p := &AviationStackProvider{
		apiKey:     apiKey,
		baseURL:    DefaultAviationStackURL,
		httpClient: newHTTPClient(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Request lifetime is bounded by the caller's context deadline, not
// http.Client.Timeout.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 2 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 2 * time.Second,
	}
	return &http.Client{Transport: transport}
}

func (p *AviationStackProvider) Name() string {
	return "aviationstack"
}

func (p *AviationStackProvider) SearchRoute(ctx context.Context, q models.RouteQuery, limit int) ([]models.FlightCandidate, error) {
	params := url.Values{}
	params.Set("dep_iata", q.Origin)
	params.Set("arr_iata", q.Destination)
	params.Set("limit", strconv.Itoa(requestLimit))
	if d := upstreamDate(q.Date); d != "" {
		params.Set("flight_date", d)
	}

	rows, err := p.fetch(ctx, params)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	flights := make([]models.FlightCandidate, 0, len(rows))
	for _, f := range rows {
		flights = append(flights, p.normalize(f, q))
	}
	return flights, nil
}

func (p *AviationStackProvider) FlightStatus(ctx context.Context, flightNumber, date string) (*models.FlightStatus, error) {
	params := url.Values{}
	params.Set("flight_iata", strings.ToUpper(strings.TrimSpace(flightNumber)))
	if d := upstreamDate(date); d != "" {
		params.Set("flight_date", d)
	}

	rows, err := p.fetch(ctx, params)
	if err != nil {
		return nil, err
	}

	f := rows[0]
	status := &models.FlightStatus{
		FlightNumber:     firstNonEmpty(f.Flight.IATA, strings.ToUpper(flightNumber)),
		Airline:          firstNonEmpty(f.Airline.Name, "Unknown"),
		Status:           firstNonEmpty(f.FlightStatus, "scheduled"),
		DepartureAirport: firstNonEmpty(f.Departure.Airport, f.Departure.IATA),
		DepartureLabel:   schedule.Label(f.Departure.Scheduled, "N/A"),
		ArrivalAirport:   firstNonEmpty(f.Arrival.Airport, f.Arrival.IATA),
		ArrivalLabel:     schedule.Label(f.Arrival.Scheduled, "N/A"),
		Source:           models.SourceLive,
	}
	return status, nil
}

// fetch performs exactly one request. Any transport, status or decode
// failure is returned as a ProviderError; zero rows as ErrNoFlights.
func (p *AviationStackProvider) fetch(ctx context.Context, params url.Values) ([]aviationstackFlight, error) {
	params.Set("access_key", p.apiKey)
	if params.Get("limit") == "" {
		params.Set("limit", "1")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/flights?"+params.Encode(), nil)
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, NewProviderError(p.Name(), redact(err, p.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, NewProviderError(p.Name(), &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		})
	}

	var out aviationstackResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, NewProviderError(p.Name(), err)
	}
	if out.Error != nil {
		return nil, NewProviderError(p.Name(), out.Error)
	}
	if len(out.Data) == 0 {
		return nil, NewProviderError(p.Name(), ErrNoFlights)
	}
	return out.Data, nil
}

func (p *AviationStackProvider) normalize(f aviationstackFlight, q models.RouteQuery) models.FlightCandidate {
	return models.FlightCandidate{
		Airline:          firstNonEmpty(f.Airline.Name, "Unknown"),
		FlightNumber:     firstNonEmpty(f.Flight.IATA, f.Airline.IATA+f.Flight.Number),
		DepartureAirport: firstNonEmpty(f.Departure.IATA, q.Origin),
		ArrivalAirport:   firstNonEmpty(f.Arrival.IATA, q.Destination),
		DepartureLabel:   schedule.Label(f.Departure.Scheduled, "N/A"),
		ArrivalLabel:     schedule.Label(f.Arrival.Scheduled, "N/A"),
		Status:           firstNonEmpty(f.FlightStatus, "scheduled"),
		Source:           models.SourceLive,
	}
}

func upstreamDate(date string) string {
	date = strings.TrimSpace(date)
	if strings.EqualFold(date, models.AnyDate) {
		return ""
	}
	return date
}

// redact strips the access key from transport errors, which embed the URL.
func redact(err error, key string) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = strings.ReplaceAll(uerr.URL, key, "REDACTED")
	}
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
