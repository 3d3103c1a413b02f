package ratelimit

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
)

const (
	EndpointRoute  = "route"
	EndpointStatus = "status"
)

var ErrQuotaExhausted = errors.New("upstream quota exhausted")

// QuotaError reports a Wait that could not get a token inside the caller's
// budget. It matches ErrQuotaExhausted under errors.Is.
type QuotaError struct {
	Endpoint string
	Err      error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s on %s endpoint: %v", ErrQuotaExhausted, e.Endpoint, e.Err)
}

func (e *QuotaError) Unwrap() error {
	return e.Err
}

func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExhausted
}

// Limit is one token bucket: a sustained rate plus the burst allowed on top.
type Limit struct {
	RequestsPerSecond float64
	Burst             int
}

func (l Limit) valid() bool {
	return l.RequestsPerSecond > 0 && l.Burst > 0
}

// DefaultLimit keeps well inside the aggregator's paid-plan quota.
var DefaultLimit = Limit{RequestsPerSecond: 5, Burst: 10}

// Config sets the bucket for each upstream endpoint. Endpoints without an
// entry, or with an unusable one, get Default.
type Config struct {
	Default   Limit
	Endpoints map[string]Limit
}

func DefaultConfig() Config {
	return Config{Default: DefaultLimit}
}

// UpstreamLimiter keeps calls to the flight-data aggregator inside its quota.
// The buckets are fixed at construction, so lookups never contend on a lock.
type UpstreamLimiter struct {
	buckets map[string]*rate.Limiter
	shared  *rate.Limiter
	limits  map[string]Limit
}

func NewUpstreamLimiter(config Config) *UpstreamLimiter {
	def := config.Default
	if !def.valid() {
		def = DefaultLimit
	}

	l := &UpstreamLimiter{
		buckets: make(map[string]*rate.Limiter),
		shared:  rate.NewLimiter(rate.Limit(def.RequestsPerSecond), def.Burst),
		limits:  map[string]Limit{"": def},
	}
	for _, endpoint := range []string{EndpointRoute, EndpointStatus} {
		l.add(endpoint, def)
	}
	for endpoint, limit := range config.Endpoints {
		if !limit.valid() {
			limit = def
		}
		l.add(endpoint, limit)
	}
	return l
}

func (l *UpstreamLimiter) add(endpoint string, limit Limit) {
	l.buckets[endpoint] = rate.NewLimiter(rate.Limit(limit.RequestsPerSecond), limit.Burst)
	l.limits[endpoint] = limit
}

// Limit reports the bucket an endpoint is held to. Unknown endpoints share
// one bucket at the default limit.
func (l *UpstreamLimiter) Limit(endpoint string) Limit {
	if limit, ok := l.limits[endpoint]; ok {
		return limit
	}
	return l.limits[""]
}

// Wait blocks until a token is available. It fails fast when the context
// deadline would pass before the token arrives, so a lookup never spends its
// upstream budget queueing. A nil limiter never blocks.
func (l *UpstreamLimiter) Wait(ctx context.Context, endpoint string) error {
	if l == nil {
		return nil
	}
	bucket, ok := l.buckets[endpoint]
	if !ok {
		bucket = l.shared
	}
	if err := bucket.Wait(ctx); err != nil {
		return &QuotaError{Endpoint: endpoint, Err: err}
	}
	return nil
}
