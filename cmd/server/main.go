package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dharmasatrya/flightlookup/internal/cache"
	"github.com/dharmasatrya/flightlookup/internal/config"
	"github.com/dharmasatrya/flightlookup/internal/fallback"
	"github.com/dharmasatrya/flightlookup/internal/handler"
	"github.com/dharmasatrya/flightlookup/internal/lookup"
	"github.com/dharmasatrya/flightlookup/internal/providers"
	"github.com/dharmasatrya/flightlookup/internal/ratelimit"
	"github.com/dharmasatrya/flightlookup/pkg/logger"
	"github.com/dharmasatrya/flightlookup/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("error").Fatal("Failed to load config", "error", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.NewMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)
	}

	flightCache, err := initializeCache(cfg)
	if err != nil {
		log.Fatal("Failed to initialize cache", "backend", cfg.CacheBackend, "error", err)
	}
	defer flightCache.Close()
	log.Info("Route cache ready", "backend", cfg.CacheBackend, "ttl", cfg.CacheTTL.String())

	limiter := ratelimit.NewUpstreamLimiter(ratelimit.Config{
		Default: ratelimit.Limit{RequestsPerSecond: cfg.UpstreamRPS, Burst: cfg.UpstreamBurst},
		Endpoints: map[string]ratelimit.Limit{
			ratelimit.EndpointStatus: {RequestsPerSecond: cfg.UpstreamStatusRPS, Burst: cfg.UpstreamStatusBurst},
		},
	})
	routeLimit, statusLimit := limiter.Limit(ratelimit.EndpointRoute), limiter.Limit(ratelimit.EndpointStatus)
	log.Info("Upstream quota",
		"route_rps", routeLimit.RequestsPerSecond, "route_burst", routeLimit.Burst,
		"status_rps", statusLimit.RequestsPerSecond, "status_burst", statusLimit.Burst)

	service := lookup.NewService(lookup.Dependency{
		Provider:   initializeProvider(cfg, log),
		Cache:      flightCache,
		Limiter:    limiter,
		Routes:     fallback.PopularRoutes,
		Timeout:    cfg.UpstreamTimeout,
		MaxFlights: lookup.DefaultMaxFlights,
		Logger:     log.With("component", "lookup"),
		Metrics:    m,
	})

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	toolHandler := handler.NewToolHandler(service)
	flightHandler := handler.NewFlightHandler(service)
	healthHandler := handler.NewHealthHandler(service, flightCache)

	api := e.Group("/api/v1")
	tools := api.Group("/tools")
	tools.POST("/get_live_flights", toolHandler.GetLiveFlights)
	tools.POST("/get_flight_status", toolHandler.GetFlightStatus)
	tools.POST("/search_airports", toolHandler.SearchAirports)

	api.GET("/flights", flightHandler.Flights)
	api.GET("/flights/:number/status", flightHandler.Status)
	api.GET("/airports", flightHandler.Airports)

	e.GET("/health", healthHandler.Health)
	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Starting flight lookup server", "port", cfg.Port, "upstream", service.HasUpstream())
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}

func initializeCache(cfg *config.Config) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			return nil, err
		}
		return redisCache, nil
	case config.CacheNone:
		return cache.NewNoOpCache(), nil
	default:
		return cache.NewMemoryCache(cfg.CacheTTL), nil
	}
}

// initializeProvider returns a nil interface, not a typed nil, when no key
// is configured.
func initializeProvider(cfg *config.Config, log logger.Logger) providers.Provider {
	p := providers.NewAviationStackProvider(cfg.AviationStackAPIKey, providers.WithBaseURL(cfg.AviationStackBaseURL))
	if p == nil {
		log.Warn("AVIATIONSTACK_API_KEY not set, serving fallback schedules only")
		return nil
	}
	log.Info("Upstream flight data enabled", "provider", p.Name())
	return p
}

func requestLogger(log logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				log.Error("request failed", append(fields, "error", v.Error)...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	})
}
