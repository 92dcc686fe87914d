package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/charterquote/quoteengine/internal/airports"
	"github.com/charterquote/quoteengine/internal/cache"
	"github.com/charterquote/quoteengine/internal/engine"
	"github.com/charterquote/quoteengine/internal/flighttime"
	"github.com/charterquote/quoteengine/internal/handler"
	"github.com/charterquote/quoteengine/internal/knobs"
	"github.com/charterquote/quoteengine/internal/models"
	"github.com/charterquote/quoteengine/internal/observability"
	"github.com/charterquote/quoteengine/internal/ratelimit"
)

// builtinKnobs selects the compiled-in default configuration.
const builtinKnobs = "builtin"

type Config struct {
	Port             string
	CacheEnabled     bool
	RedisHost        string
	RedisPort        string
	RedisTTL         time.Duration
	FlightTimeURL    string
	FlightTimeAPIKey string
	FlightTimeTO     time.Duration
	FlightTimeRPS    float64
	FlightTimeBurst  int
	FlightTimeModels string
	DefaultKnobsFile string
	QuoteTimeout     time.Duration
}

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(loadConfig(), logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg Config, logger *zap.Logger) error {
	registry, err := airports.Default()
	if err != nil {
		return err
	}
	logger.Info("airport registry loaded", zap.Int("airports", registry.Len()))

	var (
		estimateCache cache.Cache
		pinger        handler.Pinger
	)
	if cfg.CacheEnabled {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host: cfg.RedisHost,
			Port: cfg.RedisPort,
			TTL:  cfg.RedisTTL,
		})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisCache.Close()
		estimateCache = redisCache
		pinger = redisCache
		logger.Info("redis estimate cache enabled",
			zap.String("addr", cfg.RedisHost+":"+cfg.RedisPort),
			zap.Duration("ttl", cfg.RedisTTL),
		)
	} else {
		estimateCache = cache.NewNoOpCache()
		logger.Info("estimate cache disabled")
	}

	modelsByCategory, err := parseModels(cfg.FlightTimeModels)
	if err != nil {
		return err
	}

	var remote flighttime.Remote
	if cfg.FlightTimeURL != "" {
		remote = flighttime.NewClient(cfg.FlightTimeURL,
			flighttime.WithAPIKey(cfg.FlightTimeAPIKey),
			flighttime.WithHTTPClient(&http.Client{Timeout: cfg.FlightTimeTO}),
		)
		logger.Info("flight time service configured", zap.String("url", cfg.FlightTimeURL))
	} else {
		logger.Warn("FLIGHT_TIME_BASE_URL not set; estimating from great-circle distance")
	}

	estimator := flighttime.NewService(remote, flighttime.Config{
		Timeout:          cfg.FlightTimeTO,
		ModelsByCategory: modelsByCategory,
		Cache:            estimateCache,
		RateLimiter:      newLimiter(cfg),
		Logger:           logger,
	})

	defaultKnobs, err := loadDefaultKnobs(cfg.DefaultKnobsFile)
	if err != nil {
		return err
	}
	if defaultKnobs != nil {
		logger.Info("default knobs loaded", zap.String("source", cfg.DefaultKnobsFile))
	}

	eng := engine.New(engine.Deps{
		Estimator: estimator,
		Registry:  registry,
		Logger:    logger,
	})
	quoteHandler := handler.NewQuoteHandler(eng, handler.Config{
		DefaultKnobs: defaultKnobs,
		Timeout:      cfg.QuoteTimeout,
		Logger:       logger,
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(observability.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api := e.Group("/api/v1")
	api.POST("/quotes", quoteHandler.Quote)
	api.POST("/quotes/compare", quoteHandler.Compare)
	e.GET("/health", handler.HealthHandler(pinger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting quote engine server", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func loadConfig() Config {
	return Config{
		Port:             getEnv("PORT", "8080"),
		CacheEnabled:     getEnvBool("CACHE_ENABLED", false),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		RedisTTL:         getEnvDuration("REDIS_TTL", 24*time.Hour),
		FlightTimeURL:    getEnv("FLIGHT_TIME_BASE_URL", ""),
		FlightTimeAPIKey: getEnv("FLIGHT_TIME_API_KEY", ""),
		FlightTimeTO:     getEnvDuration("FLIGHT_TIME_TIMEOUT", 10*time.Second),
		FlightTimeRPS:    getEnvFloat("FLIGHT_TIME_RPS", 5),
		FlightTimeBurst:  int(getEnvFloat("FLIGHT_TIME_BURST", 10)),
		FlightTimeModels: getEnv("FLIGHT_TIME_MODELS", ""),
		DefaultKnobsFile: getEnv("DEFAULT_KNOBS_FILE", ""),
		QuoteTimeout:     getEnvDuration("QUOTE_TIMEOUT", 15*time.Second),
	}
}

// newLimiter starts from the default budget and overrides the flight time
// upstream with the configured rate.
func newLimiter(cfg Config) *ratelimit.UpstreamLimiter {
	limiter := ratelimit.NewUpstreamLimiterWithDefaults()
	limiter.SetUpstreamLimit(flighttime.Upstream, cfg.FlightTimeRPS, cfg.FlightTimeBurst)
	return limiter
}

// loadDefaultKnobs returns nil when no default is configured, so requests
// without knobs are refused.
func loadDefaultKnobs(source string) (*models.Knobs, error) {
	switch source {
	case "":
		return nil, nil
	case builtinKnobs:
		k := knobs.Default()
		return &k, nil
	}
	k, err := knobs.Load(source)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// parseModels reads "CAT5=model-a,model-b;CAT6=model-c" into candidate
// aircraft models per category.
func parseModels(value string) (map[models.Category][]string, error) {
	out := map[models.Category][]string{}
	for _, entry := range strings.Split(value, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		cat, list, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("FLIGHT_TIME_MODELS: entry %q has no '='", entry)
		}
		category := models.Category(strings.ToUpper(strings.TrimSpace(cat)))
		if !category.Valid() {
			return nil, fmt.Errorf("FLIGHT_TIME_MODELS: unknown category %q", cat)
		}
		for _, id := range strings.Split(list, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out[category] = append(out[category], id)
			}
		}
	}
	return out, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
