package di

import (
	"fmt"

	"BarPull/internal/domain/repository"
	"BarPull/internal/handler/api"
	"BarPull/internal/service/fmp"
	"BarPull/internal/service/indicator"
	"BarPull/internal/service/ratelimit"
	"BarPull/internal/usecase"
	"BarPull/pkg/cache"
	"BarPull/pkg/config"
	xhttp "BarPull/pkg/http"
	"BarPull/pkg/logger"
	"BarPull/pkg/metrics"
	"BarPull/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideLimiter creates the shared upstream rate limiter.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideFMPClient creates the market data provider client.
func ProvideFMPClient(cfg *config.Config, limiter *ratelimit.Limiter, m repository.Metrics, l *logger.Logger) *fmp.Client {
	opts := []fmp.ClientOption{
		fmp.WithTimeout(cfg.FMP.Timeout),
		fmp.WithExtendedHours(cfg.FMP.ExtendedHours),
		fmp.WithMetrics(m),
		fmp.WithLogger(l),
	}
	if cfg.FMP.RateLimit.Capacity > 0 {
		opts = append(opts, fmp.WithRateLimit(limiter, cfg.FMP.RateLimit.Capacity, cfg.FMP.RateLimit.RefillPerSec))
	}
	return fmp.New(cfg.FMP.APIKey, cfg.FMP.BaseURL, opts...)
}

// ProvideSymbolCache creates the cache backing symbol listings. Redis when
// configured, in-process memory otherwise. Returns nil when symbol
// resolution is disabled; nothing else caches.
func ProvideSymbolCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Symbols.Resolve {
		return nil, nil
	}
	if cfg.Symbols.Redis.Enabled {
		c, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Symbols.Redis.Host, cfg.Symbols.Redis.Port),
			cache.WithRedisAuth(cfg.Symbols.Redis.Password, cfg.Symbols.Redis.DB),
			cache.WithRedisPrefix("barpull"),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideDirectory creates the symbol directory, or nil when resolution
// is disabled (requests must then carry an explicit asset type).
func ProvideDirectory(cfg *config.Config, client *fmp.Client, cacheSvc cache.Service) repository.SymbolDirectory {
	if !cfg.Symbols.Resolve {
		return nil
	}
	return fmp.NewDirectory(client, cacheSvc, cfg.Symbols.CacheTTL)
}

// ProvideIndicatorEngine creates the technical indicator engine.
func ProvideIndicatorEngine() *indicator.Engine {
	return indicator.NewEngine()
}

// ProvideBarsUseCase creates the bar retrieval use case.
func ProvideBarsUseCase(client *fmp.Client, m repository.Metrics, l *logger.Logger, cfg *config.Config) *usecase.BarsUseCase {
	return usecase.NewBarsUseCase(client, m, l, cfg.Retrieval.Mode, cfg.Retrieval.Workers)
}

// ProvideIndicatorsUseCase creates the indicator computation use case.
func ProvideIndicatorsUseCase(bars *usecase.BarsUseCase, engine *indicator.Engine) *usecase.IndicatorsUseCase {
	return usecase.NewIndicatorsUseCase(bars, engine)
}

// ProvideBarsHandler creates the HTTP handler for the data endpoints.
func ProvideBarsHandler(l *logger.Logger, bars *usecase.BarsUseCase, indicators *usecase.IndicatorsUseCase, dir repository.SymbolDirectory) xhttp.Handler {
	return api.NewBarsHandler(l, bars, indicators, dir)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *logger.Logger, handler xhttp.Handler, cacheSvc cache.Service) *server.App {
	return server.New(cfg, l, handler, cacheSvc)
}
