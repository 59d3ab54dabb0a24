// Package container provides dependency injection using Uber FX
package container

import (
	"context"

	"github.com/alchemorsel/menupairing/internal/application/pairing"
	"github.com/alchemorsel/menupairing/internal/infrastructure/ai"
	"github.com/alchemorsel/menupairing/internal/infrastructure/ai/ollama"
	"github.com/alchemorsel/menupairing/internal/infrastructure/ai/openai"
	"github.com/alchemorsel/menupairing/internal/infrastructure/config"
	"github.com/alchemorsel/menupairing/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/menupairing/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/menupairing/internal/infrastructure/monitoring"
	"github.com/alchemorsel/menupairing/internal/infrastructure/persistence/filesystem"
	"github.com/alchemorsel/menupairing/internal/ports/inbound"
	"github.com/alchemorsel/menupairing/internal/ports/outbound"
	"github.com/alchemorsel/menupairing/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// ConfigPath is the optional config file location; empty searches the defaults
type ConfigPath string

// Module wires the full API server
func Module(configPath string) fx.Option {
	return fx.Options(
		CoreModule(configPath),
		HTTPModule,
		LifecycleModule,
	)
}

// CoreModule wires everything needed to compute pairings, without HTTP
func CoreModule(configPath string) fx.Option {
	return fx.Options(
		fx.Supply(ConfigPath(configPath)),
		ConfigModule,
		LoggerModule,
		MonitoringModule,
		PersistenceModule,
		AIModule,
		ServiceModule,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx").WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
	)
}

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
			OutputPaths: cfg.App.LogOutput,
			Service:     cfg.App.Name,
		})
	},
)

// MonitoringModule provides metrics and tracing
var MonitoringModule = fx.Provide(
	monitoring.NewMetricsCollector,
	fx.Annotate(
		func(m *monitoring.MetricsCollector) *monitoring.MetricsCollector { return m },
		fx.As(new(outbound.PairingMetrics)),
	),
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		tp, err := monitoring.NewTracingProvider(monitoring.TracingConfig{
			Enabled:        cfg.Monitoring.EnableTracing,
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			Endpoint:       cfg.Monitoring.OTLPEndpoint,
			SamplingRate:   cfg.Monitoring.SamplingRate,
		}, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: tp.Shutdown})
		return tp, nil
	},
)

// PersistenceModule provides the menu source
var PersistenceModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (outbound.MenuSource, error) {
		repo, err := filesystem.NewMenuRepository(filesystem.Config{
			Dir:   cfg.Menu.Dir,
			Watch: cfg.Menu.Watch,
		}, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return repo.Close()
			},
		})
		return repo, nil
	},
)

// AIModule provides the completion backend
var AIModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*ai.Backend, error) {
		return ai.NewBackend(AIProviderConfig(cfg), log)
	},
)

// AIProviderConfig maps application config onto the backend settings
func AIProviderConfig(cfg *config.Config) ai.ProviderConfig {
	return ai.ProviderConfig{
		Provider: cfg.AI.Provider,
		OpenAI: openai.Config{
			APIKey:  cfg.AI.OpenAIKey,
			BaseURL: cfg.AI.BaseURL,
			Timeout: cfg.AI.Timeout,
		},
		Ollama: ollama.Config{
			BaseURL: cfg.AI.OllamaHost,
			Model:   cfg.AI.OllamaModel,
			Timeout: cfg.AI.Timeout,
		},
		Breaker: ai.BreakerConfig{
			Name:             "completion-backend",
			FailureThreshold: cfg.Breaker.FailureThreshold,
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
		},
	}
}

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(
		cfg *config.Config,
		backend *ai.Backend,
		menus outbound.MenuSource,
		metrics outbound.PairingMetrics,
		log *zap.Logger,
	) inbound.PairingService {
		var client outbound.CompletionClient
		if backend.Enabled {
			client = backend.Client
		}
		return pairing.NewService(client, menus, metrics, pairing.Config{
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.MaxTokens,
			FailOnEmpty: cfg.Pairing.FailOnEmpty,
		}, log)
	},
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	handlers.NewPairingHandlers,
	func(
		cfg *config.Config,
		log *zap.Logger,
		h *handlers.PairingHandlers,
		metrics *monitoring.MetricsCollector,
		backend *ai.Backend,
		tracing *monitoring.TracingProvider,
	) (*apiserver.Server, error) {
		return apiserver.NewServer(cfg, log, h, metrics, backend.Health, tracing)
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	backend *ai.Backend,
	server *apiserver.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting MenuPairing application",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("menu_dir", cfg.Menu.Dir),
				zap.Bool("ai_enabled", backend.Enabled),
			)

			go func() {
				if err := server.Start(); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down MenuPairing application")

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
