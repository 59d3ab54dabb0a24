package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alchemorsel/menupairing/internal/infrastructure/ai/ollama"
	"github.com/alchemorsel/menupairing/internal/infrastructure/ai/openai"
	"github.com/alchemorsel/menupairing/internal/ports/outbound"
	"go.uber.org/zap"
)

// Supported providers
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderNone   = "none"
)

// ProviderConfig selects and configures the completion backend
type ProviderConfig struct {
	Provider string
	OpenAI   openai.Config
	Ollama   ollama.Config
	Breaker  BreakerConfig
}

// Backend is the selected completion client together with its health view
type Backend struct {
	Client  outbound.CompletionClient
	Health  *HealthChecker
	Enabled bool
}

// NewBackend builds the configured completion client wrapped in a circuit
// breaker. An empty provider picks OpenAI when a key is present. With no
// usable provider Client is nil and pairing runs on the fallback rules.
func NewBackend(cfg ProviderConfig, logger *zap.Logger) (*Backend, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderNone
		if cfg.OpenAI.APIKey != "" {
			provider = ProviderOpenAI
		}
	}

	health := &HealthChecker{provider: provider, logger: logger.Named("ai-health")}

	var client outbound.CompletionClient
	switch provider {
	case ProviderOpenAI:
		oc := openai.NewClient(cfg.OpenAI, logger)
		if !oc.Enabled() {
			logger.Warn("OpenAI provider selected without an API key, AI pairing disabled")
			health.provider = ProviderNone
			return &Backend{Health: health}, nil
		}
		client = oc
	case ProviderOllama:
		oc := ollama.NewClient(cfg.Ollama, logger)
		health.pinger = oc
		client = oc
	case ProviderNone:
		logger.Info("No AI provider configured, pairings will use rule-based fallback")
		return &Backend{Health: health}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}

	breaker := NewBreakerClient(client, cfg.Breaker, logger)
	health.breaker = breaker

	return &Backend{Client: breaker, Health: health, Enabled: true}, nil
}

// HealthStatus represents the health of the completion backend
type HealthStatus struct {
	Provider  string    `json:"provider"`
	Healthy   bool      `json:"healthy"`
	Breaker   string    `json:"breaker,omitempty"`
	Details   string    `json:"details,omitempty"`
	LastCheck time.Time `json:"last_check"`
}

// HealthChecker reports backend availability. An unavailable backend only
// degrades pairing to the fallback rules, so it never fails the service.
type HealthChecker struct {
	provider string
	breaker  *BreakerClient
	pinger   interface {
		HealthCheck(ctx context.Context) error
	}
	logger *zap.Logger
}

// CheckHealth inspects the breaker and, for local providers, pings the server
func (h *HealthChecker) CheckHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Provider:  h.provider,
		Healthy:   true,
		LastCheck: time.Now(),
	}

	if h.provider == ProviderNone {
		status.Details = "AI disabled, using rule-based pairings"
		return status
	}

	if h.breaker != nil {
		status.Breaker = h.breaker.State()
		if status.Breaker == "open" {
			status.Healthy = false
			status.Details = "circuit open"
		}
	}

	if h.pinger != nil {
		if err := h.pinger.HealthCheck(ctx); err != nil {
			status.Healthy = false
			status.Details = err.Error()
			h.logger.Warn("AI provider health check failed", zap.String("provider", h.provider), zap.Error(err))
		}
	}

	return status
}
