package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alchemorsel/menupairing/internal/infrastructure/ai/ollama"
	"github.com/alchemorsel/menupairing/internal/infrastructure/ai/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewBackend_ProviderSelection(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("no key means disabled", func(t *testing.T) {
		b, err := NewBackend(ProviderConfig{}, logger)
		require.NoError(t, err)
		assert.Nil(t, b.Client)
		assert.False(t, b.Enabled)
		assert.Equal(t, ProviderNone, b.Health.CheckHealth(context.Background()).Provider)
	})

	t.Run("key selects openai", func(t *testing.T) {
		b, err := NewBackend(ProviderConfig{OpenAI: openai.Config{APIKey: "sk-test"}}, logger)
		require.NoError(t, err)
		require.NotNil(t, b.Client)
		assert.IsType(t, &BreakerClient{}, b.Client)

		status := b.Health.CheckHealth(context.Background())
		assert.Equal(t, ProviderOpenAI, status.Provider)
		assert.Equal(t, "closed", status.Breaker)
		assert.True(t, status.Healthy)
	})

	t.Run("openai without key is disabled", func(t *testing.T) {
		b, err := NewBackend(ProviderConfig{Provider: "openai"}, logger)
		require.NoError(t, err)
		assert.Nil(t, b.Client)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewBackend(ProviderConfig{Provider: "bard"}, logger)
		assert.Error(t, err)
	})
}

func TestHealthChecker_Ollama(t *testing.T) {
	var unhealthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if unhealthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	b, err := NewBackend(ProviderConfig{
		Provider: "Ollama",
		Ollama:   ollama.Config{BaseURL: server.URL},
		Breaker:  DefaultBreakerConfig(),
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, b.Enabled)

	assert.True(t, b.Health.CheckHealth(context.Background()).Healthy)

	unhealthy.Store(true)
	status := b.Health.CheckHealth(context.Background())
	assert.False(t, status.Healthy)
	assert.NotEmpty(t, status.Details)
}
