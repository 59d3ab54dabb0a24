package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alchemorsel/menupairing/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, req outbound.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func TestBreakerClient_TripsAfterConsecutiveFailures(t *testing.T) {
	next := new(MockCompletionClient)
	next.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("boom")).Times(2)

	client := NewBreakerClient(next, BreakerConfig{
		Name:             "test",
		FailureThreshold: 2,
		MaxRequests:      1,
		Timeout:          time.Hour,
	}, zaptest.NewLogger(t))

	for i := 0; i < 2; i++ {
		_, err := client.Complete(context.Background(), outbound.CompletionRequest{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}
	assert.Equal(t, "open", client.State())

	_, err := client.Complete(context.Background(), outbound.CompletionRequest{})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	next.AssertNumberOfCalls(t, "Complete", 2)
}

func TestBreakerClient_HalfOpenRecovers(t *testing.T) {
	next := new(MockCompletionClient)
	next.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("boom")).Once()
	next.On("Complete", mock.Anything, mock.Anything).Return("ok", nil).Once()

	client := NewBreakerClient(next, BreakerConfig{
		Name:             "test",
		FailureThreshold: 1,
		MaxRequests:      1,
		Timeout:          10 * time.Millisecond,
	}, zaptest.NewLogger(t))

	_, err := client.Complete(context.Background(), outbound.CompletionRequest{})
	require.Error(t, err)
	assert.Equal(t, "open", client.State())

	time.Sleep(20 * time.Millisecond)

	content, err := client.Complete(context.Background(), outbound.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", content)
	assert.Equal(t, "closed", client.State())
}

func TestBreakerClient_DisabledBackendDoesNotTrip(t *testing.T) {
	next := new(MockCompletionClient)
	next.On("Complete", mock.Anything, mock.Anything).Return("", outbound.ErrBackendDisabled)

	client := NewBreakerClient(next, BreakerConfig{Name: "test", FailureThreshold: 1, Timeout: time.Hour}, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		_, err := client.Complete(context.Background(), outbound.CompletionRequest{})
		assert.ErrorIs(t, err, outbound.ErrBackendDisabled)
	}
	assert.Equal(t, "closed", client.State())
	next.AssertNumberOfCalls(t, "Complete", 3)
}
