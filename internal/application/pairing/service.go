// Package pairing provides the application layer for menu pairing: it asks a
// generative backend for suggestions and falls back to deterministic rules.
package pairing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alchemorsel/menupairing/internal/domain/menu"
	"github.com/alchemorsel/menupairing/internal/domain/pairing"
	"github.com/alchemorsel/menupairing/internal/ports/inbound"
	"github.com/alchemorsel/menupairing/internal/ports/outbound"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// errNoCandidates short-circuits the backend when nothing could be suggested
var errNoCandidates = errors.New("no eligible candidates")

// Backend call outcomes reported to metrics
const (
	OutcomeSuccess         = "success"
	OutcomeError           = "error"
	OutcomeInvalidResponse = "invalid_response"
)

// Config holds the sampling settings sent to the backend
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
	// FailOnEmpty turns an empty suggestion list into ErrNoPairings
	FailOnEmpty bool
}

// DefaultConfig returns the settings the service was tuned with
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4",
		Temperature: 0.7,
		MaxTokens:   500,
	}
}

// Service implements inbound.PairingService
type Service struct {
	client  outbound.CompletionClient
	menus   outbound.MenuSource
	metrics outbound.PairingMetrics
	config  Config
	logger  *zap.Logger
	tracer  trace.Tracer
}

var _ inbound.PairingService = (*Service)(nil)

// NewService creates a pairing service. A nil client disables the backend
// and every request is served by the fallback rules.
func NewService(
	client outbound.CompletionClient,
	menus outbound.MenuSource,
	metrics outbound.PairingMetrics,
	config Config,
	logger *zap.Logger,
) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Service{
		client:  client,
		menus:   menus,
		metrics: metrics,
		config:  config,
		logger:  logger.Named("pairing"),
		tracer:  otel.Tracer("menupairing/pairing"),
	}
}

// Suggest computes pairings for the request. Backend problems never
// surface as errors; only invalid input does, plus ErrNoPairings when
// FailOnEmpty is set.
func (s *Service) Suggest(ctx context.Context, req pairing.Request) (*pairing.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "pairing.Suggest", trace.WithAttributes(
		attribute.String("pairing.item_id", req.Selected.ID()),
		attribute.String("pairing.dining_style", string(req.DiningStyle)),
		attribute.String("pairing.dietary", string(req.Dietary)),
	))
	defer span.End()

	candidates := req.Candidates()

	result := &pairing.Result{Source: pairing.SourceAI}
	suggestions, err := s.primary(ctx, req, candidates)
	if err != nil {
		s.logPrimaryFailure(req, err)
		result.Source = pairing.SourceFallback
		suggestions = pairing.Fallback(req.Selected.Category(), candidates)
	}
	result.Suggestions = suggestions

	span.SetAttributes(
		attribute.String("pairing.source", string(result.Source)),
		attribute.Int("pairing.candidates", len(candidates)),
		attribute.Int("pairing.suggestions", len(suggestions)),
	)
	s.metrics.ObservePairing(string(result.Source), len(suggestions))

	if len(suggestions) == 0 && s.config.FailOnEmpty {
		span.SetStatus(codes.Error, pairing.ErrNoPairings.Error())
		return nil, pairing.ErrNoPairings
	}

	return result, nil
}

// SuggestForRestaurant resolves the restaurant and item before pairing
func (s *Service) SuggestForRestaurant(ctx context.Context, cmd inbound.SuggestCommand) (*pairing.Result, error) {
	snapshot, err := s.Menu(ctx, cmd.RestaurantID)
	if err != nil {
		return nil, err
	}

	selected, err := snapshot.Menu.FindByID(cmd.ItemID)
	if err != nil {
		return nil, err
	}

	return s.Suggest(ctx, pairing.Request{
		Selected:    selected,
		DiningStyle: cmd.DiningStyle,
		Dietary:     cmd.Dietary,
		Menu:        snapshot.Menu,
		Restaurant:  snapshot.Restaurant,
	})
}

// Menu returns the snapshot of a restaurant
func (s *Service) Menu(ctx context.Context, restaurantID string) (*menu.Snapshot, error) {
	if s.menus == nil {
		return nil, fmt.Errorf("%w: no menu source configured", outbound.ErrRestaurantNotFound)
	}
	return s.menus.Load(ctx, restaurantID)
}

// primary makes at most one backend call and returns its validated result
func (s *Service) primary(ctx context.Context, req pairing.Request, candidates []*menu.MenuItem) ([]pairing.Suggestion, error) {
	if s.client == nil {
		return nil, outbound.ErrBackendDisabled
	}
	if len(candidates) == 0 {
		return nil, errNoCandidates
	}

	ctx, span := s.tracer.Start(ctx, "pairing.backend")
	defer span.End()

	start := time.Now()
	content, err := s.client.Complete(ctx, outbound.CompletionRequest{
		Model:       s.config.Model,
		Messages:    BuildMessages(req, candidates),
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if err != nil {
		if !errors.Is(err, outbound.ErrBackendDisabled) {
			s.metrics.ObserveBackendCall(OutcomeError, time.Since(start))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "backend call failed")
		return nil, err
	}

	suggestions, err := MapResponse(content, candidates)
	if err != nil {
		s.metrics.ObserveBackendCall(OutcomeInvalidResponse, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid backend response")
		return nil, err
	}

	s.metrics.ObserveBackendCall(OutcomeSuccess, time.Since(start))
	return suggestions, nil
}

func (s *Service) logPrimaryFailure(req pairing.Request, err error) {
	fields := []zap.Field{
		zap.String("item_id", req.Selected.ID()),
		zap.String("dining_style", string(req.DiningStyle)),
		zap.String("dietary", string(req.Dietary)),
		zap.Error(err),
	}

	switch {
	case errors.Is(err, outbound.ErrBackendDisabled), errors.Is(err, errNoCandidates):
		s.logger.Debug("Using rule-based pairings", fields...)
	default:
		s.logger.Warn("AI pairing generation failed, using rule-based pairings", fields...)
	}
}

type nopMetrics struct{}

func (nopMetrics) ObservePairing(string, int)               {}
func (nopMetrics) ObserveBackendCall(string, time.Duration) {}
