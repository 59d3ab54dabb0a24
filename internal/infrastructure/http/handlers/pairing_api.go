// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alchemorsel/menupairing/internal/domain/menu"
	"github.com/alchemorsel/menupairing/internal/domain/pairing"
	"github.com/alchemorsel/menupairing/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/menupairing/internal/ports/inbound"
	"github.com/alchemorsel/menupairing/internal/ports/outbound"
	apperrors "github.com/alchemorsel/menupairing/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxBodyBytes bounds the pairing request body
const maxBodyBytes = 64 << 10

// PairingHandlers handles the restaurant menu and pairing endpoints
type PairingHandlers struct {
	service   inbound.PairingService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPairingHandlers creates a new pairing handlers instance
func NewPairingHandlers(
	service inbound.PairingService,
	logger *zap.Logger,
) *PairingHandlers {
	return &PairingHandlers{
		service:   service,
		validator: validator.New(),
		logger:    logger.Named("pairing-api"),
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool                    `json:"success"`
	Data    interface{}             `json:"data,omitempty"`
	Error   *apperrors.ErrorDetails `json:"error,omitempty"`
	Message string                  `json:"message,omitempty"`
}

// PairingRequest is the body of POST /api/v1/restaurants/{id}/pairings.
// Empty style and preference default to casual and all.
type PairingRequest struct {
	ItemID            string `json:"item_id" validate:"required,max=128"`
	DiningStyle       string `json:"dining_style" validate:"omitempty,oneof=romantic casual business celebration quick"`
	DietaryPreference string `json:"dietary_preference" validate:"omitempty,oneof=vegetarian adventurous all"`
}

// Routes mounts the handlers under a restaurant-scoped router
func (h *PairingHandlers) Routes(r chi.Router, pairingMiddleware ...func(http.Handler) http.Handler) {
	r.Route("/restaurants/{restaurantID}", func(r chi.Router) {
		r.Get("/menu", h.GetMenu)
		r.With(pairingMiddleware...).Post("/pairings", h.CreatePairing)
	})
}

// GetMenu handles GET /api/v1/restaurants/{restaurantID}/menu
func (h *PairingHandlers) GetMenu(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "restaurantID")

	snapshot, err := h.service.Menu(r.Context(), restaurantID)
	if err != nil {
		h.writeError(w, r, h.mapError(err, restaurantID, ""))
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    snapshot,
		Message: "Menu retrieved successfully",
	})
}

// CreatePairing handles POST /api/v1/restaurants/{restaurantID}/pairings
func (h *PairingHandlers) CreatePairing(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "restaurantID")

	var req PairingRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.writeError(w, r, apperrors.NewBadRequestError("Invalid JSON payload"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.writeError(w, r, apperrors.FromValidator(err))
		return
	}

	cmd := inbound.SuggestCommand{
		RestaurantID: restaurantID,
		ItemID:       req.ItemID,
		DiningStyle:  menu.DiningStyleCasual,
		Dietary:      menu.DietaryAll,
	}
	if req.DiningStyle != "" {
		cmd.DiningStyle = menu.DiningStyle(req.DiningStyle)
	}
	if req.DietaryPreference != "" {
		cmd.Dietary = menu.DietaryPreference(req.DietaryPreference)
	}

	result, err := h.service.SuggestForRestaurant(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, h.mapError(err, restaurantID, req.ItemID))
		return
	}

	h.logger.Info("Pairing generated",
		zap.String("restaurant_id", restaurantID),
		zap.String("item_id", req.ItemID),
		zap.String("source", string(result.Source)),
		zap.Int("suggestions", len(result.Suggestions)),
		zap.String("request_id", middleware.GetRequestID(r.Context())),
	)

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    result,
	})
}

// mapError translates service errors into API errors
func (h *PairingHandlers) mapError(err error, restaurantID, itemID string) *apperrors.AppError {
	switch {
	case errors.Is(err, outbound.ErrRestaurantNotFound):
		return apperrors.NewRestaurantNotFoundError(restaurantID).WithCause(err)
	case errors.Is(err, menu.ErrItemNotFound):
		return apperrors.NewMenuItemNotFoundError(itemID).WithCause(err)
	case errors.Is(err, pairing.ErrNoPairings):
		return apperrors.NewNoPairingsError(itemID).WithCause(err)
	case errors.Is(err, menu.ErrInvalidDiningStyle),
		errors.Is(err, menu.ErrInvalidDietaryPreference),
		errors.Is(err, pairing.ErrNoSelection):
		return apperrors.NewValidationError(err.Error()).WithCause(err)
	case errors.Is(err, outbound.ErrInvalidMenu):
		return apperrors.NewInvalidMenuError(restaurantID, err)
	default:
		return apperrors.Wrap(err, "Failed to generate pairings, please retry")
	}
}

// writeError logs server-side failures and writes the error envelope
func (h *PairingHandlers) writeError(w http.ResponseWriter, r *http.Request, appErr *apperrors.AppError) {
	requestID := middleware.GetRequestID(r.Context())
	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("code", string(appErr.Code)),
			zap.String("request_id", requestID),
			zap.Error(appErr.Cause),
		)
	}

	details := apperrors.ToErrorResponse(appErr, requestID).Error
	h.writeJSON(w, appErr.StatusCode(), APIResponse{
		Success: false,
		Error:   &details,
	})
}

// writeJSON writes a JSON response
func (h *PairingHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}
