package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_StatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewBadRequestError("bad"), http.StatusBadRequest},
		{NewRestaurantNotFoundError("x"), http.StatusNotFound},
		{NewMenuItemNotFoundError("x"), http.StatusNotFound},
		{NewNoPairingsError("x"), http.StatusUnprocessableEntity},
		{NewTooManyRequestsError(), http.StatusTooManyRequests},
		{NewInvalidMenuError("x", nil), http.StatusInternalServerError},
		{NewInternalError(""), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk on fire")
	wrapped := Wrap(cause, "menu load failed")

	assert.Equal(t, CodeInternal, wrapped.Code)
	assert.ErrorIs(t, wrapped, cause)
	assert.Nil(t, Wrap(nil, "x"))

	notFound := NewRestaurantNotFoundError("nowhere")
	outer := fmt.Errorf("handler: %w", notFound)
	assert.Same(t, notFound, Wrap(outer, "ignored"))
	assert.Equal(t, "nowhere", notFound.Metadata["restaurant_id"])
}

func TestFromValidator(t *testing.T) {
	type body struct {
		ItemID      string `validate:"required"`
		DiningStyle string `validate:"oneof=romantic casual"`
	}

	err := validator.New().Struct(body{DiningStyle: "brunch"})
	require.Error(t, err)

	appErr := FromValidator(err)
	assert.Equal(t, CodeValidationFailed, appErr.Code)

	errs, ok := appErr.Metadata["validation_errors"].(ValidationErrors)
	require.True(t, ok)
	require.Len(t, errs, 2)
	assert.Equal(t, "ItemID is required", errs[0].Message)
	assert.Equal(t, "DiningStyle must be one of: romantic casual", errs[1].Message)
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(NewMenuItemNotFoundError("main-venison"), "req-1")

	assert.Equal(t, CodeMenuItemNotFound, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.NotEmpty(t, resp.Error.Timestamp)
	assert.False(t, resp.Success)
}
