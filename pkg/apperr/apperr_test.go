package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/apperr"
)

func TestErrorMatchesSentinelByCode(t *testing.T) {
	err := fmt.Errorf("service: get: %w", apperr.NotFound("product", 3))

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NotErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Equal(t, "product 3 not found", apperr.From(err).Message)
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New(`pq: relation "orders" does not exist`)
	err := apperr.Internal("create order", cause)

	assert.Equal(t, "create order failed", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Message, "pq:")
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	got := apperr.From(errors.New("boom"))
	assert.Equal(t, apperr.CodeInternalFailure, got.Code)
	assert.Nil(t, apperr.From(nil))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		apperr.InvalidInput("bad", nil):       http.StatusUnprocessableEntity,
		apperr.InvalidStatus("lost"):          http.StatusUnprocessableEntity,
		apperr.NotFound("order", 1):           http.StatusNotFound,
		apperr.UnsupportedMediaType("no gif"): http.StatusUnsupportedMediaType,
		apperr.PayloadTooLarge(10):            http.StatusRequestEntityTooLarge,
		apperr.StorageUnavailable(nil):        http.StatusServiceUnavailable,
		errors.New("anything else"):           http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, apperr.HTTPStatus(err), err.Error())
	}
}
