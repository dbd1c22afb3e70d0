package bind_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/bind"
)

type statusInput struct {
	Status string `json:"status" validate:"required"`
}

func TestJSONValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":""}`))

	var in statusInput
	errs, err := bind.JSON(req, &in)
	require.NoError(t, err)
	assert.Contains(t, errs, "status")
}

func TestDecodeRejectsOversizedBody(t *testing.T) {
	config.Set("MAX_BODY_BYTES", "16")
	t.Cleanup(func() { config.Set("MAX_BODY_BYTES", "") })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"`+strings.Repeat("x", 64)+`"}`))
	var in statusInput
	err := bind.Decode(req, &in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
