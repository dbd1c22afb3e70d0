package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasLocalImage(t *testing.T) {
	assert.True(t, Product{ImageRef: "1700000000000-ab12cd34ef56.png", ImageLocal: true}.HasLocalImage())
	assert.False(t, Product{ImageRef: "1700000000000-ab12cd34ef56.png"}.HasLocalImage(), "bare name without ownership")
	assert.False(t, Product{ImageRef: "https://cdn.example.com/a.png"}.HasLocalImage())
	assert.False(t, Product{ImageLocal: true}.HasLocalImage(), "no reference")
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range OrderStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("not-a-status").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, PaymentTransfer.Valid())
	assert.False(t, PaymentMethod("crypto").Valid())
}
