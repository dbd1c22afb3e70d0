package services

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductInputTracksPresence(t *testing.T) {
	var in ProductInput
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Lamp","price":12.5,"stock":"3","description":null}`), &in))

	assert.True(t, in.Name.Set)
	assert.Equal(t, "Lamp", in.Name.Value)
	assert.Equal(t, Scalar("12.5"), in.Price.Value)
	assert.Equal(t, Scalar("3"), in.Stock.Value)
	assert.True(t, in.Description.Set)
	assert.Empty(t, in.Description.Value)
	assert.False(t, in.ImageURL.Set)
	assert.False(t, in.Empty())

	var empty ProductInput
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.True(t, empty.Empty())
}

func TestScalarRejectsObjects(t *testing.T) {
	var in ProductInput
	assert.Error(t, json.Unmarshal([]byte(`{"price":{"amount":1}}`), &in))
}

func TestOrderInputDecodesDecimals(t *testing.T) {
	var in OrderInput
	require.NoError(t, json.Unmarshal([]byte(`{
		"order_number":"A-1","shipping":"2.5","total":null,
		"items":[{"product_id":1,"product_price":10.5,"quantity":3}]
	}`), &in))

	assert.True(t, in.Shipping.Valid)
	assert.Equal(t, "2.500", in.Shipping.Decimal.StringFixed(3))
	assert.False(t, in.Total.Valid)
	assert.False(t, in.Subtotal.Valid)
	require.Len(t, in.Items, 1)
	assert.True(t, in.Items[0].UnitPrice.Valid)
	assert.Equal(t, "10.500", in.Items[0].UnitPrice.Decimal.StringFixed(3))
}

func TestBuildOrderDerivesMissingAmounts(t *testing.T) {
	in := OrderInput{
		OrderNumber: "B-1", CustomerName: "Ann", CustomerPhone: "1", CustomerAddress: "x",
		PaymentMethod: " Card ",
		Items: []OrderItemInput{
			{ProductID: 1, UnitPrice: nullDec("1.25"), Quantity: 2},
			{ProductID: 2, UnitPrice: nullDec("0.333"), Quantity: 3},
		},
	}
	order, err := buildOrder(in)
	require.NoError(t, err)

	assert.Equal(t, "3.499", order.Subtotal.StringFixed(3))
	assert.Equal(t, "0.000", order.Shipping.StringFixed(3))
	assert.Equal(t, "3.499", order.Total.StringFixed(3))
	assert.EqualValues(t, "card", order.PaymentMethod)
	assert.Len(t, order.Items, 2)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}
