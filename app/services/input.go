package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// Field is a request value that remembers whether its key was present.
// A present field with an empty or null value is distinct from an absent
// one: partial updates only touch present fields.
type Field[T any] struct {
	Value T
	Set   bool
}

// Some returns a present field holding v.
func Some[T any](v T) Field[T] { return Field[T]{Value: v, Set: true} }

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Scalar is raw text for a value that arrives as a JSON string, number or
// bool, or as a form field. Coercion to the target type happens in the
// service so that "abc" for a price is an input error, not a decode error.
type Scalar string

func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*s = ""
	case b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Scalar(str)
	case b[0] == '{' || b[0] == '[':
		return fmt.Errorf("expected a scalar, got %s", b)
	default:
		*s = Scalar(b)
	}
	return nil
}

// ProductInput carries the writable product fields. On create, Name and
// Price are required; on update, absent fields keep their stored value.
type ProductInput struct {
	Name        Field[string] `json:"name"`
	Description Field[string] `json:"description"`
	Price       Field[Scalar] `json:"price"`
	Stock       Field[Scalar] `json:"stock"`
	// ImageURL is an externally hosted image. An uploaded file wins over it.
	ImageURL Field[string] `json:"image_url"`
}

// Empty reports whether no field is present.
func (in ProductInput) Empty() bool {
	return !in.Name.Set && !in.Description.Set && !in.Price.Set && !in.Stock.Set && !in.ImageURL.Set
}

// Upload is a product image received from the client.
type Upload struct {
	Filename string
	// Size is the declared size, or -1 when unknown. The reader is still
	// capped, so a wrong declaration cannot bypass the limit.
	Size    int64
	Content io.Reader
}

// OrderItemInput is one line of an order request. UnitPrice is trusted as
// sent and frozen into the order; it is never re-read from the catalog.
type OrderItemInput struct {
	ProductID   uint                `json:"product_id" validate:"required"`
	ProductName string              `json:"product_name" validate:"nullable,max=255"`
	UnitPrice   decimal.NullDecimal `json:"product_price"`
	Quantity    int                 `json:"quantity" validate:"required,gte=1"`
}

// OrderInput is a create-order request. Subtotal, Shipping and Total are
// caller-computed; missing ones are derived from the items.
type OrderInput struct {
	OrderNumber     string              `json:"order_number" validate:"required,max=64"`
	CustomerName    string              `json:"customer_name" validate:"required,max=255"`
	CustomerPhone   string              `json:"customer_phone" validate:"required,max=50"`
	CustomerEmail   string              `json:"customer_email" validate:"nullable,email,max=255"`
	CustomerAddress string              `json:"customer_address" validate:"required"`
	Notes           string              `json:"notes"`
	PaymentMethod   string              `json:"payment_method" validate:"nullable,in=cash,card,transfer"`
	Subtotal        decimal.NullDecimal `json:"subtotal"`
	Shipping        decimal.NullDecimal `json:"shipping"`
	Total           decimal.NullDecimal `json:"total"`
	Items           []OrderItemInput    `json:"items" validate:"required,min=1,dive"`
}

// OrderRef identifies a newly created order.
type OrderRef struct {
	ID          uint   `json:"id"`
	OrderNumber string `json:"order_number"`
}
