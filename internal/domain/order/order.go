package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNilOrder is returned when an operation that requires an order is
	// given nil. Reaching a discount strategy with a nil order is a
	// programming error: validation must run first.
	ErrNilOrder = errors.New("order is nil")
	// ErrDiscountOutOfRange is returned when a strategy produces a negative
	// discount or one larger than the order subtotal.
	ErrDiscountOutOfRange = errors.New("discount out of range")
)

// Order represents a truck purchase request with its computed pricing.
type Order struct {
	Model     string
	Quantity  int
	BasePrice decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
}

// Subtotal returns Quantity * BasePrice.
func (o *Order) Subtotal() decimal.Decimal {
	return o.BasePrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// Record is an order as stored by a Repository. Identity is assigned on save.
type Record struct {
	ID      uuid.UUID
	Order   Order
	SavedAt time.Time
}

// Validator reports whether an order may enter the pipeline.
type Validator interface {
	Validate(ctx context.Context, o *Order) bool
}

// DiscountCalculator computes the discount amount for a validated order.
type DiscountCalculator interface {
	CalculateDiscount(o *Order) (decimal.Decimal, error)
}

// Repository defines persistence operations for orders.
type Repository interface {
	Save(ctx context.Context, o *Order) error
}
