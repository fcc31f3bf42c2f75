package discount

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/truck-orders/internal/domain/order"
)

// DefaultFleetThreshold is the largest order size that gets no fleet discount.
const DefaultFleetThreshold = 5

// DefaultFleetRate is the share of the subtotal taken off fleet orders.
var DefaultFleetRate = decimal.RequireFromString("0.10")

var _ order.DiscountCalculator = (*Fleet)(nil)

// Fleet grants Rate off the subtotal when more than Threshold trucks are
// ordered. An order of exactly Threshold trucks gets nothing.
type Fleet struct {
	threshold int
	rate      decimal.Decimal
}

// NewFleet creates a Fleet strategy.
func NewFleet(threshold int, rate decimal.Decimal) (*Fleet, error) {
	if threshold < 0 {
		return nil, errors.Errorf("fleet threshold must not be negative, got %d", threshold)
	}
	if err := checkRate(rate); err != nil {
		return nil, errors.Wrap(err, "fleet")
	}
	return &Fleet{threshold: threshold, rate: rate}, nil
}

// CalculateDiscount returns BasePrice * Quantity * Rate above the threshold.
func (f *Fleet) CalculateDiscount(o *order.Order) (decimal.Decimal, error) {
	if o == nil {
		return zero, order.ErrNilOrder
	}
	if o.Quantity <= f.threshold {
		return zero, nil
	}
	return o.Subtotal().Mul(f.rate), nil
}
