package discount

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/truck-orders/internal/domain/order"
)

// DefaultHolidayRate is the holiday discount applied when none is configured.
var DefaultHolidayRate = decimal.RequireFromString("0.05")

var _ order.DiscountCalculator = (*Holiday)(nil)

// Holiday grants Rate off the subtotal of every order while its window is
// open. The window is checked once, when the strategy is built, so a Holiday
// value always returns the same discount for the same order.
type Holiday struct {
	rate   decimal.Decimal
	active bool
}

// NewHoliday creates a Holiday strategy. A nil from or until leaves that side
// of the window open.
func NewHoliday(rate decimal.Decimal, from, until *time.Time, now time.Time) (*Holiday, error) {
	if err := checkRate(rate); err != nil {
		return nil, errors.Wrap(err, "holiday")
	}
	if from != nil && until != nil && until.Before(*from) {
		return nil, errors.Errorf("holiday window ends (%s) before it starts (%s)",
			until.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	active := true
	if from != nil && now.Before(*from) {
		active = false
	}
	if until != nil && now.After(*until) {
		active = false
	}
	return &Holiday{rate: rate, active: active}, nil
}

// Active reports whether the holiday window was open when h was built.
func (h *Holiday) Active() bool {
	return h.active
}

// CalculateDiscount returns BasePrice * Quantity * Rate while active.
func (h *Holiday) CalculateDiscount(o *order.Order) (decimal.Decimal, error) {
	if o == nil {
		return zero, order.ErrNilOrder
	}
	if !h.active {
		return zero, nil
	}
	return o.Subtotal().Mul(h.rate), nil
}
