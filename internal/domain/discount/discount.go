// Package discount provides interchangeable discount strategies for truck
// orders. Exactly one strategy is applied per order; which one is chosen by
// the caller that wires the pipeline.
package discount

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/truck-orders/internal/domain/order"
)

// Strategy enumerates the supported discount policies.
type Strategy string

const (
	// StrategyFleet discounts large orders by a fixed rate.
	StrategyFleet Strategy = "fleet"
	// StrategyHoliday discounts every order by a rate during a holiday window.
	StrategyHoliday Strategy = "holiday"
	// StrategyNone never discounts.
	StrategyNone Strategy = "none"
)

var (
	// ErrUnknownStrategy is returned by New for an unsupported strategy name.
	ErrUnknownStrategy = errors.New("unknown discount strategy")
	// ErrInvalidRate is returned when a rate is outside [0, 1].
	ErrInvalidRate = errors.New("discount rate must be between 0 and 1")
)

var (
	zero = decimal.Zero
	one  = decimal.NewFromInt(1)
)

// Options holds the parameters of every strategy. Only the fields of the
// selected strategy are used.
type Options struct {
	FleetThreshold int
	FleetRate      decimal.Decimal

	HolidayRate  decimal.Decimal
	HolidayFrom  *time.Time
	HolidayUntil *time.Time
	// Now is consulted once when the holiday strategy is built.
	// Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the standard policy parameters: 10% off orders of
// more than 5 trucks, 5% holiday rate with an open window.
func DefaultOptions() Options {
	return Options{
		FleetThreshold: DefaultFleetThreshold,
		FleetRate:      DefaultFleetRate,
		HolidayRate:    DefaultHolidayRate,
		Now:            time.Now,
	}
}

// New returns the calculator for the named strategy.
func New(s Strategy, opts Options) (order.DiscountCalculator, error) {
	switch s {
	case StrategyFleet:
		f, err := NewFleet(opts.FleetThreshold, opts.FleetRate)
		if err != nil {
			return nil, err
		}
		return f, nil
	case StrategyHoliday:
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		h, err := NewHoliday(opts.HolidayRate, opts.HolidayFrom, opts.HolidayUntil, now())
		if err != nil {
			return nil, err
		}
		return h, nil
	case StrategyNone:
		return None{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownStrategy, "%q", s)
	}
}

// None is a strategy that never grants a discount.
type None struct{}

// CalculateDiscount returns zero for any non-nil order.
func (None) CalculateDiscount(o *order.Order) (decimal.Decimal, error) {
	if o == nil {
		return zero, order.ErrNilOrder
	}
	return zero, nil
}

func checkRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(one) {
		return errors.Wrapf(ErrInvalidRate, "got %s", rate)
	}
	return nil
}
