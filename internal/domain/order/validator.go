package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Sentinel errors for order validation rules.
var (
	ErrBlankModel      = errors.New("model name required")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrInvalidPrice    = errors.New("base price must be greater than 0")
)

// RuleError names the validation rule an order failed.
type RuleError struct {
	Rule string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

var _ Validator = (*RuleValidator)(nil)

// RuleValidator implements Validator with the structural order rules.
type RuleValidator struct{}

// NewRuleValidator creates a RuleValidator.
func NewRuleValidator() *RuleValidator {
	return &RuleValidator{}
}

// Check returns a *RuleError for the first rule the order fails, or nil.
func (v *RuleValidator) Check(o *Order) error {
	switch {
	case o == nil:
		return &RuleError{Rule: "present", Err: ErrNilOrder}
	case strings.TrimSpace(o.Model) == "":
		return &RuleError{Rule: "model", Err: ErrBlankModel}
	case o.Quantity <= 0:
		return &RuleError{Rule: "quantity", Err: ErrInvalidQuantity}
	case !o.BasePrice.IsPositive():
		return &RuleError{Rule: "base_price", Err: ErrInvalidPrice}
	}
	return nil
}

// Validate reports whether the order passes every rule. Invalid orders are
// an expected outcome: the failing rule is logged and false returned.
func (v *RuleValidator) Validate(ctx context.Context, o *Order) bool {
	err := v.Check(o)
	if err == nil {
		return true
	}

	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		zctx.From(ctx).Info("Order failed validation",
			zap.String("rule", ruleErr.Rule),
			zap.Error(ruleErr.Err),
		)
	}
	return false
}
