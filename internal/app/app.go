package app

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/truck-orders/internal/domain/discount"
	"github.com/xenking/truck-orders/internal/domain/order"
	"github.com/xenking/truck-orders/internal/storage/journal"
	"github.com/xenking/truck-orders/internal/storage/memory"
)

// ErrRejected is returned when the configured order fails validation.
var ErrRejected = errors.New("order rejected")

// Run wires the pipeline with the process telemetry and processes the
// configured order once. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	ctx = zctx.Base(ctx, lg)
	_, err := Process(ctx, cfg,
		order.WithTracerProvider(m.TracerProvider()),
		order.WithMeterProvider(m.MeterProvider()),
	)
	return err
}

// Process builds one implementation of each pipeline role from cfg, runs the
// configured order through it and returns the order with its total set.
// A rejected order yields ErrRejected.
func Process(ctx context.Context, cfg *Config, opts ...order.Option) (*order.Order, error) {
	lg := zctx.From(ctx)

	o, err := cfg.Order()
	if err != nil {
		return nil, err
	}

	discountOpts, err := cfg.DiscountOptions()
	if err != nil {
		return nil, err
	}
	calc, err := discount.New(discount.Strategy(cfg.Discount), discountOpts)
	if err != nil {
		return nil, errors.Wrap(err, "create discount calculator")
	}

	repo, err := newRepository(cfg)
	if err != nil {
		return nil, err
	}

	processor, err := order.NewProcessor(order.NewRuleValidator(), calc, repo, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create processor")
	}

	lg.Info("Processing order",
		zap.String("model", o.Model),
		zap.Int("quantity", o.Quantity),
		zap.Stringer("base_price", o.BasePrice),
		zap.String("discount", cfg.Discount),
		zap.String("storage", cfg.Storage),
	)

	res, err := processor.Process(ctx, o)
	if err != nil {
		return o, errors.Wrapf(err, "process order at %s", res.Stage)
	}
	if res.Rejected() {
		lg.Warn("Order rejected", zap.String("model", o.Model))
		return o, ErrRejected
	}

	lg.Info("Order completed",
		zap.Stringer("discount", o.Discount),
		zap.Stringer("total", o.Total),
	)
	return o, nil
}

func newRepository(cfg *Config) (order.Repository, error) {
	switch cfg.Storage {
	case StorageMemory:
		return memory.NewOrderRepository(), nil
	case StorageJournal:
		return journal.NewOrderRepository(cfg.JournalPath), nil
	default:
		return nil, errors.Errorf("unknown storage %q", cfg.Storage)
	}
}
