package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/xenking/truck-orders/internal/domain/order"

// Stage enumerates the states an order passes through while being processed.
type Stage string

const (
	StageReceived    Stage = "received"
	StageValidating  Stage = "validating"
	StageRejected    Stage = "rejected"
	StageValidated   Stage = "validated"
	StageDiscounting Stage = "discounting"
	StageTotaling    Stage = "totaling"
	StagePersisting  Stage = "persisting"
	StageCompleted   Stage = "completed"
)

// Result describes how far an order got through the pipeline.
type Result struct {
	// Stage is the last stage entered: StageCompleted or StageRejected on a
	// nil error, otherwise the stage that failed.
	Stage    Stage
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Rejected reports whether the order was turned away by validation.
func (r Result) Rejected() bool {
	return r.Stage == StageRejected
}

// Option configures a Processor.
type Option func(*processorOptions)

type processorOptions struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithTracerProvider sets the provider used for the per-order span.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *processorOptions) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the provider used for the processed-orders counter.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *processorOptions) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// Processor runs a single order through validation, discounting, totaling and
// persistence, strictly in that order.
type Processor struct {
	validator Validator
	discounts DiscountCalculator
	orders    Repository

	tracer    trace.Tracer
	processed metric.Int64Counter
}

// NewProcessor creates a Processor with the required domain dependencies.
func NewProcessor(
	validator Validator,
	discounts DiscountCalculator,
	orders Repository,
	opts ...Option,
) (*Processor, error) {
	cfg := processorOptions{
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
	for _, o := range opts {
		o(&cfg)
	}

	processed, err := cfg.meterProvider.Meter(instrumentationName).Int64Counter("orders.processed",
		metric.WithDescription("Orders that reached a terminal stage, by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create orders.processed counter")
	}

	return &Processor{
		validator: validator,
		discounts: discounts,
		orders:    orders,
		tracer:    cfg.tracerProvider.Tracer(instrumentationName),
		processed: processed,
	}, nil
}

// Process validates the order, computes its discount and total, and saves it.
// On success o.Discount and o.Total are set in place. If saving fails they are
// restored to their previous values, so a total is only ever left on an order
// that was persisted.
//
// An invalid order is not an error: Process returns a Result with
// StageRejected and never calls the discount calculator or the repository.
// Discount and persistence failures are returned wrapped.
func (p *Processor) Process(ctx context.Context, o *Order) (res Result, rerr error) {
	ctx, span := p.tracer.Start(ctx, "order.Process")
	defer func() {
		outcome := "completed"
		switch {
		case rerr != nil:
			outcome = "failed"
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		case res.Rejected():
			outcome = "rejected"
		}
		p.processed.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		span.End()
	}()

	lg := zctx.From(ctx)
	enter := func(s Stage) {
		res.Stage = s
		span.AddEvent("stage", trace.WithAttributes(attribute.String("stage", string(s))))
		lg.Debug("Order stage", zap.String("stage", string(s)))
	}

	enter(StageReceived)
	enter(StageValidating)
	if !p.validator.Validate(ctx, o) {
		enter(StageRejected)
		return res, nil
	}
	enter(StageValidated)

	enter(StageDiscounting)
	discount, err := p.discounts.CalculateDiscount(o)
	if err != nil {
		return res, errors.Wrap(err, "calculate discount")
	}
	subtotal := o.Subtotal()
	if discount.IsNegative() || discount.GreaterThan(subtotal) {
		return res, errors.Wrapf(ErrDiscountOutOfRange, "discount %s for subtotal %s", discount, subtotal)
	}
	prevDiscount, prevTotal := o.Discount, o.Total
	o.Discount = discount
	res.Discount = discount

	enter(StageTotaling)
	o.Total = subtotal.Sub(discount)
	res.Total = o.Total

	enter(StagePersisting)
	if err := p.orders.Save(ctx, o); err != nil {
		o.Discount, o.Total = prevDiscount, prevTotal
		return res, errors.Wrap(err, "save order")
	}

	enter(StageCompleted)
	return res, nil
}
