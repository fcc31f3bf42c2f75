// Package memory provides an in-process order repository.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/truck-orders/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository in memory. Records are kept in
// save order and are copies, so callers may keep mutating their orders.
type OrderRepository struct {
	mu      sync.Mutex
	records []order.Record
	now     func() time.Time
}

// NewOrderRepository returns an empty OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{now: time.Now}
}

// Save stores a copy of the order under a new ID.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	if o == nil {
		return order.ErrNilOrder
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "save order")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, order.Record{
		ID:      uuid.New(),
		Order:   *o,
		SavedAt: r.now(),
	})
	return nil
}

// List returns a snapshot of all saved records.
func (r *OrderRepository) List(_ context.Context) ([]order.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]order.Record, len(r.records))
	copy(out, r.records)
	return out, nil
}
