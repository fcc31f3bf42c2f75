// Package journal provides an append-only order repository backed by a gzip
// file of JSON lines.
//
// Every Save appends one complete gzip member holding one record, so a crash
// between saves never corrupts records that were already written. Readers
// decode the concatenated members as a single stream.
package journal

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/klauspost/pgzip"

	"github.com/xenking/truck-orders/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository on top of a journal file.
type OrderRepository struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
	// compress wraps the journal file for one appended member.
	compress func(w io.Writer) io.WriteCloser
}

// NewOrderRepository returns an OrderRepository writing to path. The file is
// created on first save.
func NewOrderRepository(path string) *OrderRepository {
	return &OrderRepository{
		path: path,
		now:  time.Now,
		compress: func(w io.Writer) io.WriteCloser {
			return pgzip.NewWriter(w)
		},
	}
}

// Path returns the journal file location.
func (r *OrderRepository) Path() string {
	return r.path
}

// Save appends the order to the journal under a new ID.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	if o == nil {
		return order.ErrNilOrder
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "save order")
	}

	rec := order.Record{
		ID:      uuid.New(),
		Order:   *o,
		SavedAt: r.now().UTC(),
	}
	e := &jx.Encoder{}
	encodeRecord(e, rec)
	line := append(e.Bytes(), '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open journal")
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return errors.Wrap(err, "stat journal")
	}
	// A partially written member would make every later Load fail, so the
	// file is cut back to its previous size on any write error.
	rollback := func(err error) error {
		if terr := f.Truncate(info.Size()); terr != nil {
			err = errors.Wrapf(err, "truncate journal after failure: %v", terr)
		}
		_ = f.Close()
		return err
	}

	zw := r.compress(f)
	if _, err := zw.Write(line); err != nil {
		_ = zw.Close()
		return rollback(errors.Wrapf(err, "write order %s", rec.ID))
	}
	if err := zw.Close(); err != nil {
		return rollback(errors.Wrapf(err, "flush order %s", rec.ID))
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close journal")
	}
	return nil
}

// Load reads every record in the journal, oldest first. A missing or empty
// journal yields no records.
func (r *OrderRepository) Load(ctx context.Context) ([]order.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "open journal")
	}
	defer func() { _ = f.Close() }()

	zr, err := pgzip.NewReader(f)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "open gzip stream")
	}
	defer func() { _ = zr.Close() }()

	var records []order.Record
	br := bufio.NewReader(zr)
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrap(err, "read journal")
		}
		if len(bytes.TrimSpace(b)) > 0 {
			rec, derr := decodeRecord(jx.DecodeBytes(b))
			if derr != nil {
				return nil, errors.Wrapf(derr, "decode record on line %d", line)
			}
			records = append(records, rec)
		}
		if err != nil {
			break
		}
	}
	return records, nil
}
