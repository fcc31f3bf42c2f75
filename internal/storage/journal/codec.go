package journal

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/truck-orders/internal/domain/order"
)

// encodeRecord writes r as a single JSON object. Money fields are encoded as
// strings so that no precision is lost.
func encodeRecord(e *jx.Encoder, r order.Record) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(r.ID.String())
	e.FieldStart("model")
	e.Str(r.Order.Model)
	e.FieldStart("quantity")
	e.Int(r.Order.Quantity)
	e.FieldStart("base_price")
	e.Str(r.Order.BasePrice.String())
	e.FieldStart("discount")
	e.Str(r.Order.Discount.String())
	e.FieldStart("total")
	e.Str(r.Order.Total.String())
	e.FieldStart("saved_at")
	e.Str(r.SavedAt.Format(time.RFC3339Nano))
	e.ObjEnd()
}

func decodeRecord(d *jx.Decoder) (order.Record, error) {
	var r order.Record
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			s, err := d.Str()
			if err != nil {
				return err
			}
			id, err := uuid.Parse(s)
			if err != nil {
				return errors.Wrap(err, "parse id")
			}
			r.ID = id
		case "model":
			s, err := d.Str()
			if err != nil {
				return err
			}
			r.Order.Model = s
		case "quantity":
			n, err := d.Int()
			if err != nil {
				return err
			}
			r.Order.Quantity = n
		case "base_price":
			return decodeDecimal(d, &r.Order.BasePrice)
		case "discount":
			return decodeDecimal(d, &r.Order.Discount)
		case "total":
			return decodeDecimal(d, &r.Order.Total)
		case "saved_at":
			s, err := d.Str()
			if err != nil {
				return err
			}
			ts, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return errors.Wrap(err, "parse saved_at")
			}
			r.SavedAt = ts
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return order.Record{}, err
	}
	return r, nil
}

func decodeDecimal(d *jx.Decoder, dst *decimal.Decimal) error {
	s, err := d.Str()
	if err != nil {
		return err
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return errors.Wrapf(err, "parse decimal %q", s)
	}
	*dst = v
	return nil
}
