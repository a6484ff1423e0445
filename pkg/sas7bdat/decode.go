package sas7bdat

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/eunmann/sas7bdat/pkg/format"
)

// decode extracts the column's cell from an uncompressed row. Callers
// guarantee the row is at least as long as the column extent.
func (c *Column) decode(row []byte) Value {
	raw := row[c.Offset : c.Offset+c.Length : c.Offset+c.Length]
	v := Value{typ: c.Type, raw: raw}

	switch c.Type {
	case TypeString:
	case TypeInteger:
		if c.Length == 1 {
			v.i = int64(raw[0])
		} else {
			v.i = int64(int16(c.order.Uint16(raw)))
		}
	case TypeNumber:
		v.num = readDouble(raw, c.order)
		v.missing = math.IsNaN(v.num)
	case TypeDateTime:
		v.t, v.missing = notOK(format.DateTime(readDouble(raw, c.order)))
	case TypeDate:
		v.t, v.missing = notOK(format.Date(readDouble(raw, c.order)))
	case TypeTime:
		var ok bool
		v.d, ok = format.TimeOfDay(readDouble(raw, c.order))
		v.missing = !ok
	default:
		v.missing = true
	}
	return v
}

func notOK(t time.Time, ok bool) (time.Time, bool) {
	return t, !ok
}

// readDouble reads a double stored in 3 to 8 bytes. Short doubles keep the
// most significant bytes, so the missing low-order bytes are zero filled.
func readDouble(raw []byte, order binary.ByteOrder) float64 {
	if len(raw) == 8 {
		return math.Float64frombits(order.Uint64(raw))
	}
	var buf [8]byte
	if order == binary.BigEndian {
		copy(buf[:], raw)
	} else {
		copy(buf[8-len(raw):], raw)
	}
	return math.Float64frombits(order.Uint64(buf[:]))
}
