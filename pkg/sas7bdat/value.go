package sas7bdat

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Value is one decoded cell. The accessor matching Type returns the
// payload; Bytes always returns the raw on-disk bytes.
type Value struct {
	typ     ColumnType
	missing bool
	num     float64
	i       int64
	t       time.Time
	d       time.Duration
	raw     []byte
}

// Row is one decoded row, holding values of the retained columns in order.
type Row []Value

// Type returns the logical type of the value.
func (v Value) Type() ColumnType {
	return v.typ
}

// IsMissing reports a SAS missing value. Numeric, date, datetime and time
// values are missing when stored as NaN; unknown values are always missing.
// Strings are never missing.
func (v Value) IsMissing() bool {
	return v.missing
}

// Float64 returns the numeric value, or NaN when missing or not numeric.
func (v Value) Float64() float64 {
	switch v.typ {
	case TypeNumber:
		return v.num
	case TypeInteger:
		return float64(v.i)
	}
	return math.NaN()
}

// Int returns the value of an integer column.
func (v Value) Int() int64 {
	if v.typ == TypeNumber && !v.missing {
		return int64(v.num)
	}
	return v.i
}

// Time returns the value of a date or datetime column in UTC.
func (v Value) Time() time.Time {
	return v.t
}

// Duration returns the value of a time column as the offset from midnight.
func (v Value) Duration() time.Duration {
	return v.d
}

// Bytes returns the raw bytes stored for the cell, trailing padding
// included. The slice belongs to the row.
func (v Value) Bytes() []byte {
	return v.raw
}

// Str returns a string value with trailing blanks and NUL bytes removed.
func (v Value) Str() string {
	return string(bytes.TrimRight(v.raw, " \t\r\n\x00"))
}

// Any returns the payload as a Go value: string, float64, int64, time.Time
// or time.Duration. Missing values return nil.
func (v Value) Any() any {
	if v.missing {
		return nil
	}
	switch v.typ {
	case TypeString:
		return v.Str()
	case TypeNumber:
		return v.num
	case TypeInteger:
		return v.i
	case TypeDateTime, TypeDate:
		return v.t
	case TypeTime:
		return v.d
	}
	return nil
}

// String formats the value for display. Missing values format as "".
func (v Value) String() string {
	if v.missing {
		return ""
	}
	switch v.typ {
	case TypeString:
		return v.Str()
	case TypeNumber:
		return FormatFloat(v.num)
	case TypeInteger:
		return strconv.FormatInt(v.i, 10)
	case TypeDateTime:
		return FormatDateTime(v.t)
	case TypeDate:
		return v.t.Format(time.DateOnly)
	case TypeTime:
		return FormatTime(v.d)
	}
	return ""
}

// FormatFloat formats f in plain decimal notation, switching to exponent
// form for very small or very large magnitudes.
func FormatFloat(f float64) string {
	if a := math.Abs(f); a != 0 && (a < 1e-6 || a >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatDateTime formats t as "YYYY-MM-DD HH:MM:SS", adding six fractional
// digits when t has sub-second precision.
func FormatDateTime(t time.Time) string {
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02 15:04:05.000000")
	}
	return t.Format(time.DateTime)
}

// FormatTime formats a time of day as "HH:MM:SS", adding six fractional
// digits when d has sub-second precision.
func FormatTime(d time.Duration) string {
	neg := d < 0
	if neg {
		d = -d
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	sign := ""
	if neg {
		sign = "-"
	}
	if d != 0 {
		return fmt.Sprintf("%s%02d:%02d:%02d.%06d", sign, h, m, s, d/time.Microsecond)
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}
