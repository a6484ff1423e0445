package format

import (
	"math"
	"time"
)

// Epoch is the origin of SAS dates and datetimes.
var Epoch = time.Date(1960, time.January, 1, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 24 * 60 * 60

// The SAS calendar runs from 1582-01-01 through 20000-12-31.
const (
	minDays = -138061
	maxDays = 6589340
)

// DateTime converts seconds since Epoch to a UTC time with microsecond
// precision. The conversion splits whole days from the remainder before
// rounding to keep precision for large values. NaN and values outside the
// SAS calendar report false.
func DateTime(seconds float64) (time.Time, bool) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return time.Time{}, false
	}
	days := math.Round(seconds / secondsPerDay)
	if days < minDays || days > maxDays {
		return time.Time{}, false
	}
	seconds -= days * secondsPerDay
	secs := math.Round(seconds)
	micros := math.Round((seconds - secs) * 1e6)
	t := Epoch.AddDate(0, 0, int(days))
	return t.Add(time.Duration(secs)*time.Second + time.Duration(micros)*time.Microsecond), true
}

// Date converts days since Epoch to a UTC midnight. A day count outside
// the SAS calendar is read as seconds since Epoch instead and truncated to
// its day. NaN, and values outside the calendar either way, report false.
func Date(days float64) (time.Time, bool) {
	if math.IsNaN(days) || math.IsInf(days, 0) {
		return time.Time{}, false
	}
	if d := math.Round(days); d >= minDays && d <= maxDays {
		return Epoch.AddDate(0, 0, int(d)), true
	}
	t, ok := DateTime(days)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// TimeOfDay converts seconds since Epoch to the time of day of the
// corresponding datetime. NaN reports false.
func TimeOfDay(seconds float64) (time.Duration, bool) {
	t, ok := DateTime(seconds)
	if !ok {
		return 0, false
	}
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return t.Sub(midnight), true
}
