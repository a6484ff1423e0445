package logging

import (
	"fmt"
	"strconv"
	"time"
)

// HumanBytes formats n with binary units, e.g. "1.50 MiB".
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit && exp < 4; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(n)/float64(div), "KMGTP"[exp])
}

// HumanCount formats n with a metric suffix, e.g. "1.2M".
func HumanCount(n int64) string {
	switch a := max(n, -n); {
	case a >= 1e9:
		return fmt.Sprintf("%.1fB", float64(n)/1e9)
	case a >= 1e6:
		return fmt.Sprintf("%.1fM", float64(n)/1e6)
	case a >= 1e3:
		return fmt.Sprintf("%.1fK", float64(n)/1e3)
	}
	return strconv.FormatInt(n, 10)
}

// HumanDuration rounds d to a precision that suits its magnitude.
func HumanDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return d.Round(time.Second).String()
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(100 * time.Microsecond).String()
	}
	return d.String()
}
