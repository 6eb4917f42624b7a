package scoring

import (
	"fmt"
	"time"
)

// Absent is shown for values that do not exist.
const Absent = "-"

const day = 24 * time.Hour

// Elapsed returns goal - start, adding one day when the goal clock is
// behind the start clock. Passages of a day or longer come out wrong.
func Elapsed(start, goal time.Duration) time.Duration {
	d := goal - start
	if d < 0 {
		d += day
	}
	return d
}

// FormatClock renders d as HH:MM:SS.ss.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	cs := int64(d.Round(10*time.Millisecond) / (10 * time.Millisecond))
	h := cs / 360000
	m := cs / 6000 % 60
	s := cs % 6000
	return fmt.Sprintf("%02d:%02d:%02d.%02d", h, m, s/100, s%100)
}

// FormatDiff renders d as ±HH:MM:SS.ss. Zero carries a plus sign.
func FormatDiff(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign = "-"
	}
	return sign + FormatClock(d)
}
