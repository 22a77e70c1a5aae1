package util

import "time"

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date into UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// FormatDate renders a time as a YYYY-MM-DD calendar date.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// DayOfWeek returns the weekday index with Monday=0 .. Sunday=6.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// NextTradingDay returns the first weekday strictly after d. Saturdays and
// Sundays roll forward to the following Monday. Market holidays are not
// accounted for.
func NextTradingDay(d time.Time) time.Time {
	next := d.AddDate(0, 0, 1)
	for wd := next.Weekday(); wd == time.Saturday || wd == time.Sunday; wd = next.Weekday() {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
