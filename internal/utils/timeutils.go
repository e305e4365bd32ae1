package utils

import "time"

// IsPeakHour reports whether the instant falls in the 09:00-17:59 business
// window the model's is_peak_hour feature was trained on.
func IsPeakHour(t time.Time) bool {
	hour := t.Hour()
	return hour >= 9 && hour <= 17
}

// IsWeekend reports whether the instant falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	day := t.Weekday()
	return day == time.Saturday || day == time.Sunday
}

// BinaryFlag converts a boolean into the 0/1 encoding used by the feature
// schema.
func BinaryFlag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
