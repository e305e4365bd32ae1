package utils

import (
	"testing"
	"time"
)

func TestIsPeakHour(t *testing.T) {
	cases := []struct {
		hour int
		want bool
	}{
		{8, false},
		{9, true},
		{17, true},
		{18, false},
		{0, false},
	}
	for _, tc := range cases {
		at := time.Date(2025, 6, 2, tc.hour, 0, 0, 0, time.UTC) // a Monday
		if got := IsPeakHour(at); got != tc.want {
			t.Fatalf("hour %d: expected %v, got %v", tc.hour, tc.want, got)
		}
	}
}

func TestIsWeekend(t *testing.T) {
	saturday := time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	if !IsWeekend(saturday) {
		t.Fatalf("expected Saturday to be weekend")
	}
	if IsWeekend(monday) {
		t.Fatalf("expected Monday to be a weekday")
	}
}

func TestBinaryFlag(t *testing.T) {
	if BinaryFlag(true) != 1 || BinaryFlag(false) != 0 {
		t.Fatalf("unexpected flag encoding")
	}
}
