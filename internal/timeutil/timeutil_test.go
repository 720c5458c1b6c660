package timeutil

import (
	"testing"
	"time"
)

func TestISODayRoundTrip(t *testing.T) {
	// 2025-06-02 is a Monday.
	mon := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		d := mon.AddDate(0, 0, i)
		iso := ISODay(d)
		if iso != i+1 {
			t.Errorf("ISODay(%s) = %d, want %d", d.Weekday(), iso, i+1)
		}
		if got := ISODayOf(DayOfWeekFromISO(iso)); got != iso {
			t.Errorf("ISODayOf(DayOfWeekFromISO(%d)) = %d", iso, got)
		}
	}
}

func TestClockFormatting(t *testing.T) {
	c := Clock{Hour: 9, Minute: 5}
	if c.String() != "09:05:00" {
		t.Errorf("String() = %q", c.String())
	}
	parsed, err := ParseClock("09:05:00")
	if err != nil {
		t.Fatal(err)
	}
	if parsed != c {
		t.Errorf("ParseClock = %+v, want %+v", parsed, c)
	}
	if _, err := ParseClock("25:00:00"); err == nil {
		t.Error("expected out-of-range error")
	}
}

func TestMonthDayRoundTrip(t *testing.T) {
	d := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	key := MonthDay(d)
	if key != "--06-02" {
		t.Errorf("MonthDay = %q", key)
	}
	m, day, err := ParseMonthDay(key)
	if err != nil {
		t.Fatal(err)
	}
	if m != time.June || day != 2 {
		t.Errorf("ParseMonthDay = %v %d", m, day)
	}
}

func TestInZoneKeepWall(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	utc := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	moved := InZoneKeepWall(utc, ny)
	if moved.Hour() != 9 || moved.Minute() != 30 {
		t.Errorf("wall clock changed: %v", moved)
	}
	if moved.Location() != ny {
		t.Errorf("location = %v", moved.Location())
	}
}

func TestCeilToGranularity(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		minute int
		want   int
	}{
		{0, 0},
		{1, 15},
		{15, 15},
		{16, 30},
		{44, 45},
		{46, 0}, // rolls to next hour
	}
	for _, tc := range cases {
		got := CeilToGranularity(base.Add(time.Duration(tc.minute)*time.Minute), 15)
		if got.Minute() != tc.want {
			t.Errorf("CeilToGranularity(:%02d) minute = %d, want %d", tc.minute, got.Minute(), tc.want)
		}
	}
}

func TestOverlaps(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2025, 6, 2, h, 0, 0, 0, time.UTC) }
	if !Overlaps(at(9), at(11), at(10), at(12)) {
		t.Error("expected overlap")
	}
	if Overlaps(at(9), at(10), at(10), at(11)) {
		t.Error("touching intervals must not overlap")
	}
}

func TestLocalDateTimeRoundTrip(t *testing.T) {
	loc, _ := time.LoadLocation("Europe/Berlin")
	orig := time.Date(2025, 12, 31, 23, 45, 0, 0, loc)
	s := LocalDateTime(orig)
	back, err := ParseLocalDateTime(s, loc)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(orig) {
		t.Errorf("round trip: %v != %v", back, orig)
	}
}
