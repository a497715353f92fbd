package clock

import (
	"testing"
	"time"
)

func TestTodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*3600)
	// 03:00 UTC on the 11th is still the 10th at UTC-6.
	m := NewMock(time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC).In(loc))
	today := Today(m)
	want := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	if !today.Equal(want) {
		t.Fatalf("today = %v, want %v", today, want)
	}
}

func TestAdvance(t *testing.T) {
	m := NewMock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	m.Advance(15 * 24 * time.Hour)
	if m.Now().Day() != 25 {
		t.Fatalf("got %v", m.Now())
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 20, 1, 0, 0, 0, time.UTC)
	if d := DaysBetween(a, b, time.UTC); d != 10 {
		t.Fatalf("expected 10, got %d", d)
	}
	if d := DaysBetween(b, a, time.UTC); d != -10 {
		t.Fatalf("expected -10, got %d", d)
	}
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	got, err := ParseDate("2026-03-10", loc)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(time.Date(2026, 3, 9, 22, 0, 0, 0, time.UTC)) || got.Location() != time.UTC {
		t.Fatalf("got %v", got)
	}
	if _, err := ParseDate("10/03/2026", loc); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMonthRangeCrossesYear(t *testing.T) {
	m := NewMock(time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC))
	start, end := MonthRange(m)
	if !start.Equal(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("got %v .. %v", start, end)
	}
}
