package util

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2024-01-05")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
	if _, ok := ParseDate("05/01/2024"); ok {
		t.Fatalf("expected parse failure")
	}
}

func TestDayOfWeekMondayZero(t *testing.T) {
	mon := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // Monday
	if d := DayOfWeek(mon); d != 0 {
		t.Fatalf("monday = %d", d)
	}
	sun := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	if d := DayOfWeek(sun); d != 6 {
		t.Fatalf("sunday = %d", d)
	}
}

func TestNextTradingDayWeekday(t *testing.T) {
	tue := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	got := NextTradingDay(tue)
	if FormatDate(got) != "2024-01-03" {
		t.Fatalf("unexpected next day %s", FormatDate(got))
	}
}

func TestNextTradingDayWeekend(t *testing.T) {
	fri := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	got := NextTradingDay(fri)
	if FormatDate(got) != "2024-01-08" {
		t.Fatalf("friday should roll to monday, got %s", FormatDate(got))
	}
	sat := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	if FormatDate(NextTradingDay(sat)) != "2024-01-08" {
		t.Fatalf("saturday should roll to monday")
	}
}
