package utils

import (
	"testing"
	"time"

	"tradecap/internal/domain"
)

func at(hour, min, sec int) time.Time {
	return time.Date(2025, 2, 23, hour, min, sec, 0, time.UTC)
}

func TestResolveWindowMorning(t *testing.T) {
	res := ResolveWindow(at(14, 0, 0), false)
	if !res.Active {
		t.Fatalf("expected active window at 14:00")
	}
	if res.Label != domain.WindowMorning {
		t.Fatalf("expected morning, got %s", res.Label)
	}
	if res.Window != "2025-02-23 14:00 - 14:30" {
		t.Fatalf("unexpected window string %q", res.Window)
	}
}

func TestResolveWindowEvening(t *testing.T) {
	res := ResolveWindow(at(19, 25, 0), false)
	if !res.Active || res.Label != domain.WindowEvening {
		t.Fatalf("expected evening window, got %+v", res)
	}
	if res.Window != "2025-02-23 19:00 - 19:30" {
		t.Fatalf("unexpected window string %q", res.Window)
	}
}

func TestResolveWindowOutsideHours(t *testing.T) {
	for _, h := range []int{0, 9, 13, 15, 18, 20, 23} {
		if res := ResolveWindow(at(h, 10, 0), false); res.Active {
			t.Fatalf("hour %d should not resolve to a window", h)
		}
	}
}

func TestResolveWindowBoundaryBeforeClose(t *testing.T) {
	// 14:29:59 is inside the window under both policies.
	for _, strict := range []bool{false, true} {
		res := ResolveWindow(at(14, 29, 59), strict)
		if !res.Active || res.Label != domain.WindowMorning {
			t.Fatalf("strict=%v: 14:29:59 should resolve to morning", strict)
		}
	}
}

func TestResolveWindowBoundaryAfterClose(t *testing.T) {
	// 14:30 closes the window inclusively; 14:31 is out under the strict
	// policy but still morning under the hour-only policy.
	if res := ResolveWindow(at(14, 30, 0), true); !res.Active {
		t.Fatalf("14:30:00 boundary should be inclusive")
	}
	if res := ResolveWindow(at(14, 31, 0), true); res.Active {
		t.Fatalf("strict: 14:31 should not resolve to a window")
	}
	if res := ResolveWindow(at(14, 31, 0), false); !res.Active {
		t.Fatalf("hour-only: 14:31 should still resolve to morning")
	}
}

func TestMidnight(t *testing.T) {
	d := Midnight(at(19, 45, 12))
	if d.Hour() != 0 || d.Minute() != 0 || d.Second() != 0 {
		t.Fatalf("expected midnight, got %v", d)
	}
	if d.Day() != 23 || d.Month() != time.February {
		t.Fatalf("date changed: %v", d)
	}
}

func TestIsSunday(t *testing.T) {
	// 2025-02-23 is a Sunday.
	if !IsSunday(at(10, 0, 0)) {
		t.Fatalf("2025-02-23 is a Sunday")
	}
	if IsSunday(time.Date(2025, 2, 24, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("2025-02-24 is a Monday")
	}
}

func TestFixedClock(t *testing.T) {
	instant := at(14, 15, 0)
	c := FixedClock{Instant: instant}
	if !c.Now().Equal(instant) {
		t.Fatalf("fixed clock drifted")
	}
}
