package clock_test

import (
	"testing"
	"time"

	"github.com/lionscafe/api/adapters/clock"
)

func TestReal_NowIsUTC(t *testing.T) {
	now := clock.Real{}.Now()
	if now.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", now.Location())
	}
}

func TestFake_SetAndAdvance(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	f := clock.NewFake(start)

	if !f.Now().Equal(start) {
		t.Errorf("now = %v, want %v", f.Now(), start)
	}

	f.Advance(90 * time.Second)
	if want := start.Add(90 * time.Second); !f.Now().Equal(want) {
		t.Errorf("now = %v, want %v", f.Now(), want)
	}

	later := start.Add(time.Hour)
	f.Set(later)
	if !f.Now().Equal(later) {
		t.Errorf("now = %v, want %v", f.Now(), later)
	}
}
