package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestRemainingSeconds(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		elapsed  time.Duration
		want     uint64
	}{
		{"start", 5 * time.Second, 0, 5},
		{"on schedule", 5 * time.Second, time.Second, 4},
		{"tick delivered early", 5 * time.Second, 999 * time.Millisecond, 4},
		{"tick delivered late", 5 * time.Second, 1100 * time.Millisecond, 4},
		{"deadline", 5 * time.Second, 5 * time.Second, 0},
		{"past deadline clamps to zero", 5 * time.Second, 12 * time.Second, 0},
		{"fractional duration floors", 2500 * time.Millisecond, 0, 2},
		{"zero duration", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := remainingSeconds(tt.duration, tt.elapsed); got != tt.want {
				t.Errorf("remainingSeconds(%v, %v) = %d, want %d", tt.duration, tt.elapsed, got, tt.want)
			}
		})
	}
}

func receiveCountdown(t *testing.T, events <-chan Event) uint64 {
	t.Helper()
	select {
	case ev := <-events:
		cd, ok := ev.(Countdown)
		if !ok {
			t.Fatalf("got %T, want Countdown", ev)
		}
		return cd.Remaining
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for countdown")
	}
	return 0
}

func TestTimerSource_CountsDownToZero(t *testing.T) {
	mock := clock.NewMock()
	src := &timerSource{clock: mock, duration: 5 * time.Second}
	events := make(chan Event)
	done := make(chan error, 1)

	go func() {
		done <- src.Run(context.Background(), events)
	}()

	first := receiveCountdown(t, events)
	if first != 5 && first != 4 {
		t.Fatalf("first countdown = %d, want 5 or 4", first)
	}

	got := []uint64{first}
	prev := first
	for prev > 0 {
		mock.Add(time.Second)
		next := receiveCountdown(t, events)
		if next > prev {
			t.Fatalf("countdown increased from %d to %d", prev, next)
		}
		got = append(got, next)
		prev = next
	}

	want := []uint64{5, 4, 3, 2, 1, 0}
	if len(got) != len(want) {
		t.Fatalf("countdown sequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("countdown sequence = %v, want %v", got, want)
			break
		}
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timer source did not stop after reaching zero")
	}
}

func TestTimerSource_ZeroDuration(t *testing.T) {
	src := &timerSource{clock: clock.NewMock(), duration: 0}
	events := make(chan Event, 1)

	if err := src.Run(context.Background(), events); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := receiveCountdown(t, events); got != 0 {
		t.Errorf("countdown = %d, want 0", got)
	}
}

func TestTimerSource_StopsOnCancel(t *testing.T) {
	src := &timerSource{clock: clock.NewMock(), duration: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan Event)
	done := make(chan error, 1)

	go func() {
		done <- src.Run(ctx, events)
	}()

	receiveCountdown(t, events)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timer source ignored cancellation")
	}
}
