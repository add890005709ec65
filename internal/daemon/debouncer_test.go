package daemon

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	d := NewDebouncer(DebouncerConfig{
		QuietWindow: 30 * time.Millisecond,
		MaxDelay:    time.Second,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	for i := 0; i < 5; i++ {
		d.Request(Request{Reason: "fs_change"})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case trig := <-d.Triggers():
		if trig.RequestCount != 5 {
			t.Fatalf("coalesced %d requests, want 5", trig.RequestCount)
		}
		if trig.Cause != "quiet" {
			t.Fatalf("cause = %q, want quiet", trig.Cause)
		}
	case <-time.After(time.Second):
		t.Fatal("no trigger after burst")
	}

	select {
	case trig := <-d.Triggers():
		t.Fatalf("unexpected second trigger: %+v", trig)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncerMaxDelayBoundsPostponement(t *testing.T) {
	d := NewDebouncer(DebouncerConfig{
		QuietWindow: 50 * time.Millisecond,
		MaxDelay:    150 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	// Keep requesting faster than the quiet window so it never elapses.
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				d.Request(Request{Reason: "fs_change"})
			}
		}
	}()
	defer close(stop)

	d.Request(Request{Reason: "fs_change"})
	select {
	case trig := <-d.Triggers():
		if trig.Cause != "max_delay" {
			t.Fatalf("cause = %q, want max_delay", trig.Cause)
		}
	case <-time.After(time.Second):
		t.Fatal("max delay never fired")
	}
}

func TestDebouncerQueuesSingleFollowUpWhileRunning(t *testing.T) {
	var running atomic.Bool
	running.Store(true)

	d := NewDebouncer(DebouncerConfig{
		QuietWindow:    20 * time.Millisecond,
		MaxDelay:       time.Second,
		PublishRunning: running.Load,
		PollInterval:   10 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	// Several bursts arrive while a publish is in flight.
	for i := 0; i < 3; i++ {
		d.Request(Request{Reason: "fs_change"})
		time.Sleep(30 * time.Millisecond)
	}

	select {
	case trig := <-d.Triggers():
		t.Fatalf("trigger fired while publish running: %+v", trig)
	case <-time.After(100 * time.Millisecond):
	}

	running.Store(false)

	select {
	case trig := <-d.Triggers():
		if trig.Cause != "after_running" {
			t.Fatalf("cause = %q, want after_running", trig.Cause)
		}
	case <-time.After(time.Second):
		t.Fatal("no follow-up trigger after publish finished")
	}

	// Exactly one follow-up, not one per held-back burst.
	select {
	case trig := <-d.Triggers():
		t.Fatalf("unexpected extra follow-up: %+v", trig)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncerNoTriggerWithoutRequests(t *testing.T) {
	d := NewDebouncer(DebouncerConfig{QuietWindow: 10 * time.Millisecond, MaxDelay: 20 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	select {
	case trig := <-d.Triggers():
		t.Fatalf("spontaneous trigger: %+v", trig)
	case <-time.After(80 * time.Millisecond):
	}
}
