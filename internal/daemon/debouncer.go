// Package daemon implements watch-and-publish mode: filesystem events and
// scheduled ticks are coalesced into publish runs.
package daemon

import (
	"context"
	"sync"
	"time"
)

// Request asks for a publish. Bursts of requests are coalesced.
type Request struct {
	Reason      string // "fs_change", "schedule", "startup"
	Path        string // changed path for fs_change requests
	RequestedAt time.Time
}

// Trigger is emitted when the debouncer decides a publish should run now.
type Trigger struct {
	TriggeredAt  time.Time
	RequestCount int
	FirstRequest time.Time
	LastRequest  time.Time
	LastReason   string
	Cause        string // "quiet", "max_delay", "after_running"
}

// DebouncerConfig tunes request coalescing.
type DebouncerConfig struct {
	// QuietWindow is how long the source must stay quiet before a publish
	// fires. Each new request restarts it.
	QuietWindow time.Duration

	// MaxDelay bounds how long a steady stream of requests can postpone a
	// publish. Measured from the first request of a burst.
	MaxDelay time.Duration

	// PublishRunning reports whether a publish is currently in flight. While
	// it returns true the debouncer holds back and queues exactly one
	// follow-up trigger for when it finishes.
	PublishRunning func() bool

	// PollInterval controls how often a held-back trigger rechecks
	// PublishRunning.
	PollInterval time.Duration
}

// Debouncer coalesces bursts of publish requests into single triggers:
// quiet-window debounce, a max-delay bound, and exactly one follow-up when
// requests arrive mid-publish.
type Debouncer struct {
	cfg      DebouncerConfig
	requests chan Request
	triggers chan Trigger

	mu              sync.Mutex
	pending         bool
	pendingAfterRun bool
	firstRequestAt  time.Time
	lastRequestAt   time.Time
	lastReason      string
	requestCount    int
}

// NewDebouncer creates a debouncer. QuietWindow and MaxDelay must be > 0.
func NewDebouncer(cfg DebouncerConfig) *Debouncer {
	if cfg.QuietWindow <= 0 {
		cfg.QuietWindow = 2 * time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.PublishRunning == nil {
		cfg.PublishRunning = func() bool { return false }
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}
	return &Debouncer{
		cfg:      cfg,
		requests: make(chan Request, 64),
		triggers: make(chan Trigger, 1),
	}
}

// Request enqueues a publish request. Never blocks; when the queue is full
// the request is dropped, which is harmless because a trigger is already
// inevitable.
func (d *Debouncer) Request(req Request) {
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now()
	}
	select {
	case d.requests <- req:
	default:
	}
}

// Triggers returns the channel publish triggers are delivered on.
func (d *Debouncer) Triggers() <-chan Trigger { return d.triggers }

// Run processes requests until ctx is canceled. Safe to run as a single
// goroutine.
func (d *Debouncer) Run(ctx context.Context) {
	newStoppedTimer := func() *time.Timer {
		t := time.NewTimer(time.Hour)
		if !t.Stop() {
			<-t.C
		}
		return t
	}
	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	pollTimer := newStoppedTimer()

	var quietC, maxC, pollC <-chan time.Time

	resetTimer := func(t *time.Timer, after time.Duration) {
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
		t.Reset(after)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case req := <-d.requests:
			first := d.onRequest(req)
			resetTimer(quietTimer, d.cfg.QuietWindow)
			quietC = quietTimer.C
			if first {
				resetTimer(maxTimer, d.cfg.MaxDelay)
				maxC = maxTimer.C
			}

		case <-quietC:
			if d.tryEmit(ctx, "quiet") {
				quietC, maxC = nil, nil
			}

		case <-maxC:
			if d.tryEmit(ctx, "max_delay") {
				quietC, maxC = nil, nil
			}

		case <-pollC:
			pollC = nil
			if !d.tryEmitAfterRunning(ctx) {
				resetTimer(pollTimer, d.cfg.PollInterval)
				pollC = pollTimer.C
			}
		}

		if d.waitingForRun() && pollC == nil {
			resetTimer(pollTimer, d.cfg.PollInterval)
			pollC = pollTimer.C
		}
	}
}

// onRequest records a request and reports whether it opened a new burst.
func (d *Debouncer) onRequest(req Request) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	first := !d.pending
	if first {
		d.pending = true
		d.firstRequestAt = req.RequestedAt
		d.requestCount = 0
	}
	d.lastRequestAt = req.RequestedAt
	d.lastReason = req.Reason
	d.requestCount++
	return first
}

func (d *Debouncer) waitingForRun() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingAfterRun
}

// tryEmit fires a trigger for the current burst. Returns true when the burst
// is resolved (emitted or empty); false when a publish is running and the
// trigger was deferred.
func (d *Debouncer) tryEmit(ctx context.Context, cause string) bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return true
	}
	if d.cfg.PublishRunning() {
		d.pendingAfterRun = true
		d.mu.Unlock()
		return false
	}
	trig := Trigger{
		TriggeredAt:  time.Now(),
		RequestCount: d.requestCount,
		FirstRequest: d.firstRequestAt,
		LastRequest:  d.lastRequestAt,
		LastReason:   d.lastReason,
		Cause:        cause,
	}
	d.pending = false
	d.pendingAfterRun = false
	d.mu.Unlock()

	select {
	case d.triggers <- trig:
	case <-ctx.Done():
	}
	return true
}

func (d *Debouncer) tryEmitAfterRunning(ctx context.Context) bool {
	d.mu.Lock()
	waiting := d.pendingAfterRun
	d.mu.Unlock()
	if !waiting {
		return true
	}
	if d.cfg.PublishRunning() {
		return false
	}
	return d.tryEmit(ctx, "after_running")
}
