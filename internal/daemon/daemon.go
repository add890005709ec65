package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitepub/internal/config"
	"git.home.luguber.info/inful/sitepub/internal/logfields"
)

// PublishFunc runs one publish. The daemon does not care about the report,
// only whether the run failed.
type PublishFunc func(ctx context.Context) error

// Daemon watches the documentation source and republishes on change, plus an
// optional fixed schedule. At most one publish runs at a time; changes that
// arrive mid-publish coalesce into a single follow-up run.
type Daemon struct {
	cfg     *config.Config
	publish PublishFunc

	// MetricsHandler, when set together with cfg.Daemon.MetricsAddr, is
	// served on /metrics.
	MetricsHandler http.Handler

	running atomic.Bool
}

// New creates a daemon around a publish function.
func New(cfg *config.Config, publish PublishFunc) *Daemon {
	return &Daemon{cfg: cfg, publish: publish}
}

// Run blocks until ctx is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	deb := NewDebouncer(DebouncerConfig{
		QuietWindow:    d.cfg.Daemon.QuietWindow,
		MaxDelay:       d.cfg.Daemon.MaxDelay,
		PublishRunning: d.running.Load,
	})
	go deb.Run(ctx)

	watcher, err := NewWatcher(d.cfg.Source.Dir, deb)
	if err != nil {
		return fmt.Errorf("watch %s: %w", d.cfg.Source.Dir, err)
	}
	go watcher.Run(ctx)
	slog.Info("Watching source for changes",
		logfields.Source(d.cfg.Source.Dir),
		slog.Duration("quiet_window", d.cfg.Daemon.QuietWindow),
		slog.Duration("max_delay", d.cfg.Daemon.MaxDelay))

	if d.cfg.Daemon.Every > 0 {
		scheduler, err := d.startScheduler(deb)
		if err != nil {
			return err
		}
		defer func() { _ = scheduler.Shutdown() }()
	}

	if d.cfg.Daemon.MetricsAddr != "" && d.MetricsHandler != nil {
		d.serveMetrics(ctx)
	}

	// Publish once on startup so the origin reflects the current source even
	// if nothing changes afterwards.
	deb.Request(Request{Reason: "startup"})

	for {
		select {
		case <-ctx.Done():
			slog.Info("Daemon stopping")
			return nil
		case trig := <-deb.Triggers():
			d.runPublish(ctx, trig)
		}
	}
}

func (d *Daemon) runPublish(ctx context.Context, trig Trigger) {
	slog.Info("Publish triggered",
		slog.String("cause", trig.Cause),
		slog.String("reason", trig.LastReason),
		slog.Int("coalesced_requests", trig.RequestCount))

	d.running.Store(true)
	defer d.running.Store(false)

	if err := d.publish(ctx); err != nil {
		// The daemon keeps running; the next change gets another chance.
		slog.Error("Publish failed", logfields.Error(err))
	}
}

func (d *Daemon) startScheduler(deb *Debouncer) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(d.cfg.Daemon.Every),
		gocron.NewTask(func() {
			deb.Request(Request{Reason: "schedule", RequestedAt: time.Now()})
		}),
		gocron.WithName("scheduled-publish"),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule periodic publish: %w", err)
	}
	scheduler.Start()
	slog.Info("Scheduled periodic publish", slog.Duration("every", d.cfg.Daemon.Every))
	return scheduler, nil
}

func (d *Daemon) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", d.MetricsHandler)
	srv := &http.Server{
		Addr:              d.cfg.Daemon.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("Serving metrics", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("Metrics server stopped", logfields.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
