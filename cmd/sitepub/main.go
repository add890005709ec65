package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitepub/internal/cdn"
	"git.home.luguber.info/inful/sitepub/internal/config"
	"git.home.luguber.info/inful/sitepub/internal/daemon"
	"git.home.luguber.info/inful/sitepub/internal/history"
	"git.home.luguber.info/inful/sitepub/internal/linkcheck"
	"git.home.luguber.info/inful/sitepub/internal/metrics"
	"git.home.luguber.info/inful/sitepub/internal/params"
	"git.home.luguber.info/inful/sitepub/internal/preview"
	"git.home.luguber.info/inful/sitepub/internal/publisher"
	"git.home.luguber.info/inful/sitepub/internal/render"
	"git.home.luguber.info/inful/sitepub/internal/resolver"
	"git.home.luguber.info/inful/sitepub/internal/site"
	"git.home.luguber.info/inful/sitepub/internal/storage"
	"git.home.luguber.info/inful/sitepub/internal/version"
)

var CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitepub.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `help:"Print version and exit"`

	Publish struct {
	} `cmd:"" help:"Build the site, sync it to the origin store and invalidate the edge cache"`

	Build struct {
	} `cmd:"" help:"Render the site without publishing"`

	Check struct {
		Fatal bool `help:"Exit non-zero when broken internal links are found"`
	} `cmd:"" help:"Render the site and verify internal links against the edge rewrite rule"`

	Resolve struct {
		Path string `arg:"" help:"Request path to resolve, e.g. /guides/"`
	} `cmd:"" help:"Print the object key the edge rewrite maps a request path to"`

	Preview struct {
		Addr string `help:"Listen address" default:"127.0.0.1:8080"`
	} `cmd:"" help:"Serve a local build with production URL behavior"`

	Daemon struct {
	} `cmd:"" help:"Watch the source and republish on change"`

	History struct {
		Limit int `help:"Number of runs to show" default:"20"`
	} `cmd:"" help:"Show recent publish runs"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	kctx := kong.Parse(&CLI, kong.Vars{"version": version.String()})

	if kctx.Command() == "init" {
		setupLogging(nil)
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			fatal("Init failed", err)
		}
		slog.Info("Configuration written", slog.String("path", CLI.Config))
		return
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		setupLogging(nil)
		fatal("Failed to load configuration", err)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch kctx.Command() {
	case "publish":
		err = runPublish(ctx, cfg)
	case "build":
		err = runBuild(ctx, cfg)
	case "check":
		err = runCheck(ctx, cfg, CLI.Check.Fatal)
	case "resolve <path>":
		fmt.Println(resolver.Resolve(CLI.Resolve.Path))
	case "preview":
		err = runPreview(ctx, cfg, CLI.Preview.Addr)
	case "daemon":
		err = runDaemon(ctx, cfg)
	case "history":
		err = runHistory(ctx, cfg, CLI.History.Limit)
	default:
		err = fmt.Errorf("unknown command: %s", kctx.Command())
	}
	if err != nil {
		fatal("Command failed", err)
	}
}

func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	format := config.LogFormatText
	if cfg != nil {
		level = config.NormalizeLogLevel(cfg.Logging.Level).SlogLevel()
		format = config.NormalizeLogFormat(cfg.Logging.Format)
	}
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func fatal(msg string, err error) {
	slog.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}

func newRenderer(cfg *config.Config) render.Renderer {
	if cfg.Renderer.Kind == config.RendererGoldmark {
		return render.NewGoldmarkRenderer(cfg.Renderer.Title)
	}
	return render.NewHugoRenderer(cfg.Renderer.Binary)
}

func newParamStore(cfg *config.Config) params.Store {
	if cfg.Params.Kind == "file" {
		return params.NewFileStore(cfg.Params.File)
	}
	return params.NewEnvStore()
}

func newOpenStore(cfg *config.Config) publisher.OpenStore {
	return func(bucket string) (storage.ObjectStore, error) {
		return storage.NewFSStore(filepath.Join(cfg.Store.Root, bucket))
	}
}

func newInvalidator(cfg *config.Config) cdn.Invalidator {
	if cfg.CDN.Endpoint == "" {
		return nil
	}
	return cdn.NewHTTPInvalidator(cfg.CDN.Endpoint)
}

// newPipeline assembles a publisher from configuration. The returned cleanup
// closes the history store and notifier, if any.
func newPipeline(cfg *config.Config, recorder metrics.Recorder) (*publisher.Pipeline, func(), error) {
	p := publisher.New(cfg, newRenderer(cfg), newOpenStore(cfg), newInvalidator(cfg), newParamStore(cfg), recorder)

	var cleanups []func()
	if cfg.History.Path != "" {
		db, err := history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open history store: %w", err)
		}
		p.WithHistory(db)
		cleanups = append(cleanups, func() { _ = db.Close() })
	}
	if cfg.Daemon.NATSURL != "" {
		notifier, err := publisher.NewNATSNotifier(cfg.Daemon.NATSURL, cfg.Daemon.NATSSubject)
		if err != nil {
			return nil, nil, fmt.Errorf("connect notifier: %w", err)
		}
		p.WithNotifier(notifier)
		cleanups = append(cleanups, func() { _ = notifier.Close() })
	}
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}
	return p, cleanup, nil
}

func runPublish(ctx context.Context, cfg *config.Config) error {
	p, cleanup, err := newPipeline(cfg, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := p.Run(ctx)
	if err != nil {
		return err
	}
	for _, warn := range report.Warnings {
		slog.Warn("Publish warning", slog.String("stage", string(warn.Stage)), slog.String("error", warn.Err.Error()))
	}
	return nil
}

func runBuild(ctx context.Context, cfg *config.Config) error {
	tree, err := buildTree(ctx, cfg)
	if err != nil {
		return err
	}
	slog.Info("Site built",
		slog.String("output", cfg.Renderer.Output),
		slog.Int("files", tree.Len()))
	return nil
}

func runCheck(ctx context.Context, cfg *config.Config, fatalLinks bool) error {
	tree, err := buildTree(ctx, cfg)
	if err != nil {
		return err
	}
	broken, err := linkcheck.Check(tree)
	if err != nil {
		return err
	}
	if len(broken) == 0 {
		slog.Info("All internal links resolve", slog.Int("files", tree.Len()))
		return nil
	}
	for _, b := range broken {
		fmt.Printf("%s\n", b)
	}
	if fatalLinks || cfg.Links.Fatal {
		return fmt.Errorf("%d broken internal links", len(broken))
	}
	slog.Warn("Broken internal links found", slog.Int("count", len(broken)))
	return nil
}

func runPreview(ctx context.Context, cfg *config.Config, addr string) error {
	tree, err := buildTree(ctx, cfg)
	if err != nil {
		return err
	}
	srv := preview.NewServer(storage.NewTreeStore(tree))
	slog.Info("Previewing site", slog.String("url", "http://"+addr+"/"), slog.Int("files", tree.Len()))
	return srv.ListenAndServe(ctx, addr)
}

func runDaemon(ctx context.Context, cfg *config.Config) error {
	recorder := metrics.NewPrometheusRecorder(prometheus.NewRegistry())
	p, cleanup, err := newPipeline(cfg, recorder)
	if err != nil {
		return err
	}
	defer cleanup()

	d := daemon.New(cfg, func(ctx context.Context) error {
		_, err := p.Run(ctx)
		return err
	})
	if cfg.Daemon.MetricsAddr != "" {
		d.MetricsHandler = recorder.Handler()
	}
	return d.Run(ctx)
}

func runHistory(ctx context.Context, cfg *config.Config, limit int) error {
	if cfg.History.Path == "" {
		return fmt.Errorf("history is disabled (history.path is empty)")
	}
	db, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no publish runs recorded")
		return nil
	}
	fmt.Printf("%-36s  %-20s  %-8s  %-10s  %s\n", "RUN", "STARTED", "OUTCOME", "DURATION", "CHANGES")
	for _, run := range runs {
		fmt.Printf("%-36s  %-20s  %-8s  %-10s  +%d ~%d -%d\n",
			run.ID,
			run.Started.Format(time.DateTime),
			run.Outcome,
			run.Finished.Sub(run.Started).Round(time.Millisecond),
			run.Created, run.Updated, run.Deleted)
	}
	return nil
}

// buildTree renders the configured source and loads the result.
func buildTree(ctx context.Context, cfg *config.Config) (*site.Tree, error) {
	renderer := newRenderer(cfg)
	if err := renderer.Render(ctx, cfg.Source.Dir, cfg.Renderer.Output); err != nil {
		return nil, fmt.Errorf("render site: %w", err)
	}
	return site.Load(cfg.Renderer.Output)
}
