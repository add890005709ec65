// Package publisher implements the build -> sync -> invalidate pipeline that
// takes a documentation source tree live: render the static site, mirror it
// into the origin object store, then purge the edge cache. Stages run
// strictly in order; a failed render or sync aborts before anything
// downstream observes it, while invalidation problems only delay cache
// propagation and never fail a publish.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitepub/internal/cdn"
	"git.home.luguber.info/inful/sitepub/internal/config"
	puberrors "git.home.luguber.info/inful/sitepub/internal/errors"
	"git.home.luguber.info/inful/sitepub/internal/history"
	"git.home.luguber.info/inful/sitepub/internal/linkcheck"
	"git.home.luguber.info/inful/sitepub/internal/logfields"
	"git.home.luguber.info/inful/sitepub/internal/metrics"
	"git.home.luguber.info/inful/sitepub/internal/params"
	"git.home.luguber.info/inful/sitepub/internal/render"
	"git.home.luguber.info/inful/sitepub/internal/retry"
	"git.home.luguber.info/inful/sitepub/internal/site"
	"git.home.luguber.info/inful/sitepub/internal/source"
	"git.home.luguber.info/inful/sitepub/internal/storage"
)

// OpenStore opens the destination object store for a bucket identifier.
type OpenStore func(bucket string) (storage.ObjectStore, error)

// Pipeline wires the publish collaborators together. All collaborators are
// narrow interfaces so the sequential logic tests against fakes.
type Pipeline struct {
	cfg         *config.Config
	renderer    render.Renderer
	openStore   OpenStore
	invalidator cdn.Invalidator
	paramStore  params.Store
	recorder    metrics.Recorder
	historyDB   history.Store
	notifier    Notifier
	policy      retry.Policy

	// CheckoutDir overrides where a git source is checked out (tests).
	CheckoutDir string
}

// New creates a pipeline. historyDB, notifier and invalidator may be nil;
// recorder defaults to a noop.
func New(cfg *config.Config, renderer render.Renderer, open OpenStore, invalidator cdn.Invalidator, paramStore params.Store, recorder metrics.Recorder) *Pipeline {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Pipeline{
		cfg:         cfg,
		renderer:    renderer,
		openStore:   open,
		invalidator: invalidator,
		paramStore:  paramStore,
		recorder:    recorder,
		policy:      retry.FromConfig(cfg.Retry),
	}
}

// WithHistory attaches a publish history store.
func (p *Pipeline) WithHistory(db history.Store) *Pipeline { p.historyDB = db; return p }

// WithNotifier attaches a completion-event notifier.
func (p *Pipeline) WithNotifier(n Notifier) *Pipeline { p.notifier = n; return p }

// publishState carries mutable state across stages of one run.
type publishState struct {
	Report   *PublishReport
	Recorder metrics.Recorder

	SourceDir      string
	Tree           *site.Tree
	Bucket         string
	DistributionID string

	// skipInvalidate is set when the distribution id could not be resolved;
	// the publish still succeeds, cache propagation is just delayed.
	skipInvalidate bool
}

// Run executes one publish. The returned report is non-nil even on failure;
// err is non-nil iff the run failed (fatal or canceled stage).
func (p *Pipeline) Run(ctx context.Context) (*PublishReport, error) {
	runID := uuid.NewString()
	ps := &publishState{
		Report:    newPublishReport(runID),
		Recorder:  p.recorder,
		SourceDir: p.cfg.Source.Dir,
	}

	slog.Info("Starting publish",
		logfields.RunID(runID),
		logfields.Project(p.cfg.Project),
		logfields.Source(ps.SourceDir))

	stages := p.stages()
	err := runStages(ctx, ps, stages)

	ps.Report.Finished = time.Now()
	p.recorder.ObservePublishDuration(ps.Report.Finished.Sub(ps.Report.Started))
	p.recorder.IncPublishOutcome(ps.Report.Outcome())

	p.persistRun(ctx, ps.Report, stages)
	p.notifyCompleted(ctx, ps.Report)

	if err != nil {
		return ps.Report, err
	}
	slog.Info("Publish completed",
		logfields.RunID(runID),
		slog.String("outcome", ps.Report.Outcome()),
		slog.Int("created", ps.Report.Mirror.Created),
		slog.Int("updated", ps.Report.Mirror.Updated),
		slog.Int("deleted", ps.Report.Mirror.Deleted))
	return ps.Report, nil
}

// stages assembles the stage list for this configuration.
func (p *Pipeline) stages() []stageDef {
	var defs []stageDef
	if p.cfg.Source.Repo.URL != "" {
		defs = append(defs, stageDef{StageCheckout, p.stageCheckout})
	}
	defs = append(defs,
		stageDef{StageRender, p.stageRender},
		stageDef{StageLoadTree, p.stageLoadTree},
		stageDef{StageResolveParams, p.stageResolveParams},
		stageDef{StageSync, p.stageSync},
	)
	if p.cfg.Links.Check {
		defs = append(defs, stageDef{StageCheckLinks, p.stageCheckLinks})
	}
	defs = append(defs, stageDef{StageInvalidate, p.stageInvalidate})
	return defs
}

func (p *Pipeline) stageCheckout(ctx context.Context, ps *publishState) error {
	dest := p.CheckoutDir
	if dest == "" {
		dest = ".sitepub-checkout"
	}
	dir, err := source.Checkout(ctx, p.cfg.Source.Repo, dest)
	if err != nil {
		return newFatalStageError(StageCheckout, puberrors.SourceCheckoutFailed(p.cfg.Source.Repo.URL, err))
	}
	ps.SourceDir = dir
	return nil
}

func (p *Pipeline) stageRender(ctx context.Context, ps *publishState) error {
	slog.Info("Building site", logfields.Source(ps.SourceDir), logfields.Path(p.cfg.Renderer.Output))
	if err := p.renderer.Render(ctx, ps.SourceDir, p.cfg.Renderer.Output); err != nil {
		return newFatalStageError(StageRender, puberrors.RenderFailed(err))
	}
	return nil
}

func (p *Pipeline) stageLoadTree(ctx context.Context, ps *publishState) error {
	tree, err := site.Load(p.cfg.Renderer.Output)
	if err != nil {
		return newFatalStageError(StageLoadTree, puberrors.TreeLoadFailed(p.cfg.Renderer.Output, err))
	}
	if tree.Len() == 0 {
		return newFatalStageError(StageLoadTree, fmt.Errorf("renderer produced an empty site at %s", p.cfg.Renderer.Output))
	}
	ps.Tree = tree
	return nil
}

func (p *Pipeline) stageResolveParams(ctx context.Context, ps *publishState) error {
	bucketKey := params.Key(p.cfg.Project, params.KeyBucket)
	bucket, err := p.paramStore.Get(ctx, bucketKey)
	if err != nil {
		// The destination bucket is non-negotiable.
		if params.IsNotFound(err) {
			return newFatalStageError(StageResolveParams, puberrors.ParamMissing(bucketKey))
		}
		return newFatalStageError(StageResolveParams, err)
	}
	ps.Bucket = bucket
	ps.Report.Bucket = bucket

	distKey := params.Key(p.cfg.Project, params.KeyDistribution)
	dist, err := p.paramStore.Get(ctx, distKey)
	if err != nil {
		// Stale-but-eventually-correct beats blocking the deploy on a
		// control-plane lookup: warn and publish without invalidation.
		ps.skipInvalidate = true
		return newWarnStageError(StageResolveParams,
			fmt.Errorf("distribution id lookup failed, cache propagation may be delayed: %w", err))
	}
	ps.DistributionID = dist
	ps.Report.DistributionID = dist
	return nil
}

func (p *Pipeline) stageSync(ctx context.Context, ps *publishState) error {
	slog.Info("Syncing site to origin store", logfields.Bucket(ps.Bucket), slog.Int("files", ps.Tree.Len()))
	store, err := p.openStore(ps.Bucket)
	if err != nil {
		return newFatalStageError(StageSync, puberrors.SyncFailed(err))
	}
	defer func() { _ = store.Close() }()

	res, err := storage.Mirror(ctx, store, ps.Tree, p.policy)
	ps.Report.Mirror = res
	p.recorder.AddObjectsSynced("created", res.Created)
	p.recorder.AddObjectsSynced("updated", res.Updated)
	p.recorder.AddObjectsSynced("deleted", res.Deleted)
	p.recorder.AddObjectsSynced("unchanged", res.Unchanged)
	if err != nil {
		return newFatalStageError(StageSync, puberrors.SyncFailed(err))
	}
	return nil
}

func (p *Pipeline) stageCheckLinks(ctx context.Context, ps *publishState) error {
	broken, err := linkcheck.Check(ps.Tree)
	if err != nil {
		return newWarnStageError(StageCheckLinks, err)
	}
	if len(broken) == 0 {
		return nil
	}
	for _, b := range broken {
		slog.Warn("Broken internal link", logfields.Key(b.SourceKey), logfields.URL(b.URL), logfields.Path(b.Resolved))
	}
	err = fmt.Errorf("%d broken internal links", len(broken))
	if p.cfg.Links.Fatal {
		return newFatalStageError(StageCheckLinks, err)
	}
	return newWarnStageError(StageCheckLinks, err)
}

func (p *Pipeline) stageInvalidate(ctx context.Context, ps *publishState) error {
	if ps.skipInvalidate || ps.DistributionID == "" {
		slog.Warn("Skipping cache invalidation, propagation may be delayed",
			logfields.Bucket(ps.Bucket))
		return nil
	}
	if p.invalidator == nil {
		slog.Warn("No CDN invalidator configured, propagation may be delayed",
			logfields.Distribution(ps.DistributionID))
		return nil
	}
	slog.Info("Invalidating edge cache",
		logfields.Distribution(ps.DistributionID),
		logfields.Pattern(p.cfg.CDN.Pattern))
	if err := p.invalidator.Invalidate(ctx, ps.DistributionID, p.cfg.CDN.Pattern); err != nil {
		p.recorder.IncInvalidationResult(false)
		// Origin content is already correct; only propagation latency suffers.
		return newWarnStageError(StageInvalidate, puberrors.InvalidationFailed(ps.DistributionID, err))
	}
	p.recorder.IncInvalidationResult(true)
	return nil
}

func (p *Pipeline) persistRun(ctx context.Context, report *PublishReport, stages []stageDef) {
	if p.historyDB == nil {
		return
	}
	order := make([]StageName, 0, len(stages))
	for _, st := range stages {
		order = append(order, st.name)
	}
	if err := p.historyDB.RecordRun(ctx, report.historyRun(order)); err != nil {
		slog.Warn("Failed to record publish history", logfields.RunID(report.RunID), logfields.Error(err))
	}
}

func (p *Pipeline) notifyCompleted(ctx context.Context, report *PublishReport) {
	if p.notifier == nil {
		return
	}
	event := CompletionEvent{
		RunID:    report.RunID,
		Outcome:  report.Outcome(),
		Bucket:   report.Bucket,
		Created:  report.Mirror.Created,
		Updated:  report.Mirror.Updated,
		Deleted:  report.Mirror.Deleted,
		Finished: report.Finished,
	}
	if err := p.notifier.PublishCompleted(ctx, event); err != nil {
		slog.Warn("Failed to publish completion event", logfields.RunID(report.RunID), logfields.Error(err))
	}
}
