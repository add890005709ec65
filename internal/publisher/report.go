package publisher

import (
	"time"

	"git.home.luguber.info/inful/sitepub/internal/history"
	"git.home.luguber.info/inful/sitepub/internal/metrics"
	"git.home.luguber.info/inful/sitepub/internal/storage"
)

// PublishReport aggregates the outcome of a publish run.
type PublishReport struct {
	RunID    string
	Started  time.Time
	Finished time.Time

	Bucket         string
	DistributionID string

	StageDurations map[StageName]time.Duration
	StageResults   map[StageName]metrics.ResultLabel

	Mirror storage.MirrorResult

	Warnings []*StageError
	Errors   []*StageError
}

func newPublishReport(runID string) *PublishReport {
	return &PublishReport{
		RunID:          runID,
		Started:        time.Now(),
		StageDurations: make(map[StageName]time.Duration),
		StageResults:   make(map[StageName]metrics.ResultLabel),
	}
}

// Outcome classifies the run: failed if any fatal/canceled error was
// recorded, warning if only warnings, success otherwise.
func (r *PublishReport) Outcome() string {
	for _, e := range r.Errors {
		if e.Kind == StageErrorCanceled {
			return "canceled"
		}
	}
	if len(r.Errors) > 0 {
		return "failed"
	}
	if len(r.Warnings) > 0 {
		return "warning"
	}
	return "success"
}

// Failed reports whether the run must surface a non-zero exit.
func (r *PublishReport) Failed() bool {
	return len(r.Errors) > 0
}

// historyRun converts the report into a history record.
func (r *PublishReport) historyRun(order []StageName) *history.Run {
	run := &history.Run{
		ID:       r.RunID,
		Started:  r.Started,
		Finished: r.Finished,
		Outcome:  r.Outcome(),
		Bucket:   r.Bucket,
		Created:  r.Mirror.Created,
		Updated:  r.Mirror.Updated,
		Deleted:  r.Mirror.Deleted,
	}
	for _, name := range order {
		result, ran := r.StageResults[name]
		if !ran {
			continue
		}
		rec := history.StageRecord{
			Stage:    string(name),
			Result:   string(result),
			Duration: r.StageDurations[name],
		}
		for _, se := range append(append([]*StageError(nil), r.Errors...), r.Warnings...) {
			if se.Stage == name {
				rec.Error = se.Err.Error()
				break
			}
		}
		run.Stages = append(run.Stages, rec)
	}
	return run
}
