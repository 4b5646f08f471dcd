package build

import (
	"time"
)

// Outcome is the typed enumeration of final build result states.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeWarning Outcome = "warning"
	OutcomeFailed  Outcome = "failed"
)

// Report captures high-level metrics about one build run.
type Report struct {
	BuildID string
	Start   time.Time
	End     time.Time

	PagesDiscovered int
	PagesRendered   int
	ListsRendered   int
	Artifacts       int // total files written
	LinksChecked    int // populated by the optional verify stage

	// Skipped counts excluded pages per filter reason.
	Skipped map[SkipReason]int
	// FrontMatterSkips counts pages dropped for malformed front matter.
	FrontMatterSkips int

	StageDurations map[string]time.Duration

	Errors   []error // fatal errors causing build abortion (at most one today)
	Warnings []error // non-fatal issues (per-page render/write failures, link issues)

	Outcome Outcome
}

func newReport(buildID string, start time.Time) *Report {
	return &Report{
		BuildID:        buildID,
		Start:          start,
		Skipped:        map[SkipReason]int{},
		StageDurations: map[string]time.Duration{},
	}
}

// finalize derives the overall outcome.
func (r *Report) finalize(end time.Time) {
	r.End = end
	switch {
	case len(r.Errors) > 0:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0 || r.FrontMatterSkips > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Duration is the wall time of the build.
func (r *Report) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// TotalSkipped sums the filter skip counts.
func (r *Report) TotalSkipped() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}
