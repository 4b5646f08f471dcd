package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_CountsAndObserves(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStageDuration("render", 120*time.Millisecond)
	pr.ObserveBuildDuration(time.Second)
	pr.IncStageResult("render", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.AddPagesRendered(7)
	pr.AddPagesSkipped("draft", 2)
	pr.AddPagesSkipped("future", 0) // no-op

	require.InDelta(t, 7, testutil.ToFloat64(pr.pagesRendered), 1e-9)
	require.InDelta(t, 2, testutil.ToFloat64(pr.pagesSkipped.WithLabelValues("draft")), 1e-9)
	require.InDelta(t, 1, testutil.ToFloat64(pr.stageResults.WithLabelValues("render", "success")), 1e-9)
	require.InDelta(t, 1, testutil.ToFloat64(pr.buildOutcome.WithLabelValues("success")), 1e-9)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestNoopRecorder_IsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("x", time.Second)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("x", ResultFatal)
	r.IncBuildOutcome("failed")
	r.AddPagesRendered(1)
	r.AddPagesSkipped("draft", 1)
}
