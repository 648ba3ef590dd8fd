package fuzzylight

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"fuzzylight/internal/fuzzy"
	"fuzzylight/internal/lamp"
	"fuzzylight/internal/metrics"
)

func busyEvening() map[string]float64 {
	return map[string]float64{
		lamp.AmbientLight:       170,
		lamp.Distance:           20,
		lamp.TrafficActivity:    20,
		lamp.PedestrianActivity: 480,
		lamp.Visibility:         2200,
		lamp.TimeOfDay:          20,
	}
}

func allZero() map[string]float64 {
	in := make(map[string]float64)
	for _, name := range lamp.InputNames() {
		in[name] = 0
	}
	return in
}

func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	if opts.ExportsDir == "" {
		opts.ExportsDir = t.TempDir()
	}
	c, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, c.Init(context.Background()))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestEvaluateBusyEvening(t *testing.T) {
	c := newTestClient(t, Options{})
	res, err := c.Evaluate(context.Background(), EvaluateRequest{Scenario: "busy evening", Inputs: busyEvening()})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "busy evening", res.Scenario)
	assert.InDelta(t, 16607.63, res.Outputs[lamp.Brightness], 0.5)
	assert.InDelta(t, 4430.70, res.Outputs[lamp.ColorTemperature], 0.5)
	assert.Empty(t, res.Empty)
	require.Len(t, res.Activations, 16)
	assert.InDelta(t, 5.0/17.0, res.Activations[8].Strength, 1e-9)
}

func TestEvaluateErrors(t *testing.T) {
	c := newTestClient(t, Options{})
	ctx := context.Background()

	in := busyEvening()
	in[lamp.Distance] = 500
	_, err := c.Evaluate(ctx, EvaluateRequest{Inputs: in})
	assert.ErrorIs(t, err, fuzzy.ErrOutOfRange)

	in = busyEvening()
	delete(in, lamp.TimeOfDay)
	_, err = c.Evaluate(ctx, EvaluateRequest{Inputs: in})
	assert.ErrorIs(t, err, fuzzy.ErrMissingInput)

	in = busyEvening()
	in["humidity"] = 40
	_, err = c.Evaluate(ctx, EvaluateRequest{Inputs: in})
	assert.ErrorIs(t, err, fuzzy.ErrUnknownVariable)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.Evaluate(cancelled, EvaluateRequest{Inputs: busyEvening()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateEmptyAggregateReturnsPartialResult(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := newTestClient(t, Options{Logger: zap.New(core)})

	res, err := c.Evaluate(context.Background(), EvaluateRequest{Inputs: allZero(), Persist: true})
	require.ErrorIs(t, err, fuzzy.ErrEmptyAggregate)
	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.Outputs)
	assert.ElementsMatch(t, []string{lamp.Brightness, lamp.ColorTemperature}, res.Empty)
	assert.Equal(t, 1, logs.FilterMessage("evaluation produced empty outputs").Len())

	runs, err := c.Runs(context.Background(), RunsRequest{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].RunID)
}

func TestEvaluateRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newTestClient(t, Options{Registerer: reg})
	ctx := context.Background()

	_, err := c.Evaluate(ctx, EvaluateRequest{Inputs: busyEvening()})
	require.NoError(t, err)
	_, _ = c.Evaluate(ctx, EvaluateRequest{Inputs: allZero()})

	n, err := testutil.GatherAndCount(reg, metrics.EvaluationsN, metrics.EvaluationFailuresN, metrics.RuleActivationsN)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRunsNewestFirst(t *testing.T) {
	c := newTestClient(t, Options{})
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 21, 0, 0, 0, time.UTC)
	tick := 0
	c.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		res, err := c.Evaluate(ctx, EvaluateRequest{Scenario: name, Inputs: busyEvening(), Persist: true})
		require.NoError(t, err)
		ids = append(ids, res.RunID)
	}
	_, err := c.Evaluate(ctx, EvaluateRequest{Inputs: busyEvening()})
	require.NoError(t, err)

	runs, err := c.Runs(ctx, RunsRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].RunID)
	assert.Equal(t, "third", runs[0].Scenario)
	assert.Equal(t, ids[1], runs[1].RunID)
	assert.Equal(t, "2026-06-01T21:00:03Z", runs[0].CreatedAtUTC)
}

func TestBatch(t *testing.T) {
	c := newTestClient(t, Options{})
	bad := busyEvening()
	bad[lamp.Visibility] = 9000

	items := []EvaluateRequest{
		{Scenario: "a", Inputs: busyEvening()},
		{Scenario: "b", Inputs: bad},
		{Scenario: "c", Inputs: allZero()},
		{Scenario: "d", Inputs: busyEvening()},
	}
	summary, err := c.Batch(context.Background(), BatchRequest{Items: items, Workers: 3})
	require.NoError(t, err)
	require.Len(t, summary.Items, 4)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, int64(3), summary.Latency.Count)
	assert.LessOrEqual(t, summary.Latency.P50, summary.Latency.Max)

	assert.Equal(t, "a", summary.Items[0].Result.Scenario)
	assert.ErrorIs(t, summary.Items[1].Err, fuzzy.ErrOutOfRange)
	assert.ErrorIs(t, summary.Items[2].Err, fuzzy.ErrEmptyAggregate)
	assert.Equal(t, summary.Items[0].Result.Outputs, summary.Items[3].Result.Outputs)

	_, err = c.Batch(context.Background(), BatchRequest{})
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	c := newTestClient(t, Options{})
	ctx := context.Background()

	_, err := c.Export(ctx, ExportRequest{Latest: true})
	assert.Error(t, err)
	_, err = c.Export(ctx, ExportRequest{})
	assert.Error(t, err)
	_, err = c.Export(ctx, ExportRequest{RunID: "x", Latest: true})
	assert.Error(t, err)
	_, err = c.Export(ctx, ExportRequest{RunID: "missing"})
	assert.Error(t, err)

	res, err := c.Evaluate(ctx, EvaluateRequest{Scenario: "busy evening", Inputs: busyEvening(), Persist: true})
	require.NoError(t, err)

	out := t.TempDir()
	summary, err := c.Export(ctx, ExportRequest{Latest: true, OutDir: out})
	require.NoError(t, err)
	assert.Equal(t, res.RunID, summary.RunID)
	assert.Equal(t, filepath.Join(out, res.RunID), summary.Directory)

	for _, name := range append(lamp.InputNames(), lamp.OutputNames()...) {
		_, err := os.Stat(filepath.Join(summary.Directory, name+"_universe.csv"))
		assert.NoError(t, err, name)
	}
	for _, name := range lamp.OutputNames() {
		_, err := os.Stat(filepath.Join(summary.Directory, name+"_aggregate.csv"))
		assert.NoError(t, err, name)
	}

	byID, err := c.Export(ctx, ExportRequest{RunID: res.RunID})
	require.NoError(t, err)
	assert.Equal(t, res.RunID, byID.RunID)
}

func TestVariablesAndRules(t *testing.T) {
	c := newTestClient(t, Options{})

	vars := c.Variables()
	require.Len(t, vars, 8)
	assert.Equal(t, lamp.AmbientLight, vars[0].Name)
	assert.Equal(t, "input", vars[0].Kind)
	assert.Equal(t, fuzzy.Universe{Min: 0, Max: 200, Step: 0.1}, vars[0].Universe)
	assert.Equal(t, TermInfo{Name: "very dark", Shape: "trimf(0, 10, 20)"}, vars[0].Terms[0])
	assert.Equal(t, "output", vars[7].Kind)
	assert.Equal(t, lamp.ColorTemperature, vars[7].Name)

	rules := c.Rules()
	require.Len(t, rules, 16)
	assert.Equal(t, "R9", rules[8].ID)
	assert.Contains(t, rules[8].Text, `brightness is "higher"`)
}

func TestNewUnsupportedStore(t *testing.T) {
	_, err := New(Options{StoreKind: "postgres"})
	assert.Error(t, err)
}
