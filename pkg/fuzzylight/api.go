// Package fuzzylight is the client API of the street-lamp fuzzy controller:
// single and batch evaluation, persisted runs and plot exports.
package fuzzylight

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"fuzzylight/internal/artifacts"
	"fuzzylight/internal/fuzzy"
	"fuzzylight/internal/lamp"
	"fuzzylight/internal/logging"
	"fuzzylight/internal/metrics"
	"fuzzylight/internal/model"
	"fuzzylight/internal/session"
	"fuzzylight/internal/storage"
)

const (
	defaultExportsDir = "exports"
	defaultDBPath     = "fuzzylight.db"
	defaultRunsLimit  = 20

	// Batch latencies are recorded in microseconds up to one minute.
	maxLatencyMicros = int64(time.Minute / time.Microsecond)
)

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
	// RuleBase defaults to the built-in street-lamp bank.
	RuleBase *fuzzy.RuleBase
	// Logger defaults to logging.Logger().
	Logger *zap.Logger
	// Registerer receives the engine metrics; nil leaves them unregistered.
	Registerer prometheus.Registerer
}

type Client struct {
	store   storage.Store
	base    *fuzzy.RuleBase
	metrics *metrics.Engine
	log     *zap.Logger

	exportsDir string
	now        func() time.Time
}

type EvaluateRequest struct {
	Scenario string
	Inputs   map[string]float64
	// Persist stores the run so it can be listed and exported later.
	Persist bool
}

type EvaluateResult struct {
	RunID       string
	Scenario    string
	Inputs      map[string]float64
	Outputs     map[string]float64
	Activations []fuzzy.Activation
	// Empty lists outputs that received no activation; they are absent from Outputs.
	Empty   []string
	Elapsed time.Duration
}

type BatchRequest struct {
	Items   []EvaluateRequest
	Workers int
}

type BatchItem struct {
	Result EvaluateResult
	Err    error
}

type LatencySummary struct {
	Count int64
	P50   time.Duration
	P90   time.Duration
	P99   time.Duration
	Max   time.Duration
}

type BatchSummary struct {
	Items     []BatchItem
	Succeeded int
	Failed    int
	Latency   LatencySummary
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Scenario     string
	Outputs      map[string]float64
	Empty        []string
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type TermInfo struct {
	Name  string
	Shape string
}

type VariableInfo struct {
	Name     string
	Kind     string
	Universe fuzzy.Universe
	Terms    []TermInfo
}

type RuleInfo struct {
	ID    string
	Label string
	Text  string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	log := opts.Logger
	if log == nil {
		log = logging.Logger()
	}

	base := opts.RuleBase
	if base == nil {
		var err error
		base, err = lamp.NewRuleBase()
		if err != nil {
			return nil, fmt.Errorf("build rule base: %w", err)
		}
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		base:       base,
		metrics:    metrics.NewEngine(opts.Registerer),
		log:        log,
		exportsDir: exportsDir,
		now:        time.Now,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// RuleBase returns the shared rule base evaluated by the client.
func (c *Client) RuleBase() *fuzzy.RuleBase {
	return c.base
}

// Evaluate runs one inference pass in a fresh session. When some outputs
// received no activation the result is returned together with an error
// matching fuzzy.ErrEmptyAggregate.
func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (EvaluateResult, error) {
	if err := ctx.Err(); err != nil {
		return EvaluateResult{}, err
	}

	start := time.Now()
	s := session.New(c.base)
	err := s.SetInputs(req.Inputs)
	if err == nil {
		err = s.Compute()
	}
	elapsed := time.Since(start)
	activations, _ := s.Activations()
	c.metrics.Observe(elapsed, activations, err)

	if err != nil && !errors.Is(err, fuzzy.ErrEmptyAggregate) {
		c.log.Warn("evaluation failed", zap.String("scenario", req.Scenario), zap.Error(err))
		return EvaluateResult{}, err
	}

	outputs, _ := s.Outputs()
	res := EvaluateResult{
		RunID:       uuid.NewString(),
		Scenario:    req.Scenario,
		Inputs:      s.Inputs(),
		Outputs:     outputs,
		Activations: activations,
		Empty:       s.Empty(),
		Elapsed:     elapsed,
	}
	if err != nil {
		c.log.Warn("evaluation produced empty outputs",
			zap.String("run_id", res.RunID),
			zap.String("scenario", req.Scenario),
			zap.Strings("empty", res.Empty),
		)
	} else {
		c.log.Debug("evaluated",
			zap.String("run_id", res.RunID),
			zap.String("scenario", req.Scenario),
			zap.Duration("elapsed", elapsed),
		)
	}

	if req.Persist {
		if saveErr := c.store.SaveRun(ctx, c.toRecord(res)); saveErr != nil {
			return EvaluateResult{}, fmt.Errorf("save run %s: %w", res.RunID, saveErr)
		}
	}
	return res, err
}

// Batch evaluates every item, fanning out over req.Workers goroutines.
// Item errors are reported per item; the returned error is reserved for
// cancellation and invalid requests.
func (c *Client) Batch(ctx context.Context, req BatchRequest) (BatchSummary, error) {
	if len(req.Items) == 0 {
		return BatchSummary{}, errors.New("batch requires at least one item")
	}
	workers := req.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(req.Items) {
		workers = len(req.Items)
	}

	items := make([]BatchItem, len(req.Items))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := c.Evaluate(ctx, req.Items[i])
				items[i] = BatchItem{Result: res, Err: err}
			}
		}()
	}
feed:
	for i := range req.Items {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return BatchSummary{}, err
	}

	hg := hdrhistogram.New(1, maxLatencyMicros, 3)
	summary := BatchSummary{Items: items}
	for _, item := range items {
		if item.Err != nil && !errors.Is(item.Err, fuzzy.ErrEmptyAggregate) {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		us := item.Result.Elapsed.Microseconds()
		if us < 1 {
			us = 1
		}
		if us > maxLatencyMicros {
			us = maxLatencyMicros
		}
		if err := hg.RecordValue(us); err != nil {
			return BatchSummary{}, fmt.Errorf("record latency: %w", err)
		}
	}
	summary.Latency = LatencySummary{
		Count: hg.TotalCount(),
		P50:   time.Duration(hg.ValueAtQuantile(50)) * time.Microsecond,
		P90:   time.Duration(hg.ValueAtQuantile(90)) * time.Microsecond,
		P99:   time.Duration(hg.ValueAtQuantile(99)) * time.Microsecond,
		Max:   time.Duration(hg.Max()) * time.Microsecond,
	}
	return summary, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = defaultRunsLimit
	}

	runs, err := c.store.ListRuns(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]RunItem, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunItem{
			RunID:        run.ID,
			CreatedAtUTC: run.CreatedAtUTC.Format(time.RFC3339),
			Scenario:     run.Scenario,
			Outputs:      run.Outputs,
			Empty:        run.Empty,
		})
	}
	return out, nil
}

// Export recomputes a stored run and writes its record, the universe of
// every variable and the aggregated output curves under the export dir.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	run, err := c.lookupRun(ctx, req)
	if err != nil {
		return ExportSummary{}, err
	}

	s := session.New(c.base)
	if err := s.SetInputs(run.Inputs); err != nil {
		return ExportSummary{}, fmt.Errorf("replay run %s: %w", run.ID, err)
	}
	if err := s.Compute(); err != nil && !errors.Is(err, fuzzy.ErrEmptyAggregate) {
		return ExportSummary{}, fmt.Errorf("replay run %s: %w", run.ID, err)
	}

	curves := make(map[string][]fuzzy.Point, len(c.base.Outputs()))
	for _, v := range c.base.Outputs() {
		curve, err := s.AggregatedCurve(v.Name())
		if err != nil {
			return ExportSummary{}, err
		}
		curves[v.Name()] = curve
	}

	dir, err := artifacts.WriteRunExport(req.OutDir, artifacts.RunExport{
		Run:       run,
		Variables: append(c.base.Inputs(), c.base.Outputs()...),
		Curves:    curves,
	})
	if err != nil {
		return ExportSummary{}, err
	}
	c.log.Info("exported run", zap.String("run_id", run.ID), zap.String("dir", dir))
	return ExportSummary{RunID: run.ID, Directory: filepath.Clean(dir)}, nil
}

func (c *Client) lookupRun(ctx context.Context, req ExportRequest) (model.RunRecord, error) {
	if req.Latest {
		runs, err := c.store.ListRuns(ctx, 1)
		if err != nil {
			return model.RunRecord{}, err
		}
		if len(runs) == 0 {
			return model.RunRecord{}, errors.New("no runs available to export")
		}
		return runs[0], nil
	}
	run, ok, err := c.store.GetRun(ctx, req.RunID)
	if err != nil {
		return model.RunRecord{}, err
	}
	if !ok {
		return model.RunRecord{}, fmt.Errorf("run not found: %s", req.RunID)
	}
	return run, nil
}

// Variables describes every input then every output variable.
func (c *Client) Variables() []VariableInfo {
	var out []VariableInfo
	for _, v := range c.base.Inputs() {
		out = append(out, describeVariable(v, "input"))
	}
	for _, v := range c.base.Outputs() {
		out = append(out, describeVariable(v, "output"))
	}
	return out
}

func describeVariable(v *fuzzy.Variable, kind string) VariableInfo {
	info := VariableInfo{Name: v.Name(), Kind: kind, Universe: v.Universe()}
	for _, name := range v.Terms() {
		fn, err := v.Term(name)
		if err != nil {
			continue
		}
		info.Terms = append(info.Terms, TermInfo{Name: name, Shape: fmt.Sprint(fn)})
	}
	return info
}

func (c *Client) Rules() []RuleInfo {
	rules := c.base.Rules()
	out := make([]RuleInfo, 0, len(rules))
	for _, r := range rules {
		out = append(out, RuleInfo{ID: r.ID, Label: r.Label, Text: r.String()})
	}
	return out
}

func (c *Client) toRecord(res EvaluateResult) model.RunRecord {
	run := model.RunRecord{
		ID:           res.RunID,
		CreatedAtUTC: c.now().UTC(),
		Scenario:     res.Scenario,
		Inputs:       res.Inputs,
		Outputs:      res.Outputs,
		Empty:        res.Empty,
	}
	for _, a := range res.Activations {
		run.Activations = append(run.Activations, model.RuleActivation{
			RuleID:   a.RuleID,
			Label:    a.Label,
			Strength: a.Strength,
		})
	}
	storage.Stamp(&run)
	return run
}
