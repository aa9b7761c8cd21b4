// Package research runs one end-to-end research cycle for a ticker: fetch
// the market snapshot, fan the analysts out in parallel, then synthesize
// their findings into a single recommendation.
package research

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/equilens/equilens/internal/agents"
	"github.com/equilens/equilens/internal/models"
	"github.com/equilens/equilens/internal/workflow"
)

const (
	taskFetch      = "fetch"
	taskSynthesize = "synthesize"
)

// DataProvider supplies the market snapshot a run starts from.
type DataProvider interface {
	Fetch(ctx context.Context, ticker string) (*models.MarketSnapshot, error)
}

// Synthesizer folds the findings into the final recommendation.
type Synthesizer interface {
	Synthesize(ctx context.Context, snap *models.MarketSnapshot, findings map[string]models.Finding) (models.Recommendation, error)
}

// Options tunes one orchestrator. Zero timeouts disable the stage deadline.
type Options struct {
	FetchTimeout     time.Duration
	AnalysisTimeout  time.Duration
	SynthesisTimeout time.Duration
	Logf             func(format string, args ...any)
}

// Orchestrator wires provider, analysts and synthesizer into a task graph
// and runs it once per Run call. It is safe for concurrent Run calls; all
// per-run state lives in the run itself.
type Orchestrator struct {
	provider DataProvider
	team     *agents.Registry
	synth    Synthesizer
	opts     Options
}

func New(provider DataProvider, team *agents.Registry, synth Synthesizer, opts Options) (*Orchestrator, error) {
	if provider == nil {
		return nil, errors.New("data provider is required")
	}
	if team == nil || team.Len() == 0 {
		return nil, errors.New("at least one analyst is required")
	}
	if synth == nil {
		return nil, errors.New("synthesizer is required")
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}
	return &Orchestrator{provider: provider, team: team, synth: synth, opts: opts}, nil
}

// run is the per-invocation state: the research record plus the phase the
// pipeline has reached.
type run struct {
	state *models.ResearchState

	mu    sync.Mutex
	phase Phase
}

// advance moves the phase forward and reports whether it changed. Later
// phases never regress to earlier ones, so parallel analysts all reporting
// ANALYZING is a no-op after the first.
func (r *run) advance(p Phase) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p <= r.phase {
		return false
	}
	r.phase = p
	return true
}

// advance records the run's phase transition and logs it once.
func (o *Orchestrator) advance(r *run, p Phase) {
	if r.advance(p) {
		o.opts.Logf("%s: phase %s", r.state.Ticker, p)
	}
}

func taskNameFor(analyst string) string {
	return "analyst:" + analyst
}

// Run executes the full pipeline for ticker and returns the final report.
// On failure the returned error wraps a *RunError naming the stage that
// broke; the report is nil.
func (o *Orchestrator) Run(ctx context.Context, ticker string) (*models.FinalReport, error) {
	start := time.Now()
	r := &run{state: models.NewResearchState(ticker)}

	g, err := o.buildGraph(r)
	if err != nil {
		return nil, fmt.Errorf("building workflow: %w", err)
	}

	if err := g.Run(ctx, r); err != nil {
		o.advance(r, PhaseFailed)
		var runErr *RunError
		if errors.As(err, &runErr) {
			return nil, err
		}
		// A caller-initiated cancellation is not a stage failure.
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, newRunError(KindTimeout, ticker, err)
		}
		return nil, newRunError(KindAnalysis, ticker, err)
	}

	rec := r.state.Recommendation()
	if rec == nil {
		o.advance(r, PhaseFailed)
		return nil, newRunError(KindSynthesis, ticker, errors.New("workflow finished without a recommendation"))
	}
	o.advance(r, PhaseDone)

	return &models.FinalReport{
		Ticker:         ticker,
		Recommendation: *rec,
		Findings:       r.state.Findings(),
		GeneratedAt:    time.Now(),
		Elapsed:        time.Since(start),
	}, nil
}

func (o *Orchestrator) buildGraph(r *run) (*workflow.Graph[*run], error) {
	g := workflow.NewGraph[*run]()

	if err := g.Add(workflow.Task[*run]{
		Name: taskFetch,
		Run:  o.fetchTask,
	}); err != nil {
		return nil, err
	}

	analystTasks := make([]string, 0, o.team.Len())
	for _, a := range o.team.All() {
		a := a
		name := taskNameFor(a.Name())
		analystTasks = append(analystTasks, name)
		if err := g.Add(workflow.Task[*run]{
			Name:  name,
			Needs: []string{taskFetch},
			Run: func(ctx context.Context, r *run) error {
				return o.analystTask(ctx, r, a)
			},
		}); err != nil {
			return nil, err
		}
	}

	if err := g.Add(workflow.Task[*run]{
		Name:  taskSynthesize,
		Needs: analystTasks,
		Run:   o.synthesizeTask,
	}); err != nil {
		return nil, err
	}
	return g, nil
}

func (o *Orchestrator) fetchTask(ctx context.Context, r *run) error {
	o.advance(r, PhaseFetching)
	o.opts.Logf("fetching market data for %s", r.state.Ticker)

	ctx, cancel := stageContext(ctx, o.opts.FetchTimeout)
	defer cancel()

	snap, err := o.provider.Fetch(ctx, r.state.Ticker)
	if err != nil {
		return o.classify(KindFetch, r.state.Ticker, err)
	}
	if snap == nil {
		return newRunError(KindFetch, r.state.Ticker, errors.New("provider returned no snapshot"))
	}
	r.state.SetSnapshot(snap)
	return nil
}

func (o *Orchestrator) analystTask(ctx context.Context, r *run, a agents.Analyst) error {
	o.advance(r, PhaseAnalyzing)
	o.opts.Logf("%s analyzing %s", a.Name(), r.state.Ticker)

	ctx, cancel := stageContext(ctx, o.opts.AnalysisTimeout)
	defer cancel()

	finding, err := a.Analyze(ctx, r.state.Snapshot())
	if err != nil {
		return o.classify(KindAnalysis, r.state.Ticker, err)
	}
	if err := r.state.SetFinding(finding); err != nil {
		return newRunError(KindAnalysis, r.state.Ticker, err)
	}
	return nil
}

func (o *Orchestrator) synthesizeTask(ctx context.Context, r *run) error {
	o.advance(r, PhaseSynthesizing)
	o.opts.Logf("synthesizing %d findings for %s", r.state.FindingCount(), r.state.Ticker)

	ctx, cancel := stageContext(ctx, o.opts.SynthesisTimeout)
	defer cancel()

	rec, err := o.synth.Synthesize(ctx, r.state.Snapshot(), r.state.Findings())
	if err != nil {
		return o.classify(KindSynthesis, r.state.Ticker, err)
	}
	r.state.SetRecommendation(rec)
	return nil
}

func stageContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// classify maps a stage failure to its error kind, promoting deadline
// overruns to the timeout kind so callers can tell a slow model apart from
// a broken one. Cancellation passes through untouched: a Ctrl-C is the
// caller's doing, not the stage's.
func (o *Orchestrator) classify(kind Kind, ticker string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newRunError(KindTimeout, ticker, err)
	}
	return newRunError(kind, ticker, err)
}
