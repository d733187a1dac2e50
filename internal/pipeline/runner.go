package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/tagdict/internal/diag"
)

// Config describes the inputs and outputs of a run. A document whose entry
// is empty is skipped, and the dictionary is only built when both
// documents are enabled.
type Config struct {
	JPDir   string
	JPEntry string
	ENDir   string
	ENEntry string

	// OutputDir holds the JSON outputs. An empty file name disables the
	// corresponding output.
	OutputDir  string
	JPOutput   string
	ENOutput   string
	DictOutput string

	// Encodings is the decoder chain; empty selects the defaults.
	Encodings []string

	// Icons extends the default restriction icon table.
	Icons map[string]string
}

// Runner executes complete runs.
type Runner struct {
	cfg           Config
	store         RunStore
	skipUnchanged bool
	logger        *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger used by the runner and its steps.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithStore records every completed run in store.
func WithStore(store RunStore) RunnerOption {
	return func(r *Runner) {
		r.store = store
	}
}

// WithSkipUnchanged skips parsing when the source digests equal those of
// the latest stored run. It has no effect without a store.
func WithSkipUnchanged(skip bool) RunnerOption {
	return func(r *Runner) {
		r.skipUnchanged = skip
	}
}

// NewRunner creates a Runner.
func NewRunner(cfg Config, opts ...RunnerOption) *Runner {
	r := &Runner{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run executes one run. The returned Run is non-nil even on error, so its
// diagnostics can still be reported.
//
// Both documents are loaded and parsed concurrently, each by its own
// pipeline. The dictionary and persistence steps run after both finish.
func (r *Runner) Run(ctx context.Context) (*Run, error) {
	run := NewRun(diag.NewCollector(r.logger))
	run.JP.Dir, run.JP.Entry = r.cfg.JPDir, r.cfg.JPEntry
	run.EN.Dir, run.EN.Entry = r.cfg.ENDir, r.cfg.ENEntry
	defer func() { run.Duration = time.Since(run.StartedAt) }()

	r.logger.Info("starting run", "run_id", run.ID)

	if err := r.concurrently(ctx, run, r.loadPipelines(run)); err != nil {
		return run, err
	}

	if r.unchanged(ctx, run) {
		run.Skipped = true
		r.logger.Info("sources unchanged, skipping run", "run_id", run.ID)
		return run, nil
	}

	if err := r.concurrently(ctx, run, r.parsePipelines(run)); err != nil {
		return run, err
	}

	join := New(WithName("join"), WithLogger(r.logger))
	if run.JP.Enabled() && run.EN.Enabled() {
		join.AddStep(NewDictStep(r.outputPath(r.cfg.DictOutput)))
	}
	if r.store != nil {
		join.AddStep(NewPersistStep(r.store))
	}
	run.Duration = time.Since(run.StartedAt)
	if err := join.Execute(ctx, run); err != nil {
		return run, err
	}
	run.Steps[join.Name()] = join.Performed()

	r.logger.Info("run complete",
		"run_id", run.ID,
		"jp_records", run.JP.Records,
		"en_records", run.EN.Records,
		"diagnostics", run.Diags.Count(),
	)
	return run, nil
}

func (r *Runner) loadPipelines(run *Run) []*Pipeline {
	pipelines := make([]*Pipeline, 0, 2)
	for _, lang := range []Lang{Japanese, English} {
		if !run.Document(lang).Enabled() {
			continue
		}
		p := New(WithName("load_"+string(lang)), WithLogger(r.logger))
		p.AddStep(NewLoadStep(lang, r.cfg.Encodings, r.logger))
		pipelines = append(pipelines, p)
	}
	return pipelines
}

func (r *Runner) parsePipelines(run *Run) []*Pipeline {
	pipelines := make([]*Pipeline, 0, 2)
	if run.JP.Enabled() {
		p := New(WithName("jp"), WithLogger(r.logger))
		p.AddSteps(&LexStep{}, NewEmitStep(r.cfg.Icons, r.logger))
		if r.cfg.JPOutput != "" {
			p.AddStep(NewDumpStep(Japanese, r.outputPath(r.cfg.JPOutput)))
		}
		pipelines = append(pipelines, p)
	}
	if run.EN.Enabled() {
		p := New(WithName("en"), WithLogger(r.logger))
		p.AddStep(NewParseEnglishStep(r.logger))
		if r.cfg.ENOutput != "" {
			p.AddStep(NewDumpStep(English, r.outputPath(r.cfg.ENOutput)))
		}
		pipelines = append(pipelines, p)
	}
	return pipelines
}

// concurrently executes pipelines in parallel. The pipelines touch
// disjoint fields of run; the shared diagnostics collector is safe for
// concurrent use.
func (r *Runner) concurrently(ctx context.Context, run *Run, pipelines []*Pipeline) error {
	g, gctx := errgroup.WithContext(ctx)
	performed := make([][]string, len(pipelines))

	for i, p := range pipelines {
		g.Go(func() error {
			err := p.Execute(gctx, run)
			performed[i] = p.Performed()
			return err
		})
	}
	err := g.Wait()

	for i, p := range pipelines {
		run.Steps[p.Name()] = performed[i]
	}
	return err
}

func (r *Runner) unchanged(ctx context.Context, run *Run) bool {
	if !r.skipUnchanged || r.store == nil {
		return false
	}
	latest, err := r.store.LatestRun(ctx)
	if err != nil {
		r.logger.Warn("failed to read latest run", "error", err)
		return false
	}
	return latest != nil && latest.JPDigest == run.JP.Digest && latest.ENDigest == run.EN.Digest
}

func (r *Runner) outputPath(name string) string {
	if name == "" {
		return ""
	}
	return filepath.Join(r.cfg.OutputDir, name)
}
