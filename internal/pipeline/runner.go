package pipeline

import (
	"context"
	"fmt"
	"time"

	"climatetrends/internal/frame"
	"climatetrends/internal/logging"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"
)

// Result is the outcome of one pipeline: a written table or the reason it failed.
type Result struct {
	Name    string
	Output  string
	Rows    int
	Table   dataframe.DataFrame
	Err     error
	Elapsed time.Duration
}

func (r Result) OK() bool { return r.Err == nil }

// Runner executes pipelines one after another and keeps going past failures.
type Runner struct {
	pipelines []Pipeline
	logger    *zap.Logger
	// DryRun skips writing outputs.
	DryRun bool
}

// NewRunner registers pipelines in execution order. A nil logger discards logs.
func NewRunner(logger *zap.Logger, pipelines ...Pipeline) *Runner {
	return &Runner{pipelines: pipelines, logger: logging.OrNop(logger)}
}

// Run executes the named pipelines, or all of them when names is empty, in
// registration order. A failed pipeline writes nothing.
func (r *Runner) Run(ctx context.Context, names ...string) []Result {
	selected, results := r.selectPipelines(names)

	for _, p := range selected {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Name: p.Name(), Output: p.Output(), Err: err})
			continue
		}
		results = append(results, r.runOne(ctx, p))
	}
	return results
}

func (r *Runner) runOne(ctx context.Context, p Pipeline) Result {
	logger := r.logger.With(zap.String("pipeline", p.Name()))
	start := time.Now()
	res := Result{Name: p.Name(), Output: p.Output()}

	logger.Info("Running pipeline", zap.Strings("inputs", p.Inputs()))
	table, err := p.Run(ctx)
	if err == nil && table.Err != nil {
		err = table.Err
	}
	if err == nil && !r.DryRun {
		err = frame.WriteCSV(table, p.Output())
	}
	res.Elapsed = time.Since(start)

	if err != nil {
		res.Err = fmt.Errorf("%s: %w", p.Name(), err)
		logger.Error("Pipeline failed", zap.Error(err), zap.Duration("elapsed", res.Elapsed))
		return res
	}

	res.Table = table
	res.Rows = table.Nrow()
	logger.Info("Pipeline finished",
		zap.String("output", p.Output()),
		zap.Int("rows", res.Rows),
		zap.Duration("elapsed", res.Elapsed))
	return res
}

// selectPipelines keeps registration order and turns unknown names into
// failed results.
func (r *Runner) selectPipelines(names []string) ([]Pipeline, []Result) {
	if len(names) == 0 {
		return r.pipelines, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	var selected []Pipeline
	for _, p := range r.pipelines {
		if wanted[p.Name()] {
			selected = append(selected, p)
			delete(wanted, p.Name())
		}
	}

	var unknown []Result
	for _, name := range names {
		if wanted[name] {
			unknown = append(unknown, Result{Name: name, Err: fmt.Errorf("%w: %q", ErrUnknownPipeline, name)})
			delete(wanted, name)
		}
	}
	return selected, unknown
}

func Failed(results []Result) []Result {
	var failed []Result
	for _, res := range results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}
