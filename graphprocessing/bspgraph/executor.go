package bspgraph

import (
	"context"

	"golang.org/x/xerrors"
)

// ExecutorCallbacks are hooks that an Executor invokes around every
// superstep. Any of them may be left nil.
type ExecutorCallbacks struct {
	// PreStep runs before each superstep. Use it to reset aggregators or to
	// publish values that every vertex reads during the step.
	PreStep func(ctx context.Context, g *Graph) error

	// PostStep runs after each superstep.
	PostStep func(ctx context.Context, g *Graph, activeInStep int) error

	// PostStepKeepRunning runs after PostStep and reports whether another
	// superstep should follow.
	PostStepKeepRunning func(ctx context.Context, g *Graph, activeInStep int) (bool, error)
}

// Executor drives a Graph through a sequence of supersteps.
type Executor struct {
	g  *Graph
	cb ExecutorCallbacks
}

// NewExecutor returns an Executor for g that resets the superstep counter and
// invokes cb around every superstep.
func NewExecutor(g *Graph, cb ExecutorCallbacks) *Executor {
	g.superstep = 0
	return &Executor{g: g, cb: cb}
}

// Superstep returns the current superstep of the underlying graph.
func (ex *Executor) Superstep() int { return ex.g.superstep }

// RunToCompletion executes supersteps until PostStepKeepRunning returns
// false, an error occurs or ctx is cancelled.
func (ex *Executor) RunToCompletion(ctx context.Context) error {
	for {
		keepRunning, err := ex.runStep(ctx)
		if err != nil || !keepRunning {
			return err
		}
	}
}

// RunSteps behaves like RunToCompletion but executes at most numSteps
// supersteps. A non-positive numSteps executes nothing.
func (ex *Executor) RunSteps(ctx context.Context, numSteps int) error {
	for i := 0; i < numSteps; i++ {
		keepRunning, err := ex.runStep(ctx)
		if err != nil || !keepRunning {
			return err
		}
	}
	return nil
}

// runStep executes a single superstep together with its callbacks. The
// superstep counter only advances when the run continues.
func (ex *Executor) runStep(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	step := ex.g.superstep
	if ex.cb.PreStep != nil {
		if err := ex.cb.PreStep(ctx, ex.g); err != nil {
			return false, xerrors.Errorf("superstep %d: pre-step: %w", step, err)
		}
	}

	activeInStep, err := ex.g.step()
	if err != nil {
		return false, xerrors.Errorf("superstep %d: %w", step, err)
	}

	if ex.cb.PostStep != nil {
		if err = ex.cb.PostStep(ctx, ex.g, activeInStep); err != nil {
			return false, xerrors.Errorf("superstep %d: post-step: %w", step, err)
		}
	}

	keepRunning := true
	if ex.cb.PostStepKeepRunning != nil {
		if keepRunning, err = ex.cb.PostStepKeepRunning(ctx, ex.g, activeInStep); err != nil {
			return false, xerrors.Errorf("superstep %d: post-step: %w", step, err)
		}
	}
	if keepRunning {
		ex.g.superstep++
	}
	return keepRunning, nil
}
