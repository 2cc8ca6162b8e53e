// Package pagerank estimates the importance of the pages in a link graph
// using two independent methods: a Monte-Carlo random surfer and an iterative
// solver for the PageRank equation.
package pagerank

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"Rank_Engine/linkgraph/graph"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// SamplePageRank estimates the PageRank score of every page in g by letting a
// random surfer visit numSamples pages.
func SamplePageRank(g graph.LinkGraph, dampingFactor float64, numSamples int) (RankVector, error) {
	if err := checkSampleArgs(g, dampingFactor, numSamples); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return newSampler(g, dampingFactor, rng).run(context.Background(), numSamples)
}

// IteratePageRank computes the PageRank score of every page in g by
// repeatedly applying the PageRank equation until the scores converge.
func IteratePageRank(g graph.LinkGraph, dampingFactor float64) (RankVector, error) {
	if err := checkGraph(g); err != nil {
		return nil, err
	}
	if err := checkDampingFactor(dampingFactor); err != nil {
		return nil, err
	}

	res, err := solve(context.Background(), g, solverParams{
		dampingFactor:        dampingFactor,
		convergenceThreshold: defaultConvergenceThreshold,
		maxIterations:        defaultMaxIterations,
		computeWorkers:       1,
	})
	if err != nil {
		return nil, err
	}
	if !res.converged {
		return res.ranks, xerrors.Errorf("pagerank: %d iterations: %w", res.iterations, ErrNotConverged)
	}
	return res.ranks, nil
}

// Ranker computes PageRank scores for link graphs using the settings
// specified at construction time. Ranker instances are safe for concurrent
// use.
type Ranker struct {
	cfg   Config
	rngMu sync.Mutex
}

// NewRanker returns a new Ranker instance using the provided config options.
func NewRanker(cfg Config) (*Ranker, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("pagerank: config validation failed: %w", err)
	}
	return &Ranker{cfg: cfg}, nil
}

// Config returns the effective configuration of the ranker with all defaults
// applied.
func (r *Ranker) Config() Config { return r.cfg }

// Transition returns the next-page distribution for page using the ranker's
// damping factor.
func (r *Ranker) Transition(g graph.LinkGraph, page graph.Page) (Distribution, error) {
	return Transition(g, page, r.cfg.DampingFactor)
}

// Sample estimates PageRank scores for g with a random surfer that visits
// the configured number of pages. It returns early with the context error if
// ctx is cancelled.
func (r *Ranker) Sample(ctx context.Context, g graph.LinkGraph) (RankVector, error) {
	if err := checkGraph(g); err != nil {
		return nil, err
	}

	rng := r.cfg.Rand
	if rng != nil {
		r.rngMu.Lock()
		defer r.rngMu.Unlock()
	} else {
		seed := r.cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	startAt := time.Now()
	ranks, err := newSampler(g, r.cfg.DampingFactor, rng).run(ctx, r.cfg.Samples)
	if err != nil {
		return nil, xerrors.Errorf("pagerank: sampling interrupted: %w", err)
	}

	r.cfg.Logger.WithFields(logrus.Fields{
		"method":       "sampling",
		"page_count":   len(g),
		"samples":      r.cfg.Samples,
		"elapsed_time": time.Since(startAt).String(),
	}).Debug("computed PageRank scores")
	return ranks, nil
}

// Iterate computes PageRank scores for g with the iterative solver.
//
// If the scores fail to converge within the configured number of iterations,
// Iterate returns the scores of the last round together with an error that
// wraps ErrNotConverged.
func (r *Ranker) Iterate(ctx context.Context, g graph.LinkGraph) (RankVector, error) {
	if err := checkGraph(g); err != nil {
		return nil, err
	}

	startAt := time.Now()
	res, err := solve(ctx, g, solverParams{
		dampingFactor:        r.cfg.DampingFactor,
		convergenceThreshold: r.cfg.ConvergenceThreshold,
		maxIterations:        r.cfg.MaxIterations,
		computeWorkers:       r.cfg.ComputeWorkers,
	})
	if err != nil {
		return nil, err
	}

	logger := r.cfg.Logger.WithFields(logrus.Fields{
		"method":       "iteration",
		"page_count":   len(g),
		"iterations":   res.iterations,
		"max_delta":    res.maxDelta,
		"rank_mass":    res.rankMass,
		"elapsed_time": time.Since(startAt).String(),
	})
	if !res.converged {
		logger.Warn("PageRank scores did not converge")
		return res.ranks, xerrors.Errorf("pagerank: %d iterations: %w", res.iterations, ErrNotConverged)
	}

	logger.Debug("computed PageRank scores")
	return res.ranks, nil
}

func checkGraph(g graph.LinkGraph) error {
	if err := g.Validate(); err != nil {
		return xerrors.Errorf("pagerank: invalid link graph: %w", err)
	}
	return nil
}

func checkSampleArgs(g graph.LinkGraph, dampingFactor float64, numSamples int) error {
	if err := checkGraph(g); err != nil {
		return err
	}
	if err := checkDampingFactor(dampingFactor); err != nil {
		return err
	}
	if numSamples <= 0 {
		return xerrors.Errorf("%d: %w", numSamples, ErrInvalidSampleCount)
	}
	return nil
}
