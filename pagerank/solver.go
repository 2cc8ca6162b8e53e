package pagerank

import (
	"context"
	"math"
	"sort"

	"Rank_Engine/graphprocessing/bspgraph"
	"Rank_Engine/graphprocessing/bspgraph/aggregator"
	"Rank_Engine/graphprocessing/bspgraph/message"
	"Rank_Engine/linkgraph/graph"

	"golang.org/x/xerrors"
)

const (
	maxDeltaAggr = "max_delta"
	rankMassAggr = "rank_mass"
)

// IncomingScoreMessage is used for distributing PageRank scores to neighbors.
type IncomingScoreMessage struct {
	Src   string
	Score float64
}

// Type returns the type of this message.
func (IncomingScoreMessage) Type() string { return "score" }

// solverParams groups the knobs of a single iterative solver run.
type solverParams struct {
	dampingFactor        float64
	convergenceThreshold float64
	maxIterations        int
	computeWorkers       int
}

// solverResult describes the outcome of an iterative solver run.
type solverResult struct {
	ranks      RankVector
	iterations int
	converged  bool
	maxDelta   float64

	// rankMass is the sum of all scores after the last round. It is summed
	// in arbitrary order and only serves as a sanity check.
	rankMass float64
}

// solve computes the PageRank fixed point of g by running synchronous update
// rounds on a bspgraph instance until no score moves by more than the
// convergence threshold or the iteration cap is reached.
//
// Superstep 0 distributes the initial 1/N scores; each subsequent superstep
// is one update round that only reads the scores sent during the previous
// superstep.
func solve(ctx context.Context, g graph.LinkGraph, params solverParams) (*solverResult, error) {
	var (
		pages     = g.Pages()
		pageCount    = float64(len(pages))
		dangling     []string
		danglingMass float64
	)
	for _, p := range pages {
		if g.OutDegree(p) == 0 {
			dangling = append(dangling, string(p))
		}
	}

	bg, err := bspgraph.NewGraph(bspgraph.GraphConfig{
		ComputeWorkers: params.computeWorkers,
		ComputeFn:      makeComputeFunc(params.dampingFactor, pageCount, &danglingMass),
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = bg.Close() }()

	for _, p := range pages {
		bg.AddVertex(string(p), 1.0/pageCount)
	}
	for _, src := range pages {
		for dst := range g[src] {
			if err = bg.AddEdge(string(src), string(dst), nil); err != nil {
				return nil, err
			}
		}
	}
	bg.RegisterAggregator(maxDeltaAggr, new(aggregator.Float64Max))
	bg.RegisterAggregator(rankMassAggr, new(aggregator.Float64Accumulator))

	res := new(solverResult)
	ex := bspgraph.NewExecutor(bg, bspgraph.ExecutorCallbacks{
		PreStep: func(_ context.Context, bg *bspgraph.Graph) error {
			bg.Aggregator(maxDeltaAggr).Set(0.0)
			bg.Aggregator(rankMassAggr).Set(0.0)

			// Pages without links spread their score evenly across the
			// whole graph. Sum their contribution in a fixed order so
			// that repeated runs produce identical results.
			danglingMass = 0
			if bg.Superstep() > 0 {
				verts := bg.Vertices()
				for _, id := range dangling {
					danglingMass += verts[id].Value().(float64) / pageCount
				}
			}
			return nil
		},
		PostStepKeepRunning: func(_ context.Context, bg *bspgraph.Graph, _ int) (bool, error) {
			// Superstep 0 only seeds the initial scores.
			if bg.Superstep() == 0 {
				return true, nil
			}
			res.iterations = bg.Superstep()
			res.maxDelta = bg.Aggregator(maxDeltaAggr).Get().(float64)
			res.rankMass = bg.Aggregator(rankMassAggr).Get().(float64)
			res.converged = res.maxDelta < params.convergenceThreshold
			return !res.converged, nil
		},
	})

	if err = ex.RunSteps(ctx, superstepBudget(params.maxIterations)); err != nil {
		return nil, xerrors.Errorf("pagerank: iterative solver failed: %w", err)
	}

	res.ranks = make(RankVector, len(pages))
	for id, v := range bg.Vertices() {
		res.ranks[graph.Page(id)] = v.Value().(float64)
	}
	return res, nil
}

// superstepBudget returns the number of supersteps needed for maxIterations
// update rounds. Superstep 0 only seeds the scores.
func superstepBudget(maxIterations int) int {
	if maxIterations >= math.MaxInt {
		return math.MaxInt
	}
	return maxIterations + 1
}

// makeComputeFunc returns a ComputeFunc that executes one round of the
// PageRank update using the provided dampingFactor value. danglingMass is
// refreshed before every superstep and only read by the compute function.
func makeComputeFunc(dampingFactor, pageCount float64, danglingMass *float64) bspgraph.ComputeFunc {
	return func(g *bspgraph.Graph, v *bspgraph.Vertex, msgIt message.Iterator) error {
		if g.Superstep() > 0 {
			// Sort incoming scores by sender so the floating point sum
			// does not depend on message delivery order.
			var incoming []IncomingScoreMessage
			for msgIt.Next() {
				incoming = append(incoming, msgIt.Message().(IncomingScoreMessage))
			}
			sort.Slice(incoming, func(i, j int) bool { return incoming[i].Src < incoming[j].Src })

			var linkScore float64
			for _, msg := range incoming {
				linkScore += msg.Score
			}

			newScore := (1.0-dampingFactor)/pageCount + dampingFactor*(linkScore+*danglingMass)

			g.Aggregator(maxDeltaAggr).Aggregate(math.Abs(v.Value().(float64) - newScore))
			g.Aggregator(rankMassAggr).Aggregate(newScore)
			v.SetValue(newScore)
		}

		// Dead-ends are accounted for via the dangling mass aggregator.
		numOutLinks := float64(len(v.Edges()))
		if numOutLinks == 0 {
			return nil
		}

		// Otherwise, evenly distribute this page's score to its neighbors.
		return g.BroadcastToNeighbors(v, IncomingScoreMessage{
			Src:   v.ID(),
			Score: v.Value().(float64) / numOutLinks,
		})
	}
}
