package pagerank

import (
	"context"
	"math/rand"
	"sort"

	"Rank_Engine/linkgraph/graph"
)

// ctxCheckInterval controls how often the sampler checks for context
// cancellation.
const ctxCheckInterval = 1024

// sampler estimates PageRank scores by simulating a random surfer.
type sampler struct {
	g             graph.LinkGraph
	dampingFactor float64
	rng           *rand.Rand

	// pages fixes the order in which distributions are laid out so that
	// seeded runs are reproducible.
	pages   []graph.Page
	cumProb []float64
}

func newSampler(g graph.LinkGraph, dampingFactor float64, rng *rand.Rand) *sampler {
	return &sampler{
		g:             g,
		dampingFactor: dampingFactor,
		rng:           rng,
		pages:         g.Pages(),
		cumProb:       make([]float64, len(g)),
	}
}

// run performs numSamples random surfer steps and returns the visit frequency
// of each page.
func (s *sampler) run(ctx context.Context, numSamples int) (RankVector, error) {
	visits := make(map[graph.Page]int, len(s.pages))
	for _, p := range s.pages {
		visits[p] = 0
	}

	cur := s.pages[s.rng.Intn(len(s.pages))]
	for i := 0; i < numSamples; i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		visits[cur]++
		cur = s.next(transition(s.g, cur, s.dampingFactor))
	}

	ranks := make(RankVector, len(visits))
	for p, count := range visits {
		ranks[p] = float64(count) / float64(numSamples)
	}
	return ranks, nil
}

// next draws a page from dist by searching the cumulative distribution
// for a uniformly chosen point.
func (s *sampler) next(dist Distribution) graph.Page {
	var total float64
	for i, p := range s.pages {
		total += dist[p]
		s.cumProb[i] = total
	}

	target := s.rng.Float64() * total
	idx := sort.Search(len(s.cumProb), func(i int) bool { return s.cumProb[i] > target })
	if idx == len(s.cumProb) {
		// Only reachable through floating point rounding.
		idx--
	}
	return s.pages[idx]
}
