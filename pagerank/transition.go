package pagerank

import (
	"Rank_Engine/linkgraph/graph"

	"golang.org/x/xerrors"
)

// Transition returns the probability distribution over which page a random
// surfer visits next, given that it currently is on page.
//
// With probability dampingFactor the surfer follows one of the outgoing links
// of page; otherwise it jumps to a page chosen uniformly from the whole graph.
// A page without outgoing links is treated as linking to every page in the
// graph, itself included.
func Transition(g graph.LinkGraph, page graph.Page, dampingFactor float64) (Distribution, error) {
	if len(g) == 0 {
		return nil, ErrEmptyGraph
	}
	if err := checkDampingFactor(dampingFactor); err != nil {
		return nil, err
	}
	if _, known := g[page]; !known {
		return nil, xerrors.Errorf("transition from %q: %w", page, ErrUnknownPage)
	}

	return transition(g, page, dampingFactor), nil
}

// transition implements Transition without validating its arguments.
func transition(g graph.LinkGraph, page graph.Page, dampingFactor float64) Distribution {
	var (
		pageCount = float64(len(g))
		links     = g[page]
		dist      = make(Distribution, len(g))
	)

	if len(links) == 0 {
		for p := range g {
			dist[p] = 1.0 / pageCount
		}
		return dist
	}

	jumpProb := (1.0 - dampingFactor) / pageCount
	linkProb := dampingFactor / float64(len(links))
	for p := range g {
		dist[p] = jumpProb
		if links.Contains(p) {
			dist[p] += linkProb
		}
	}
	return dist
}
