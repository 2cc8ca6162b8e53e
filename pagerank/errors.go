package pagerank

import (
	"Rank_Engine/linkgraph/graph"

	"golang.org/x/xerrors"
)

var (
	// ErrEmptyGraph is returned when asked to rank a graph without pages.
	ErrEmptyGraph = graph.ErrEmptyGraph

	// ErrInvalidDampingFactor is returned when the damping factor is not
	// in the (0, 1) range.
	ErrInvalidDampingFactor = xerrors.New("damping factor must be in the (0, 1) range")

	// ErrInvalidSampleCount is returned when the number of samples is not
	// a positive integer.
	ErrInvalidSampleCount = xerrors.New("sample count must be a positive integer")

	// ErrUnknownPage is returned when a transition is requested for a page
	// that is not part of the graph.
	ErrUnknownPage = xerrors.New("page is not part of the graph")

	// ErrNotConverged is returned by the iterative solver when the scores
	// did not converge within the configured number of iterations.
	ErrNotConverged = xerrors.New("scores did not converge")
)

func checkDampingFactor(dampingFactor float64) error {
	if !(dampingFactor > 0 && dampingFactor < 1) {
		return xerrors.Errorf("%v: %w", dampingFactor, ErrInvalidDampingFactor)
	}
	return nil
}
