package pagerank

import (
	"context"
	"math"
	"math/rand"

	"Rank_Engine/linkgraph/graph"

	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(SolverTestSuite))

type SolverTestSuite struct{}

func (s *SolverTestSuite) TestKnownGraphs(c *gc.C) {
	specs := []struct {
		descr     string
		g         graph.LinkGraph
		exp       map[graph.Page]float64
		tolerance float64
	}{
		{
			descr: "two page cycle",
			g:     twoPageCycle,
			exp:   map[graph.Page]float64{"A": 0.5, "B": 0.5},
		},
		{
			descr: "three page cycle",
			g:     threePageCycle,
			exp:   map[graph.Page]float64{"A": 1.0 / 3, "B": 1.0 / 3, "C": 1.0 / 3},
		},
		{
			descr: "dangling page",
			g:     danglingPage,
			exp:   map[graph.Page]float64{"A": 0.6491, "B": 0.3509},
		},
		{
			descr: "small corpus",
			g:     smallCorpus,
			exp: map[graph.Page]float64{
				"1.html": 0.2199,
				"2.html": 0.4292,
				"3.html": 0.2199,
				"4.html": 0.1310,
			},
		},
		{
			descr: "single page",
			g:     graph.LinkGraph{"only.html": {}},
			exp:   map[graph.Page]float64{"only.html": 1.0},
		},
	}

	for specIndex, spec := range specs {
		c.Logf("[spec %d] %s", specIndex, spec.descr)
		ranks, err := IteratePageRank(spec.g, 0.85)
		c.Assert(err, gc.IsNil)
		assertRanksClose(c, ranks, spec.exp, 0.002)
	}
}

func (s *SolverTestSuite) TestDanglingMassIsRedistributed(c *gc.C) {
	// With A dangling, B only receives the random jump share plus half of
	// A's score. Without the redistribution B would end up with (1-d)/N.
	ranks, err := IteratePageRank(danglingPage, 0.85)
	c.Assert(err, gc.IsNil)

	jump := (1 - 0.85) / 2
	c.Assert(math.Abs(ranks["B"]-(jump+0.85*ranks["A"]/2)) < 0.001, gc.Equals, true)
	c.Assert(math.Abs(ranks["A"]-(jump+0.85*(ranks["A"]/2+ranks["B"]))) < 0.002, gc.Equals, true)
}

func (s *SolverTestSuite) TestScoresAddUpToOne(c *gc.C) {
	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 20; round++ {
		g := randomGraph(rng, 1+rng.Intn(20), rng.Float64())
		d := 0.05 + 0.9*rng.Float64()

		ranks, err := IteratePageRank(g, d)
		c.Assert(err, gc.IsNil)
		c.Assert(ranks, gc.HasLen, len(g))
		c.Assert(math.Abs(ranks.Sum()-1.0) < 1e-3, gc.Equals, true, gc.Commentf("sum %v", ranks.Sum()))
		for p, score := range ranks {
			c.Assert(score >= 0 && score <= 1, gc.Equals, true, gc.Commentf("page %q: %v", p, score))
		}
	}
}

func (s *SolverTestSuite) TestDeterministic(c *gc.C) {
	g := randomGraph(rand.New(rand.NewSource(3)), 30, 0.2)
	r, err := NewRanker(Config{ComputeWorkers: 8, ConvergenceThreshold: 1e-9})
	c.Assert(err, gc.IsNil)

	first, err := r.Iterate(context.TODO(), g)
	c.Assert(err, gc.IsNil)
	for i := 0; i < 5; i++ {
		again, err := r.Iterate(context.TODO(), g)
		c.Assert(err, gc.IsNil)
		c.Assert(again, gc.DeepEquals, first)
	}
}

func (s *SolverTestSuite) TestLooserThresholdKeepsRanking(c *gc.C) {
	const looseThreshold = 0.01

	tight, err := NewRanker(Config{ConvergenceThreshold: 1e-9})
	c.Assert(err, gc.IsNil)
	loose, err := NewRanker(Config{ConvergenceThreshold: looseThreshold})
	c.Assert(err, gc.IsNil)

	tightRanks, err := tight.Iterate(context.TODO(), smallCorpus)
	c.Assert(err, gc.IsNil)
	looseRanks, err := loose.Iterate(context.TODO(), smallCorpus)
	c.Assert(err, gc.IsNil)

	for p1 := range smallCorpus {
		for p2 := range smallCorpus {
			if tightRanks[p1]-tightRanks[p2] <= looseThreshold {
				continue
			}
			c.Assert(looseRanks[p1] > looseRanks[p2], gc.Equals, true, gc.Commentf("%q vs %q", p1, p2))
		}
	}
}

func (s *SolverTestSuite) TestIterationCap(c *gc.C) {
	r, err := NewRanker(Config{MaxIterations: 2, ConvergenceThreshold: 1e-12})
	c.Assert(err, gc.IsNil)

	ranks, err := r.Iterate(context.TODO(), smallCorpus)
	c.Assert(xerrors.Is(err, ErrNotConverged), gc.Equals, true)
	c.Assert(ranks, gc.HasLen, len(smallCorpus))
	c.Assert(math.Abs(ranks.Sum()-1.0) < 1e-9, gc.Equals, true)
}

func (s *SolverTestSuite) TestUnboundedIterationBudget(c *gc.C) {
	c.Assert(superstepBudget(2), gc.Equals, 3)
	c.Assert(superstepBudget(math.MaxInt-1), gc.Equals, math.MaxInt)
	c.Assert(superstepBudget(math.MaxInt), gc.Equals, math.MaxInt)

	res, err := solve(context.TODO(), danglingPage, solverParams{
		dampingFactor:        0.85,
		convergenceThreshold: 1e-9,
		maxIterations:        math.MaxInt,
		computeWorkers:       2,
	})
	c.Assert(err, gc.IsNil)
	c.Assert(res.converged, gc.Equals, true)
	c.Assert(res.iterations > 0, gc.Equals, true)
	c.Assert(res.maxDelta < 1e-9, gc.Equals, true)
	c.Assert(math.Abs(res.rankMass-1.0) < 1e-9, gc.Equals, true, gc.Commentf("rank mass %v", res.rankMass))
	assertRanksClose(c, res.ranks, map[graph.Page]float64{"A": 0.6491, "B": 0.3509}, 0.001)
}

func (s *SolverTestSuite) TestCancelledContext(c *gc.C) {
	r, err := NewRanker(Config{})
	c.Assert(err, gc.IsNil)

	ctx, cancelFn := context.WithCancel(context.Background())
	cancelFn()
	_, err = r.Iterate(ctx, smallCorpus)
	c.Assert(xerrors.Is(err, context.Canceled), gc.Equals, true)
}

func (s *SolverTestSuite) TestInvalidArguments(c *gc.C) {
	_, err := IteratePageRank(graph.LinkGraph{}, 0.85)
	c.Assert(xerrors.Is(err, ErrEmptyGraph), gc.Equals, true)

	_, err = IteratePageRank(graph.LinkGraph{"A": {"A": {}}}, 0.85)
	c.Assert(xerrors.Is(err, graph.ErrSelfLink), gc.Equals, true)

	for _, d := range []float64{0, 1, 2} {
		_, err = IteratePageRank(twoPageCycle, d)
		c.Assert(xerrors.Is(err, ErrInvalidDampingFactor), gc.Equals, true, gc.Commentf("damping factor %v", d))
	}
}
