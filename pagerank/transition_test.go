package pagerank

import (
	"math"
	"math/rand"

	"Rank_Engine/linkgraph/graph"

	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(TransitionTestSuite))

type TransitionTestSuite struct{}

func (s *TransitionTestSuite) TestLinkedPage(c *gc.C) {
	dist, err := Transition(smallCorpus, "2.html", 0.85)
	c.Assert(err, gc.IsNil)
	assertRanksClose(c, RankVector(dist), map[graph.Page]float64{
		"1.html": 0.4625,
		"2.html": 0.0375,
		"3.html": 0.4625,
		"4.html": 0.0375,
	}, 1e-12)
}

func (s *TransitionTestSuite) TestDanglingPageIsUniform(c *gc.C) {
	for _, d := range []float64{0.01, 0.5, 0.85, 0.99} {
		dist, err := Transition(danglingPage, "A", d)
		c.Assert(err, gc.IsNil)
		c.Assert(dist, gc.DeepEquals, Distribution{"A": 0.5, "B": 0.5}, gc.Commentf("damping factor %v", d))
	}

	dist, err := Transition(danglingPage, "B", 0.85)
	c.Assert(err, gc.IsNil)
	assertRanksClose(c, RankVector(dist), map[graph.Page]float64{
		"A": 0.925,
		"B": 0.075,
	}, 1e-12)
}

func (s *TransitionTestSuite) TestDistributionCoversGraphAndSumsToOne(c *gc.C) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		g := randomGraph(rng, 1+rng.Intn(15), rng.Float64())
		d := 0.05 + 0.9*rng.Float64()
		for page := range g {
			dist, err := Transition(g, page, d)
			c.Assert(err, gc.IsNil)
			c.Assert(dist, gc.HasLen, len(g))

			var sum float64
			for p, prob := range dist {
				_, known := g[p]
				c.Assert(known, gc.Equals, true)
				c.Assert(prob >= 0, gc.Equals, true)
				sum += prob
			}
			c.Assert(math.Abs(sum-1.0) < 1e-9, gc.Equals, true, gc.Commentf("sum %v", sum))
		}
	}
}

func (s *TransitionTestSuite) TestInvalidArguments(c *gc.C) {
	_, err := Transition(graph.LinkGraph{}, "A", 0.85)
	c.Assert(xerrors.Is(err, ErrEmptyGraph), gc.Equals, true)

	_, err = Transition(twoPageCycle, "C", 0.85)
	c.Assert(xerrors.Is(err, ErrUnknownPage), gc.Equals, true)

	for _, d := range []float64{0, 1, -0.5, 1.5, math.NaN()} {
		_, err = Transition(twoPageCycle, "A", d)
		c.Assert(xerrors.Is(err, ErrInvalidDampingFactor), gc.Equals, true, gc.Commentf("damping factor %v", d))
	}
}
