package pagerank

import (
	"context"
	"math"
	"math/rand"

	"Rank_Engine/linkgraph/graph"

	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(SamplerTestSuite))

type SamplerTestSuite struct{}

func (s *SamplerTestSuite) TestTwoPageCycle(c *gc.C) {
	ranks, err := SamplePageRank(twoPageCycle, 0.85, 10000)
	c.Assert(err, gc.IsNil)
	assertRanksClose(c, ranks, map[graph.Page]float64{"A": 0.5, "B": 0.5}, 0.02)
}

func (s *SamplerTestSuite) TestScoresAddUpToOne(c *gc.C) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 10; round++ {
		g := randomGraph(rng, 1+rng.Intn(10), rng.Float64())
		numSamples := 1 + rng.Intn(5000)

		ranks, err := SamplePageRank(g, 0.85, numSamples)
		c.Assert(err, gc.IsNil)
		c.Assert(ranks, gc.HasLen, len(g))

		// Every score is a visit count divided by the number of samples.
		var visits float64
		for _, score := range ranks {
			count := score * float64(numSamples)
			c.Assert(math.Abs(count-math.Round(count)) < 1e-6, gc.Equals, true)
			visits += math.Round(count)
		}
		c.Assert(visits, gc.Equals, float64(numSamples))
		c.Assert(math.Abs(ranks.Sum()-1.0) < 1e-9, gc.Equals, true)
	}
}

func (s *SamplerTestSuite) TestSeededRunsAreReproducible(c *gc.C) {
	r1, err := NewRanker(Config{Seed: 1234, Samples: 2000})
	c.Assert(err, gc.IsNil)
	r2, err := NewRanker(Config{Seed: 1234, Samples: 2000})
	c.Assert(err, gc.IsNil)

	ranks1, err := r1.Sample(context.TODO(), smallCorpus)
	c.Assert(err, gc.IsNil)
	ranks2, err := r2.Sample(context.TODO(), smallCorpus)
	c.Assert(err, gc.IsNil)
	c.Assert(ranks1, gc.DeepEquals, ranks2)
}

func (s *SamplerTestSuite) TestSharedRandSource(c *gc.C) {
	r, err := NewRanker(Config{Rand: rand.New(rand.NewSource(99)), Samples: 500})
	c.Assert(err, gc.IsNil)

	done := make(chan error, 4)
	for i := 0; i < cap(done); i++ {
		go func() {
			_, err := r.Sample(context.TODO(), smallCorpus)
			done <- err
		}()
	}
	for i := 0; i < cap(done); i++ {
		c.Assert(<-done, gc.IsNil)
	}
}

func (s *SamplerTestSuite) TestAgreesWithIterativeSolver(c *gc.C) {
	r, err := NewRanker(Config{Seed: 42, Samples: 50000, ConvergenceThreshold: 1e-6})
	c.Assert(err, gc.IsNil)

	sampled, err := r.Sample(context.TODO(), smallCorpus)
	c.Assert(err, gc.IsNil)
	iterated, err := r.Iterate(context.TODO(), smallCorpus)
	c.Assert(err, gc.IsNil)

	assertRanksClose(c, sampled, iterated, 0.02)
}

func (s *SamplerTestSuite) TestCancelledContext(c *gc.C) {
	r, err := NewRanker(Config{})
	c.Assert(err, gc.IsNil)

	ctx, cancelFn := context.WithCancel(context.Background())
	cancelFn()
	_, err = r.Sample(ctx, smallCorpus)
	c.Assert(xerrors.Is(err, context.Canceled), gc.Equals, true)
}

func (s *SamplerTestSuite) TestInvalidArguments(c *gc.C) {
	_, err := SamplePageRank(graph.LinkGraph{}, 0.85, 100)
	c.Assert(xerrors.Is(err, ErrEmptyGraph), gc.Equals, true)

	_, err = SamplePageRank(nil, 0.85, 100)
	c.Assert(xerrors.Is(err, ErrEmptyGraph), gc.Equals, true)

	for _, n := range []int{0, -1} {
		_, err = SamplePageRank(twoPageCycle, 0.85, n)
		c.Assert(xerrors.Is(err, ErrInvalidSampleCount), gc.Equals, true, gc.Commentf("sample count %d", n))
	}

	for _, d := range []float64{0, 1, -0.1} {
		_, err = SamplePageRank(twoPageCycle, d, 100)
		c.Assert(xerrors.Is(err, ErrInvalidDampingFactor), gc.Equals, true, gc.Commentf("damping factor %v", d))
	}
}
