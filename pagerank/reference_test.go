package pagerank

import (
	"context"
	"math/rand"

	"Rank_Engine/linkgraph/graph"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(ReferenceTestSuite))

// ReferenceTestSuite compares the iterative solver against the power
// iteration implementation shipped with gonum.
type ReferenceTestSuite struct{}

func (s *ReferenceTestSuite) TestMatchesGonum(c *gc.C) {
	rng := rand.New(rand.NewSource(7))
	specs := []struct {
		descr string
		g     graph.LinkGraph
	}{
		{descr: "three page cycle", g: threePageCycle},
		{descr: "dangling page", g: danglingPage},
		{descr: "small corpus", g: smallCorpus},
		{descr: "sparse random graph", g: randomGraph(rng, 40, 0.05)},
		{descr: "dense random graph", g: randomGraph(rng, 25, 0.4)},
	}

	ranker, err := NewRanker(Config{
		ConvergenceThreshold: 1e-10,
		ComputeWorkers:       4,
	})
	c.Assert(err, gc.IsNil)

	for specIndex, spec := range specs {
		c.Logf("[spec %d] %s", specIndex, spec.descr)

		got, err := ranker.Iterate(context.TODO(), spec.g)
		c.Assert(err, gc.IsNil)
		assertRanksClose(c, got, gonumPageRank(spec.g, defaultDampingFactor), 1e-6)
	}
}

func gonumPageRank(g graph.LinkGraph, dampingFactor float64) map[graph.Page]float64 {
	var (
		pages   = g.Pages()
		idOf    = make(map[graph.Page]int64, len(pages))
		digraph = simple.NewDirectedGraph()
	)
	for i, p := range pages {
		idOf[p] = int64(i)
		digraph.AddNode(simple.Node(i))
	}
	for _, src := range pages {
		for dst := range g[src] {
			digraph.SetEdge(simple.Edge{F: simple.Node(idOf[src]), T: simple.Node(idOf[dst])})
		}
	}

	ranks := network.PageRank(digraph, dampingFactor, 1e-12)
	exp := make(map[graph.Page]float64, len(pages))
	for _, p := range pages {
		exp[p] = ranks[idOf[p]]
	}
	return exp
}
