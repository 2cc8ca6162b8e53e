package pagerank

import (
	"sort"

	"Rank_Engine/linkgraph/graph"
)

// Distribution assigns to every page of a graph the probability of it being
// visited next.
type Distribution map[graph.Page]float64

// RankVector assigns a PageRank score to every page of a graph.
type RankVector map[graph.Page]float64

// Sum returns the sum of all scores in the vector.
func (r RankVector) Sum() float64 {
	var sum float64
	for _, p := range sortedPages(r) {
		sum += r[p]
	}
	return sum
}

// Ranked returns the vector pages ordered by descending score. Pages with
// the same score are ordered by name.
func (r RankVector) Ranked() []graph.Page {
	pages := sortedPages(r)
	sort.SliceStable(pages, func(i, j int) bool { return r[pages[i]] > r[pages[j]] })
	return pages
}

func sortedPages(r map[graph.Page]float64) []graph.Page {
	pages := make([]graph.Page, 0, len(r))
	for p := range r {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i] < pages[j] })
	return pages
}
