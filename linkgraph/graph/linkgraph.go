package graph

import (
	"sort"

	"golang.org/x/xerrors"
)

// Page is an opaque identifier for a document in the corpus.
type Page string

// PageSet is a set of pages.
type PageSet map[Page]struct{}

// Contains returns true if p belongs to the set.
func (s PageSet) Contains(p Page) bool {
	_, ok := s[p]
	return ok
}

// LinkGraph maps each page in a corpus to the set of pages it links to.
//
// A valid LinkGraph never contains self-links and every link target is also
// a key of the map. Computations treat a LinkGraph as read-only.
type LinkGraph map[Page]PageSet

// NewLinkGraph builds a LinkGraph from a raw page -> outgoing links mapping.
// Links pointing back to the source page or to pages missing from the corpus
// are dropped and duplicate links are collapsed.
func NewLinkGraph(links map[Page][]Page) LinkGraph {
	g := make(LinkGraph, len(links))
	for src := range links {
		g[src] = make(PageSet)
	}
	for src, dsts := range links {
		for _, dst := range dsts {
			if dst == src {
				continue
			}
			if _, known := g[dst]; !known {
				continue
			}
			g[src][dst] = struct{}{}
		}
	}
	return g
}

// Len returns the number of pages in the graph.
func (g LinkGraph) Len() int { return len(g) }

// Pages returns the graph pages sorted by name.
func (g LinkGraph) Pages() []Page {
	pages := make([]Page, 0, len(g))
	for p := range g {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i] < pages[j] })
	return pages
}

// OutDegree returns the number of outgoing links for page p.
func (g LinkGraph) OutDegree(p Page) int { return len(g[p]) }

// Validate ensures that the graph is non-empty, contains no self-links and
// that every link target is part of the graph.
func (g LinkGraph) Validate() error {
	if len(g) == 0 {
		return ErrEmptyGraph
	}
	for src, dsts := range g {
		for dst := range dsts {
			if dst == src {
				return xerrors.Errorf("page %q: %w", src, ErrSelfLink)
			}
			if _, known := g[dst]; !known {
				return xerrors.Errorf("link from %q to %q: %w", src, dst, ErrUnknownLinkTarget)
			}
		}
	}
	return nil
}
