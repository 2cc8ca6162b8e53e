package graphtest

import (
	"fmt"
	"sort"
	"time"

	"Rank_Engine/linkgraph/graph"

	"github.com/google/uuid"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var (
	minUUID = uuid.Nil
	maxUUID = uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")
)

// SuiteBase defines a re-usable set of link-graph tests that can be executed
// against any type that implements graph.Graph.
type SuiteBase struct {
	g graph.Graph
}

// SetGraph configures the test-suite to run all tests against g.
func (s *SuiteBase) SetGraph(g graph.Graph) {
	s.g = g
}

// TestUpsertLink verifies the link upsert logic.
func (s *SuiteBase) TestUpsertLink(c *gc.C) {
	original := &graph.Link{
		URL:         "a.html",
		RetrievedAt: time.Now().Add(-10 * time.Hour),
	}
	c.Assert(s.g.UpsertLink(original), gc.IsNil)
	c.Assert(original.ID, gc.Not(gc.Equals), uuid.Nil, gc.Commentf("expected a linkID to be assigned to the new link"))

	// Upserting the same page with a newer timestamp keeps the ID.
	accessedAt := time.Now().Truncate(time.Second).UTC()
	existing := &graph.Link{
		ID:          original.ID,
		URL:         "a.html",
		RetrievedAt: accessedAt,
	}
	c.Assert(s.g.UpsertLink(existing), gc.IsNil)
	c.Assert(existing.ID, gc.Equals, original.ID, gc.Commentf("link ID changed while upserting"))

	stored, err := s.g.FindLink(existing.ID)
	c.Assert(err, gc.IsNil)
	c.Assert(stored.RetrievedAt, gc.Equals, accessedAt, gc.Commentf("last accessed timestamp was not updated"))

	// An older timestamp must never overwrite a newer one.
	sameURL := &graph.Link{
		URL:         existing.URL,
		RetrievedAt: time.Now().Add(-10 * time.Hour).UTC(),
	}
	c.Assert(s.g.UpsertLink(sameURL), gc.IsNil)
	c.Assert(sameURL.ID, gc.Equals, existing.ID)

	stored, err = s.g.FindLink(existing.ID)
	c.Assert(err, gc.IsNil)
	c.Assert(stored.RetrievedAt, gc.Equals, accessedAt, gc.Commentf("last accessed timestamp was overwritten with an older value"))
}

// TestFindLink verifies the link lookup logic.
func (s *SuiteBase) TestFindLink(c *gc.C) {
	link := &graph.Link{
		URL:         "b.html",
		RetrievedAt: time.Now().Truncate(time.Second).UTC(),
	}
	c.Assert(s.g.UpsertLink(link), gc.IsNil)

	other, err := s.g.FindLink(link.ID)
	c.Assert(err, gc.IsNil)
	c.Assert(other, gc.DeepEquals, link, gc.Commentf("lookup by ID returned the wrong link"))

	_, err = s.g.FindLink(uuid.Nil)
	c.Assert(xerrors.Is(err, graph.ErrNotFound), gc.Equals, true)
}

// TestUpsertEdge verifies the edge upsert logic.
func (s *SuiteBase) TestUpsertEdge(c *gc.C) {
	linkUUIDs := s.insertPages(c, 3)

	edge := &graph.Edge{Src: linkUUIDs[0], Dst: linkUUIDs[1]}
	c.Assert(s.g.UpsertEdge(edge), gc.IsNil)
	c.Assert(edge.ID, gc.Not(gc.Equals), uuid.Nil, gc.Commentf("expected an edgeID to be assigned to the new edge"))
	c.Assert(edge.UpdatedAt.IsZero(), gc.Equals, false, gc.Commentf("UpdatedAt field not set"))

	other := &graph.Edge{Src: linkUUIDs[0], Dst: linkUUIDs[1]}
	c.Assert(s.g.UpsertEdge(other), gc.IsNil)
	c.Assert(other.ID, gc.Equals, edge.ID, gc.Commentf("edge ID changed while upserting"))

	bogus := &graph.Edge{Src: linkUUIDs[0], Dst: uuid.New()}
	err := s.g.UpsertEdge(bogus)
	c.Assert(xerrors.Is(err, graph.ErrUnknownEdgeLinks), gc.Equals, true)
}

// TestLinkIteratorTimeFilter verifies that the time-based filtering of the
// link iterator works as expected.
func (s *SuiteBase) TestLinkIteratorTimeFilter(c *gc.C) {
	linkUUIDs := make([]uuid.UUID, 3)
	linkInsertTimes := make([]time.Time, len(linkUUIDs))
	for i := 0; i < len(linkUUIDs); i++ {
		link := &graph.Link{URL: fmt.Sprint(i), RetrievedAt: time.Now()}
		c.Assert(s.g.UpsertLink(link), gc.IsNil)
		linkUUIDs[i] = link.ID
		linkInsertTimes[i] = time.Now()
	}

	for i, t := range linkInsertTimes {
		c.Logf("fetching links created before link %d", i)
		it, err := s.g.Links(minUUID, maxUUID, t)
		c.Assert(err, gc.IsNil)

		var got []uuid.UUID
		for it.Next() {
			got = append(got, it.Link().ID)
		}
		c.Assert(it.Error(), gc.IsNil)
		c.Assert(it.Close(), gc.IsNil)
		assertSameIDs(c, got, linkUUIDs[:i+1])
	}
}

// TestRemoveStaleEdges verifies that edges not refreshed after a point in
// time can be dropped.
func (s *SuiteBase) TestRemoveStaleEdges(c *gc.C) {
	linkUUIDs := s.insertPages(c, 3)

	stale := &graph.Edge{Src: linkUUIDs[0], Dst: linkUUIDs[1]}
	c.Assert(s.g.UpsertEdge(stale), gc.IsNil)

	// Make sure the second edge gets a strictly newer timestamp.
	time.Sleep(10 * time.Millisecond)
	cutoff := time.Now()
	fresh := &graph.Edge{Src: linkUUIDs[0], Dst: linkUUIDs[2]}
	c.Assert(s.g.UpsertEdge(fresh), gc.IsNil)

	c.Assert(s.g.RemoveStaleEdges(linkUUIDs[0], cutoff), gc.IsNil)

	it, err := s.g.Edges(minUUID, maxUUID, time.Now().Add(time.Minute))
	c.Assert(err, gc.IsNil)
	var got []uuid.UUID
	for it.Next() {
		got = append(got, it.Edge().ID)
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)
	assertSameIDs(c, got, []uuid.UUID{fresh.ID})
}

// TestSnapshot verifies that a link graph snapshot reflects the stored pages
// and links, keeps pages without outgoing links and drops self-links.
func (s *SuiteBase) TestSnapshot(c *gc.C) {
	ids := make(map[graph.Page]uuid.UUID)
	for _, name := range []graph.Page{"a.html", "b.html", "c.html"} {
		link := &graph.Link{URL: string(name)}
		c.Assert(s.g.UpsertLink(link), gc.IsNil)
		ids[name] = link.ID
	}
	for _, e := range [][2]graph.Page{
		{"a.html", "b.html"},
		{"a.html", "c.html"},
		{"b.html", "a.html"},
		{"b.html", "b.html"},
	} {
		c.Assert(s.g.UpsertEdge(&graph.Edge{Src: ids[e[0]], Dst: ids[e[1]]}), gc.IsNil)
	}

	lg, idsByPage, err := graph.Snapshot(s.g, time.Now().Add(time.Minute))
	c.Assert(err, gc.IsNil)
	c.Assert(lg.Validate(), gc.IsNil)
	c.Assert(lg, gc.DeepEquals, graph.LinkGraph{
		"a.html": {"b.html": {}, "c.html": {}},
		"b.html": {"a.html": {}},
		"c.html": {},
	})
	c.Assert(idsByPage, gc.DeepEquals, ids)
}

func (s *SuiteBase) insertPages(c *gc.C, count int) []uuid.UUID {
	linkUUIDs := make([]uuid.UUID, count)
	for i := 0; i < count; i++ {
		link := &graph.Link{URL: fmt.Sprintf("page-%d.html", i)}
		c.Assert(s.g.UpsertLink(link), gc.IsNil)
		linkUUIDs[i] = link.ID
	}
	return linkUUIDs
}

func assertSameIDs(c *gc.C, got, exp []uuid.UUID) {
	sort.Slice(got, func(l, r int) bool { return got[l].String() < got[r].String() })
	exp = append([]uuid.UUID(nil), exp...)
	sort.Slice(exp, func(l, r int) bool { return exp[l].String() < exp[r].String() })
	c.Assert(got, gc.DeepEquals, exp)
}
