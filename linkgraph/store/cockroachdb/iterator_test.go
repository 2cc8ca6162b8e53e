package cockroachdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"strings"
	"time"

	"Rank_Engine/linkgraph/graph"

	"github.com/google/uuid"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(IteratorTestSuite))

// IteratorTestSuite runs the iterators against a scripted database/sql
// driver so that mid-stream failures can be reproduced without a cluster.
type IteratorTestSuite struct {
	conn *scriptedConn
	g    *CockroachDbGraph
}

var (
	errConnReset = xerrors.New("connection reset mid-stream")
	maxUUID      = uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")
)

func (s *IteratorTestSuite) SetUpTest(c *gc.C) {
	s.conn = new(scriptedConn)
	s.g = &CockroachDbGraph{db: sql.OpenDB(scriptedConnector{conn: s.conn})}
}

func (s *IteratorTestSuite) TearDownTest(c *gc.C) {
	c.Assert(s.g.Close(), gc.IsNil)
}

func (s *IteratorTestSuite) TestLinkIteratorReportsStreamError(c *gc.C) {
	s.conn.links = scriptedResult{rows: [][]driver.Value{linkRow("a.html")}, err: errConnReset}

	it, err := s.g.Links(uuid.Nil, maxUUID, time.Now())
	c.Assert(err, gc.IsNil)

	var read int
	for it.Next() {
		read++
	}
	c.Assert(read, gc.Equals, 1)
	c.Assert(xerrors.Is(it.Error(), errConnReset), gc.Equals, true, gc.Commentf("got %v", it.Error()))
	c.Assert(it.Close(), gc.IsNil)
}

func (s *IteratorTestSuite) TestEdgeIteratorReportsStreamError(c *gc.C) {
	s.conn.edges = scriptedResult{rows: [][]driver.Value{edgeRow(), edgeRow()}, err: errConnReset}

	it, err := s.g.Edges(uuid.Nil, maxUUID, time.Now())
	c.Assert(err, gc.IsNil)

	var read int
	for it.Next() {
		read++
	}
	c.Assert(read, gc.Equals, 2)
	c.Assert(xerrors.Is(it.Error(), errConnReset), gc.Equals, true, gc.Commentf("got %v", it.Error()))
	c.Assert(it.Close(), gc.IsNil)
}

func (s *IteratorTestSuite) TestIteratorsWithoutErrors(c *gc.C) {
	s.conn.links = scriptedResult{rows: [][]driver.Value{linkRow("a.html"), linkRow("b.html")}}

	it, err := s.g.Links(uuid.Nil, maxUUID, time.Now())
	c.Assert(err, gc.IsNil)
	var urls []string
	for it.Next() {
		urls = append(urls, it.Link().URL)
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)
	c.Assert(urls, gc.DeepEquals, []string{"a.html", "b.html"})
}

func (s *IteratorTestSuite) TestSnapshotFailsOnTruncatedEdgeStream(c *gc.C) {
	s.conn.links = scriptedResult{rows: [][]driver.Value{linkRow("a.html")}}
	s.conn.edges = scriptedResult{err: errConnReset}

	_, _, err := graph.Snapshot(s.g, time.Now())
	c.Assert(xerrors.Is(err, errConnReset), gc.Equals, true, gc.Commentf("got %v", err))
}

func linkRow(url string) []driver.Value {
	return []driver.Value{uuid.New().String(), url, time.Now().Add(-time.Hour)}
}

func edgeRow() []driver.Value {
	return []driver.Value{uuid.New().String(), uuid.New().String(), uuid.New().String(), time.Now().Add(-time.Hour)}
}

// scriptedResult is the canned output of a query: the rows to return,
// followed by err (or io.EOF if err is nil).
type scriptedResult struct {
	rows [][]driver.Value
	err  error
}

type scriptedConnector struct {
	conn *scriptedConn
}

func (sc scriptedConnector) Connect(context.Context) (driver.Conn, error) { return sc.conn, nil }
func (sc scriptedConnector) Driver() driver.Driver                        { return scriptedDriver{conn: sc.conn} }

type scriptedDriver struct {
	conn *scriptedConn
}

func (d scriptedDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

type scriptedConn struct {
	links scriptedResult
	edges scriptedResult
}

func (sc *scriptedConn) Prepare(query string) (driver.Stmt, error) {
	return &scriptedStmt{conn: sc, query: query}, nil
}
func (sc *scriptedConn) Close() error { return nil }
func (sc *scriptedConn) Begin() (driver.Tx, error) {
	return nil, xerrors.New("transactions not supported")
}

type scriptedStmt struct {
	conn  *scriptedConn
	query string
}

func (st *scriptedStmt) Close() error  { return nil }
func (st *scriptedStmt) NumInput() int { return -1 }
func (st *scriptedStmt) Exec([]driver.Value) (driver.Result, error) {
	return nil, xerrors.New("exec not supported")
}

func (st *scriptedStmt) Query([]driver.Value) (driver.Rows, error) {
	if strings.Contains(st.query, "FROM hyperlinks") {
		return &scriptedRows{
			cols:   []string{"id", "src", "dst", "updated_at"},
			result: st.conn.edges,
		}, nil
	}
	return &scriptedRows{
		cols:   []string{"id", "url", "retrieved_at"},
		result: st.conn.links,
	}, nil
}

type scriptedRows struct {
	cols   []string
	result scriptedResult
	next   int
}

func (r *scriptedRows) Columns() []string { return r.cols }
func (r *scriptedRows) Close() error      { return nil }

func (r *scriptedRows) Next(dest []driver.Value) error {
	if r.next < len(r.result.rows) {
		copy(dest, r.result.rows[r.next])
		r.next++
		return nil
	}
	if r.result.err != nil {
		return r.result.err
	}
	return io.EOF
}
