package graph

import "golang.org/x/xerrors"

var (
	// ErrNotFound is returned when a link or edge lookup fails.
	ErrNotFound = xerrors.New("not found")

	// ErrUnknownEdgeLinks is returned when attempting to create an edge
	// with an invalid source and/or destination ID
	ErrUnknownEdgeLinks = xerrors.New("unknown source and/or destination for edge")

	// ErrEmptyGraph is returned when a link graph contains no pages.
	ErrEmptyGraph = xerrors.New("link graph contains no pages")

	// ErrSelfLink is returned by Validate when a page links to itself.
	ErrSelfLink = xerrors.New("page links to itself")

	// ErrUnknownLinkTarget is returned by Validate when a page links to a
	// page that is not part of the graph.
	ErrUnknownLinkTarget = xerrors.New("link target is not part of the graph")
)
