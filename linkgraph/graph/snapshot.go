package graph

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"
)

var (
	minUUID = uuid.Nil
	maxUUID = uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")
)

// Reader is implemented by link graph stores that can iterate their links
// and edges.
type Reader interface {
	Links(fromID, toID uuid.UUID, retrievedBefore time.Time) (LinkIterator, error)
	Edges(fromID, toID uuid.UUID, updatedBefore time.Time) (EdgeIterator, error)
}

// Snapshot loads every link and edge known to store g as of the asOf
// timestamp and returns them as an immutable LinkGraph. The second return
// value maps each page back to the ID of the link it was built from.
//
// Edges whose endpoints are not part of the snapshot as well as self-links
// are silently dropped.
func Snapshot(g Reader, asOf time.Time) (LinkGraph, map[Page]uuid.UUID, error) {
	linkIt, err := g.Links(minUUID, maxUUID, asOf)
	if err != nil {
		return nil, nil, xerrors.Errorf("snapshot: unable to retrieve link iterator: %w", err)
	}

	pagesByID := make(map[uuid.UUID]Page)
	for linkIt.Next() {
		link := linkIt.Link()
		pagesByID[link.ID] = Page(link.URL)
	}
	if err = linkIt.Error(); err != nil {
		_ = linkIt.Close()
		return nil, nil, xerrors.Errorf("snapshot: link iteration failed: %w", err)
	} else if err = linkIt.Close(); err != nil {
		return nil, nil, xerrors.Errorf("snapshot: unable to close link iterator: %w", err)
	}

	edgeIt, err := g.Edges(minUUID, maxUUID, asOf)
	if err != nil {
		return nil, nil, xerrors.Errorf("snapshot: unable to retrieve edge iterator: %w", err)
	}

	raw := make(map[Page][]Page, len(pagesByID))
	for _, page := range pagesByID {
		raw[page] = nil
	}
	for edgeIt.Next() {
		edge := edgeIt.Edge()
		src, srcKnown := pagesByID[edge.Src]
		dst, dstKnown := pagesByID[edge.Dst]
		if !srcKnown || !dstKnown {
			continue
		}
		raw[src] = append(raw[src], dst)
	}
	if err = edgeIt.Error(); err != nil {
		_ = edgeIt.Close()
		return nil, nil, xerrors.Errorf("snapshot: edge iteration failed: %w", err)
	} else if err = edgeIt.Close(); err != nil {
		return nil, nil, xerrors.Errorf("snapshot: unable to close edge iterator: %w", err)
	}

	idsByPage := make(map[Page]uuid.UUID, len(pagesByID))
	for id, page := range pagesByID {
		idsByPage[page] = id
	}
	return NewLinkGraph(raw), idsByPage, nil
}
