package index

import (
	"time"

	"github.com/google/uuid"
)

// Document describes a page that has been scored by the ranking engine.
type Document struct {
	// The ID of the link-graph entry that points to this document.
	LinkID uuid.UUID

	URL   string
	Title string

	IndexedAt time.Time

	// The PageRank score most recently published for the document.
	PageRank float64
}

// Indexer is implemented by objects that keep track of documents and their
// PageRank scores.
type Indexer interface {
	// Index inserts a new document to the index or updates the index entry
	// for an existing document. The PageRank score of an existing
	// document is preserved.
	Index(doc *Document) error

	// FindByID looks up a document by its link ID.
	FindByID(linkID uuid.UUID) (*Document, error)

	// UpdateScore updates the PageRank score for a document with the
	// specified link ID. If no such document exists, a placeholder
	// document with the provided score will be created.
	UpdateScore(linkID uuid.UUID, score float64) error

	// TopDocuments returns up to n documents ordered by descending
	// PageRank score.
	TopDocuments(n int) ([]*Document, error)
}
