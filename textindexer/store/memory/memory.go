package memory

import (
	"sort"
	"sync"
	"time"

	"Rank_Engine/textindexer/index"

	"github.com/google/uuid"
	"golang.org/x/xerrors"
)

// Compile-time check for ensuring InMemoryIndex implements Indexer.
var _ index.Indexer = (*InMemoryIndex)(nil)

// InMemoryIndex implements an Indexer that keeps its documents in memory.
type InMemoryIndex struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*index.Document
}

// NewInMemoryIndex creates a new in-memory index.
func NewInMemoryIndex() *InMemoryIndex {
	return &InMemoryIndex{
		docs: make(map[uuid.UUID]*index.Document),
	}
}

// Index inserts a new document to the index or updates the index entry for
// an existing document.
func (i *InMemoryIndex) Index(doc *index.Document) error {
	if doc.LinkID == uuid.Nil {
		return xerrors.Errorf("index: %w", index.ErrMissingLinkID)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	dCopy := copyDoc(doc)
	dCopy.IndexedAt = time.Now()
	if existing := i.docs[doc.LinkID]; existing != nil {
		dCopy.PageRank = existing.PageRank
	}
	i.docs[doc.LinkID] = dCopy

	doc.IndexedAt = dCopy.IndexedAt
	doc.PageRank = dCopy.PageRank
	return nil
}

// FindByID looks up a document by its link ID.
func (i *InMemoryIndex) FindByID(linkID uuid.UUID) (*index.Document, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	doc := i.docs[linkID]
	if doc == nil {
		return nil, xerrors.Errorf("find by ID: %w", index.ErrNotFound)
	}
	return copyDoc(doc), nil
}

// UpdateScore updates the PageRank score for a document with the specified
// link ID. If no such document exists, a placeholder document with the
// provided score will be created.
func (i *InMemoryIndex) UpdateScore(linkID uuid.UUID, score float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	doc := i.docs[linkID]
	if doc == nil {
		doc = &index.Document{LinkID: linkID}
		i.docs[linkID] = doc
	}
	doc.PageRank = score
	return nil
}

// TopDocuments returns up to n documents ordered by descending PageRank
// score. Documents with the same score are ordered by link ID.
func (i *InMemoryIndex) TopDocuments(n int) ([]*index.Document, error) {
	i.mu.RLock()
	docs := make([]*index.Document, 0, len(i.docs))
	for _, doc := range i.docs {
		docs = append(docs, copyDoc(doc))
	}
	i.mu.RUnlock()

	sort.Slice(docs, func(l, r int) bool {
		if docs[l].PageRank != docs[r].PageRank {
			return docs[l].PageRank > docs[r].PageRank
		}
		return docs[l].LinkID.String() < docs[r].LinkID.String()
	})
	if n >= 0 && len(docs) > n {
		docs = docs[:n]
	}
	return docs, nil
}

func copyDoc(d *index.Document) *index.Document {
	dcopy := new(index.Document)
	*dcopy = *d
	return dcopy
}
