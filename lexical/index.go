package lexical

import "github.com/poiesic/audex/core"

// Index is the contract for a lexical search sub-index.
type Index interface {
	// Add adds a document to the index, replacing any previous entry.
	Add(id core.ID, text string) error
	// Delete removes a document from the index.
	Delete(id core.ID) error
	// Search performs a keyword search and returns up to k ranked
	// candidates. The allow predicate, when non-nil, restricts which
	// documents may score.
	Search(text string, k int, allow func(core.ID) bool) ([]core.Match, error)
	// Close closes the index.
	Close() error
}
