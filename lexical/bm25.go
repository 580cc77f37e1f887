package lexical

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/audex/core"
)

// BM25 parameters
const (
	k1 = 1.2
	b  = 0.75
)

type posting struct {
	id    core.ID
	count int
}

// MemoryIndex is an in-memory BM25 index over record descriptions.
// It is safe for concurrent use.
type MemoryIndex struct {
	mu          sync.RWMutex
	inverted    map[string][]posting
	docLengths  map[core.ID]int
	totalLength int64
	docCount    int
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		inverted:   make(map[string][]posting),
		docLengths: make(map[core.ID]int),
	}
}

var _ Index = (*MemoryIndex)(nil)

// tokenize lowercases and splits on whitespace. CJK ideographs survive as
// whole tokens, matching the derivation rules that produce descriptions.
func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Add indexes a document, replacing any previous entry for the same id.
func (idx *MemoryIndex) Add(id core.ID, text string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.docLengths[id]; ok {
		idx.deleteLocked(id)
	}

	tokens := tokenize(text)
	length := len(tokens)

	idx.docLengths[id] = length
	idx.totalLength += int64(length)
	idx.docCount++

	tf := make(map[string]int)
	for _, t := range tokens {
		tf[t]++
	}
	for t, count := range tf {
		idx.inverted[t] = append(idx.inverted[t], posting{id: id, count: count})
	}
	return nil
}

// Delete removes a document from the index. Unknown ids are a no-op.
func (idx *MemoryIndex) Delete(id core.ID) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.deleteLocked(id)
	return nil
}

func (idx *MemoryIndex) deleteLocked(id core.ID) {
	length, ok := idx.docLengths[id]
	if !ok {
		return
	}

	// O(terms * postings); acceptable for catalog-sized corpora.
	for t := range idx.inverted {
		postings := idx.inverted[t]
		for i, p := range postings {
			if p.id == id {
				idx.inverted[t] = append(postings[:i], postings[i+1:]...)
				break
			}
		}
		if len(idx.inverted[t]) == 0 {
			delete(idx.inverted, t)
		}
	}

	delete(idx.docLengths, id)
	idx.totalLength -= int64(length)
	idx.docCount--
}

// Search scores the query against the index and returns up to k matches,
// ranked by BM25 score descending. Scores are internal to this index.
func (idx *MemoryIndex) Search(text string, k int, allow func(core.ID) bool) ([]core.Match, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.docCount == 0 || k <= 0 {
		return nil, nil
	}

	tokens := tokenize(text)
	scores := make(map[core.ID]float32)
	avgDL := float64(idx.totalLength) / float64(idx.docCount)

	for _, t := range tokens {
		postings, ok := idx.inverted[t]
		if !ok {
			continue
		}

		idf := idx.computeIDF(len(postings))

		for _, p := range postings {
			if allow != nil && !allow(p.id) {
				continue
			}
			tf := float64(p.count)
			docLen := float64(idx.docLengths[p.id])

			// BM25 formula
			num := tf * (k1 + 1)
			denom := tf + k1*(1-b+b*(docLen/avgDL))
			scores[p.id] += float32(idf * (num / denom))
		}
	}

	matches := make([]core.Match, 0, len(scores))
	for id, score := range scores {
		matches = append(matches, core.Match{Id: id, Score: score})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Id < matches[j].Id
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (idx *MemoryIndex) computeIDF(df int) float64 {
	// IDF = log(1 + (N - n + 0.5) / (n + 0.5))
	N := float64(idx.docCount)
	n := float64(df)
	return math.Log(1 + (N-n+0.5)/(n+0.5))
}

// Len returns the number of indexed documents.
func (idx *MemoryIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.docCount
}

// Close releases nothing; the index lives entirely in memory.
func (idx *MemoryIndex) Close() error {
	return nil
}
