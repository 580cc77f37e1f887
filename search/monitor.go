package search

import (
	"github.com/poiesic/audex/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(request *core.SearchRequest)
	AfterLexicalSearch(matches []core.Match)
	AfterVectorSearch(matches []core.Match)
	AfterFusion(matches []core.Match)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *core.SearchRequest)         {}
func (n *noopMonitor) AfterLexicalSearch(_ []core.Match)   {}
func (n *noopMonitor) AfterVectorSearch(_ []core.Match)    {}
func (n *noopMonitor) AfterFusion(_ []core.Match)          {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)       {}
