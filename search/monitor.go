package search

import (
	"github.com/poiesic/memlane/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(req SearchRequest)
	AfterSemanticMatch(tags []string)
	AfterItemRetrieval(items []*core.Item)
	Finish(resp SearchResponse)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ SearchRequest)            {}
func (n *noopMonitor) AfterSemanticMatch(_ []string)    {}
func (n *noopMonitor) AfterItemRetrieval(_ []*core.Item) {}
func (n *noopMonitor) Finish(_ SearchResponse)          {}
