package search

import (
	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/index"
)

// Branch names reported to Monitor.BranchFailed.
const (
	BranchVector  = "vector"
	BranchLexical = "lexical"
)

// Monitor provides hooks to observe the search process.
// All hooks run on the calling goroutine after both branches have joined.
type Monitor interface {
	Start(query Query)
	AfterVectorSearch(hits []index.VectorHit)
	AfterLexicalSearch(hits []index.LexicalHit)
	BranchFailed(branch string, err error)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ Query)                           {}
func (n *noopMonitor) AfterVectorSearch(_ []index.VectorHit)   {}
func (n *noopMonitor) AfterLexicalSearch(_ []index.LexicalHit) {}
func (n *noopMonitor) BranchFailed(_ string, _ error)          {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)           {}
