package search

import (
	"github.com/poiesic/nutridex/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterParse(parsed *ParsedQuery)
	AfterCandidateSelection(ids []core.ID)
	SemanticHit(queryToken, indexToken string, score float64)
	ConstraintRejected(id core.ID)
	Finish(results []core.ScoredItem)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                       {}
func (n *noopMonitor) AfterParse(_ *ParsedQuery)            {}
func (n *noopMonitor) AfterCandidateSelection(_ []core.ID)  {}
func (n *noopMonitor) SemanticHit(_, _ string, _ float64)   {}
func (n *noopMonitor) ConstraintRejected(_ core.ID)         {}
func (n *noopMonitor) Finish(_ []core.ScoredItem)           {}
