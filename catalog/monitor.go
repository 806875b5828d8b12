package catalog

import "github.com/poiesic/intellicourse/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results.
type RetrievalMonitor interface {
	Start(query string)
	AfterCandidateSearch(candidates []*core.ScoredPassage)
	Selected(rank int, passage *core.Passage, mmrScore float32)
	Finish(evidence core.CatalogEvidence)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                               {}
func (n *noopMonitor) AfterCandidateSearch(_ []*core.ScoredPassage) {}
func (n *noopMonitor) Selected(_ int, _ *core.Passage, _ float32)   {}
func (n *noopMonitor) Finish(_ core.CatalogEvidence)                {}
