package catalog

import (
	"math"

	"github.com/poiesic/intellicourse/storage"
)

// selection is one MMR pick: the candidate index and the score it won with.
type selection struct {
	index int
	score float32
}

// maximalMarginalRelevance returns up to k candidate picks in selection order.
// Ties go to the earlier candidate, so equal inputs give equal output.
func maximalMarginalRelevance(query []float32, candidates [][]float32, k int, lambda float32) []selection {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	k = min(k, len(candidates))

	relevance := make([]float32, len(candidates))
	for i, c := range candidates {
		relevance[i] = storage.CosineSimilarity(query, c)
	}

	// redundancy[i] is the max similarity of candidate i to anything selected so far
	redundancy := make([]float32, len(candidates))
	for i := range redundancy {
		redundancy[i] = float32(math.Inf(-1))
	}
	taken := make([]bool, len(candidates))
	picks := make([]selection, 0, k)

	for len(picks) < k {
		best := -1
		var bestScore float32
		for i := range candidates {
			if taken[i] {
				continue
			}
			score := relevance[i]
			if len(picks) > 0 {
				score = lambda*relevance[i] - (1-lambda)*redundancy[i]
			}
			if best < 0 || score > bestScore {
				best, bestScore = i, score
			}
		}

		taken[best] = true
		picks = append(picks, selection{index: best, score: bestScore})

		for i := range candidates {
			if taken[i] {
				continue
			}
			if sim := storage.CosineSimilarity(candidates[i], candidates[best]); sim > redundancy[i] {
				redundancy[i] = sim
			}
		}
	}
	return picks
}
