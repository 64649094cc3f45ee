package retrieval

import (
	"fmt"
	"math"
	"sort"

	"github.com/citywill/smart-graph/helper"
)

// Ranker orders candidate chunks by cosine similarity to a query vector.
type Ranker struct {
	dimensions int
}

// NewRanker creates a ranker for vectors of the given dimension.
func NewRanker(dimensions int) *Ranker {
	return &Ranker{dimensions: dimensions}
}

// RankBySimilarity scores every candidate against the query vector and
// returns up to limit hits ordered by score descending, RID ascending on
// ties. Candidates whose embedding dimension does not match the query are
// skipped and counted; a mismatched query vector is an error.
func (r *Ranker) RankBySimilarity(query []float32, candidates []*EmbeddedNode, limit int) ([]*RankedHit, int, error) {
	if limit <= 0 {
		return nil, 0, helper.NewError("rank by similarity", fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, limit))
	}
	if len(query) != r.dimensions {
		return nil, 0, helper.NewError("rank by similarity", fmt.Errorf("%w: query has %d dimensions, want %d", ErrDimensionMismatch, len(query), r.dimensions))
	}

	skipped := 0
	hits := make([]*RankedHit, 0, len(candidates))
	for _, candidate := range candidates {
		if len(candidate.Embedding) != r.dimensions {
			skipped++
			continue
		}
		hits = append(hits, &RankedHit{
			RID:   candidate.RID,
			Score: CosineSimilarity(query, candidate.Embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].RID.String() < hits[j].RID.String()
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}

	return hits, skipped, nil
}

// CosineSimilarity computes the cosine similarity of two equal-length
// vectors, accumulating in float64. A zero-norm vector yields 0.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
