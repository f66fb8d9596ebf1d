package ranking

import (
	"math"
	"sort"

	"ai-contract-review-be/pkg/chunker"
)

// RankedChunk pairs a chunk with its cosine similarity against the query.
type RankedChunk struct {
	Chunk     chunker.Chunk
	Embedding []float32
	Score     float64 // [-1, 1]
}

// CosineSimilarity computes dot(a,b) / (|a|*|b|). If either vector has zero
// norm the similarity is defined as 0 so NaN never propagates into ranking.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores every chunk against the query embedding and returns the top K,
// ordered by descending similarity. The sort is a full stable sort: ties keep
// the original chunk order, and at document scale (tens to low hundreds of
// chunks) exactness matters more than asymptotic cost.
func Rank(chunks []chunker.Chunk, chunkEmbeddings [][]float32, queryEmbedding []float32, topK int) []RankedChunk {
	n := len(chunks)
	if len(chunkEmbeddings) < n {
		n = len(chunkEmbeddings)
	}

	ranked := make([]RankedChunk, n)
	for i := 0; i < n; i++ {
		ranked[i] = RankedChunk{
			Chunk:     chunks[i],
			Embedding: chunkEmbeddings[i],
			Score:     CosineSimilarity(chunkEmbeddings[i], queryEmbedding),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if topK > 0 && topK < len(ranked) {
		ranked = ranked[:topK]
	}
	return ranked
}
