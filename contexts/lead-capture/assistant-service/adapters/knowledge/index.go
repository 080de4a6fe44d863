// Package knowledge indexes the campaign page for retrieval. Chunks and
// their embeddings live in memory: one page yields a handful of vectors, so
// exact brute-force search is both simplest and fastest.
package knowledge

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	application "leadgate/contexts/lead-capture/assistant-service/application"
	"leadgate/contexts/lead-capture/assistant-service/ports"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200
)

type Index struct {
	embedder ports.Embedder
	chunks   []string
	vectors  [][]float32 // normalized, so dot product equals cosine similarity
	logger   *slog.Logger
}

// BuildIndex extracts visible text from the page, chunks it and embeds every
// chunk. The returned index serves as the pipeline's retriever.
func BuildIndex(ctx context.Context, pageHTML string, embedder ports.Embedder, logger *slog.Logger) (*Index, error) {
	log := application.ResolveLogger(logger)

	text := ExtractText(pageHTML)
	if text == "" {
		return nil, errors.New("page has no extractable text")
	}

	chunks := chunkText(text, chunkSize, chunkOverlap)
	vectors, err := embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed page chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("expected %d vectors, got %d", len(chunks), len(vectors))
	}
	for i := range vectors {
		vectors[i] = normalize(vectors[i])
	}

	log.Info("page content indexed",
		"event", "page_indexed",
		"module", "lead-capture/assistant-service",
		"layer", "adapter",
		"chunks", len(chunks),
	)
	return &Index{
		embedder: embedder,
		chunks:   chunks,
		vectors:  vectors,
		logger:   log,
	}, nil
}

// Retrieve returns the top-k chunks by cosine similarity to the query.
func (ix *Index) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		k = 3
	}

	queryVec, err := ix.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVec = normalize(queryVec)

	h := &minHeap{}
	heap.Init(h)
	for i, vec := range ix.vectors {
		if len(vec) != len(queryVec) {
			continue
		}
		score := dotProduct(queryVec, vec)
		if h.Len() < k {
			heap.Push(h, scored{index: i, score: score})
		} else if score > (*h)[0].score {
			(*h)[0] = scored{index: i, score: score}
			heap.Fix(h, 0)
		}
	}

	results := make([]string, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = ix.chunks[heap.Pop(h).(scored).index]
	}
	return results, nil
}

// Len reports the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.chunks)
}

type scored struct {
	index int
	score float64
}

// minHeap keeps the current top-k with the weakest candidate at the root.
type minHeap []scored

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i].score < h[j].score }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(scored)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return make([]float32, len(v))
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
