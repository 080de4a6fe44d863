package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vectors  [][]float32
	queryVec []float32
	err      error
}

func (e *stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vectors[:len(texts)], nil
}

func (e *stubEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.queryVec, nil
}

func TestBuildIndexEmbedsExtractedText(t *testing.T) {
	embedder := &stubEmbedder{
		vectors:  [][]float32{{1, 0}},
		queryVec: []float32{1, 0},
	}

	index, err := BuildIndex(context.Background(),
		"<html><body><p>Earn up to $500 per referral.</p></body></html>", embedder, nil)
	require.NoError(t, err)
	require.Equal(t, 1, index.Len())

	chunks, err := index.Retrieve(context.Background(), "how much", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Earn up to $500 per referral."}, chunks)
}

func TestBuildIndexRejectsPageWithoutText(t *testing.T) {
	embedder := &stubEmbedder{}
	_, err := BuildIndex(context.Background(),
		"<html><head><script>var x = 1;</script></head></html>", embedder, nil)
	assert.Error(t, err)
}

func TestBuildIndexPropagatesEmbedderFailure(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("quota exhausted")}
	_, err := BuildIndex(context.Background(),
		"<html><body><p>some page text</p></body></html>", embedder, nil)
	assert.ErrorContains(t, err, "quota exhausted")
}

func TestRetrieveRanksByCosineSimilarity(t *testing.T) {
	index := &Index{
		embedder: &stubEmbedder{queryVec: []float32{0.9, 0.1, 0}},
		chunks:   []string{"payout schedule", "signup steps", "contact details"},
		vectors: [][]float32{
			normalize([]float32{1, 0, 0}),
			normalize([]float32{0.5, 0.5, 0}),
			normalize([]float32{0, 0, 1}),
		},
	}

	chunks, err := index.Retrieve(context.Background(), "when are payouts", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"payout schedule", "signup steps"}, chunks)
}

func TestRetrieveDefaultsKWhenUnset(t *testing.T) {
	index := &Index{
		embedder: &stubEmbedder{queryVec: []float32{1, 0}},
		chunks:   []string{"a", "b"},
		vectors:  [][]float32{{1, 0}, {0, 1}},
	}

	chunks, err := index.Retrieve(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestNormalizeYieldsUnitVectors(t *testing.T) {
	v := normalize([]float32{3, 4})
	assert.InDelta(t, 1.0, dotProduct(v, v), 1e-6)
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)
}
