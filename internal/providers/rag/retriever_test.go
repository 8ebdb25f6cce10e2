package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/carebot/internal/storage/sqlite"
)

type fakeEmbedder struct {
	vec  []float32
	err  error
	text string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.text = text
	return f.vec, f.err
}

type fakeSearcher struct {
	results []sqlite.ScoredPassage
	err     error
	vec     []float32
	topK    int
}

func (f *fakeSearcher) Search(ctx context.Context, vector []float32, topK int) ([]sqlite.ScoredPassage, error) {
	f.vec = vector
	f.topK = topK
	return f.results, f.err
}

func TestRetriever_AssignsRanksInSearchOrder(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{0.1, 0.2}}
	searcher := &fakeSearcher{results: []sqlite.ScoredPassage{
		{ID: 9, Content: "best match", Score: 0.92},
		{ID: 3, Content: "second match", Score: 0.81},
		{ID: 5, Content: "third match", Score: 0.60},
	}}

	r := NewRetriever(embedder, searcher)
	got, err := r.Retrieve(context.Background(), "refund policy?", 3)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "best match", got[0].Content)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "second match", got[1].Content)
	assert.Equal(t, 2, got[1].Rank)
	assert.Equal(t, 3, got[2].Rank)

	assert.Equal(t, "refund policy?", embedder.text)
	assert.Equal(t, []float32{0.1, 0.2}, searcher.vec)
	assert.Equal(t, 3, searcher.topK)
}

func TestRetriever_EmbedFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("embedding api down")}
	r := NewRetriever(embedder, &fakeSearcher{})

	_, err := r.Retrieve(context.Background(), "q", 3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to embed question")
}

func TestRetriever_SearchFailure(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{1}}
	searcher := &fakeSearcher{err: errors.New("table locked")}
	r := NewRetriever(embedder, searcher)

	_, err := r.Retrieve(context.Background(), "q", 3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "passage search failed")
}

func TestRetriever_NoMatches(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{vec: []float32{1}}, &fakeSearcher{})

	got, err := r.Retrieve(context.Background(), "q", 3)

	require.NoError(t, err)
	assert.Empty(t, got)
}
