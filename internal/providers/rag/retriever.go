package rag

import (
	"context"
	"fmt"

	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/internal/storage/sqlite"
	"github.com/sandevgo/carebot/pkg/log"
)

// PassageSearcher is the vector-search half of retrieval, implemented
// by the sqlite passage repo.
type PassageSearcher interface {
	Search(ctx context.Context, vector []float32, topK int) ([]sqlite.ScoredPassage, error)
}

// Retriever embeds a question and returns the top-k most similar
// passages from the knowledge base.
type Retriever struct {
	embedder core.Embedder
	store    PassageSearcher
}

func NewRetriever(embedder core.Embedder, store PassageSearcher) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]core.Passage, error) {
	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	scored, err := r.store.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("passage search failed: %w", err)
	}

	passages := make([]core.Passage, 0, len(scored))
	for i, s := range scored {
		passages = append(passages, core.Passage{Content: s.Content, Rank: i + 1})
	}

	log.FromCtx(ctx).Debug().Int("count", len(passages)).Msg("retrieved context passages")
	return passages, nil
}
