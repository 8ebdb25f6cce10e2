package sqlite

import (
	"container/heap"
	"context"
	"database/sql"
	"fmt"
)

// ScoredPassage is a stored passage with its cosine similarity to the
// query vector. Higher is better.
type ScoredPassage struct {
	ID      int64
	Content string
	Score   float64
}

// PassageRepo performs brute-force cosine similarity search over the
// passages table. The table is written offline by the indexing
// tooling and is read-only at serve time, so concurrent searches need
// no locking.
type PassageRepo struct {
	db *sql.DB
}

func NewPassageRepo(db *sql.DB) *PassageRepo {
	return &PassageRepo{db: db}
}

// Search returns the topK passages most similar to vector, best first.
func (r *PassageRepo) Search(ctx context.Context, vector []float32, topK int) ([]ScoredPassage, error) {
	if topK < 1 {
		return nil, nil
	}

	queryNorm := norm(vector)
	if queryNorm == 0 {
		return nil, nil
	}

	// Phase 1: scan id + embedding only, keep the topK ids in a
	// min-heap. Row payloads are fetched afterwards for winners only.
	rows, err := r.db.QueryContext(ctx, `SELECT id, embedding FROM passages`)
	if err != nil {
		return nil, fmt.Errorf("failed to query passage vectors: %w", err)
	}
	defer rows.Close()

	h := &scoreHeap{}
	heap.Init(h)

	var buf []float32
	for rows.Next() {
		var id int64
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan passage vector: %w", err)
		}

		buf, err = deserializeVector(blob, buf)
		if err != nil {
			return nil, err
		}

		score := cosineSimilarity(vector, queryNorm, buf)
		if h.Len() < topK {
			heap.Push(h, ScoredPassage{ID: id, Score: score})
		} else if score > (*h)[0].Score {
			(*h)[0] = ScoredPassage{ID: id, Score: score}
			heap.Fix(h, 0)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if h.Len() == 0 {
		return nil, nil
	}

	// Phase 2: fetch content for the winners and order best-first.
	winners := make([]ScoredPassage, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		winners[i] = heap.Pop(h).(ScoredPassage)
	}

	for i := range winners {
		err := r.db.QueryRowContext(ctx,
			`SELECT content FROM passages WHERE id = ?`, winners[i].ID,
		).Scan(&winners[i].Content)
		if err != nil {
			return nil, fmt.Errorf("failed to load passage %d: %w", winners[i].ID, err)
		}
	}

	return winners, nil
}

// Insert stores passages with their embeddings. Used by tests and by
// offline index loading; the response pipeline never writes here.
func (r *PassageRepo) Insert(ctx context.Context, content, source string, embedding []float32) (int64, error) {
	blob, err := serializeVector(embedding)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO passages (content, source, embedding) VALUES (?, ?, ?)`,
		content, source, blob,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert passage: %w", err)
	}
	return res.LastInsertId()
}

// scoreHeap is a min-heap by score, so the weakest candidate sits at
// the root and is cheap to evict.
type scoreHeap []ScoredPassage

func (h scoreHeap) Len() int            { return len(h) }
func (h scoreHeap) Less(i, j int) bool  { return h[i].Score < h[j].Score }
func (h scoreHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *scoreHeap) Push(x interface{}) { *h = append(*h, x.(ScoredPassage)) }
func (h *scoreHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
