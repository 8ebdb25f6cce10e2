package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/carebot/internal/core"
)

// HistoryRepo persists completed interaction records. Appends are
// independent rows; concurrent writers need no coordination.
type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) AppendInteraction(ctx context.Context, rec core.InteractionRecord) (int64, error) {
	query := `INSERT INTO chat_history
		(date, time, intent, user_input, ai_response, role, user_id, user_name, response_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		rec.Date, rec.Time, rec.Intent, rec.UserInput, rec.AIResponse,
		rec.Role, rec.UserID, rec.UserName, rec.ResponseTime,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert interaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}
