package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/carebot/internal/core"
)

// ErrorRepo persists error records to a store separate from chat
// history, so a broken history table cannot take error reporting
// down with it.
type ErrorRepo struct {
	db *sql.DB
}

func NewErrorRepo(db *sql.DB) *ErrorRepo {
	return &ErrorRepo{db: db}
}

func (r *ErrorRepo) AppendError(ctx context.Context, rec core.ErrorRecord) (int64, error) {
	query := `INSERT INTO error_log
		(date, time, error_type, error_message, stack_trace)
		VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		rec.Date, rec.Time, rec.Type, rec.Message, rec.StackTrace,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert error record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}
