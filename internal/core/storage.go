package core

import "context"

// HistoryRepository appends interaction records. Append failures are
// the caller's problem: the recorder redirects them to the error
// repository instead of propagating.
type HistoryRepository interface {
	AppendInteraction(ctx context.Context, rec InteractionRecord) (int64, error)
}

// ErrorRepository appends error records to a separate store.
type ErrorRepository interface {
	AppendError(ctx context.Context, rec ErrorRecord) (int64, error)
}
