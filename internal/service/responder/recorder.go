package responder

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/pkg/log"
)

// Storage row timestamp formats, kept humane for operators browsing
// the history table directly.
const (
	dateFormat = "02-01-2006"
	timeFormat = "03:04:05 PM"
)

// appendTimeout bounds background persistence so a wedged database
// cannot pin pool workers forever.
const appendTimeout = 10 * time.Second

// Dispatcher hands a job to background execution. The worker pool
// implements it; tests substitute a synchronous double.
type Dispatcher interface {
	Submit(job func()) bool
}

// Recorder writes interaction history and error records. Interaction
// appends are dispatched to the background pool and never block or
// fail the reply path; failures are redirected to the error store,
// and error-store failures are swallowed. This is the terminal
// failure boundary.
type Recorder struct {
	history core.HistoryRepository
	errors  core.ErrorRepository
	pool    Dispatcher
	loc     *time.Location
}

func NewRecorder(history core.HistoryRepository, errors core.ErrorRepository, pool Dispatcher, timezone string) (*Recorder, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	return &Recorder{
		history: history,
		errors:  errors,
		pool:    pool,
		loc:     loc,
	}, nil
}

// RecordInteraction builds the history record for one completed run
// and dispatches its persistence. The logger is captured from ctx
// because the job outlives the request context.
func (r *Recorder) RecordInteraction(ctx context.Context, intent string, q core.Question, answer string, elapsed time.Duration) {
	logger := log.FromCtx(ctx)
	now := time.Now().In(r.loc)

	rec := core.InteractionRecord{
		Date:         now.Format(dateFormat),
		Time:         now.Format(timeFormat),
		Intent:       intent,
		UserInput:    q.Text,
		AIResponse:   answer,
		Role:         q.Role,
		UserID:       q.UserID,
		UserName:     q.UserName,
		ResponseTime: roundSeconds(elapsed),
	}

	submitted := r.pool.Submit(func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		defer cancel()

		if _, err := r.history.AppendInteraction(jobCtx, rec); err != nil {
			logger.Error().Err(err).Msg("failed to persist interaction record")
			r.appendError(jobCtx, logger, errorRecord(r.loc, err, ""))
		}
	})
	if !submitted {
		logger.Warn().Str("intent", intent).Msg("recorder queue full, interaction record dropped")
	}
}

// RecordError persists an unexpected failure. It never returns an
// error: if the error store itself fails, the failure is reduced to a
// diagnostic log line and forgotten.
func (r *Recorder) RecordError(ctx context.Context, cause error, stack string) {
	logger := log.FromCtx(ctx)
	jobCtx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	r.appendError(jobCtx, logger, errorRecord(r.loc, cause, stack))
}

func (r *Recorder) appendError(ctx context.Context, logger *zerolog.Logger, rec core.ErrorRecord) {
	if _, err := r.errors.AppendError(ctx, rec); err != nil {
		logger.Error().Err(err).Str("original", rec.Message).Msg("failed to persist error record")
	}
}

func errorRecord(loc *time.Location, cause error, stack string) core.ErrorRecord {
	now := time.Now().In(loc)
	return core.ErrorRecord{
		Date:       now.Format(dateFormat),
		Time:       now.Format(timeFormat),
		Type:       fmt.Sprintf("%T", cause),
		Message:    cause.Error(),
		StackTrace: stack,
	}
}

// roundSeconds converts elapsed wall-clock time to seconds with
// two-decimal precision.
func roundSeconds(elapsed time.Duration) float64 {
	return math.Round(elapsed.Seconds()*100) / 100
}
