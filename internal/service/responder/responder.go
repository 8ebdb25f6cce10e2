package responder

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/internal/service/intent"
	"github.com/sandevgo/carebot/pkg/log"
)

const (
	// FallbackMessage is returned when retrieved context cannot
	// answer the question. No generation call is made on this branch.
	FallbackMessage = "Our Support Team will reach out to you shortly regarding this inquiry."

	// FailureMessage is the only text a caller ever sees when the
	// pipeline fails, whatever the underlying cause.
	FailureMessage = "An error occurred while processing your request"
)

// Options carries the pipeline's tuning knobs.
type Options struct {
	TopK             int
	RetrievalTimeout time.Duration
	ModelTimeout     time.Duration
}

func DefaultOptions() Options {
	return Options{
		TopK:             3,
		RetrievalTimeout: 15 * time.Second,
		ModelTimeout:     30 * time.Second,
	}
}

// Responder runs the response pipeline for a single question:
// greeting fast path, context retrieval, the sufficiency gate, then
// either grounded generation or the fixed fallback. Collaborators are
// injected and must be safe for concurrent use; Responder itself is
// stateless across runs.
type Responder struct {
	matcher   *intent.Matcher
	retriever core.Retriever
	chat      core.ChatProvider
	recorder  *Recorder
	opts      Options
}

func NewResponder(matcher *intent.Matcher, retriever core.Retriever, chat core.ChatProvider, recorder *Recorder, opts Options) (*Responder, error) {
	if _, err := loadTokenizer(); err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}
	if opts.TopK < 1 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.RetrievalTimeout <= 0 {
		opts.RetrievalTimeout = DefaultOptions().RetrievalTimeout
	}
	if opts.ModelTimeout <= 0 {
		opts.ModelTimeout = DefaultOptions().ModelTimeout
	}
	return &Responder{
		matcher:   matcher,
		retriever: retriever,
		chat:      chat,
		recorder:  recorder,
		opts:      opts,
	}, nil
}

// Answer runs the pipeline and always returns a string. Collaborator
// failures and panics are contained here: they are recorded to the
// error store and replaced with FailureMessage, never surfaced to the
// boundary layer.
func (r *Responder) Answer(ctx context.Context, q core.Question) (answer string) {
	start := time.Now()
	logger := log.FromCtx(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("response pipeline panicked")
			r.recorder.RecordError(ctx, fmt.Errorf("panic: %v", rec), string(debug.Stack()))
			answer = FailureMessage
		}
	}()

	// Fast path: greetings never touch retrieval or the model.
	if reply, ok := r.matcher.Match(q.Text); ok {
		r.recorder.RecordInteraction(ctx, core.IntentGreeting, q, reply, time.Since(start))
		return reply
	}

	passages, err := r.retrieve(ctx, q.Text)
	if err != nil {
		return r.fail(ctx, fmt.Errorf("context retrieval failed: %w", err))
	}

	decision, err := r.decide(ctx, q.Text, passages)
	if err != nil {
		return r.fail(ctx, fmt.Errorf("decision call failed: %w", err))
	}

	var intentTag string
	if decision == core.Sufficient {
		answer, err = r.generate(ctx, q.Text, passages)
		if err != nil {
			return r.fail(ctx, fmt.Errorf("answer generation failed: %w", err))
		}
		intentTag = core.IntentRAGContent
	} else {
		answer = FallbackMessage
		intentTag = core.IntentBasicContent
	}

	// Persistence is dispatched in the background: the caller's
	// response time excludes logging latency.
	r.recorder.RecordInteraction(ctx, intentTag, q, answer, time.Since(start))
	return answer
}

func (r *Responder) retrieve(ctx context.Context, question string) ([]core.Passage, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.RetrievalTimeout)
	defer cancel()
	return r.retriever.Retrieve(ctx, question, r.opts.TopK)
}

// decide issues the single classification call and parses its binary
// signal. Unparsable output falls back to Insufficient inside
// ParseDecision; only transport failures surface as errors.
func (r *Responder) decide(ctx context.Context, question string, passages []core.Passage) (core.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.ModelTimeout)
	defer cancel()

	msg, err := r.chat.Chat(ctx, decisionMessages(question, passages))
	if err != nil {
		return core.Insufficient, err
	}

	decision := ParseDecision(msg.Content)
	log.FromCtx(ctx).Debug().
		Str("decision", decision.String()).
		Str("raw", msg.Content).
		Msg("sufficiency gate")
	return decision, nil
}

// generate issues the grounded generation call and returns the model
// text unmodified.
func (r *Responder) generate(ctx context.Context, question string, passages []core.Passage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.ModelTimeout)
	defer cancel()

	msg, err := r.chat.Chat(ctx, answerMessages(question, passages))
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

func (r *Responder) fail(ctx context.Context, err error) string {
	log.FromCtx(ctx).Error().Err(err).Msg("response pipeline failed")
	r.recorder.RecordError(ctx, err, string(debug.Stack()))
	return FailureMessage
}
