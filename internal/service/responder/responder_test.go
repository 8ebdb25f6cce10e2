package responder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/internal/service/intent"
)

// syncDispatcher runs submitted jobs inline so tests can assert on
// dispatched records without real concurrency.
type syncDispatcher struct{}

func (syncDispatcher) Submit(job func()) bool {
	job()
	return true
}

type fakeRetriever struct {
	passages []core.Passage
	err      error
	calls    int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, question string, k int) ([]core.Passage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.passages) > k {
		return f.passages[:k], nil
	}
	return f.passages, nil
}

// fakeChat replies from a queue: first call gets responses[0], the
// next responses[1], and so on.
type fakeChat struct {
	responses []string
	err       error
	prompts   [][]core.Message
}

func (f *fakeChat) Chat(ctx context.Context, messages []core.Message) (core.Message, error) {
	f.prompts = append(f.prompts, messages)
	if f.err != nil {
		return core.Message{}, f.err
	}
	idx := len(f.prompts) - 1
	if idx >= len(f.responses) {
		return core.Message{}, errors.New("unexpected extra chat call")
	}
	return core.Message{Role: core.RoleAssistant, Content: f.responses[idx]}, nil
}

type memHistory struct {
	mu      sync.Mutex
	records []core.InteractionRecord
	err     error
}

func (m *memHistory) AppendInteraction(ctx context.Context, rec core.InteractionRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.records = append(m.records, rec)
	return int64(len(m.records)), nil
}

type memErrors struct {
	mu      sync.Mutex
	records []core.ErrorRecord
	err     error
}

func (m *memErrors) AppendError(ctx context.Context, rec core.ErrorRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.records = append(m.records, rec)
	return int64(len(m.records)), nil
}

type fixture struct {
	responder *Responder
	retriever *fakeRetriever
	chat      *fakeChat
	history   *memHistory
	errs      *memErrors
}

func newFixture(t *testing.T, retriever *fakeRetriever, chat *fakeChat) *fixture {
	t.Helper()

	history := &memHistory{}
	errs := &memErrors{}
	recorder, err := NewRecorder(history, errs, syncDispatcher{}, "UTC")
	require.NoError(t, err)

	r, err := NewResponder(intent.NewDefaultMatcher(), retriever, chat, recorder, DefaultOptions())
	require.NoError(t, err)

	return &fixture{
		responder: r,
		retriever: retriever,
		chat:      chat,
		history:   history,
		errs:      errs,
	}
}

func question(text string) core.Question {
	return core.Question{Text: text, Role: "member", UserID: "u-1", UserName: "Asha"}
}

func TestAnswer_GreetingFastPath(t *testing.T) {
	f := newFixture(t, &fakeRetriever{}, &fakeChat{})

	answer := f.responder.Answer(context.Background(), question("Hi there"))

	require.Equal(t, "Hello! How can I assist you today?", answer)
	require.Zero(t, f.retriever.calls, "greetings must not touch retrieval")
	require.Empty(t, f.chat.prompts, "greetings must not touch the model")

	require.Len(t, f.history.records, 1)
	rec := f.history.records[0]
	require.Equal(t, core.IntentGreeting, rec.Intent)
	require.Equal(t, "Hi there", rec.UserInput)
	require.Equal(t, answer, rec.AIResponse)
	require.GreaterOrEqual(t, rec.ResponseTime, 0.0)
}

func TestAnswer_SufficientContextReturnsGeneratedText(t *testing.T) {
	retriever := &fakeRetriever{passages: []core.Passage{
		{Content: "Refunds are processed within 5 business days.", Rank: 1},
	}}
	chat := &fakeChat{responses: []string{"1", "## Refunds\nProcessed within 5 business days."}}
	f := newFixture(t, retriever, chat)

	answer := f.responder.Answer(context.Background(), question("What is our refund policy?"))

	require.Equal(t, "## Refunds\nProcessed within 5 business days.", answer,
		"generated text must be returned verbatim")
	require.Equal(t, 1, retriever.calls)
	require.Len(t, chat.prompts, 2, "one decision call, one generation call")

	require.Len(t, f.history.records, 1)
	require.Equal(t, core.IntentRAGContent, f.history.records[0].Intent)
}

func TestAnswer_InsufficientContextFallsBack(t *testing.T) {
	chat := &fakeChat{responses: []string{"0"}}
	f := newFixture(t, &fakeRetriever{}, chat)

	answer := f.responder.Answer(context.Background(), question("What is our refund policy?"))

	require.Equal(t, FallbackMessage, answer)
	require.Len(t, chat.prompts, 1, "no generation call on the fallback branch")
	require.Len(t, f.history.records, 1)
	require.Equal(t, core.IntentBasicContent, f.history.records[0].Intent)
}

func TestAnswer_UnparsableDecisionBehavesLikeZero(t *testing.T) {
	chat := &fakeChat{responses: []string{"I cannot decide, sorry"}}
	f := newFixture(t, &fakeRetriever{}, chat)

	answer := f.responder.Answer(context.Background(), question("Anything about billing?"))

	require.Equal(t, FallbackMessage, answer)
	require.Len(t, chat.prompts, 1)
	require.Equal(t, core.IntentBasicContent, f.history.records[0].Intent)
}

func TestAnswer_DecisionPromptUsesAtMostThreePassages(t *testing.T) {
	retriever := &fakeRetriever{passages: []core.Passage{
		{Content: "alpha", Rank: 1},
		{Content: "beta", Rank: 2},
		{Content: "gamma", Rank: 3},
		{Content: "delta", Rank: 4},
	}}
	chat := &fakeChat{responses: []string{"0"}}
	f := newFixture(t, retriever, chat)

	f.responder.Answer(context.Background(), question("Tell me about coverage"))

	require.Len(t, chat.prompts, 1)
	prompt := chat.prompts[0][1].Content
	require.Contains(t, prompt, "gamma")
	require.NotContains(t, prompt, "delta")
}

func TestAnswer_RetrievalFailureReturnsFixedMessage(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("index unavailable")}
	f := newFixture(t, retriever, &fakeChat{})

	answer := f.responder.Answer(context.Background(), question("What is covered?"))

	require.Equal(t, FailureMessage, answer)
	require.Empty(t, f.chat.prompts)
	require.Empty(t, f.history.records)

	require.Len(t, f.errs.records, 1)
	rec := f.errs.records[0]
	require.Contains(t, rec.Message, "index unavailable")
	require.NotEmpty(t, rec.Type)
	require.NotEmpty(t, rec.StackTrace)
}

func TestAnswer_ModelFailureReturnsFixedMessage(t *testing.T) {
	chat := &fakeChat{err: errors.New("upstream 503")}
	f := newFixture(t, &fakeRetriever{}, chat)

	answer := f.responder.Answer(context.Background(), question("What is covered?"))

	require.Equal(t, FailureMessage, answer)
	require.Len(t, f.errs.records, 1)
	require.Contains(t, f.errs.records[0].Message, "upstream 503")
}

func TestAnswer_HistoryFailureDoesNotChangeAnswer(t *testing.T) {
	retriever := &fakeRetriever{}
	chat := &fakeChat{responses: []string{"0"}}

	history := &memHistory{err: errors.New("history store down")}
	errs := &memErrors{}
	recorder, err := NewRecorder(history, errs, syncDispatcher{}, "UTC")
	require.NoError(t, err)

	r, err := NewResponder(intent.NewDefaultMatcher(), retriever, chat, recorder, DefaultOptions())
	require.NoError(t, err)
	answer := r.Answer(context.Background(), question("What about claims?"))

	require.Equal(t, FallbackMessage, answer, "logging must never affect the returned answer")
	require.Len(t, errs.records, 1, "history failure is redirected to the error store")
	require.Contains(t, errs.records[0].Message, "history store down")
}

func TestAnswer_ErrorStoreFailureIsSwallowed(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("boom")}

	history := &memHistory{}
	errs := &memErrors{err: errors.New("error store down too")}
	recorder, err := NewRecorder(history, errs, syncDispatcher{}, "UTC")
	require.NoError(t, err)

	r, err := NewResponder(intent.NewDefaultMatcher(), retriever, &fakeChat{}, recorder, DefaultOptions())
	require.NoError(t, err)

	require.NotPanics(t, func() {
		answer := r.Answer(context.Background(), question("anything"))
		require.Equal(t, FailureMessage, answer)
	})
}

func TestAnswer_ResponseTimeHasTwoDecimalPrecision(t *testing.T) {
	chat := &fakeChat{responses: []string{"0"}}
	f := newFixture(t, &fakeRetriever{}, chat)

	f.responder.Answer(context.Background(), question("precision check"))

	require.Len(t, f.history.records, 1)
	got := f.history.records[0].ResponseTime
	require.GreaterOrEqual(t, got, 0.0)
	// Scaling by 100 must yield a whole number if two decimals is all
	// that survived rounding.
	require.InDelta(t, got*100, float64(int64(got*100+0.5)), 1e-9)
}

func TestAnswer_GreetingWordBoundary(t *testing.T) {
	chat := &fakeChat{responses: []string{"0"}}
	f := newFixture(t, &fakeRetriever{}, chat)

	// "highway" contains "hi" but must not trigger the fast path.
	answer := f.responder.Answer(context.Background(), question("highway assistance program"))

	require.Equal(t, FallbackMessage, answer)
	require.Equal(t, 1, f.retriever.calls)
}

func TestAnswer_DecisionSignalInsideSentence(t *testing.T) {
	chat := &fakeChat{responses: []string{"Based on the context: 1", "grounded answer"}}
	f := newFixture(t, &fakeRetriever{passages: []core.Passage{{Content: "ctx", Rank: 1}}}, chat)

	answer := f.responder.Answer(context.Background(), question("Is this covered?"))

	require.Equal(t, "grounded answer", answer)
	require.True(t, strings.HasPrefix(chat.prompts[1][0].Content, "You are an expert"),
		"second call must be the grounding prompt")
}
