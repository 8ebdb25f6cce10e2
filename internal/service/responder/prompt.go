package responder

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/carebot/internal/core"
)

const (
	// maxContextPassages bounds prompt size and latency: only the
	// three highest-ranked passages ever reach the model.
	maxContextPassages = 3

	// maxContextTokens caps the concatenated context block. Passages
	// beyond the budget are cut mid-text rather than dropped whole so
	// the gate still sees the strongest material.
	maxContextTokens = 1600

	passageSeparator = "\n\n"
)

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
	tkErr  error
)

// loadTokenizer loads the cl100k_base encoding once. NewResponder
// calls it at construction so a broken tokenizer environment fails at
// startup rather than inside the first request.
func loadTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding("cl100k_base")
	})
	return tk, tkErr
}

// contextBlock joins the top passages into one bounded text block.
func contextBlock(passages []core.Passage) string {
	n := len(passages)
	if n > maxContextPassages {
		n = maxContextPassages
	}

	parts := make([]string, 0, n)
	for _, p := range passages[:n] {
		parts = append(parts, p.Content)
	}
	return truncateTokens(strings.Join(parts, passageSeparator), maxContextTokens)
}

func truncateTokens(text string, budget int) string {
	if text == "" {
		return text
	}
	enc, err := loadTokenizer()
	if err != nil {
		return text
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= budget {
		return text
	}
	return enc.Decode(tokens[:budget])
}

// decisionMessages builds the classification call: the model must
// reply with a bare 1 (context answers the question) or 0 (it does
// not).
func decisionMessages(question string, passages []core.Passage) []core.Message {
	prompt := fmt.Sprintf(
		`Determine if this question can be answered with the context (1=yes, 0=no):
Context: %s
Question: %s
Answer:`,
		contextBlock(passages), question)

	return []core.Message{
		{Role: core.RoleSystem, Content: "Answer concisely (1=yes, 0=no)"},
		{Role: core.RoleUser, Content: prompt},
	}
}

// answerMessages builds the grounded generation call. The system
// prompt pins the model to the supplied context and tells it to admit
// ignorance instead of inventing answers.
func answerMessages(question string, passages []core.Passage) []core.Message {
	prompt := fmt.Sprintf(
		`You are an expert for answering questions. Answer the question according only to the given context.
If question cannot be answered using the context, simply say I don't know. Do not make stuff up.
Your answer MUST be informative, concise, and action driven. Your response must be in Markdown.
Context: %s
Question: %s
Answer:`,
		contextBlock(passages), question)

	return []core.Message{
		{Role: core.RoleSystem, Content: prompt},
		{Role: core.RoleUser, Content: question},
	}
}
