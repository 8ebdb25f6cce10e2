package responder

import (
	"strings"
	"testing"

	"github.com/sandevgo/carebot/internal/core"
)

func passages(contents ...string) []core.Passage {
	out := make([]core.Passage, 0, len(contents))
	for i, c := range contents {
		out = append(out, core.Passage{Content: c, Rank: i + 1})
	}
	return out
}

func TestContextBlock_CapsAtThreePassages(t *testing.T) {
	block := contextBlock(passages("one", "two", "three", "four", "five"))

	for _, want := range []string{"one", "two", "three"} {
		if !strings.Contains(block, want) {
			t.Errorf("context block missing passage %q", want)
		}
	}
	for _, unwanted := range []string{"four", "five"} {
		if strings.Contains(block, unwanted) {
			t.Errorf("context block contains passage beyond the cap: %q", unwanted)
		}
	}
	if got, want := block, "one"+passageSeparator+"two"+passageSeparator+"three"; got != want {
		t.Errorf("context block = %q, want %q", got, want)
	}
}

func TestContextBlock_FewerThanThree(t *testing.T) {
	if got := contextBlock(passages("only")); got != "only" {
		t.Errorf("context block = %q, want %q", got, "only")
	}
	if got := contextBlock(nil); got != "" {
		t.Errorf("context block for no passages = %q, want empty", got)
	}
}

func TestTruncateTokens(t *testing.T) {
	long := strings.Repeat("refund policy details ", 2000)
	truncated := truncateTokens(long, 50)

	if len(truncated) >= len(long) {
		t.Fatal("expected truncation to shorten the text")
	}
	enc, err := loadTokenizer()
	if err != nil {
		t.Fatalf("loadTokenizer: %v", err)
	}
	if got := len(enc.Encode(truncated, nil, nil)); got > 50 {
		t.Errorf("truncated text has %d tokens, budget is 50", got)
	}

	short := "short text"
	if got := truncateTokens(short, 50); got != short {
		t.Errorf("short text should pass through unchanged, got %q", got)
	}
}

func TestLoadTokenizer(t *testing.T) {
	first, err := loadTokenizer()
	if err != nil {
		t.Fatalf("loadTokenizer: %v", err)
	}
	if first == nil {
		t.Fatal("loadTokenizer returned nil encoder")
	}

	second, err := loadTokenizer()
	if err != nil {
		t.Fatalf("loadTokenizer (second call): %v", err)
	}
	if second != first {
		t.Error("repeated calls should return the cached encoder")
	}
}

func TestDecisionMessages(t *testing.T) {
	msgs := decisionMessages("What is the refund policy?", passages("Refunds take 5 days."))

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != core.RoleSystem {
		t.Errorf("first message role = %q, want system", msgs[0].Role)
	}
	if !strings.Contains(msgs[0].Content, "1=yes, 0=no") {
		t.Errorf("system message should state the binary contract, got %q", msgs[0].Content)
	}
	if !strings.Contains(msgs[1].Content, "Refunds take 5 days.") {
		t.Error("user message should embed the context")
	}
	if !strings.Contains(msgs[1].Content, "What is the refund policy?") {
		t.Error("user message should embed the question")
	}
}

func TestAnswerMessages(t *testing.T) {
	msgs := answerMessages("How do I reset my password?", passages("Use the account page."))

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != core.RoleSystem || msgs[1].Role != core.RoleUser {
		t.Errorf("unexpected roles: %q, %q", msgs[0].Role, msgs[1].Role)
	}
	for _, want := range []string{
		"only to the given context",
		"I don't know",
		"Markdown",
		"Use the account page.",
	} {
		if !strings.Contains(msgs[0].Content, want) {
			t.Errorf("grounding prompt missing %q", want)
		}
	}
	if msgs[1].Content != "How do I reset my password?" {
		t.Errorf("user message = %q, want the bare question", msgs[1].Content)
	}
}
