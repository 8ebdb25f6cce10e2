package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
)

// Mistral talks to Mistral's OpenAI-compatible chat completions API.
// Low temperature and a small completion budget keep the pipeline's
// two calls fast and deterministic.
type Mistral struct {
	baseProvider
	temperature float64
	maxTokens   int
}

func NewMistral(cfg *config.MistralConfig) *Mistral {
	return &Mistral{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model),
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
	}
}

func (m *Mistral) Chat(ctx context.Context, messages []core.Message) (core.Message, error) {
	payload := map[string]any{
		"model":       m.model,
		"messages":    messages,
		"temperature": m.temperature,
		"max_tokens":  m.maxTokens,
	}

	resp, err := m.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload)
	if err != nil {
		return core.Message{}, err
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return core.Message{}, err
	}

	var result struct {
		Choices []struct {
			Message core.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.Message{}, fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return core.Message{}, fmt.Errorf("empty choices: %s", string(data))
	}
	return result.Choices[0].Message, nil
}
