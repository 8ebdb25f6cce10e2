package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sandevgo/carebot/internal/config"
)

// MistralEmbedder produces query embeddings via the /v1/embeddings
// endpoint. It holds its own API key so embedding traffic is billed
// separately from chat traffic.
type MistralEmbedder struct {
	baseProvider
}

func NewMistralEmbedder(cfg *config.MistralConfig) *MistralEmbedder {
	return &MistralEmbedder{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.EmbedAPIKey, cfg.EmbedModel),
	}
}

func (e *MistralEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]any{
		"model": e.model,
		"input": []string{text},
	}

	resp, err := e.doRequest(ctx, http.MethodPost, "/v1/embeddings", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response: %s", string(data))
	}
	return result.Data[0].Embedding, nil
}
