package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/carebot/pkg/log"
)

type MistralConfig struct {
	APIKey      string  `env:"MISTRAL_API_KEY,required,notEmpty"`
	Model       string  `env:"MISTRAL_MODEL" envDefault:"mistral-small"`
	Temperature float64 `env:"MISTRAL_TEMPERATURE" envDefault:"0.3"`
	MaxTokens   int     `env:"MISTRAL_MAX_TOKENS" envDefault:"256"`
	BaseURL     string  `env:"MISTRAL_BASE_URL" envDefault:"https://api.mistral.ai"`

	// Embeddings use a separate key so retrieval quota is isolated
	// from generation quota.
	EmbedAPIKey string `env:"MISTRAL_EMBED_API_KEY,required,notEmpty"`
	EmbedModel  string `env:"MISTRAL_EMBED_MODEL" envDefault:"mistral-embed"`
}

func NewMistralConfig(ctx context.Context) *MistralConfig {
	c := &MistralConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Mistral config")
	}
	return c
}
