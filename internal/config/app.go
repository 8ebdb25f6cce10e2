package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/carebot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"CAREBOT_RUNTIME_PATH" envDefault:".carebot"`

	// Transport Flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`

	// Retrieval
	TopK int `env:"RETRIEVAL_TOP_K" envDefault:"3"`

	// Background recording
	RecorderWorkers int `env:"RECORDER_WORKERS" envDefault:"4"`
	RecorderQueue   int `env:"RECORDER_QUEUE" envDefault:"64"`

	// Per-stage deadlines for blocking external calls
	RetrievalTimeout time.Duration `env:"RETRIEVAL_TIMEOUT" envDefault:"15s"`
	ModelTimeout     time.Duration `env:"MODEL_TIMEOUT" envDefault:"30s"`

	// Timezone used for stored history/error timestamps
	Timezone string `env:"CAREBOT_TIMEZONE" envDefault:"Asia/Kolkata"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(GetRuntimePath(), "carebot.db")
}
